// Command vectoridx is a local driver for the in-memory vector index
// adapter: it loads a JSON file of node vectors, builds an index over
// them, and runs one operation (search, insert, soft-delete, or stats)
// against it. Because Adapter.Save/Load are not implemented, each
// invocation rebuilds from the input file rather than reusing state
// across runs — useful for benchmarking and demoing the adapter without
// a running graph database process.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/minigu-db/vectorindex/internal/filterlang"
	"github.com/minigu-db/vectorindex/internal/vamana"
	"github.com/minigu-db/vectorindex/internal/vectorindex"
	"github.com/minigu-db/vectorindex/pkg/config"
	"github.com/minigu-db/vectorindex/pkg/observability"
)

const version = "0.1.0"

// record is the on-disk shape of one entry in a vectors JSON file.
type record struct {
	NodeID   uint64                 `json:"node_id"`
	Vector   []float32              `json:"vector"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "search":
		handleSearch(os.Args[2:])
	case "insert":
		handleInsert(os.Args[2:])
	case "soft-delete":
		handleSoftDelete(os.Args[2:])
	case "stats":
		handleStats(os.Args[2:])
	case "version":
		fmt.Printf("vectoridx version %s\n", version)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		showUsage()
		os.Exit(1)
	}
}

func handleSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var (
		vectorsPath = fs.String("vectors", "", "path to a vectors JSON file (required)")
		queryStr    = fs.String("query", "", "query vector as a JSON array (required)")
		k           = fs.Int("k", 10, "number of results to return")
		lValue      = fs.Int("l", 100, "search list size")
		filterCond  = fs.String("filter", "", "metadata filter condition, e.g. \"score gte 0.5 AND category eq premium\"")
	)
	fs.Parse(args)

	if *vectorsPath == "" || *queryStr == "" {
		fmt.Println("Error: -vectors and -query are required")
		fs.Usage()
		os.Exit(1)
	}

	records := loadRecords(*vectorsPath)
	query := parseVector(*queryStr)

	logger := observability.NewDefaultLogger()
	adapter, _ := buildAdapter(records, logger)

	var mask vectorindex.FilterMask
	if *filterCond != "" {
		metadataBySlot := make([]filterlang.Metadata, len(records))
		for _, r := range records {
			if slot, ok := adapter.NodeToVectorId(r.NodeID); ok {
				metadataBySlot[slot] = filterlang.Metadata(r.Metadata)
			}
		}
		compiled, err := filterlang.Compile(*filterCond, metadataBySlot)
		if err != nil {
			fmt.Printf("Error compiling filter: %v\n", err)
			os.Exit(1)
		}
		mask = compiled
	}

	start := time.Now()
	var (
		results []vectorindex.NodeId
		err     error
	)
	if mask != nil {
		results, err = adapter.Search(query, *k, *lValue, mask)
	} else {
		results, err = adapter.AnnSearch(query, *k, *lValue)
	}
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d results in %s\n\n", len(results), elapsed)
	for i, nodeID := range results {
		fmt.Printf("%d. node_id=%d\n", i+1, nodeID)
	}
}

func handleInsert(args []string) {
	fs := flag.NewFlagSet("insert", flag.ExitOnError)
	var (
		vectorsPath = fs.String("vectors", "", "path to the already-built vectors JSON file (required)")
		newPath     = fs.String("new", "", "path to a JSON file of new vectors to insert (required)")
	)
	fs.Parse(args)

	if *vectorsPath == "" || *newPath == "" {
		fmt.Println("Error: -vectors and -new are required")
		fs.Usage()
		os.Exit(1)
	}

	records := loadRecords(*vectorsPath)
	newRecords := loadRecords(*newPath)

	logger := observability.NewDefaultLogger()
	adapter, _ := buildAdapter(records, logger)

	newVectors := make([]vectorindex.NodeVector, len(newRecords))
	for i, r := range newRecords {
		newVectors[i] = vectorindex.NodeVector{NodeID: r.NodeID, Vector: r.Vector}
	}

	if err := adapter.Insert(newVectors); err != nil {
		fmt.Printf("Insert failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Inserted %d vector(s); index now holds %d mappings\n", len(newVectors), adapter.Size())
}

func handleSoftDelete(args []string) {
	fs := flag.NewFlagSet("soft-delete", flag.ExitOnError)
	var (
		vectorsPath = fs.String("vectors", "", "path to a vectors JSON file (required)")
		nodeID      = fs.Uint64("node-id", 0, "node id to soft-delete (required)")
	)
	fs.Parse(args)

	if *vectorsPath == "" || *nodeID == 0 {
		fmt.Println("Error: -vectors and -node-id are required")
		fs.Usage()
		os.Exit(1)
	}

	records := loadRecords(*vectorsPath)
	logger := observability.NewDefaultLogger()
	adapter, _ := buildAdapter(records, logger)

	if err := adapter.SoftDelete([]vectorindex.NodeId{*nodeID}); err != nil {
		fmt.Printf("Soft-delete failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Soft-deleted node %d\n", *nodeID)
}

func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	vectorsPath := fs.String("vectors", "", "path to a vectors JSON file (required)")
	fs.Parse(args)

	if *vectorsPath == "" {
		fmt.Println("Error: -vectors is required")
		fs.Usage()
		os.Exit(1)
	}

	records := loadRecords(*vectorsPath)
	logger := observability.NewDefaultLogger()
	adapter, buildErr := buildAdapter(records, logger)
	if buildErr != nil {
		fmt.Printf("Build failed: %v\n", buildErr)
		os.Exit(1)
	}

	snapshot := adapter.StatsSnapshot()
	out, _ := json.MarshalIndent(snapshot, "", "  ")
	fmt.Println(string(out))
}

// buildAdapter constructs a Vamana-backed Adapter and builds it from
// records, logging the outcome the way the adapter's production caller
// would.
func buildAdapter(records []record, logger *observability.Logger) (*vectorindex.Adapter, error) {
	if len(records) == 0 {
		fmt.Println("Error: vectors file is empty")
		os.Exit(1)
	}
	dim := len(records[0].Vector)

	cfg := config.Default()
	vamanaCfg := vamana.DefaultConfig(dim)
	vamanaCfg.R = cfg.Index.R
	vamanaCfg.L = cfg.Index.L
	vamanaCfg.Alpha = cfg.Index.Alpha

	inner := vamana.New(vamanaCfg)
	adapter := vectorindex.NewAdapter(dim, inner, nil)

	vectors := make([]vectorindex.NodeVector, len(records))
	for i, r := range records {
		vectors[i] = vectorindex.NodeVector{NodeID: r.NodeID, Vector: r.Vector}
	}

	var buildErr error
	_ = logger.LogIndexOperation("build", "cli", func() error {
		buildErr = adapter.Build(vectors)
		return buildErr
	})
	return adapter, buildErr
}

func loadRecords(path string) []record {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", path, err)
		os.Exit(1)
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		fmt.Printf("Error parsing %s: %v\n", path, err)
		os.Exit(1)
	}
	return records
}

func parseVector(raw string) []float32 {
	var values []float64
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		fmt.Printf("Error parsing vector: %v\n", err)
		os.Exit(1)
	}
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

func showUsage() {
	fmt.Println(`vectoridx - local driver for the in-memory vector index adapter

Usage:
  vectoridx <command> [options]

Commands:
  search        Build an index from a vectors file and run a query
  insert        Build an index, then insert additional vectors
  soft-delete   Build an index, then soft-delete a node
  stats         Build an index and print its stats snapshot as JSON
  version       Show version
  help          Show this help message

Vectors files are JSON arrays of {"node_id": N, "vector": [...], "metadata": {...}}.

Examples:

  vectoridx search -vectors data.json -query '[0.1, 0.2, 0.3]' -k 10 -l 100

  vectoridx search -vectors data.json -query '[0.1, 0.2, 0.3]' \
    -filter 'category eq premium'

  vectoridx insert -vectors data.json -new new_vectors.json

  vectoridx soft-delete -vectors data.json -node-id 42

  vectoridx stats -vectors data.json`)
}
