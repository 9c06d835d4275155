package vectorindex_test

import (
	"math/rand"
	"testing"

	"github.com/minigu-db/vectorindex/internal/vamana"
	"github.com/minigu-db/vectorindex/internal/vectorindex"
)

// TestAdapter_WithVamanaInnerIndex exercises the adapter end to end
// against the real Vamana reference InnerIndex and the default
// SIMD-backed distance kernel, which the package-internal tests avoid
// so they can use raw, unaligned test slices.
func TestAdapter_WithVamanaInnerIndex(t *testing.T) {
	dim := vectorindex.Dim128
	numVectors := 300

	inner := vamana.New(vamana.DefaultConfig(dim))
	a := vectorindex.NewAdapter(dim, inner, vectorindex.L2SquaredSIMD)

	vectors := make([]vectorindex.NodeVector, numVectors)
	for i := range vectors {
		v := make([]float32, dim)
		for j := range v {
			v[j] = rand.Float32()
		}
		vectors[i] = vectorindex.NodeVector{NodeID: vectorindex.NodeId(i + 1), Vector: v}
	}

	if err := a.Build(vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.Size() != numVectors {
		t.Fatalf("expected size %d, got %d", numVectors, a.Size())
	}

	query := vectors[5].Vector
	results, err := a.AnnSearch(query, 5, 50)
	if err != nil {
		t.Fatalf("AnnSearch: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected non-empty search results")
	}

	found := false
	for _, r := range results {
		if r == vectorindex.NodeId(6) { // node id for vectors[5]
			found = true
		}
	}
	if !found {
		t.Errorf("expected node 6 (the query's own vector) among its own nearest neighbors, got %v", results)
	}

	candidates := make([]vectorindex.VectorId, 0, numVectors/2)
	for i := 0; i < numVectors; i += 2 {
		candidates = append(candidates, vectorindex.VectorId(i))
	}
	mask := vectorindex.NewBitsetMask(numVectors, candidates) // selectivity 0.5 -> post-filter
	if _, err := a.Search(query, 5, 50, mask); err != nil {
		t.Fatalf("Search with mask: %v", err)
	}

	stats := a.StatsSnapshot()
	if stats.VectorCount != uint64(numVectors) {
		t.Fatalf("expected stats.VectorCount == %d, got %d", numVectors, stats.VectorCount)
	}
	if stats.BuildID == "" {
		t.Error("expected a non-empty BuildID stamped on successful build")
	}
}
