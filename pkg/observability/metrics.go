package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus instrumentation for an adapter registry,
// labeled by the registry key string (graph.vertex_type.property) where
// per-index granularity is useful.
type Metrics struct {
	// Build / mutate operations
	BuildsTotal      *prometheus.CounterVec
	BuildDuration    *prometheus.HistogramVec
	InsertsTotal     *prometheus.CounterVec
	SoftDeletesTotal *prometheus.CounterVec
	InsertRollbacks  *prometheus.CounterVec

	// Index size / memory
	VectorCount *prometheus.GaugeVec
	MemoryBytes *prometheus.GaugeVec

	// Search
	SearchesTotal       *prometheus.CounterVec
	SearchDuration      *prometheus.HistogramVec
	BruteForceSearches  *prometheus.CounterVec
	PostFilterSearches  *prometheus.CounterVec
	PreFilterSearches   *prometheus.CounterVec
	ExpansionFactor     *prometheus.HistogramVec
	BruteForceCandidate *prometheus.HistogramVec

	// Registry
	RegisteredIndexes prometheus.Gauge
	RegistryMemory    prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		BuildsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectoridx_builds_total",
				Help: "Total number of index builds by index key and outcome",
			},
			[]string{"index", "status"},
		),
		BuildDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vectoridx_build_duration_seconds",
				Help:    "Index build duration in seconds",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"index"},
		),
		InsertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectoridx_inserts_total",
				Help: "Total number of vectors inserted by index key",
			},
			[]string{"index"},
		),
		SoftDeletesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectoridx_soft_deletes_total",
				Help: "Total number of vectors soft-deleted by index key",
			},
			[]string{"index"},
		),
		InsertRollbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectoridx_insert_rollbacks_total",
				Help: "Total number of insert operations rolled back after inner-index failure",
			},
			[]string{"index"},
		),

		VectorCount: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vectoridx_vector_count",
				Help: "Number of live mappings in an index",
			},
			[]string{"index"},
		),
		MemoryBytes: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vectoridx_memory_bytes",
				Help: "Self-reported memory usage of an index in bytes",
			},
			[]string{"index"},
		),

		SearchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectoridx_searches_total",
				Help: "Total number of ann_search calls by index key",
			},
			[]string{"index"},
		),
		SearchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vectoridx_search_duration_seconds",
				Help:    "Search latency in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"index"},
		),
		BruteForceSearches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectoridx_brute_force_searches_total",
				Help: "Total number of searches dispatched to the brute-force strategy",
			},
			[]string{"index"},
		),
		PostFilterSearches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectoridx_post_filter_searches_total",
				Help: "Total number of searches dispatched to the post-filter strategy",
			},
			[]string{"index"},
		),
		PreFilterSearches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vectoridx_pre_filter_searches_total",
				Help: "Total number of unfiltered searches",
			},
			[]string{"index"},
		),
		ExpansionFactor: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vectoridx_expansion_factor",
				Help:    "Post-filter expansion factor chosen per search",
				Buckets: []float64{2, 4, 8, 12, 16, 24, 32, 50},
			},
			[]string{"index"},
		),
		BruteForceCandidate: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vectoridx_brute_force_candidates",
				Help:    "Number of candidates scanned per brute-force search",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"index"},
		),

		RegisteredIndexes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vectoridx_registry_indexes",
				Help: "Total number of indexes currently registered",
			},
		),
		RegistryMemory: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vectoridx_registry_memory_bytes",
				Help: "Total self-reported memory usage across registered indexes",
			},
		),
	}
}

// RecordBuild records a build outcome and its duration.
func (m *Metrics) RecordBuild(index string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.BuildsTotal.WithLabelValues(index, status).Inc()
	m.BuildDuration.WithLabelValues(index).Observe(duration.Seconds())
}

// RecordInsert records a successful insert of count vectors.
func (m *Metrics) RecordInsert(index string, count int) {
	m.InsertsTotal.WithLabelValues(index).Add(float64(count))
}

// RecordInsertRollback records an insert that failed and was rolled
// back.
func (m *Metrics) RecordInsertRollback(index string) {
	m.InsertRollbacks.WithLabelValues(index).Inc()
}

// RecordSoftDelete records a soft-delete of count vectors.
func (m *Metrics) RecordSoftDelete(index string, count int) {
	m.SoftDeletesTotal.WithLabelValues(index).Add(float64(count))
}

// RecordSearch records one filtered search, its latency, and whether it
// was dispatched to brute force or post-filter.
func (m *Metrics) RecordSearch(index string, duration time.Duration, bruteForce bool, expansionFactor int) {
	m.SearchesTotal.WithLabelValues(index).Inc()
	m.SearchDuration.WithLabelValues(index).Observe(duration.Seconds())
	if bruteForce {
		m.BruteForceSearches.WithLabelValues(index).Inc()
		return
	}
	m.PostFilterSearches.WithLabelValues(index).Inc()
	m.ExpansionFactor.WithLabelValues(index).Observe(float64(expansionFactor))
}

// RecordPreFilterSearch records an unfiltered search.
func (m *Metrics) RecordPreFilterSearch(index string) {
	m.PreFilterSearches.WithLabelValues(index).Inc()
}

// RecordBruteForceCandidates records how many candidates a brute-force
// search scanned.
func (m *Metrics) RecordBruteForceCandidates(index string, candidates int) {
	m.BruteForceCandidate.WithLabelValues(index).Observe(float64(candidates))
}

// UpdateIndexSize updates the vector-count gauge for index.
func (m *Metrics) UpdateIndexSize(index string, size int) {
	m.VectorCount.WithLabelValues(index).Set(float64(size))
}

// UpdateIndexMemory updates the memory-usage gauge for index.
func (m *Metrics) UpdateIndexMemory(index string, bytes uint64) {
	m.MemoryBytes.WithLabelValues(index).Set(float64(bytes))
}

// UpdateRegistrySize updates the registry-wide index count and memory
// gauges.
func (m *Metrics) UpdateRegistrySize(indexes int, memoryBytes uint64) {
	m.RegisteredIndexes.Set(float64(indexes))
	m.RegistryMemory.Set(float64(memoryBytes))
}
