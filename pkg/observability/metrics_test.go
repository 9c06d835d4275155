package observability

import (
	"errors"
	"testing"
	"time"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	t.Run("NewMetrics", func(t *testing.T) {
		if m == nil {
			t.Fatal("NewMetrics returned nil")
		}
		if m.BuildsTotal == nil {
			t.Error("BuildsTotal not initialized")
		}
		if m.SearchesTotal == nil {
			t.Error("SearchesTotal not initialized")
		}
		if m.VectorCount == nil {
			t.Error("VectorCount not initialized")
		}
		if m.RegisteredIndexes == nil {
			t.Error("RegisteredIndexes not initialized")
		}
	})

	t.Run("RecordBuild", func(t *testing.T) {
		m.RecordBuild("g.V.emb", nil, 500*time.Millisecond)
		m.RecordBuild("g.V.emb", errors.New("boom"), 10*time.Millisecond)
	})

	t.Run("RecordInsert", func(t *testing.T) {
		m.RecordInsert("g.V.emb", 1)
		for i := 0; i < 10; i++ {
			m.RecordInsert("g.V.emb", 5)
		}
	})

	t.Run("RecordInsertRollback", func(t *testing.T) {
		m.RecordInsertRollback("g.V.emb")
	})

	t.Run("RecordSoftDelete", func(t *testing.T) {
		m.RecordSoftDelete("g.V.emb", 3)
	})

	t.Run("RecordSearch", func(t *testing.T) {
		m.RecordSearch("g.V.emb", 2*time.Millisecond, true, 0)
		m.RecordSearch("g.V.emb", 5*time.Millisecond, false, 8)
	})

	t.Run("RecordPreFilterSearch", func(t *testing.T) {
		m.RecordPreFilterSearch("g.V.emb")
	})

	t.Run("RecordBruteForceCandidates", func(t *testing.T) {
		m.RecordBruteForceCandidates("g.V.emb", 42)
	})

	t.Run("UpdateIndexSize", func(t *testing.T) {
		m.UpdateIndexSize("g.V.emb", 1000)
		m.UpdateIndexSize("g.V.emb", 1500)
	})

	t.Run("UpdateIndexMemory", func(t *testing.T) {
		m.UpdateIndexMemory("g.V.emb", 1024*1024*100)
	})

	t.Run("UpdateRegistrySize", func(t *testing.T) {
		m.UpdateRegistrySize(3, 1024*1024*300)
	})
}

func TestConcurrentMetricUpdates(t *testing.T) {
	m := NewMetrics()
	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 10; j++ {
				m.RecordInsert("g.V.emb", 1)
				m.UpdateIndexSize("g.V.emb", j)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
