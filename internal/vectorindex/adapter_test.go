package vectorindex

import (
	"errors"
	"testing"
)

func vec(dim int, fill float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = fill
	}
	return v
}

func nv(id NodeId, dim int, fill float32) NodeVector {
	return NodeVector{NodeID: id, Vector: vec(dim, fill)}
}

func newTestAdapter(dim int) (*Adapter, *testFlatIndex) {
	inner := &testFlatIndex{}
	return NewAdapter(dim, inner, noAlignDistance), inner
}

func TestBuildThenSearch(t *testing.T) {
	a, _ := newTestAdapter(8)

	vectors := []NodeVector{
		{NodeID: 10, Vector: vec(8, 1)},
		{NodeID: 20, Vector: vec(8, 2)},
		{NodeID: 30, Vector: vec(8, 3)},
		{NodeID: 40, Vector: vec(8, 4)},
	}
	if err := a.Build(vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}

	query := vec(8, 2)
	results, err := a.Search(query, 1, 16, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0] != 20 {
		t.Fatalf("expected [20], got %v", results)
	}
}

func TestBuild_OverflowRejection(t *testing.T) {
	a, _ := newTestAdapter(4)

	const overflowID = uint64(1) << 32
	err := a.Build([]NodeVector{{NodeID: overflowID, Vector: vec(4, 1)}})
	if !errors.Is(err, ErrVertexIdOverflow) {
		t.Fatalf("expected VertexIdOverflow, got %v", err)
	}
	if a.Size() != 0 {
		t.Fatalf("expected size 0 after rejected build, got %d", a.Size())
	}
}

func TestBuild_DuplicateRejection(t *testing.T) {
	a, _ := newTestAdapter(4)

	err := a.Build([]NodeVector{
		{NodeID: 1, Vector: vec(4, 1)},
		{NodeID: 1, Vector: vec(4, 2)},
	})
	if !errors.Is(err, ErrDuplicateNodeId) {
		t.Fatalf("expected DuplicateNodeId, got %v", err)
	}
	if a.Size() != 0 {
		t.Fatalf("expected size 0 after rejected build, got %d", a.Size())
	}
}

func TestBuild_EmptyDataset(t *testing.T) {
	a, _ := newTestAdapter(4)
	if err := a.Build(nil); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("expected EmptyDataset, got %v", err)
	}
}

func TestSearch_BruteForceSelection(t *testing.T) {
	a, _ := newTestAdapter(4)
	vectors := make([]NodeVector, 100)
	for i := range vectors {
		vectors[i] = nv(NodeId(i+1), 4, float32(i))
	}
	if err := a.Build(vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}

	candidates := make([]VectorId, 5) // 5/100 = 0.05 selectivity, below threshold
	for i := range candidates {
		candidates[i] = VectorId(i)
	}
	mask := NewBitsetMask(100, candidates)

	before := a.StatsSnapshot().BruteForceSearches
	if _, err := a.Search(vec(4, 0), 3, 16, mask); err != nil {
		t.Fatalf("Search: %v", err)
	}
	after := a.StatsSnapshot().BruteForceSearches
	if after != before+1 {
		t.Fatalf("expected brute_force_searches to increment by 1, got %d -> %d", before, after)
	}
}

func TestSearch_PostFilterExpansion(t *testing.T) {
	a, inner := newTestAdapter(4)
	vectors := make([]NodeVector, 100)
	for i := range vectors {
		vectors[i] = nv(NodeId(i+1), 4, float32(i))
	}
	if err := a.Build(vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}

	candidates := make([]VectorId, 50) // selectivity 0.5
	for i := range candidates {
		candidates[i] = VectorId(i)
	}
	mask := NewBitsetMask(100, candidates)

	factor := expansionFactor(mask.Selectivity())
	if factor != 2 {
		t.Fatalf("expected expansion factor 2 for selectivity 0.5, got %d", factor)
	}

	_ = inner
	if _, err := a.Search(vec(4, 0), 3, 32, mask); err != nil {
		t.Fatalf("Search: %v", err)
	}
	snap := a.StatsSnapshot()
	if snap.PostFilterSearches != 1 {
		t.Fatalf("expected post_filter_searches == 1, got %d", snap.PostFilterSearches)
	}
}

func TestInsert_Rollback(t *testing.T) {
	a, inner := newTestAdapter(4)
	if err := a.Build([]NodeVector{{NodeID: 1, Vector: vec(4, 1)}}); err != nil {
		t.Fatalf("Build: %v", err)
	}

	inner.failInsert = true
	err := a.Insert([]NodeVector{
		{NodeID: 2, Vector: vec(4, 2)},
		{NodeID: 3, Vector: vec(4, 3)},
	})
	if err == nil {
		t.Fatalf("expected Insert to fail")
	}
	if a.Size() != 1 {
		t.Fatalf("expected size 1 after rollback, got %d", a.Size())
	}
	if _, ok := a.NodeToVectorId(2); ok {
		t.Fatalf("node 2 should not be mapped after rollback")
	}
	if _, ok := a.NodeToVectorId(3); ok {
		t.Fatalf("node 3 should not be mapped after rollback")
	}
	base := a.idMap.AllocateBlock(1)
	if base != 1 {
		t.Fatalf("expected next_slot to be rewound to 1, got next allocation %d", base)
	}
}

func TestSoftDelete_ThenSearch(t *testing.T) {
	a, _ := newTestAdapter(4)
	vectors := make([]NodeVector, 100)
	for i := range vectors {
		vectors[i] = nv(NodeId(i+1), 4, float32(i))
	}
	if err := a.Build(vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := a.SoftDelete([]NodeId{50}); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if a.Size() != 99 {
		t.Fatalf("expected size 99 after soft delete, got %d", a.Size())
	}

	results, err := a.AnnSearch(vec(4, 0), 10, 16)
	if err != nil {
		t.Fatalf("AnnSearch: %v", err)
	}
	for _, r := range results {
		if r == 50 {
			t.Fatalf("soft-deleted node 50 must never appear in search results")
		}
	}
}

func TestInsert_RequiresBuilt(t *testing.T) {
	a, _ := newTestAdapter(4)
	err := a.Insert([]NodeVector{{NodeID: 1, Vector: vec(4, 1)}})
	if !errors.Is(err, ErrIndexNotBuilt) {
		t.Fatalf("expected IndexNotBuilt, got %v", err)
	}
}

func TestSoftDelete_UnknownNode(t *testing.T) {
	a, _ := newTestAdapter(4)
	if err := a.Build([]NodeVector{{NodeID: 1, Vector: vec(4, 1)}}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	err := a.SoftDelete([]NodeId{999})
	if !errors.Is(err, ErrNodeIdNotFound) {
		t.Fatalf("expected NodeIdNotFound, got %v", err)
	}
	if a.Size() != 1 {
		t.Fatalf("unchanged size expected, got %d", a.Size())
	}
}

func TestInsertSoftDelete_RoundTrip(t *testing.T) {
	a, _ := newTestAdapter(4)
	if err := a.Build([]NodeVector{{NodeID: 1, Vector: vec(4, 1)}}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	before := a.Size()

	if err := a.Insert([]NodeVector{{NodeID: 2, Vector: vec(4, 2)}, {NodeID: 3, Vector: vec(4, 3)}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := a.SoftDelete([]NodeId{2, 3}); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if a.Size() != before {
		t.Fatalf("expected size to return to %d, got %d", before, a.Size())
	}
}

func TestSearch_KZero(t *testing.T) {
	a, inner := newTestAdapter(4)
	if err := a.Build([]NodeVector{{NodeID: 1, Vector: vec(4, 1)}}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	results, err := a.AnnSearch(vec(4, 1), 0, 16)
	if err != nil {
		t.Fatalf("AnnSearch: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result for k=0, got %v", results)
	}
	_ = inner
}

func TestSearch_InvalidDimension(t *testing.T) {
	a, _ := newTestAdapter(8)
	if err := a.Build([]NodeVector{{NodeID: 1, Vector: vec(8, 1)}}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	_, err := a.AnnSearch(vec(4, 1), 1, 16)
	if !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected InvalidDimension, got %v", err)
	}
}

func TestSearch_ResultsSortedAscending(t *testing.T) {
	a, _ := newTestAdapter(4)
	vectors := make([]NodeVector, 20)
	for i := range vectors {
		vectors[i] = nv(NodeId(i+1), 4, float32(i))
	}
	if err := a.Build(vectors); err != nil {
		t.Fatalf("Build: %v", err)
	}

	candidates := make([]VectorId, 20)
	for i := range candidates {
		candidates[i] = VectorId(i)
	}
	mask := NewBitsetMask(20, candidates) // selectivity 1.0, not below the 0.1 threshold, so routes to post-filter

	results, err := a.Search(vec(4, 10), 5, 16, mask)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	var lastDist float32 = -1
	for _, r := range results {
		slot, ok := a.NodeToVectorId(r)
		if !ok {
			t.Fatalf("result node %d has no slot mapping", r)
		}
		stored, _ := a.inner.GetAlignedVectorData(slot)
		d := flatL2(vec(4, 10), stored)
		if d < lastDist {
			t.Fatalf("results not sorted ascending by distance: %v", results)
		}
		lastDist = d
	}
}

func TestSave_Load_NotSupported(t *testing.T) {
	a, _ := newTestAdapter(4)
	if err := a.Save("/tmp/x"); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("expected NotSupported from Save, got %v", err)
	}
	if err := a.Load("/tmp/x"); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("expected NotSupported from Load, got %v", err)
	}
}
