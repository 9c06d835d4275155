package vectorindex

import (
	"errors"
	"sort"
)

// testFlatIndex is a tiny, exact (non-approximate) InnerIndex used to
// test the adapter's mapping, rollback, and dispatch logic in isolation
// from any particular ANN algorithm's approximation error. internal/vamana
// has its own recall-oriented test suite for that.
type testFlatIndex struct {
	vectors        [][]float32 // indexed by slot; nil once soft-deleted
	failBuild      bool
	failInsert     bool
	failSearch     bool
	failSoftDelete bool
}

func (f *testFlatIndex) BuildFromMemory(vectors [][]float32) error {
	if f.failBuild {
		return errors.New("simulated build failure")
	}
	f.vectors = append([][]float32(nil), vectors...)
	return nil
}

func (f *testFlatIndex) InsertFromMemory(vectors [][]float32) error {
	if f.failInsert {
		return errors.New("simulated insert failure")
	}
	f.vectors = append(f.vectors, vectors...)
	return nil
}

func (f *testFlatIndex) SoftDelete(slots []VectorId) error {
	if f.failSoftDelete {
		return errors.New("simulated soft-delete failure")
	}
	for _, s := range slots {
		f.vectors[s] = nil
	}
	return nil
}

func (f *testFlatIndex) Search(query []float32, k int, lValue int, out []VectorId) (int, error) {
	if f.failSearch {
		return 0, errors.New("simulated search failure")
	}
	type scored struct {
		slot VectorId
		dist float32
	}
	all := make([]scored, 0, len(f.vectors))
	for i, v := range f.vectors {
		if v == nil {
			continue
		}
		all = append(all, scored{VectorId(i), flatL2(query, v)})
	}
	sort.Slice(all, func(a, b int) bool { return all[a].dist < all[b].dist })

	n := k
	if n > len(all) {
		n = len(all)
	}
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = all[i].slot
	}
	return n, nil
}

func (f *testFlatIndex) GetAlignedVectorData(slot VectorId) ([]float32, error) {
	if int(slot) >= len(f.vectors) || f.vectors[slot] == nil {
		return nil, errors.New("slot not found")
	}
	return f.vectors[slot], nil
}

func flatL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// noAlignDistance is a DistanceFunc that skips the 64-byte alignment
// assertion L2SquaredSIMD makes, so adapter/bruteforce tests can use
// ordinary (unaligned) test slices without panicking.
func noAlignDistance(query, stored []float32) float32 {
	return flatL2(query, stored)
}
