package vectorindex

import "container/heap"

// candidate is a (distance, slot) pair ordered by distance, mirroring
// the Candidate type the underlying graph-build algorithm uses for its
// own heaps.
type candidate struct {
	slot     VectorId
	distance float32
}

// maxHeapCandidates is a bounded max-heap on distance: the root is
// always the farthest of the k candidates retained so far, so a new
// candidate only needs one comparison against the root to know whether
// it displaces anything.
type maxHeapCandidates []candidate

func (h maxHeapCandidates) Len() int            { return len(h) }
func (h maxHeapCandidates) Less(i, j int) bool  { return h[i].distance > h[j].distance }
func (h maxHeapCandidates) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeapCandidates) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *maxHeapCandidates) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// bruteForceSearch linearly scans mask's candidates, computing exact
// squared L2 distance against each, and keeps the k closest in a
// bounded max-heap. Slots absent from idMap (a tolerable race with
// concurrent soft-delete) are dropped rather than failed. It returns
// results sorted ascending by distance together with the number of
// candidates it actually visited, for the caller's stats bookkeeping.
func bruteForceSearch(query AlignedQuery, k int, mask FilterMask, inner InnerIndex, idMap *IdMap, distFn DistanceFunc) ([]NodeId, int, error) {
	if k == 0 {
		return nil, 0, nil
	}

	q := query.AsSlice()
	h := make(maxHeapCandidates, 0, k)
	visited := 0

	for _, slot := range mask.IterCandidates() {
		stored, err := inner.GetAlignedVectorData(slot)
		if err != nil {
			if _, ok := idMap.LookupNode(slot); !ok {
				continue // soft-deleted since the mask was built
			}
			return nil, visited, errDiskANN(err)
		}
		visited++
		d := distFn(q, stored)

		if h.Len() < k {
			heap.Push(&h, candidate{slot: slot, distance: d})
		} else if d < h[0].distance {
			heap.Pop(&h)
			heap.Push(&h, candidate{slot: slot, distance: d})
		}
	}

	ordered := make([]candidate, h.Len())
	for i := len(ordered) - 1; i >= 0; i-- {
		ordered[i] = heap.Pop(&h).(candidate)
	}

	results := make([]NodeId, 0, len(ordered))
	for _, c := range ordered {
		if node, ok := idMap.LookupNode(c.slot); ok {
			results = append(results, node)
		}
	}
	return results, visited, nil
}
