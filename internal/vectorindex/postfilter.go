package vectorindex

import "math"

// expansionFactor computes the multiplier applied to k when requesting
// more results from the inner ANN stage to compensate for post-hoc
// filtering: clamp(ceil(max(1, 2 * -ln(selectivity))), 2, 50). It is
// monotonically non-increasing in selectivity.
func expansionFactor(selectivity float32) int {
	s := float64(selectivity)
	logFactor := math.Max(1.0, 2.0*-math.Log(s))
	factor := int(math.Ceil(logFactor))
	if factor < 2 {
		factor = 2
	}
	if factor > 50 {
		factor = 50
	}
	return factor
}

// postFilterSearch issues an expanded ANN query against inner and keeps
// the first k results whose resolved slot passes mask.ContainsVector.
// It returns the surviving results, the expansion factor used (for
// stats), and any error from the inner index.
func postFilterSearch(query AlignedQuery, k, lValue int, mask FilterMask, inner InnerIndex, idMap *IdMap) ([]NodeId, int, error) {
	totalNodes := idMap.Size()
	if totalNodes == 0 {
		return nil, 0, nil
	}

	factor := expansionFactor(mask.Selectivity())
	expandedK := k * factor
	if expandedK > totalNodes {
		expandedK = totalNodes
	}
	if expandedK == 0 {
		return nil, factor, nil
	}

	out := make([]VectorId, expandedK)
	n, err := inner.Search(query.AsSlice(), expandedK, lValue, out)
	if err != nil {
		return nil, factor, errSearch(err)
	}

	results := make([]NodeId, 0, k)
	for i := 0; i < n && len(results) < k; i++ {
		slot := out[i]
		if !mask.ContainsVector(slot) {
			continue
		}
		node, ok := idMap.LookupNode(slot)
		if !ok {
			continue
		}
		results = append(results, node)
	}
	return results, factor, nil
}
