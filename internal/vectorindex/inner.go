package vectorindex

// InnerIndex is the third-party graph-based ANN library this package
// wraps. Construction (build_inner_index(config) -> InnerIndex) and the
// L2 SIMD kernel itself are external collaborators out of scope here;
// this repository ships internal/vamana as a real, in-memory
// implementation of this interface so the adapter is exercisable without
// the external library.
type InnerIndex interface {
	// BuildFromMemory (re)builds the index from vectors given in
	// sorted-by-node-id order; vectors[i] occupies slot i.
	BuildFromMemory(vectors [][]float32) error

	// InsertFromMemory appends vectors to an already-built index. The
	// caller has already reserved a contiguous slot range for them via
	// the id map's allocator; InsertFromMemory must place vectors[i] at
	// the i-th slot of that reservation.
	InsertFromMemory(vectors [][]float32) error

	// SoftDelete marks slots as deleted without reclaiming them. Deleted
	// slots must not appear in subsequent Search results.
	SoftDelete(slots []VectorId) error

	// Search runs an approximate nearest-neighbor query and writes up to
	// len(out) result slots into out, returning how many were written.
	Search(query []float32, k int, lValue int, out []VectorId) (int, error)

	// GetAlignedVectorData returns the 64-byte-aligned stored vector for
	// slot, as required by BruteForceSearcher's distance computation.
	GetAlignedVectorData(slot VectorId) ([]float32, error)
}
