package vectorindex

import "time"

// NodeVector pairs a graph vertex id with its property vector, the unit
// of work build/insert operate over.
type NodeVector struct {
	NodeID NodeId
	Vector []float32
}

// Adapter is the public entry point: it owns the inner ANN index, the
// IdMap, and the stats tracker, and implements build / insert /
// soft_delete / search exactly as described by the data model. A single
// writeMu serializes mutating operations (build/insert/soft_delete);
// reads of the id map and stats are independently lock-protected and so
// remain concurrent with any in-flight mutation, matching the
// "concurrent readers, exclusive-enough writers" scheduling model.
type Adapter struct {
	dimension int
	distFn    DistanceFunc
	inner     InnerIndex
	idMap     *IdMap
	stats     *statsTracker

	writeMu chan struct{} // 1-buffered channel used as a non-reentrant mutex
}

// NewAdapter wraps inner, an already-constructed InnerIndex, for vectors
// of the given dimension. distFn defaults to L2SquaredSIMD if nil.
func NewAdapter(dimension int, inner InnerIndex, distFn DistanceFunc) *Adapter {
	if distFn == nil {
		distFn = L2SquaredSIMD
	}
	wm := make(chan struct{}, 1)
	wm <- struct{}{}
	return &Adapter{
		dimension: dimension,
		distFn:    distFn,
		inner:     inner,
		idMap:     NewIdMap(),
		stats:     newStatsTracker(),
		writeMu:   wm,
	}
}

func (a *Adapter) lockWrite()   { <-a.writeMu }
func (a *Adapter) unlockWrite() { a.writeMu <- struct{}{} }

// unbuilt mirrors the underlying library's own "unbuilt" check: the
// index is considered unbuilt whenever no node currently has a live
// mapping, whether because build was never called or because every
// vector has since been soft-deleted.
func (a *Adapter) unbuilt() bool { return a.idMap.Size() == 0 }

// Build (re)builds the index from vectors, which must be non-empty and
// free of duplicate or overflowing node ids. Empty input is rejected
// before anything is touched; otherwise the id map is cleared first, so
// a build that fails validation or in the inner index leaves no node
// mapped.
func (a *Adapter) Build(vectors []NodeVector) error {
	if len(vectors) == 0 {
		return &Error{Kind: KindEmptyDataset}
	}

	a.lockWrite()
	defer a.unlockWrite()

	a.idMap.Clear()

	nodes := make([]NodeId, len(vectors))
	for i, v := range vectors {
		nodes[i] = v.NodeID
	}

	order, err := a.idMap.AssignSorted(nodes)
	if err != nil {
		return err
	}

	sorted := make([][]float32, len(vectors))
	for slot, origIdx := range order {
		sorted[slot] = vectors[origIdx].Vector
	}

	start := time.Now()
	if err := a.inner.BuildFromMemory(sorted); err != nil {
		a.idMap.Clear()
		return errBuild(err)
	}
	elapsed := time.Since(start)

	a.stats.recordBuild(uint64(len(vectors)), uint64(elapsed.Milliseconds()), 0)
	return nil
}

// Insert appends vectors to an already-built index. An empty batch is a
// no-op success. On any failure from the inner index, the slot block and
// mappings just reserved are rolled back so size() and the slot
// allocator both read as if Insert had never been called.
func (a *Adapter) Insert(vectors []NodeVector) error {
	if len(vectors) == 0 {
		return nil
	}

	a.lockWrite()
	defer a.unlockWrite()

	if a.unbuilt() {
		return &Error{Kind: KindIndexNotBuilt}
	}

	nodes := make([]NodeId, len(vectors))
	for i, v := range vectors {
		nodes[i] = v.NodeID
	}
	if err := a.idMap.CheckInsertable(nodes); err != nil {
		return err
	}

	n := uint32(len(vectors))
	base := a.idMap.AllocateBlock(n)
	a.idMap.InsertMappings(nodes, base)

	vecs := make([][]float32, len(vectors))
	for i, v := range vectors {
		vecs[i] = v.Vector
	}

	if err := a.inner.InsertFromMemory(vecs); err != nil {
		a.idMap.RemoveMappings(nodes, base)
		a.idMap.RollbackBlock(n)
		return errBuild(err)
	}

	a.stats.setVectorCount(uint64(a.idMap.Size()))
	return nil
}

// SoftDelete marks nodeIDs as deleted. An empty batch is a no-op
// success. Every id is validated against the current mapping before any
// mutation, so a request naming an unknown id leaves the index
// untouched.
func (a *Adapter) SoftDelete(nodeIDs []NodeId) error {
	if len(nodeIDs) == 0 {
		return nil
	}

	a.lockWrite()
	defer a.unlockWrite()

	if a.unbuilt() {
		return &Error{Kind: KindIndexNotBuilt}
	}

	slots, err := a.idMap.SlotsForNodes(nodeIDs)
	if err != nil {
		return err
	}

	if err := a.inner.SoftDelete(slots); err != nil {
		return errDiskANN(err)
	}

	a.idMap.RemoveByNodes(nodeIDs)
	a.stats.setVectorCount(uint64(a.idMap.Size()))
	return nil
}

// AnnSearch runs an unfiltered approximate nearest-neighbor query.
func (a *Adapter) AnnSearch(query []float32, k, lValue int) ([]NodeId, error) {
	if a.unbuilt() {
		return nil, &Error{Kind: KindIndexNotBuilt}
	}
	if len(query) != a.dimension {
		return nil, errInvalidDimension(a.dimension, len(query))
	}

	effectiveK := k
	if sz := a.idMap.Size(); effectiveK > sz {
		effectiveK = sz
	}
	if effectiveK <= 0 {
		return []NodeId{}, nil
	}

	aligned := NewAlignedQuery(query)
	out := make([]VectorId, effectiveK)
	n, err := a.inner.Search(aligned.AsSlice(), effectiveK, lValue, out)
	if err != nil {
		return nil, errSearch(err)
	}

	results := make([]NodeId, 0, n)
	for i := 0; i < n; i++ {
		node, ok := a.idMap.LookupNode(out[i])
		if !ok {
			return nil, errVectorIdNotFound(out[i])
		}
		results = append(results, node)
	}
	a.stats.incSearchCount()
	return results, nil
}

// Search runs a filtered nearest-neighbor query. A nil mask delegates
// directly to AnnSearch; otherwise StrategySelector picks brute force or
// post-filter expansion from the mask's selectivity.
func (a *Adapter) Search(query []float32, k, lValue int, mask FilterMask) ([]NodeId, error) {
	if mask == nil {
		return a.AnnSearch(query, k, lValue)
	}
	if a.unbuilt() {
		return nil, &Error{Kind: KindIndexNotBuilt}
	}
	if len(query) != a.dimension {
		return nil, errInvalidDimension(a.dimension, len(query))
	}
	if k == 0 || mask.CandidateCount() == 0 {
		return []NodeId{}, nil
	}

	aligned := NewAlignedQuery(query)

	switch selectStrategy(mask) {
	case strategyBruteForce:
		results, visited, err := bruteForceSearch(aligned, k, mask, a.inner, a.idMap, a.distFn)
		if err != nil {
			return nil, err
		}
		a.stats.incBruteForce(uint64(visited))
		return results, nil
	default:
		results, factor, err := postFilterSearch(aligned, k, lValue, mask, a.inner, a.idMap)
		if err != nil {
			return nil, err
		}
		a.stats.incPostFilter(factor)
		return results, nil
	}
}

// Save is declared but not implemented; the adapter is strictly
// in-memory.
func (a *Adapter) Save(path string) error {
	return errNotSupported("save is not yet implemented")
}

// Load is declared but not implemented; the adapter is strictly
// in-memory.
func (a *Adapter) Load(path string) error {
	return errNotSupported("load is not yet implemented")
}

// GetDimension returns the fixed vector width this adapter was
// constructed with.
func (a *Adapter) GetDimension() int { return a.dimension }

// Size is the number of live (non-soft-deleted) vectors.
func (a *Adapter) Size() int { return a.idMap.Size() }

// MappingCount mirrors Size; see IdMap.MappingCount.
func (a *Adapter) MappingCount() int { return a.idMap.MappingCount() }

// NodeToVectorId resolves a single node id to its current slot, if any.
func (a *Adapter) NodeToVectorId(node NodeId) (VectorId, bool) {
	return a.idMap.LookupSlot(node)
}

// StatsSnapshot returns a cloned copy of the current statistics.
func (a *Adapter) StatsSnapshot() Stats { return a.stats.Snapshot() }
