package vectorindex

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// NodeId is the graph layer's opaque vertex identifier. It is 64-bit on
// the wire but must fit in 32 bits to address a slot in the inner index;
// see errVertexIdOverflow.
type NodeId = uint64

// VectorId is the 32-bit slot identifier addressing a vector's position
// inside the inner ANN index.
type VectorId = uint32

// IdMap is the bidirectional, concurrency-safe mapping between NodeId and
// VectorId described by the adapter's data model: two maps kept in sync
// under a single lock, plus a monotonic slot allocator. Reads take the
// read lock; every mutation that can fail validates before acquiring the
// write lock so a rejected batch never leaves partial state behind.
type IdMap struct {
	mu         sync.RWMutex
	nodeToSlot map[NodeId]VectorId
	slotToNode map[VectorId]NodeId
	nextSlot   uint32 // atomic
}

// NewIdMap returns an empty map with no slots allocated.
func NewIdMap() *IdMap {
	return &IdMap{
		nodeToSlot: make(map[NodeId]VectorId),
		slotToNode: make(map[VectorId]NodeId),
	}
}

// AssignSorted validates nodes (overflow, in-batch duplicates), sorts
// them by NodeId, replaces the map's contents wholesale with slots
// 0..n-1 in sorted order, and resets the slot allocator to n. It returns
// the permutation `order` such that the vector that was at index
// order[i] in the caller's original slice now occupies slot i — callers
// reorder their parallel vector slice with this permutation before
// handing it to the inner index's build_from_memory.
//
// On validation failure no mutation occurs.
func (m *IdMap) AssignSorted(nodes []NodeId) (order []int, err error) {
	n := len(nodes)
	order = make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return nodes[order[a]] < nodes[order[b]]
	})

	seen := make(map[NodeId]struct{}, n)
	for _, i := range order {
		nd := nodes[i]
		if nd > math.MaxUint32 {
			return nil, errVertexIdOverflow(nd)
		}
		if _, dup := seen[nd]; dup {
			return nil, errDuplicateNodeId(nd)
		}
		seen[nd] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodeToSlot = make(map[NodeId]VectorId, n)
	m.slotToNode = make(map[VectorId]NodeId, n)
	for slot, i := range order {
		nd := nodes[i]
		m.nodeToSlot[nd] = VectorId(slot)
		m.slotToNode[VectorId(slot)] = nd
	}
	atomic.StoreUint32(&m.nextSlot, uint32(n))
	return order, nil
}

// CheckInsertable validates a batch of nodes destined for insert:
// overflow, duplicates within the batch, and collisions with node ids
// already present. It takes only the read lock; InsertMappings must be
// called under appropriate external synchronization (the adapter's
// insert path allocates the slot block between these two calls, which is
// safe because the adapter holds its write lock across all three).
func (m *IdMap) CheckInsertable(nodes []NodeId) error {
	seen := make(map[NodeId]struct{}, len(nodes))
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, nd := range nodes {
		if nd > math.MaxUint32 {
			return errVertexIdOverflow(nd)
		}
		if _, dup := seen[nd]; dup {
			return errDuplicateNodeId(nd)
		}
		seen[nd] = struct{}{}
		if _, exists := m.nodeToSlot[nd]; exists {
			return errDuplicateNodeId(nd)
		}
	}
	return nil
}

// AllocateBlock draws n contiguous slots from the monotonic counter and
// returns the base slot. Concurrent callers observe disjoint ranges.
func (m *IdMap) AllocateBlock(n uint32) VectorId {
	base := atomic.AddUint32(&m.nextSlot, n) - n
	return VectorId(base)
}

// RollbackBlock undoes an AllocateBlock of n slots by subtracting n from
// the counter unconditionally. It does not check whether another
// allocation has advanced the counter since; the adapter's own rollback
// path runs under its write lock, so no other allocation can interleave.
func (m *IdMap) RollbackBlock(n uint32) {
	atomic.AddUint32(&m.nextSlot, ^uint32(n-1))
}

// InsertMappings records node->slot and slot->node for a contiguous
// block starting at baseSlot, in the order given by nodes.
func (m *IdMap) InsertMappings(nodes []NodeId, baseSlot VectorId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, nd := range nodes {
		slot := baseSlot + VectorId(i)
		m.nodeToSlot[nd] = slot
		m.slotToNode[slot] = nd
	}
}

// RemoveMappings is InsertMappings's rollback counterpart.
func (m *IdMap) RemoveMappings(nodes []NodeId, baseSlot VectorId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, nd := range nodes {
		slot := baseSlot + VectorId(i)
		delete(m.nodeToSlot, nd)
		delete(m.slotToNode, slot)
	}
}

// SlotsForNodes resolves each of nodes to its current slot, failing with
// NodeIdNotFound on the first miss. It performs no mutation, which lets
// soft_delete validate an entire batch before touching anything.
func (m *IdMap) SlotsForNodes(nodes []NodeId) ([]VectorId, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	slots := make([]VectorId, len(nodes))
	for i, nd := range nodes {
		slot, ok := m.nodeToSlot[nd]
		if !ok {
			return nil, errNodeIdNotFound(nd)
		}
		slots[i] = slot
	}
	return slots, nil
}

// RemoveByNodes deletes both directions of the mapping for each node
// that is currently present; unknown ids are ignored (callers validate
// with SlotsForNodes first when that matters).
func (m *IdMap) RemoveByNodes(nodes []NodeId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, nd := range nodes {
		if slot, ok := m.nodeToSlot[nd]; ok {
			delete(m.nodeToSlot, nd)
			delete(m.slotToNode, slot)
		}
	}
}

// LookupSlot returns the slot currently mapped to node, if any.
func (m *IdMap) LookupSlot(node NodeId) (VectorId, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	slot, ok := m.nodeToSlot[node]
	return slot, ok
}

// LookupNode returns the node currently mapped to slot, if any.
func (m *IdMap) LookupNode(slot VectorId) (NodeId, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	node, ok := m.slotToNode[slot]
	return node, ok
}

// Clear resets both maps and the slot allocator to empty.
func (m *IdMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodeToSlot = make(map[NodeId]VectorId)
	m.slotToNode = make(map[VectorId]NodeId)
	atomic.StoreUint32(&m.nextSlot, 0)
}

// Size is the number of live node->slot mappings.
func (m *IdMap) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodeToSlot)
}

// MappingCount is equivalent to Size; both directions of a well-formed
// map always agree in length, so this is provided purely to mirror the
// adapter's own accessor surface.
func (m *IdMap) MappingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slotToNode)
}
