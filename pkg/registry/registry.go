// Package registry maps a (graph, vertex type, property) triple to a
// built vector index adapter, standing in for the hand-off the
// stored-procedure layer performs once its property catalog has
// resolved a property name to a concrete index. It is adapted from the
// namespace-isolation bookkeeping the broader example pack uses for
// tenants: a budget (Limits) guards how many indexes and how much
// memory the registry will hold, the way a tenant manager guards vector
// and storage quotas.
package registry

import (
	"fmt"
	"sync"

	"github.com/minigu-db/vectorindex/internal/vectorindex"
)

// Key identifies a single vector index: one property of one vertex type
// in one graph.
type Key struct {
	Graph      string
	VertexType string
	Property   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s.%s.%s", k.Graph, k.VertexType, k.Property)
}

// Limits bounds how many indexes, and how much total memory across
// them, a Registry will accept. A zero value in either field means
// unlimited, matching the tenant quota convention this package is
// styled after.
type Limits struct {
	MaxIndexes      int
	MaxMemoryBytes  uint64
}

// entry pairs a registered adapter with the memory figure last reported
// for it, so the registry can enforce Limits.MaxMemoryBytes without
// re-snapshotting every adapter's stats on every registration.
type entry struct {
	adapter     *vectorindex.Adapter
	memoryBytes uint64
}

// Registry is the concurrency-safe (graph, vertex type, property) ->
// adapter map.
type Registry struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	limits  Limits
	usedMem uint64
}

// New creates an empty registry under the given limits.
func New(limits Limits) *Registry {
	return &Registry{
		entries: make(map[Key]*entry),
		limits:  limits,
	}
}

// Register adds adapter under key, failing if it already exists or
// would exceed the registry's limits. memoryBytes is the adapter's
// self-reported memory usage (from its Stats snapshot) at registration
// time.
func (r *Registry) Register(key Key, adapter *vectorindex.Adapter, memoryBytes uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("registry: index already registered for %s", key)
	}
	if r.limits.MaxIndexes > 0 && len(r.entries) >= r.limits.MaxIndexes {
		return fmt.Errorf("registry: index limit reached: max=%d", r.limits.MaxIndexes)
	}
	if r.limits.MaxMemoryBytes > 0 && r.usedMem+memoryBytes > r.limits.MaxMemoryBytes {
		return fmt.Errorf("registry: memory limit exceeded: current=%d, requested=%d, max=%d",
			r.usedMem, memoryBytes, r.limits.MaxMemoryBytes)
	}

	r.entries[key] = &entry{adapter: adapter, memoryBytes: memoryBytes}
	r.usedMem += memoryBytes
	return nil
}

// Get returns the adapter registered for key, if any.
func (r *Registry) Get(key Key) (*vectorindex.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	return e.adapter, true
}

// Unregister removes key's entry, freeing its counted memory.
func (r *Registry) Unregister(key Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[key]
	if !exists {
		return fmt.Errorf("registry: no index registered for %s", key)
	}
	delete(r.entries, key)
	r.usedMem -= e.memoryBytes
	return nil
}

// UpdateMemoryUsage refreshes the memory figure tracked for key, e.g.
// after a rebuild changes the adapter's footprint.
func (r *Registry) UpdateMemoryUsage(key Key, memoryBytes uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[key]
	if !exists {
		return fmt.Errorf("registry: no index registered for %s", key)
	}
	r.usedMem = r.usedMem - e.memoryBytes + memoryBytes
	e.memoryBytes = memoryBytes
	return nil
}

// List returns every registered key.
func (r *Registry) List() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]Key, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}

// UsedMemoryBytes is the sum of memory figures across all registered
// indexes.
func (r *Registry) UsedMemoryBytes() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usedMem
}
