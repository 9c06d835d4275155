package vectorindex

import "github.com/bits-and-blooms/bitset"

// FilterMask is the candidate bitmap handed in by a filter-condition
// compiler external to this package (see pkg/procedure). StrategySelector
// reads Selectivity and CandidateCount to pick a search strategy;
// BruteForceSearcher drains IterCandidates; PostFilterSearcher probes
// ContainsVector.
type FilterMask interface {
	// Selectivity is the fraction of the total vector population this
	// mask admits: in (0, 1] for a mask that admits anything, 0 for one
	// that admits nothing.
	Selectivity() float32
	// CandidateCount is the number of vectors this mask admits.
	CandidateCount() int
	// IterCandidates yields every admitted VectorId in ascending order.
	IterCandidates() []VectorId
	// ContainsVector reports whether slot is admitted.
	ContainsVector(slot VectorId) bool
}

// BitsetMask is a dense, bit-per-slot FilterMask backed by
// bits-and-blooms/bitset — the Go analogue of the bitvec-backed mask the
// adapter was originally designed against. total is the size of the
// universe the mask was computed over (needed to report selectivity).
type BitsetMask struct {
	bits  *bitset.BitSet
	total int
}

// NewBitsetMask builds a mask over a universe of size total where every
// slot in candidates is admitted. Indices outside [0, total) are
// ignored.
func NewBitsetMask(total int, candidates []VectorId) *BitsetMask {
	bs := bitset.New(uint(total))
	for _, c := range candidates {
		if int(c) < total {
			bs.Set(uint(c))
		}
	}
	return &BitsetMask{bits: bs, total: total}
}

// NewBitsetMaskFromBits wraps an already-populated bitset directly,
// letting callers build one incrementally.
func NewBitsetMaskFromBits(bits *bitset.BitSet, total int) *BitsetMask {
	return &BitsetMask{bits: bits, total: total}
}

func (m *BitsetMask) Selectivity() float32 {
	if m.total == 0 {
		return 0
	}
	return float32(m.bits.Count()) / float32(m.total)
}

func (m *BitsetMask) CandidateCount() int {
	return int(m.bits.Count())
}

func (m *BitsetMask) IterCandidates() []VectorId {
	out := make([]VectorId, 0, m.bits.Count())
	for i, ok := m.bits.NextSet(0); ok; i, ok = m.bits.NextSet(i + 1) {
		out = append(out, VectorId(i))
	}
	return out
}

func (m *BitsetMask) ContainsVector(slot VectorId) bool {
	return m.bits.Test(uint(slot))
}
