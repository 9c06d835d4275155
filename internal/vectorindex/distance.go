package vectorindex

import (
	"fmt"

	"github.com/viterin/vek/vek32"
)

// DistanceFunc computes the squared L2 distance between two vectors of
// equal length. Implementations may assume both operands are 64-byte
// aligned; the adapter enforces that for queries via AlignedQuery and
// trusts the inner index to hand back aligned stored vectors.
type DistanceFunc func(query, stored []float32) float32

// Dim104, Dim128 and Dim256 are the vector widths the adapter is sized
// for. Neither L2SquaredSIMD nor the adapter checks a vector's width
// against this set; SupportedDimension is available to callers that
// want to.
const (
	Dim104 = 104
	Dim128 = 128
	Dim256 = 256
)

// SupportedDimension reports whether d is one of Dim104, Dim128 or
// Dim256. L2SquaredSIMD itself computes at any width.
func SupportedDimension(d int) bool {
	switch d {
	case Dim104, Dim128, Dim256:
		return true
	default:
		return false
	}
}

// L2SquaredSIMD is the default DistanceFunc, backed by viterin/vek's
// SIMD-accelerated routines. It panics if either operand is not
// 64-byte aligned — misalignment here is a caller bug, not a recoverable
// error, matching the "fails loudly" contract of the search path.
func L2SquaredSIMD(query, stored []float32) float32 {
	if len(query) != len(stored) {
		panic(fmt.Sprintf("vectorindex: distance operands of different length: %d vs %d", len(query), len(stored)))
	}
	if !isAligned(query) || !isAligned(stored) {
		panic("vectorindex: distance operand is not 64-byte aligned")
	}
	return vek32.Distance(query, stored)
}
