package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 supporting lock-free updates. Repetition workers
// accumulate their coverage into a shared matrix of these, so the matrix itself
// never needs a lock.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.bits.Store(math.Float64bits(val))
	return af
}

// AtomicRead returns the current value.
func (af *AtomicFloat64) AtomicRead() float64 {
	return math.Float64frombits(af.bits.Load())
}

// AtomicAdd makes a single attempt to add addend. If another writer changed the
// value in between, nothing is written and succeeded is false, so the caller may
// drop the update or recalculate.
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.bits.Load()
	newVal = math.Float64frombits(old) + addend
	succeeded = af.bits.CompareAndSwap(old, math.Float64bits(newVal))
	return
}

// Accumulate adds addend, retrying until no other writer interferes.
func (af *AtomicFloat64) Accumulate(addend float64) (newVal float64) {
	for {
		var ok bool
		if newVal, ok = af.AtomicAdd(addend); ok {
			return
		}
	}
}

// AtomicSet stores val.
func (af *AtomicFloat64) AtomicSet(val float64) {
	af.bits.Store(math.Float64bits(val))
}

// NewMatrix returns a width x height matrix of zeroed values, indexed [x][y].
func NewMatrix(width, height int) [][]*AtomicFloat64 {
	m := make([][]*AtomicFloat64, width)
	for x := range m {
		m[x] = make([]*AtomicFloat64, height)
		for y := range m[x] {
			m[x][y] = NewAtomicFloat64(0)
		}
	}
	return m
}

// Read copies a matrix into plain floats.
func Read(m [][]*AtomicFloat64) [][]float64 {
	out := make([][]float64, len(m))
	for x := range m {
		out[x] = make([]float64, len(m[x]))
		for y := range m[x] {
			out[x][y] = m[x][y].AtomicRead()
		}
	}
	return out
}
