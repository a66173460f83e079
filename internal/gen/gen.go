// Package gen provides the seeded linear-congruential stream that every
// task kernel draws its fixture data from. Identical seeds must yield
// byte-for-byte identical sequences in every implementation of the kernel
// contract, so the arithmetic is fixed 32-bit unsigned wraparound.
package gen

import (
	"math"
	"strconv"
)

// LCG parameters (Numerical Recipes). Changing either constant invalidates
// every stored reference hash.
const (
	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
)

// Advance computes the next LCG state. The returned value doubles as the
// pseudo-random output for that step.
func Advance(state uint32) uint32 {
	return state*lcgMultiplier + lcgIncrement
}

// Stream is a deterministic pseudo-random stream with explicit state.
// The zero value is a valid stream seeded with 0.
type Stream struct {
	state uint32
}

// New returns a stream seeded with the given value.
func New(seed uint32) *Stream {
	return &Stream{state: seed}
}

// Next advances the stream and returns the new value.
func (s *Stream) Next() uint32 {
	s.state = Advance(s.state)
	return s.state
}

// State returns the current stream state.
func (s *Stream) State() uint32 {
	return s.state
}

// Record is one generated fixture row for the JSON round-trip task.
type Record struct {
	ID    uint32 `json:"id"`
	Value int32  `json:"value"`
	Flag  bool   `json:"flag"`
	Name  string `json:"name"`
}

// Records produces n fixture records from a fresh stream seeded with seed.
// IDs are sequential starting at 1, Flag is true iff Value is even, and
// Name is "a" followed by the decimal ID. n == 0 yields an empty slice.
func Records(n int, seed uint32) []Record {
	records := make([]Record, 0, n)
	s := New(seed)
	for i := 0; i < n; i++ {
		v := s.Next()
		records = append(records, Record{
			ID:    uint32(i + 1),
			Value: int32(v),
			Flag:  v&1 == 0,
			Name:  "a" + strconv.Itoa(i+1),
		})
	}
	return records
}

// Bytes produces n pseudo-random bytes, one stream advance per byte, taking
// the low-order byte of each value.
func Bytes(n int, seed uint32) []byte {
	buf := make([]byte, n)
	s := New(seed)
	for i := range buf {
		buf[i] = byte(s.Next())
	}
	return buf
}

// Float32 maps a stream value into [min, max]. The normalization divides by
// MaxUint32 in float64 before narrowing, matching the reference kernels.
func Float32(v uint32, min, max float32) float32 {
	normalized := float64(v) / float64(math.MaxUint32)
	return float32(float64(min) + normalized*float64(max-min))
}
