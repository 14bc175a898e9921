package entropy

import (
	"encoding/binary"
	"math"
)

// Seeded is a deterministic Source driven by a splitmix64 generator,
// used by tests that need reproducible streams (spec §4.1's "seeded
// constructor"). It is not suitable for production use: the state is
// tiny and the stream is trivially predictable from the seed.
type Seeded struct {
	state uint64
}

// NewSeeded constructs a deterministic Source from a fixed seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{state: seed}
}

func (s *Seeded) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (s *Seeded) UniformFloat64() float64 {
	return float64(s.next()>>11) / (1 << 53)
}

func (s *Seeded) BoundedUint64(n uint64) uint64 {
	if n == 0 {
		panic("entropy: BoundedUint64(0)")
	}
	return s.next() % n
}

func (s *Seeded) WeightedIndex(weights []float64) (int, error) {
	return weightedIndex(weights, s.UniformFloat64())
}

func (s *Seeded) FillBytes(buf []byte) {
	for i := 0; i < len(buf); i += 8 {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], s.next())
		n := copy(buf[i:], b[:])
		_ = n
	}
}

func (s *Seeded) ExponentialInterval(rate float64) float64 {
	if rate <= 0 {
		panic("entropy: ExponentialInterval rate must be positive")
	}
	u := s.UniformFloat64()
	for u == 0 {
		u = s.UniformFloat64()
	}
	return -math.Log(u) / rate
}
