// Package entropy implements C1 of the Ghost Protocol core: a pluggable
// entropy source yielding uniform reals, bounded integers, weighted
// selection, and raw bytes, with a seeded-deterministic variant for
// tests and a CSPRNG-backed default for production use.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"golang.org/x/crypto/chacha20"

	"github.com/LashSesh/ghost-protocol/ghosterr"
)

// Source is the capability set every Ghost Protocol component draws
// randomness through. Implementations advance internal state only;
// they have no other side effects.
type Source interface {
	// UniformFloat64 returns a value in [0, 1).
	UniformFloat64() float64
	// BoundedUint64 returns a value in [0, n). Panics if n == 0, which
	// is a programmer error (callers must not pass an empty range).
	BoundedUint64(n uint64) uint64
	// WeightedIndex draws an index proportional to weights. weights
	// must be non-empty and non-negative; an all-zero slice is an
	// error, not a panic, since it can arise from live (non-programmer
	// controlled) data such as a neighbor table with no positive scores.
	WeightedIndex(weights []float64) (int, error)
	// FillBytes fills buf with random bytes.
	FillBytes(buf []byte)
	// ExponentialInterval draws an inter-arrival duration (in seconds)
	// from an exponential distribution with the given rate (events per
	// second). Used by the decoy traffic scheduler.
	ExponentialInterval(rate float64) float64
}

// csprng is the default production Source: a chacha20 stream cipher
// keyed from the OS entropy pool at construction time, matching the
// stream-cipher posture the teacher repo already pulls
// (golang.org/x/crypto's chacha20 family) for its AEAD layer.
type csprng struct {
	mu     sync.Mutex
	cipher *chacha20.Cipher
}

// New constructs the default CSPRNG-backed Source, seeding a chacha20
// stream cipher from crypto/rand.
func New() (Source, error) {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("entropy: seed key: %w", err)
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("entropy: seed nonce: %w", err)
	}
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, fmt.Errorf("entropy: init cipher: %w", err)
	}
	return &csprng{cipher: c}, nil
}

func (s *csprng) FillBytes(buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range buf {
		buf[i] = 0
	}
	s.cipher.XORKeyStream(buf, buf)
}

func (s *csprng) nextUint64() uint64 {
	var b [8]byte
	s.FillBytes(b[:])
	return binary.BigEndian.Uint64(b[:])
}

func (s *csprng) UniformFloat64() float64 {
	// 53 bits of mantissa precision, the same trick as math/rand's
	// float64 generator.
	return float64(s.nextUint64()>>11) / (1 << 53)
}

func (s *csprng) BoundedUint64(n uint64) uint64 {
	if n == 0 {
		panic("entropy: BoundedUint64(0)")
	}
	// Rejection sampling to avoid modulo bias.
	limit := math.MaxUint64 - (math.MaxUint64 % n)
	for {
		v := s.nextUint64()
		if v < limit {
			return v % n
		}
	}
}

func (s *csprng) WeightedIndex(weights []float64) (int, error) {
	return weightedIndex(weights, s.UniformFloat64())
}

func (s *csprng) ExponentialInterval(rate float64) float64 {
	if rate <= 0 {
		panic("entropy: ExponentialInterval rate must be positive")
	}
	u := s.UniformFloat64()
	for u == 0 {
		u = s.UniformFloat64()
	}
	return -math.Log(u) / rate
}

// weightedIndex implements the cumulative-sum draw algorithm of spec
// §4.1: build the cumulative sum C, draw u = uniform() * C[last], and
// return the lowest i with C[i] > u. Ties resolve to the lowest index
// because the scan always returns the first index whose cumulative
// sum strictly exceeds u.
func weightedIndex(weights []float64, u float64) (int, error) {
	if len(weights) == 0 {
		return 0, fmt.Errorf("entropy: weighted_index: %w: no weights", ghosterr.ErrInvalidState)
	}
	cum := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, fmt.Errorf("entropy: weighted_index: %w: weight[%d]=%v", ghosterr.ErrInvalidState, i, w)
		}
		total += w
		cum[i] = total
	}
	if total <= 0 {
		return 0, fmt.Errorf("entropy: weighted_index: no selectable weight")
	}
	target := u * total
	for i, c := range cum {
		if c > target {
			return i, nil
		}
	}
	return len(weights) - 1, nil
}
