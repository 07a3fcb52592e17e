package random

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"
	"sync"
)

// float64Precision is the number of random bits used for Float64 (the mantissa width)
const float64Precision = 1 << 53

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Float64 returns a uniform random value in [0, 1)
	Float64() float64

	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Float64 returns a cryptographically random value in [0, 1)
func (r *CryptoRandom) Float64() float64 {
	return float64(r.Intn(float64Precision)) / float64Precision
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	max := big.NewInt(int64(n))
	result, err := rand.Int(rand.Reader, max)
	if err != nil {
		// Fall back to 0 on error (should never happen with crypto/rand)
		return 0
	}
	return int(result.Int64())
}

// SeededRandom implements Random with a seeded PCG generator.
// The same seed and the same sequence of calls yield the same values.
type SeededRandom struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

// NewSeeded creates a deterministic generator for the given seed
func NewSeeded(seed uint64) *SeededRandom {
	return NewSeededStream(seed, 0)
}

// NewSeededStream creates a deterministic generator for one of several
// independent streams under the same seed. Stream 0 is NewSeeded(seed).
func NewSeededStream(seed, stream uint64) *SeededRandom {
	return &SeededRandom{
		rng: mathrand.New(mathrand.NewPCG(seed, (seed^0x9e3779b97f4a7c15)+stream)),
	}
}

// Float64 returns a pseudo-random value in [0, 1)
func (r *SeededRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Intn returns a pseudo-random int in [0, n)
func (r *SeededRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
