package engine

import (
	"math/rand/v2"

	"lukechampine.com/frand"
)

// RandomSource is the uniform randomness the engine and search consume.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	// Float64 returns a value in [0, 1)
	Float64() float64
	// IntN returns a value in [0, n)
	IntN(n int) int
}

// NewSeededSource returns a reproducible source for tests and replays
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type cryptoSource struct{}

func (cryptoSource) Float64() float64 { return frand.Float64() }
func (cryptoSource) IntN(n int) int   { return frand.Intn(n) }

// NewCryptoSource returns an unseeded, goroutine-safe source for live play
func NewCryptoSource() RandomSource {
	return cryptoSource{}
}

// DeriveSeed draws a child seed from rng so forked sources stay reproducible
func DeriveSeed(rng RandomSource) uint64 {
	hi := uint64(rng.IntN(1 << 31))
	lo := uint64(rng.IntN(1 << 31))
	return hi<<31 | lo
}
