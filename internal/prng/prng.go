// Package prng gives each driver worker its own independent,
// deterministic random stream from a single run seed.
//
// Grounded on internal/world/noise.go's hash2: the same SplitMix64
// constants and mixing steps, generalized from a one-shot lattice hash
// into a full rand.Source64 so each worker gets a standard
// *rand.Rand (spec.md sec 5: per-photon independence requires
// per-worker streams that never share state, not a single locked
// source).
package prng

import "math/rand"

// splitMix64 is a minimal stream cipher-like generator: each call to
// Uint64 advances the state and mixes it, the same avalanche steps
// internal/world/noise.go's hash2 applies to a single (x, z, seed)
// triple.
type splitMix64 struct {
	state uint64
}

// NewSource returns a rand.Source64 seeded deterministically from the
// run seed and worker index. The combined seed is hashed once, so two
// workers started from the same run seed begin at unrelated points of
// the generator's sequence instead of a few draws apart.
func NewSource(runSeed int64, workerIndex int) rand.Source64 {
	s := &splitMix64{state: uint64(runSeed) + uint64(workerIndex)*0x9E3779B97F4A7C15}
	s.state = s.Uint64()
	return s
}

func (s *splitMix64) Uint64() uint64 {
	s.state += 0x9E3779B97F4A7C15
	v := s.state
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

func (s *splitMix64) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

func (s *splitMix64) Seed(seed int64) {
	s.state = uint64(seed)
}

// New returns a ready-to-use *rand.Rand for worker workerIndex of a run
// seeded with runSeed.
func New(runSeed int64, workerIndex int) *rand.Rand {
	return rand.New(NewSource(runSeed, workerIndex))
}
