package rng

import (
	"hash/fnv"
	"math/rand"
)

// Source derives named deterministic random streams from a single base seed.
// Every stream label maps to its own generator, so independent operations
// (resampling, calibration, simulation) never share draw sequences while the
// whole run stays reproducible from one seed.
type Source struct {
	seed int64
}

// New creates a stream source with the given base seed.
func New(seed int64) *Source {
	return &Source{seed: seed}
}

// Stream returns a deterministic generator for a named operation.
func (s *Source) Stream(label string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(label))
	derived := s.seed ^ int64(h.Sum64())
	return rand.New(rand.NewSource(derived))
}

// Seed returns the base seed the source was built from.
func (s *Source) Seed() int64 {
	return s.seed
}
