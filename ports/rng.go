package ports

import "math/rand"

// RNG provides seeded random number streams for deterministic operations.
// Streams with the same label and base seed always produce identical draws,
// so resample tables and simulations are reproducible across runs.
type RNG interface {
	// Stream returns a deterministic generator for a named operation.
	Stream(label string) *rand.Rand
}
