// Package random provides seed generation and seeded generators for dice and
// table picks.
//
// It uses crypto/rand to generate high-entropy seeds and math/rand for the
// reproducible sequences derived from them.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a generator for seed and the seed actually used. A zero
// seed is replaced by a fresh crypto seed so callers can log and replay it.
func NewRand(seed int64) (*rand.Rand, int64, error) {
	if seed == 0 {
		fresh, err := NewSeed()
		if err != nil {
			return nil, 0, err
		}
		seed = fresh
	}
	return rand.New(rand.NewSource(seed)), seed, nil
}
