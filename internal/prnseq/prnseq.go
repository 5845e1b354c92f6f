// Package prn derives deterministic pseudorandom chip sequences from
// shared secrets. Transmitter and receiver never exchange chips; each
// side regenerates the sequence from its own secret, and despreading
// only succeeds when both secrets match.
//
// Secrets are a reproducibility mechanism, not cryptographic keys: the
// derivation is fully deterministic and offers no confidentiality.
package prnseq

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
)

// MinChipsPerBit is the floor for the spreading factor.
const MinChipsPerBit = 8

// ChipsPerBit returns the spreading factor used for a given transmit
// secret: four chips per secret character, never fewer than
// MinChipsPerBit.
func ChipsPerBit(secret string) int {
	if n := 4 * len(secret); n > MinChipsPerBit {
		return n
	}
	return MinChipsPerBit
}

// DeriveSeed maps a secret to a 64-bit generator seed: the first eight
// bytes of SHA-256(secret) read as a big-endian unsigned integer.
func DeriveSeed(secret string) uint64 {
	digest := sha256.Sum256([]byte(secret))
	return binary.BigEndian.Uint64(digest[:8])
}

// ChipSequence generates chipsPerBit chips drawn i.i.d. from {-1, +1},
// seeded from the secret. Identical inputs produce identical sequences
// on every call, process, and platform; the generator is a PCG with a
// fixed algorithm, so the sequence never depends on runtime state.
func ChipSequence(secret string, chipsPerBit int) []float64 {
	seed := DeriveSeed(secret)
	rng := rand.New(rand.NewPCG(seed, seed))

	chips := make([]float64, chipsPerBit)
	for i := range chips {
		if rng.Uint64()&1 == 1 {
			chips[i] = 1.0
		} else {
			chips[i] = -1.0
		}
	}
	return chips
}
