package models

import (
	"crypto/rand"
	"encoding/binary"
)

// RandomSeed draws a random non-negative 32-bit seed for image generation.
// Providers accept 32-bit seeds, so the value is masked rather than drawn
// from the full int64 range.
func RandomSeed() int64 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Better a fixed seed than a panic mid-request.
		return 42
	}
	return int64(binary.LittleEndian.Uint32(buf[:]) & 0x7FFFFFFF)
}
