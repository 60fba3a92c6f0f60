package util

import (
	"crypto/rand"
	"encoding/binary"
)

// InsecureRand32 draws a uniform 32 bit value from the OS entropy source.
func InsecureRand32() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint32(buf[:])
}

// InsecureRand64 draws a uniform 64 bit value from the OS entropy source.
func InsecureRand64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// GetRandHash draws a random 256 bit digest, used as a process lifetime
// salt for keyed caches.
func GetRandHash() Hash {
	var h Hash
	if _, err := rand.Read(h[:]); err != nil {
		panic(err)
	}
	return h
}
