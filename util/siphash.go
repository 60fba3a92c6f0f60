package util

import "encoding/binary"

// SipHash-2-4, keyed by (k0, k1). Used for cheap salted bucket placement,
// not for collision resistance.

func rotl(x uint64, b uint8) uint64 {
	return (x << b) | (x >> (64 - b))
}

type sipState struct {
	v0, v1, v2, v3 uint64
}

func (s *sipState) round() {
	s.v0 += s.v1
	s.v1 = rotl(s.v1, 13)
	s.v1 ^= s.v0
	s.v0 = rotl(s.v0, 32)
	s.v2 += s.v3
	s.v3 = rotl(s.v3, 16)
	s.v3 ^= s.v2
	s.v0 += s.v3
	s.v3 = rotl(s.v3, 21)
	s.v3 ^= s.v0
	s.v2 += s.v1
	s.v1 = rotl(s.v1, 17)
	s.v1 ^= s.v2
	s.v2 = rotl(s.v2, 32)
}

func newSipState(k0, k1 uint64) sipState {
	return sipState{
		v0: 0x736f6d6570736575 ^ k0,
		v1: 0x646f72616e646f6d ^ k1,
		v2: 0x6c7967656e657261 ^ k0,
		v3: 0x7465646279746573 ^ k1,
	}
}

func (s *sipState) writeUint64(m uint64) {
	s.v3 ^= m
	s.round()
	s.round()
	s.v0 ^= m
}

func (s *sipState) finalize() uint64 {
	s.v2 ^= 0xff
	s.round()
	s.round()
	s.round()
	s.round()
	return s.v0 ^ s.v1 ^ s.v2 ^ s.v3
}

// SipHashU256 hashes a 32-byte digest with keys k0, k1.
func SipHashU256(k0, k1 uint64, h Hash) uint64 {
	s := newSipState(k0, k1)
	for i := 0; i < 4; i++ {
		s.writeUint64(binary.LittleEndian.Uint64(h[8*i : 8*i+8]))
	}
	s.writeUint64(32 << 56)
	return s.finalize()
}

// SipHashU256Extra hashes a 32-byte digest followed by a 4-byte extra word.
// The extra word distinguishes independent hash functions over the same key.
func SipHashU256Extra(k0, k1 uint64, h Hash, extra uint32) uint64 {
	s := newSipState(k0, k1)
	for i := 0; i < 4; i++ {
		s.writeUint64(binary.LittleEndian.Uint64(h[8*i : 8*i+8]))
	}
	s.writeUint64(36<<56 | uint64(extra))
	return s.finalize()
}
