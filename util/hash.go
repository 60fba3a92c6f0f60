package util

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/ripemd160"
)

const (
	Hash256Size       = 32
	MaxHashStringSize = Hash256Size * 2
	Hash160Size       = 20
)

type Hash [Hash256Size]byte

var HashZero = Hash{}
var HashOne = Hash{0x01}

var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Calculate the hash of hasher over buf.
func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Hash160 calculates the hash ripemd160(sha256(b)).
func Hash160(buf []byte) []byte {
	return calcHash(calcHash(buf, sha256.New()), ripemd160.New())
}

func Ripemd160(buf []byte) []byte {
	return calcHash(buf, ripemd160.New())
}

func Sha1(buf []byte) [20]byte {
	return sha1.Sum(buf)
}

func Sha256Bytes(b []byte) []byte {
	digest := sha256.Sum256(b)
	return digest[:]
}

func Sha256Hash(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

func DoubleSha256Bytes(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

func DoubleSha256Hash(b []byte) Hash {
	first := sha256.Sum256(b)
	return Hash(sha256.Sum256(first[:]))
}

// String returns the hash in the reversed hex order used for txids.
func (h Hash) String() string {
	bytes := h.GetCloneBytes()
	for i := 0; i < Hash256Size/2; i++ {
		bytes[i], bytes[Hash256Size-1-i] = bytes[Hash256Size-1-i], bytes[i]
	}
	return hex.EncodeToString(bytes)
}

func (h *Hash) EncodeSize() uint32 {
	return Hash256Size
}

func (h *Hash) Serialize(w io.Writer) error {
	_, err := w.Write(h[:])
	return err
}

func (h *Hash) Unserialize(r io.Reader) error {
	_, err := io.ReadFull(r, h[:])
	return err
}

func (h *Hash) GetCloneBytes() []byte {
	bytes := make([]byte, Hash256Size)
	copy(bytes, h[:])
	return bytes
}

func (h *Hash) SetBytes(bytes []byte) error {
	if len(bytes) != Hash256Size {
		return fmt.Errorf("invalid hash length of %v, want %v", len(bytes), Hash256Size)
	}
	copy(h[:], bytes)
	return nil
}

func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

func (h *Hash) IsNull() bool {
	return *h == HashZero
}

// HashFromString parses a txid-order hex string. The string may be shorter
// than 64 characters; it is zero extended on the left, matching the behavior
// of uint256S in the original client.
func HashFromString(hexString string) (*Hash, error) {
	if len(hexString) > MaxHashStringSize {
		return nil, ErrHashStrSize
	}
	if len(hexString)%2 != 0 {
		hexString = "0" + hexString
	}
	buf, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, err
	}
	var h Hash
	for i, b := range buf {
		h[len(buf)-1-i] = b
	}
	return &h, nil
}
