package util

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// WriteVarLenInt writes n in the MSB-base-128 encoding used for coin
// records: every byte but the last has bit 0x80 set, and each continuation
// adds one, so every integer has exactly one representation.
func WriteVarLenInt(w io.Writer, n uint64) error {
	tmp := make([]byte, 10)
	length := 0
	for {
		b := byte(n & 0x7f)
		if length != 0 {
			b |= 0x80
		}
		tmp[length] = b
		if n <= 0x7f {
			break
		}
		n = (n >> 7) - 1
		length++
	}
	for ; length >= 0; length-- {
		if err := BinarySerializer.PutUint8(w, tmp[length]); err != nil {
			return err
		}
	}
	return nil
}

// ReadVarLenInt reads an integer written by WriteVarLenInt.
func ReadVarLenInt(r io.Reader) (uint64, error) {
	var n uint64
	for {
		b, err := BinarySerializer.Uint8(r)
		if err != nil {
			return 0, err
		}
		if n > math.MaxUint64>>7 {
			return 0, errors.New("ReadVarLenInt: value overflows uint64")
		}
		n = n<<7 | uint64(b&0x7f)
		if b&0x80 == 0 {
			return n, nil
		}
		if n == math.MaxUint64 {
			return 0, errors.New("ReadVarLenInt: value overflows uint64")
		}
		n++
	}
}
