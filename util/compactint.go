package util

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ReadVarInt reads a variable length integer from r and returns it as
// a uint64. The encoding is the canonical compact size used on the wire:
// values below 0xfd occupy a single byte, larger values carry a 0xfd,
// 0xfe or 0xff discriminator followed by 2, 4 or 8 little endian bytes.
func ReadVarInt(r io.Reader) (uint64, error) {
	discriminant, err := BinarySerializer.Uint8(r)
	if err != nil {
		return 0, err
	}

	var rv uint64
	switch discriminant {
	case 0xff:
		sv, err := BinarySerializer.Uint64(r, binary.LittleEndian)
		if err != nil {
			return 0, err
		}
		rv = sv
		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		if rv < 0x100000000 {
			return 0, errNonCanonicalVarInt(rv, discriminant, 0x100000000)
		}
	case 0xfe:
		sv, err := BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)
		if rv < 0x10000 {
			return 0, errNonCanonicalVarInt(rv, discriminant, 0x10000)
		}
	case 0xfd:
		sv, err := BinarySerializer.Uint16(r, binary.LittleEndian)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)
		if rv < 0xfd {
			return 0, errNonCanonicalVarInt(rv, discriminant, 0xfd)
		}
	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

func errNonCanonicalVarInt(rv uint64, discriminant uint8, min uint64) error {
	return errors.Errorf("ReadVarInt: non-canonical varint %x, discriminant %x must encode a value greater than %x",
		rv, discriminant, min-1)
}

// WriteVarInt serializes val to w using the compact size encoding.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		return BinarySerializer.PutUint8(w, uint8(val))
	}

	if val <= 0xffff {
		if err := BinarySerializer.PutUint8(w, 0xfd); err != nil {
			return err
		}
		return BinarySerializer.PutUint16(w, binary.LittleEndian, uint16(val))
	}

	if val <= 0xffffffff {
		if err := BinarySerializer.PutUint8(w, 0xfe); err != nil {
			return err
		}
		return BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(val))
	}

	if err := BinarySerializer.PutUint8(w, 0xff); err != nil {
		return err
	}
	return BinarySerializer.PutUint64(w, binary.LittleEndian, val)
}

// VarIntSerializeSize returns the number of bytes WriteVarInt would
// take to serialize val.
func VarIntSerializeSize(val uint64) uint32 {
	if val < 0xfd {
		return 1
	}
	if val <= 0xffff {
		return 3
	}
	if val <= 0xffffffff {
		return 5
	}
	return 9
}
