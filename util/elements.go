package util

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ReadElements reads the fixed width little endian fields from r into the
// supplied pointers in order.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		if err := readElement(r, element); err != nil {
			return err
		}
	}
	return nil
}

func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		rv, err := BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = int32(rv)
	case *uint32:
		rv, err := BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = rv
	case *int64:
		rv, err := BinarySerializer.Uint64(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = int64(rv)
	case *uint64:
		rv, err := BinarySerializer.Uint64(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = rv
	case *uint8:
		rv, err := BinarySerializer.Uint8(r)
		if err != nil {
			return err
		}
		*e = rv
	case *Hash:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}
	default:
		return errors.Errorf("readElement: unsupported element type %T", element)
	}
	return nil
}

// WriteElements serializes the fixed width fields to w in little endian
// order.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		if err := writeElement(w, element); err != nil {
			return err
		}
	}
	return nil
}

func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case int32:
		return BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(e))
	case uint32:
		return BinarySerializer.PutUint32(w, binary.LittleEndian, e)
	case int64:
		return BinarySerializer.PutUint64(w, binary.LittleEndian, uint64(e))
	case uint64:
		return BinarySerializer.PutUint64(w, binary.LittleEndian, e)
	case uint8:
		return BinarySerializer.PutUint8(w, e)
	case Hash:
		_, err := w.Write(e[:])
		return err
	case *Hash:
		_, err := w.Write(e[:])
		return err
	case []byte:
		_, err := w.Write(e)
		return err
	}
	return errors.Errorf("writeElement: unsupported element type %T", element)
}
