package util

import (
	"io"

	"github.com/pkg/errors"
)

// ReadVarBytes reads a variable length byte array prefixed by its compact
// size. maxAllowed bounds the declared length so a malformed message can
// not force a huge allocation; fieldName is used in the error message.
func ReadVarBytes(r io.Reader, maxAllowed uint32, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	if count > uint64(maxAllowed) {
		return nil, errors.Errorf("ReadVarBytes: %s is larger than the max allowed size, count %d, max %d",
			fieldName, count, maxAllowed)
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes serializes bytes to w prefixed by its compact size.
func WriteVarBytes(w io.Writer, bytes []byte) error {
	if err := WriteVarInt(w, uint64(len(bytes))); err != nil {
		return err
	}
	_, err := w.Write(bytes)
	return err
}
