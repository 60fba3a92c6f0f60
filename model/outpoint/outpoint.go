package outpoint

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cillian-osullivan/globenew/util"
)

// OutPoint identifies the output being spent by an input.
type OutPoint struct {
	Hash  util.Hash
	Index uint32
}

func NewOutPoint(hash util.Hash, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  hash,
		Index: index,
	}
}

func (outPoint *OutPoint) SerializeSize() uint32 {
	return outPoint.EncodeSize()
}

func (outPoint *OutPoint) Serialize(writer io.Writer) error {
	return outPoint.Encode(writer)
}

func (outPoint *OutPoint) Unserialize(reader io.Reader) error {
	return outPoint.Decode(reader)
}

func (outPoint *OutPoint) EncodeSize() uint32 {
	return outPoint.Hash.EncodeSize() + 4
}

func (outPoint *OutPoint) Encode(writer io.Writer) error {
	if _, err := writer.Write(outPoint.Hash[:]); err != nil {
		return err
	}
	return util.BinarySerializer.PutUint32(writer, binary.LittleEndian, outPoint.Index)
}

func (outPoint *OutPoint) Decode(reader io.Reader) (err error) {
	if _, err = io.ReadFull(reader, outPoint.Hash[:]); err != nil {
		return
	}
	outPoint.Index, err = util.BinarySerializer.Uint32(reader, binary.LittleEndian)
	return
}

func (outPoint *OutPoint) String() string {
	return fmt.Sprintf("OutPoint (hash:%s index: %d)", outPoint.Hash.String(), outPoint.Index)
}

func (outPoint *OutPoint) IsNull() bool {
	if outPoint == nil {
		return true
	}
	if outPoint.Index != math.MaxUint32 {
		return false
	}
	return outPoint.Hash.IsEqual(&util.HashZero)
}
