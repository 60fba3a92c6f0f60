package txin

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"

	"github.com/cillian-osullivan/globenew/model/outpoint"
	"github.com/cillian-osullivan/globenew/model/script"
	"github.com/cillian-osullivan/globenew/util"
)

// TxIn spends one previous output. The witness stack is carried out of
// band of the legacy serialization and only appears on the wire when the
// transaction uses the extended format.
type TxIn struct {
	PreviousOutPoint *outpoint.OutPoint
	scriptSig        *script.Script
	Sequence         uint32
	witness          [][]byte
}

func NewTxIn(previousOutPoint *outpoint.OutPoint, scriptSig *script.Script, sequence uint32) *TxIn {
	txIn := TxIn{PreviousOutPoint: previousOutPoint, scriptSig: scriptSig, Sequence: sequence}
	if txIn.PreviousOutPoint == nil {
		txIn.PreviousOutPoint = outpoint.NewOutPoint(util.Hash{}, math.MaxUint32)
	}
	return &txIn
}

func (txIn *TxIn) SerializeSize() uint32 {
	return txIn.EncodeSize()
}

func (txIn *TxIn) Unserialize(reader io.Reader) error {
	return txIn.Decode(reader)
}

func (txIn *TxIn) Serialize(writer io.Writer) error {
	return txIn.Encode(writer)
}

func (txIn *TxIn) EncodeSize() uint32 {
	// previousOutPoint EncodeSize + scriptSig EncodeSize + Sequence 4 bytes
	return txIn.PreviousOutPoint.EncodeSize() + txIn.scriptSig.EncodeSize() + 4
}

func (txIn *TxIn) Encode(writer io.Writer) error {
	if err := txIn.PreviousOutPoint.Encode(writer); err != nil {
		return err
	}
	if err := txIn.scriptSig.Encode(writer); err != nil {
		return err
	}
	return util.BinarySerializer.PutUint32(writer, binary.LittleEndian, txIn.Sequence)
}

func (txIn *TxIn) Decode(reader io.Reader) error {
	if err := txIn.PreviousOutPoint.Decode(reader); err != nil {
		return err
	}

	bCoinBase := txIn.PreviousOutPoint.Index == 0xffffffff &&
		txIn.PreviousOutPoint.Hash == util.HashZero
	scriptSig := script.NewEmptyScript()
	if err := scriptSig.Decode(reader, bCoinBase); err != nil {
		return err
	}
	txIn.scriptSig = scriptSig
	return util.ReadElements(reader, &txIn.Sequence)
}

// EncodeWitness writes the input's witness stack in wire form.
func (txIn *TxIn) EncodeWitness(writer io.Writer) error {
	if err := util.WriteVarInt(writer, uint64(len(txIn.witness))); err != nil {
		return err
	}
	for _, item := range txIn.witness {
		if err := util.WriteVarBytes(writer, item); err != nil {
			return err
		}
	}
	return nil
}

// DecodeWitness reads the input's witness stack from wire form.
func (txIn *TxIn) DecodeWitness(reader io.Reader) error {
	count, err := util.ReadVarInt(reader)
	if err != nil {
		return err
	}
	witness := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		item, err := util.ReadVarBytes(reader, script.MaxMessagePayload, "witness item")
		if err != nil {
			return err
		}
		witness = append(witness, item)
	}
	txIn.witness = witness
	return nil
}

func (txIn *TxIn) WitnessEncodeSize() uint32 {
	size := util.VarIntSerializeSize(uint64(len(txIn.witness)))
	for _, item := range txIn.witness {
		size += util.VarIntSerializeSize(uint64(len(item))) + uint32(len(item))
	}
	return size
}

func (txIn *TxIn) GetScriptSig() *script.Script {
	return txIn.scriptSig
}

func (txIn *TxIn) SetScriptSig(scriptSig *script.Script) {
	txIn.scriptSig = scriptSig
}

func (txIn *TxIn) GetWitness() [][]byte {
	return txIn.witness
}

func (txIn *TxIn) SetWitness(witness [][]byte) {
	txIn.witness = witness
}

func (txIn *TxIn) HasWitness() bool {
	return len(txIn.witness) > 0
}

func (txIn *TxIn) String() string {
	str := fmt.Sprintf("PreviousOutPoint: %s ", txIn.PreviousOutPoint.String())
	if txIn.scriptSig == nil {
		return fmt.Sprintf("%s , script:  , Sequence:%d ", str, txIn.Sequence)
	}
	return fmt.Sprintf("%s , script:%s , Sequence:%d ", str,
		hex.EncodeToString(txIn.scriptSig.GetData()), txIn.Sequence)
}
