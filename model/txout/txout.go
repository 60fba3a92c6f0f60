package txout

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/cillian-osullivan/globenew/model/script"
	"github.com/cillian-osullivan/globenew/util"
	"github.com/cillian-osullivan/globenew/util/amount"
)

type TxOut struct {
	value        amount.Amount
	scriptPubKey *script.Script
}

func NewTxOut(value amount.Amount, scriptPubKey *script.Script) *TxOut {
	txOut := TxOut{
		value:        value,
		scriptPubKey: nil,
	}
	if scriptPubKey != nil {
		txOut.scriptPubKey = script.NewScriptRaw(scriptPubKey.GetData())
	}
	return &txOut
}

func (txOut *TxOut) SerializeSize() uint32 {
	return txOut.EncodeSize()
}

func (txOut *TxOut) Serialize(writer io.Writer) error {
	return txOut.Encode(writer)
}

func (txOut *TxOut) Unserialize(reader io.Reader) error {
	return txOut.Decode(reader)
}

func (txOut *TxOut) EncodeSize() uint32 {
	return 8 + txOut.scriptPubKey.EncodeSize()
}

func (txOut *TxOut) Encode(writer io.Writer) error {
	err := util.BinarySerializer.PutUint64(writer, binary.LittleEndian, uint64(txOut.value))
	if err != nil {
		return err
	}
	if txOut.scriptPubKey == nil {
		return util.WriteVarInt(writer, 0)
	}
	return txOut.scriptPubKey.Encode(writer)
}

func (txOut *TxOut) Decode(reader io.Reader) error {
	v, err := util.BinarySerializer.Uint64(reader, binary.LittleEndian)
	if err != nil {
		return err
	}
	txOut.value = amount.Amount(v)
	bytes, err := script.ReadScript(reader, script.MaxMessagePayload, "tx output script")
	txOut.scriptPubKey = script.NewScriptRaw(bytes)
	return err
}

func (txOut *TxOut) CheckValue() error {
	if txOut.value < 0 {
		return errors.New("bad-txns-vout-negative")
	}
	if txOut.value > amount.MaxMoney {
		return errors.New("bad-txns-vout-toolarge")
	}
	return nil
}

func (txOut *TxOut) GetValue() amount.Amount {
	return txOut.value
}

func (txOut *TxOut) SetValue(v amount.Amount) {
	txOut.value = v
}

func (txOut *TxOut) GetScriptPubKey() *script.Script {
	return txOut.scriptPubKey
}

func (txOut *TxOut) SetScriptPubKey(s *script.Script) {
	txOut.scriptPubKey = s
}

// IsSpendable reports whether the output can ever be spent; it does not
// say whether it has been.
func (txOut *TxOut) IsSpendable() bool {
	if txOut == nil || txOut.scriptPubKey == nil {
		return false
	}
	return !txOut.scriptPubKey.IsUnspendable()
}

func (txOut *TxOut) SetNull() {
	txOut.value = -1
	txOut.scriptPubKey = nil
}

func (txOut *TxOut) IsNull() bool {
	return txOut.value == -1
}

func (txOut *TxOut) IsEqual(out *TxOut) bool {
	if txOut.value != out.value {
		return false
	}
	return txOut.scriptPubKey.IsEqual(out.scriptPubKey)
}

func (txOut *TxOut) String() string {
	return fmt.Sprintf("Value: %d Script: %s", txOut.value,
		hex.EncodeToString(txOut.scriptPubKey.GetData()))
}
