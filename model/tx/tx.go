package tx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cillian-osullivan/globenew/errcode"
	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/model/outpoint"
	"github.com/cillian-osullivan/globenew/model/script"
	"github.com/cillian-osullivan/globenew/model/txin"
	"github.com/cillian-osullivan/globenew/model/txout"
	"github.com/cillian-osullivan/globenew/util"
	"github.com/cillian-osullivan/globenew/util/amount"
)

const (
	DefaultVersion = 0x01

	// MaxTxSigOpsCounts is the maximum allowed number of signature check
	// operations per transaction (network rule).
	MaxTxSigOpsCounts = 20000

	// MaxTxSize is the maximum serialized transaction size (network rule).
	MaxTxSize = 1000000

	MaxMessagePayload = 32 * 1024 * 1024
	MinTxInPayload    = 9 + util.Hash256Size
	MaxTxInPerMessage = (MaxMessagePayload / MinTxInPayload) + 1

	MaxStandardVersion = 2

	// MaxStandardTxSize is the maximum size for transactions we're willing
	// to relay/mine.
	MaxStandardTxSize uint = 100000
)

// Extended serialization framing (BIP144). A zero input count in the
// legacy position is the marker; the flag byte after it must have the
// witness bit set.
const (
	serializeTxMarker   = 0x00
	serializeTxFlagMask = 0x01
)

type Tx struct {
	hash     util.Hash // cached txid, never covers witness data
	lockTime uint32
	version  int32
	ins      []*txin.TxIn
	outs     []*txout.TxOut
}

func NewTx(locktime uint32, version int32) *Tx {
	tx := &Tx{lockTime: locktime, version: version}
	tx.ins = make([]*txin.TxIn, 0)
	tx.outs = make([]*txout.TxOut, 0)
	return tx
}

func NewEmptyTx() *Tx {
	return &Tx{}
}

func (tx *Tx) AddTxIn(txIn *txin.TxIn) {
	tx.ins = append(tx.ins, txIn)
}

func (tx *Tx) AddTxOut(txOut *txout.TxOut) {
	tx.outs = append(tx.outs, txOut)
}

func (tx *Tx) GetTxOut(index int) *txout.TxOut {
	if index < 0 || index >= len(tx.outs) {
		return nil
	}
	return tx.outs[index]
}

func (tx *Tx) GetTxIn(index int) *txin.TxIn {
	if index < 0 || index >= len(tx.ins) {
		return nil
	}
	return tx.ins[index]
}

func (tx *Tx) GetAllPreviousOut() (outs []outpoint.OutPoint) {
	outs = make([]outpoint.OutPoint, 0, len(tx.ins))
	for _, e := range tx.ins {
		outs = append(outs, *e.PreviousOutPoint)
	}
	return
}

func (tx *Tx) GetOutsCount() int {
	return len(tx.outs)
}

func (tx *Tx) GetInsCount() int {
	return len(tx.ins)
}

func (tx *Tx) GetIns() []*txin.TxIn {
	return tx.ins
}

func (tx *Tx) GetOuts() []*txout.TxOut {
	return tx.outs
}

func (tx *Tx) GetLockTime() uint32 {
	return tx.lockTime
}

func (tx *Tx) GetVersion() int32 {
	return tx.version
}

// HasWitness reports whether any input carries a witness stack.
func (tx *Tx) HasWitness() bool {
	for _, in := range tx.ins {
		if in.HasWitness() {
			return true
		}
	}
	return false
}

func (tx *Tx) SerializeSize() uint32 {
	return tx.EncodeSize()
}

func (tx *Tx) Serialize(writer io.Writer) error {
	return tx.Encode(writer)
}

func (tx *Tx) Unserialize(reader io.Reader) error {
	return tx.Decode(reader)
}

// NoWitnessEncodeSize is the size of the legacy serialization, the one
// the txid commits to.
func (tx *Tx) NoWitnessEncodeSize() uint32 {
	// Version 4 bytes + LockTime 4 bytes + serialized varint size for the
	// number of transaction inputs and outputs.
	n := 8 + util.VarIntSerializeSize(uint64(len(tx.ins))) + util.VarIntSerializeSize(uint64(len(tx.outs)))

	for _, txIn := range tx.ins {
		n += txIn.EncodeSize()
	}
	for _, txOut := range tx.outs {
		n += txOut.EncodeSize()
	}
	return n
}

func (tx *Tx) EncodeSize() uint32 {
	n := tx.NoWitnessEncodeSize()
	if tx.HasWitness() {
		// marker and flag bytes plus one witness stack per input
		n += 2
		for _, txIn := range tx.ins {
			n += txIn.WitnessEncodeSize()
		}
	}
	return n
}

func (tx *Tx) Encode(writer io.Writer) error {
	return tx.encode(writer, true)
}

// EncodeNoWitness serializes in the legacy format regardless of whether
// witness data is present.
func (tx *Tx) EncodeNoWitness(writer io.Writer) error {
	return tx.encode(writer, false)
}

func (tx *Tx) encode(writer io.Writer, allowWitness bool) error {
	err := util.BinarySerializer.PutUint32(writer, binary.LittleEndian, uint32(tx.version))
	if err != nil {
		return err
	}

	hasWitness := allowWitness && tx.HasWitness()
	if hasWitness {
		if err = util.BinarySerializer.PutUint8(writer, serializeTxMarker); err != nil {
			return err
		}
		if err = util.BinarySerializer.PutUint8(writer, serializeTxFlagMask); err != nil {
			return err
		}
	}

	if err = util.WriteVarInt(writer, uint64(len(tx.ins))); err != nil {
		return err
	}
	for _, txIn := range tx.ins {
		if err = txIn.Encode(writer); err != nil {
			return err
		}
	}
	if err = util.WriteVarInt(writer, uint64(len(tx.outs))); err != nil {
		return err
	}
	for _, txOut := range tx.outs {
		if err = txOut.Encode(writer); err != nil {
			return err
		}
	}

	if hasWitness {
		for _, txIn := range tx.ins {
			if err = txIn.EncodeWitness(writer); err != nil {
				return err
			}
		}
	}

	return util.BinarySerializer.PutUint32(writer, binary.LittleEndian, tx.lockTime)
}

func (tx *Tx) Decode(reader io.Reader) error {
	version, err := util.BinarySerializer.Uint32(reader, binary.LittleEndian)
	if err != nil {
		return err
	}
	tx.version = int32(version)

	count, err := util.ReadVarInt(reader)
	if err != nil {
		return err
	}

	var flags uint8
	if count == serializeTxMarker {
		// Extended format: the zero is a marker, a flag byte follows and
		// the real input count after that.
		flags, err = util.BinarySerializer.Uint8(reader)
		if err != nil {
			return err
		}
		if flags == 0 {
			return errcode.New(errcode.TxErrDeserialize)
		}
		count, err = util.ReadVarInt(reader)
		if err != nil {
			return err
		}
	}

	if count > uint64(MaxTxInPerMessage) {
		log.Error("too many inputs to fit into max message size [count %d, max %d]",
			count, MaxTxInPerMessage)
		return errcode.New(errcode.TxErrDeserialize)
	}

	tx.ins = make([]*txin.TxIn, count)
	for i := uint64(0); i < count; i++ {
		txIn := new(txin.TxIn)
		txIn.PreviousOutPoint = new(outpoint.OutPoint)
		if err = txIn.Decode(reader); err != nil {
			return err
		}
		tx.ins[i] = txIn
	}

	count, err = util.ReadVarInt(reader)
	if err != nil {
		return err
	}
	tx.outs = make([]*txout.TxOut, count)
	for i := uint64(0); i < count; i++ {
		txOut := new(txout.TxOut)
		if err = txOut.Decode(reader); err != nil {
			return err
		}
		tx.outs[i] = txOut
	}

	if flags&serializeTxFlagMask != 0 {
		flags ^= serializeTxFlagMask
		for _, txIn := range tx.ins {
			if err = txIn.DecodeWitness(reader); err != nil {
				return err
			}
		}
		if !tx.HasWitness() {
			// An extended encoding with all-empty witnesses is forbidden;
			// it would malleate the wire form without changing the txid.
			return errcode.New(errcode.TxErrUnexpectedWitness)
		}
	}
	if flags != 0 {
		// Unknown optional data.
		return errcode.New(errcode.TxErrDeserialize)
	}

	tx.lockTime, err = util.BinarySerializer.Uint32(reader, binary.LittleEndian)
	return err
}

func (tx *Tx) IsCoinBase() bool {
	if len(tx.ins) != 1 {
		return false
	}
	return tx.ins[0].PreviousOutPoint.IsNull()
}

func (tx *Tx) GetSigOpCountWithoutP2SH() int {
	n := 0
	for _, in := range tx.ins {
		n += in.GetScriptSig().GetSigOpCount(false)
	}
	for _, out := range tx.outs {
		n += out.GetScriptPubKey().GetSigOpCount(false)
	}
	return n
}

func (tx *Tx) CheckRegularTransaction() error {
	if tx.IsCoinBase() {
		log.Debug("tx should not be coinbase, hash: %s", tx.hash)
		return errcode.New(errcode.TxErrNullPreOut)
	}

	if err := tx.checkTransactionCommon(true); err != nil {
		return err
	}

	for _, in := range tx.ins {
		if in.PreviousOutPoint.IsNull() {
			log.Debug("tx input prevout null")
			return errcode.New(errcode.TxErrNullPreOut)
		}
	}

	return nil
}

func (tx *Tx) CheckCoinbaseTransaction() error {
	if !tx.IsCoinBase() {
		return errcode.New(errcode.TxErrNoPreviousOut)
	}
	if err := tx.checkTransactionCommon(false); err != nil {
		return err
	}

	if tx.ins[0].GetScriptSig().Size() < 2 || tx.ins[0].GetScriptSig().Size() > 100 {
		log.Debug("coinbase input has bad script size")
		return errcode.New(errcode.TxErrDeserialize)
	}

	return nil
}

func (tx *Tx) checkTransactionCommon(checkDupInput bool) error {
	if len(tx.ins) == 0 {
		log.Warn("bad tx: %s, empty ins", tx.hash)
		return errcode.New(errcode.TxErrEmptyInputs)
	}
	if len(tx.outs) == 0 {
		log.Warn("bad tx: %s, empty outs", tx.hash)
		return errcode.New(errcode.TxErrEmptyOutputs)
	}

	if tx.NoWitnessEncodeSize() > MaxTxSize {
		log.Warn("tx is oversize, tx size:%d, max:%d", tx.NoWitnessEncodeSize(), MaxTxSize)
		return errcode.New(errcode.TxErrOverSize)
	}

	totalOut := amount.Amount(0)
	for _, out := range tx.outs {
		if err := out.CheckValue(); err != nil {
			return err
		}
		totalOut += out.GetValue()
		if !amount.MoneyRange(totalOut) {
			log.Debug("bad tx: %s totalOut value: %d", tx.hash, totalOut)
			return errcode.New(errcode.TxErrTotalMoneyTooLarge)
		}
	}

	sigOpCount := tx.GetSigOpCountWithoutP2SH()
	if sigOpCount > MaxTxSigOpsCounts {
		log.Debug("bad tx: %s sigops: %d", tx.hash, sigOpCount)
		return errcode.New(errcode.TxErrTooManySigOps)
	}

	if checkDupInput {
		outPointSet := make(map[outpoint.OutPoint]struct{}, len(tx.ins))
		for _, in := range tx.ins {
			if _, exists := outPointSet[*in.PreviousOutPoint]; exists {
				log.Error("bad tx: %s, duplicate input [%s:%d]",
					tx.hash, in.PreviousOutPoint.Hash, in.PreviousOutPoint.Index)
				return errcode.New(errcode.TxErrDupIns)
			}
			outPointSet[*in.PreviousOutPoint] = struct{}{}
		}
	}

	return nil
}

func (tx *Tx) GetValueOut() amount.Amount {
	var valueOut amount.Amount
	for _, out := range tx.outs {
		valueOut += out.GetValue()
		if !amount.MoneyRange(out.GetValue()) || !amount.MoneyRange(valueOut) {
			panic("value out of range")
		}
	}
	return valueOut
}

func (tx *Tx) UpdateInScript(i int, scriptSig *script.Script) error {
	if i < 0 || i >= len(tx.ins) {
		return errcode.New(errcode.TxErrNoPreviousOut)
	}
	tx.ins[i].SetScriptSig(scriptSig)

	if !tx.hash.IsNull() {
		tx.hash = tx.calHash()
	}
	return nil
}

// IsFinal proceeds as follows:
// 1. lockTime below the threshold is compared against the block height
// 2. lockTime above the threshold is compared against the block time
// 3. every input at SequenceFinal disables the lockTime entirely
func (tx *Tx) IsFinal(height int32, time int64) bool {
	if tx.lockTime == 0 {
		return true
	}

	var lockTimeLimit int64
	if tx.lockTime < script.LockTimeThreshold {
		lockTimeLimit = int64(height)
	} else {
		lockTimeLimit = time
	}

	if int64(tx.lockTime) < lockTimeLimit {
		return true
	}

	for _, in := range tx.ins {
		if in.Sequence != script.SequenceFinal {
			return false
		}
	}
	return true
}

// GetHash returns the txid, which never commits to witness data.
func (tx *Tx) GetHash() util.Hash {
	if !tx.hash.IsNull() {
		return tx.hash
	}
	tx.hash = tx.calHash()
	return tx.hash
}

// GetWitnessHash returns the wtxid. For a transaction without witness
// data it equals the txid.
func (tx *Tx) GetWitnessHash() util.Hash {
	if !tx.HasWitness() {
		return tx.GetHash()
	}
	buf := bytes.NewBuffer(make([]byte, 0, tx.EncodeSize()))
	if err := tx.Encode(buf); err != nil {
		panic("tx encode failed: " + err.Error())
	}
	return util.DoubleSha256Hash(buf.Bytes())
}

func (tx *Tx) calHash() util.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, tx.NoWitnessEncodeSize()))
	if err := tx.EncodeNoWitness(buf); err != nil {
		panic("tx encode failed: " + err.Error())
	}
	return util.DoubleSha256Hash(buf.Bytes())
}

func (tx *Tx) String() string {
	inStr := "ins:\n"
	for i, in := range tx.ins {
		if in == nil {
			inStr = fmt.Sprintf("  %s %d , nil\n", inStr, i)
		} else {
			inStr = fmt.Sprintf("  %s %d , %s\n", inStr, i, in.String())
		}
	}
	outStr := "outs:\n"
	for i, out := range tx.outs {
		outStr = fmt.Sprintf("  %s %d , %s\n", outStr, i, out.String())
	}
	return fmt.Sprintf("%s%s", inStr, outStr)
}
