package tx

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cillian-osullivan/globenew/errcode"
	"github.com/cillian-osullivan/globenew/model/outpoint"
	"github.com/cillian-osullivan/globenew/model/script"
	"github.com/cillian-osullivan/globenew/model/txin"
	"github.com/cillian-osullivan/globenew/model/txout"
	"github.com/cillian-osullivan/globenew/util"
	"github.com/cillian-osullivan/globenew/util/amount"
)

func sampleTx(t *testing.T, withWitness bool) *Tx {
	t.Helper()

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData([]byte("unlock data")))

	scriptPubKey := script.NewEmptyScript()
	require.NoError(t, scriptPubKey.PushInt64(1))

	txn := NewTx(500, DefaultVersion)
	txn.AddTxIn(txin.NewTxIn(
		outpoint.NewOutPoint(util.Sha256Hash([]byte("prev")), 1),
		scriptSig, script.SequenceFinal))
	txn.AddTxOut(txout.NewTxOut(amount.Amount(25000), scriptPubKey))

	if withWitness {
		txn.GetTxIn(0).SetWitness([][]byte{{0x01, 0x02}, {0x03}})
	}
	return txn
}

func TestTxEncodeDecodeLegacy(t *testing.T) {
	txn := sampleTx(t, false)

	var buf bytes.Buffer
	require.NoError(t, txn.Encode(&buf))
	assert.Equal(t, txn.EncodeSize(), uint32(buf.Len()))

	got := new(Tx)
	require.NoError(t, got.Decode(&buf))
	assert.Equal(t, txn.GetHash(), got.GetHash())
	assert.Equal(t, 1, got.GetInsCount())
	assert.False(t, got.HasWitness())
	assert.Equal(t, uint32(500), got.GetLockTime())
}

func TestTxEncodeDecodeWitness(t *testing.T) {
	txn := sampleTx(t, true)

	var buf bytes.Buffer
	require.NoError(t, txn.Encode(&buf))
	assert.Equal(t, txn.EncodeSize(), uint32(buf.Len()))

	got := new(Tx)
	require.NoError(t, got.Decode(&buf))
	require.True(t, got.HasWitness())
	assert.Equal(t, txn.GetTxIn(0).GetWitness(), got.GetTxIn(0).GetWitness())

	// The txid ignores the witness.
	assert.Equal(t, sampleTx(t, false).GetHash(), got.GetHash())
}

func TestTxDecodeZeroFlagByte(t *testing.T) {
	txn := sampleTx(t, false)

	var buf bytes.Buffer
	require.NoError(t, util.BinarySerializer.PutUint32(&buf, binary.LittleEndian, uint32(txn.GetVersion())))
	// Extended marker followed by a zero flag byte is malformed.
	buf.WriteByte(serializeTxMarker)
	buf.WriteByte(0x00)

	got := new(Tx)
	err := got.Decode(&buf)
	assert.True(t, errcode.IsErrorCode(err, errcode.TxErrDeserialize))
}

func TestTxDecodeEmptyWitnesses(t *testing.T) {
	txn := sampleTx(t, false)

	// Hand-build an extended encoding whose witness stacks are all empty.
	var buf bytes.Buffer
	require.NoError(t, util.BinarySerializer.PutUint32(&buf, binary.LittleEndian, uint32(txn.GetVersion())))
	buf.WriteByte(serializeTxMarker)
	buf.WriteByte(serializeTxFlagMask)
	require.NoError(t, util.WriteVarInt(&buf, 1))
	require.NoError(t, txn.GetTxIn(0).Encode(&buf))
	require.NoError(t, util.WriteVarInt(&buf, 0))
	require.NoError(t, util.WriteVarInt(&buf, 0)) // empty witness stack
	require.NoError(t, util.BinarySerializer.PutUint32(&buf, binary.LittleEndian, txn.GetLockTime()))

	got := new(Tx)
	err := got.Decode(&buf)
	assert.True(t, errcode.IsErrorCode(err, errcode.TxErrUnexpectedWitness))
}

func TestTxDecodeTruncated(t *testing.T) {
	txn := sampleTx(t, true)

	var buf bytes.Buffer
	require.NoError(t, txn.Encode(&buf))
	raw := buf.Bytes()

	for _, cut := range []int{1, 5, len(raw) / 2, len(raw) - 1} {
		got := new(Tx)
		err := got.Decode(bytes.NewReader(raw[:cut]))
		assert.Error(t, err)
	}
}

func TestSignatureHashDependsOnIndex(t *testing.T) {
	scriptCode := script.NewEmptyScript()
	require.NoError(t, scriptCode.PushInt64(1))

	txn := NewTx(0, DefaultVersion)
	prev := util.Sha256Hash([]byte("prev"))
	txn.AddTxIn(txin.NewTxIn(outpoint.NewOutPoint(prev, 0), script.NewEmptyScript(), script.SequenceFinal))
	txn.AddTxIn(txin.NewTxIn(outpoint.NewOutPoint(prev, 1), script.NewEmptyScript(), script.SequenceFinal))
	txn.AddTxOut(txout.NewTxOut(amount.Amount(1000), script.NewEmptyScript()))

	h0, err := SignatureHash(txn, scriptCode, 1, 0, 0, script.SigVersionBase)
	require.NoError(t, err)
	h1, err := SignatureHash(txn, scriptCode, 1, 1, 0, script.SigVersionBase)
	require.NoError(t, err)
	assert.NotEqual(t, h0, h1)

	// BIP143 digests differ from legacy ones.
	w0, err := SignatureHash(txn, scriptCode, 1, 0, 0, script.SigVersionWitnessV0)
	require.NoError(t, err)
	assert.NotEqual(t, h0, w0)
}
