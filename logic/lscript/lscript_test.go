package lscript

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cillian-osullivan/globenew/crypto"
	"github.com/cillian-osullivan/globenew/errcode"
	"github.com/cillian-osullivan/globenew/model/opcodes"
	"github.com/cillian-osullivan/globenew/model/outpoint"
	"github.com/cillian-osullivan/globenew/model/script"
	"github.com/cillian-osullivan/globenew/model/tx"
	"github.com/cillian-osullivan/globenew/model/txin"
	"github.com/cillian-osullivan/globenew/model/txout"
	"github.com/cillian-osullivan/globenew/util"
	"github.com/cillian-osullivan/globenew/util/amount"
)

var testKeySeed = []byte{
	0x2c, 0xd1, 0xd9, 0x9b, 0x93, 0x48, 0xbe, 0x9d,
	0x7f, 0x22, 0x1a, 0x32, 0x69, 0xc9, 0x3e, 0x75,
	0x07, 0x45, 0x8a, 0x4c, 0xa6, 0x05, 0x22, 0xf3,
	0x1c, 0x62, 0xad, 0xa7, 0x1e, 0xd8, 0x7b, 0x50,
}

func testKeyPair() (*btcec.PrivateKey, []byte) {
	priv, pub := btcec.PrivKeyFromBytes(btcec.S256(), testKeySeed)
	return priv, pub.SerializeCompressed()
}

func p2pkhScript(t *testing.T, pubKey []byte) *script.Script {
	s := script.NewEmptyScript()
	require.NoError(t, s.PushOpCode(opcodes.OP_DUP))
	require.NoError(t, s.PushOpCode(opcodes.OP_HASH160))
	require.NoError(t, s.PushSingleData(util.Hash160(pubKey)))
	require.NoError(t, s.PushOpCode(opcodes.OP_EQUALVERIFY))
	require.NoError(t, s.PushOpCode(opcodes.OP_CHECKSIG))
	return s
}

func spendingTx(lockTime uint32, sequence uint32) *tx.Tx {
	txn := tx.NewTx(lockTime, tx.DefaultVersion)
	prevHash := util.Sha256Hash([]byte("previous transaction"))
	txn.AddTxIn(txin.NewTxIn(outpoint.NewOutPoint(prevHash, 0), script.NewEmptyScript(), sequence))
	txn.AddTxOut(txout.NewTxOut(amount.Amount(90000), script.NewEmptyScript()))
	return txn
}

func signInput(t *testing.T, txn *tx.Tx, priv *btcec.PrivateKey, pubKey []byte,
	scriptCode *script.Script, nIn int, value amount.Amount, sigVersion int) []byte {

	sigHash, err := tx.SignatureHash(txn, scriptCode, crypto.SigHashAll, nIn, value, sigVersion)
	require.NoError(t, err)
	sig, err := priv.Sign(sigHash[:])
	require.NoError(t, err)
	return append(sig.Serialize(), byte(crypto.SigHashAll))
}

func evalSimple(t *testing.T, s *script.Script, flags uint32) (*util.Stack, error) {
	stack := util.NewStack()
	txn := spendingTx(0, script.SequenceFinal)
	err := EvalScript(stack, s, txn, 0, 0, flags, NewScriptRealChecker(), script.SigVersionBase)
	return stack, err
}

func TestEvalScriptArithmetic(t *testing.T) {
	s := script.NewEmptyScript()
	require.NoError(t, s.PushInt64(1))
	require.NoError(t, s.PushInt64(2))
	require.NoError(t, s.PushOpCode(opcodes.OP_ADD))
	require.NoError(t, s.PushInt64(3))
	require.NoError(t, s.PushOpCode(opcodes.OP_EQUAL))

	stack, err := evalSimple(t, s, script.ScriptVerifyNone)
	require.NoError(t, err)
	require.Equal(t, 1, stack.Size())
	assert.True(t, script.BytesToBool(stack.Top(-1).([]byte)))
}

func TestEvalScriptConditional(t *testing.T) {
	s := script.NewEmptyScript()
	require.NoError(t, s.PushInt64(1))
	require.NoError(t, s.PushOpCode(opcodes.OP_IF))
	require.NoError(t, s.PushInt64(5))
	require.NoError(t, s.PushOpCode(opcodes.OP_ELSE))
	require.NoError(t, s.PushInt64(7))
	require.NoError(t, s.PushOpCode(opcodes.OP_ENDIF))

	stack, err := evalSimple(t, s, script.ScriptVerifyNone)
	require.NoError(t, err)
	require.Equal(t, 1, stack.Size())

	n, err := script.GetScriptNum(stack.Top(-1).([]byte), false, script.DefaultMaxNumSize)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n.Value)
}

func TestEvalScriptUnbalancedConditional(t *testing.T) {
	s := script.NewEmptyScript()
	require.NoError(t, s.PushInt64(1))
	require.NoError(t, s.PushOpCode(opcodes.OP_IF))

	_, err := evalSimple(t, s, script.ScriptVerifyNone)
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrUnbalancedConditional))
}

func TestEvalScriptOpReturn(t *testing.T) {
	s := script.NewEmptyScript()
	require.NoError(t, s.PushOpCode(opcodes.OP_RETURN))

	_, err := evalSimple(t, s, script.ScriptVerifyNone)
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrOpReturn))
}

func TestEvalScriptDisabledOpCodeUnexecuted(t *testing.T) {
	// A disabled opcode fails the script even inside a branch not taken.
	s := script.NewEmptyScript()
	require.NoError(t, s.PushInt64(0))
	require.NoError(t, s.PushOpCode(opcodes.OP_IF))
	require.NoError(t, s.PushOpCode(opcodes.OP_MUL))
	require.NoError(t, s.PushOpCode(opcodes.OP_ENDIF))
	require.NoError(t, s.PushInt64(1))

	_, err := evalSimple(t, s, script.ScriptVerifyNone)
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrDisabledOpCode))
}

func TestEvalScriptStackUnderflow(t *testing.T) {
	s := script.NewEmptyScript()
	require.NoError(t, s.PushOpCode(opcodes.OP_ADD))

	_, err := evalSimple(t, s, script.ScriptVerifyNone)
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrInvalidStackOperation))
}

func TestEvalScriptOpCountLimit(t *testing.T) {
	s := script.NewEmptyScript()
	require.NoError(t, s.PushInt64(1))
	for i := 0; i < script.MaxOpsPerScript+1; i++ {
		require.NoError(t, s.PushOpCode(opcodes.OP_DUP))
	}

	_, err := evalSimple(t, s, script.ScriptVerifyNone)
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrOpCount))
}

func TestEvalScriptMinimalData(t *testing.T) {
	// 0x01 pushed with PUSHDATA1 is non-minimal.
	raw := []byte{opcodes.OP_PUSHDATA1, 1, 0x01}
	s := script.NewScriptRaw(raw)

	_, err := evalSimple(t, s, script.ScriptVerifyMinimalData)
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrMinimalData))

	_, err = evalSimple(t, s, script.ScriptVerifyNone)
	assert.NoError(t, err)
}

func TestVerifyScriptP2PKH(t *testing.T) {
	priv, pubKey := testKeyPair()
	scriptPubKey := p2pkhScript(t, pubKey)
	value := amount.Amount(100000)

	txn := spendingTx(0, script.SequenceFinal)
	sig := signInput(t, txn, priv, pubKey, scriptPubKey, 0, value, script.SigVersionBase)

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData(sig))
	require.NoError(t, scriptSig.PushSingleData(pubKey))
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	err := VerifyScript(txn, scriptSig, scriptPubKey, 0, value,
		script.StandardScriptVerifyFlags, NewScriptRealChecker())
	assert.NoError(t, err)
}

func TestVerifyScriptP2PKHWrongKey(t *testing.T) {
	priv, pubKey := testKeyPair()
	scriptPubKey := p2pkhScript(t, pubKey)
	value := amount.Amount(100000)

	otherSeed := make([]byte, 32)
	copy(otherSeed, testKeySeed)
	otherSeed[0] ^= 0xff
	_, otherPub := btcec.PrivKeyFromBytes(btcec.S256(), otherSeed)

	txn := spendingTx(0, script.SequenceFinal)
	sig := signInput(t, txn, priv, pubKey, scriptPubKey, 0, value, script.SigVersionBase)

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData(sig))
	require.NoError(t, scriptSig.PushSingleData(otherPub.SerializeCompressed()))
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	err := VerifyScript(txn, scriptSig, scriptPubKey, 0, value,
		script.ScriptVerifyP2SH, NewScriptRealChecker())
	assert.Error(t, err)
}

func TestVerifyScriptP2PKHCorruptSignature(t *testing.T) {
	priv, pubKey := testKeyPair()
	scriptPubKey := p2pkhScript(t, pubKey)
	value := amount.Amount(100000)

	txn := spendingTx(0, script.SequenceFinal)
	sig := signInput(t, txn, priv, pubKey, scriptPubKey, 0, value, script.SigVersionBase)
	sig[10] ^= 0x01

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData(sig))
	require.NoError(t, scriptSig.PushSingleData(pubKey))
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	err := VerifyScript(txn, scriptSig, scriptPubKey, 0, value,
		script.ScriptVerifyP2SH, NewScriptRealChecker())
	assert.Error(t, err)
}

func TestVerifyScriptP2SH(t *testing.T) {
	redeemScript := script.NewEmptyScript()
	require.NoError(t, redeemScript.PushInt64(1))

	scriptPubKey := script.NewEmptyScript()
	require.NoError(t, scriptPubKey.PushOpCode(opcodes.OP_HASH160))
	require.NoError(t, scriptPubKey.PushSingleData(util.Hash160(redeemScript.GetData())))
	require.NoError(t, scriptPubKey.PushOpCode(opcodes.OP_EQUAL))
	require.True(t, scriptPubKey.IsPayToScriptHash())

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData(redeemScript.GetData()))

	txn := spendingTx(0, script.SequenceFinal)
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	err := VerifyScript(txn, scriptSig, scriptPubKey, 0, 0,
		script.ScriptVerifyP2SH|script.ScriptVerifyCleanStack, NewScriptRealChecker())
	assert.NoError(t, err)
}

func TestVerifyScriptP2SHNonPushScriptSig(t *testing.T) {
	redeemScript := script.NewEmptyScript()
	require.NoError(t, redeemScript.PushInt64(1))

	scriptPubKey := script.NewEmptyScript()
	require.NoError(t, scriptPubKey.PushOpCode(opcodes.OP_HASH160))
	require.NoError(t, scriptPubKey.PushSingleData(util.Hash160(redeemScript.GetData())))
	require.NoError(t, scriptPubKey.PushOpCode(opcodes.OP_EQUAL))

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData(redeemScript.GetData()))
	require.NoError(t, scriptSig.PushOpCode(opcodes.OP_NOP))

	txn := spendingTx(0, script.SequenceFinal)
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	err := VerifyScript(txn, scriptSig, scriptPubKey, 0, 0,
		script.ScriptVerifyP2SH, NewScriptRealChecker())
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrSigPushOnly))
}

func TestVerifyScriptEvalFalse(t *testing.T) {
	scriptPubKey := script.NewEmptyScript()
	require.NoError(t, scriptPubKey.PushInt64(0))

	txn := spendingTx(0, script.SequenceFinal)
	scriptSig := script.NewEmptyScript()

	err := VerifyScript(txn, scriptSig, scriptPubKey, 0, 0,
		script.ScriptVerifyP2SH, NewScriptRealChecker())
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrEvalFalse))
}

func TestVerifyScriptCleanStack(t *testing.T) {
	scriptPubKey := script.NewEmptyScript()
	require.NoError(t, scriptPubKey.PushInt64(1))

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushInt64(7))

	txn := spendingTx(0, script.SequenceFinal)
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	err := VerifyScript(txn, scriptSig, scriptPubKey, 0, 0,
		script.ScriptVerifyP2SH|script.ScriptVerifyCleanStack, NewScriptRealChecker())
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrCleanStack))

	err = VerifyScript(txn, scriptSig, scriptPubKey, 0, 0,
		script.ScriptVerifyP2SH, NewScriptRealChecker())
	assert.NoError(t, err)

	// CLEANSTACK is honored without P2SH as well.
	err = VerifyScript(txn, scriptSig, scriptPubKey, 0, 0,
		script.ScriptVerifyCleanStack, NewScriptRealChecker())
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrCleanStack))
}

func TestCheckLockTimeVerify(t *testing.T) {
	buildScript := func(lockTime int64) *script.Script {
		s := script.NewEmptyScript()
		if err := s.PushInt64(lockTime); err != nil {
			t.Fatal(err)
		}
		if err := s.PushOpCode(opcodes.OP_CHECKLOCKTIMEVERIFY); err != nil {
			t.Fatal(err)
		}
		return s
	}

	txn := spendingTx(100, 0)
	flags := uint32(script.ScriptVerifyCheckLockTimeVerify)

	stack := util.NewStack()
	err := EvalScript(stack, buildScript(50), txn, 0, 0, flags,
		NewScriptRealChecker(), script.SigVersionBase)
	assert.NoError(t, err)

	stack = util.NewStack()
	err = EvalScript(stack, buildScript(200), txn, 0, 0, flags,
		NewScriptRealChecker(), script.SigVersionBase)
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrUnsatisfiedLockTime))

	// Final sequence disables the check entirely.
	finalTx := spendingTx(100, script.SequenceFinal)
	stack = util.NewStack()
	err = EvalScript(stack, buildScript(50), finalTx, 0, 0, flags,
		NewScriptRealChecker(), script.SigVersionBase)
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrUnsatisfiedLockTime))
}

func TestCheckSequenceVerify(t *testing.T) {
	buildScript := func(sequence int64) *script.Script {
		s := script.NewEmptyScript()
		if err := s.PushInt64(sequence); err != nil {
			t.Fatal(err)
		}
		if err := s.PushOpCode(opcodes.OP_CHECKSEQUENCEVERIFY); err != nil {
			t.Fatal(err)
		}
		return s
	}

	txn := tx.NewTx(0, 2)
	prevHash := util.Sha256Hash([]byte("previous transaction"))
	txn.AddTxIn(txin.NewTxIn(outpoint.NewOutPoint(prevHash, 0), script.NewEmptyScript(), 16))
	txn.AddTxOut(txout.NewTxOut(amount.Amount(90000), script.NewEmptyScript()))

	flags := uint32(script.ScriptVerifyCheckSequenceVerify)

	stack := util.NewStack()
	err := EvalScript(stack, buildScript(8), txn, 0, 0, flags,
		NewScriptRealChecker(), script.SigVersionBase)
	assert.NoError(t, err)

	stack = util.NewStack()
	err = EvalScript(stack, buildScript(32), txn, 0, 0, flags,
		NewScriptRealChecker(), script.SigVersionBase)
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrUnsatisfiedLockTime))
}

func TestCheckMultiSigNullDummy(t *testing.T) {
	priv, pubKey := testKeyPair()
	value := amount.Amount(100000)

	scriptPubKey := script.NewEmptyScript()
	require.NoError(t, scriptPubKey.PushInt64(1))
	require.NoError(t, scriptPubKey.PushSingleData(pubKey))
	require.NoError(t, scriptPubKey.PushInt64(1))
	require.NoError(t, scriptPubKey.PushOpCode(opcodes.OP_CHECKMULTISIG))

	txn := spendingTx(0, script.SequenceFinal)
	sig := signInput(t, txn, priv, pubKey, scriptPubKey, 0, value, script.SigVersionBase)

	// Empty dummy passes under NULLDUMMY.
	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData(nil))
	require.NoError(t, scriptSig.PushSingleData(sig))
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	err := VerifyScript(txn, scriptSig, scriptPubKey, 0, value,
		script.ScriptVerifyP2SH|script.ScriptVerifyNullDummy, NewScriptRealChecker())
	assert.NoError(t, err)

	// A non-empty dummy is rejected.
	scriptSig = script.NewEmptyScript()
	require.NoError(t, scriptSig.PushInt64(1))
	require.NoError(t, scriptSig.PushSingleData(sig))
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	err = VerifyScript(txn, scriptSig, scriptPubKey, 0, value,
		script.ScriptVerifyP2SH|script.ScriptVerifyNullDummy, NewScriptRealChecker())
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrSigNullDummy))
}

func p2wpkhProgram(pubKey []byte) *script.Script {
	s := script.NewEmptyScript()
	s.PushOpCode(opcodes.OP_0)
	s.PushSingleData(util.Hash160(pubKey))
	return s
}

func TestVerifyScriptP2WPKH(t *testing.T) {
	priv, pubKey := testKeyPair()
	value := amount.Amount(100000)

	scriptPubKey := p2wpkhProgram(pubKey)
	version, program, ok := scriptPubKey.IsWitnessProgram()
	require.True(t, ok)
	require.Equal(t, 0, version)
	require.Equal(t, script.WitnessV0KeyHashSize, len(program))

	txn := spendingTx(0, script.SequenceFinal)
	scriptCode := p2pkhScript(t, pubKey)
	sig := signInput(t, txn, priv, pubKey, scriptCode, 0, value, script.SigVersionWitnessV0)
	txn.GetTxIn(0).SetWitness([][]byte{sig, pubKey})

	err := VerifyScript(txn, script.NewEmptyScript(), scriptPubKey, 0, value,
		script.ScriptVerifyP2SH|script.ScriptVerifyWitness, NewScriptRealChecker())
	assert.NoError(t, err)
}

func TestVerifyScriptP2WSH(t *testing.T) {
	witnessScript := script.NewEmptyScript()
	require.NoError(t, witnessScript.PushInt64(1))
	scriptHash := sha256.Sum256(witnessScript.GetData())

	scriptPubKey := script.NewEmptyScript()
	require.NoError(t, scriptPubKey.PushOpCode(opcodes.OP_0))
	require.NoError(t, scriptPubKey.PushSingleData(scriptHash[:]))

	txn := spendingTx(0, script.SequenceFinal)
	txn.GetTxIn(0).SetWitness([][]byte{witnessScript.GetData()})

	err := VerifyScript(txn, script.NewEmptyScript(), scriptPubKey, 0, 0,
		script.ScriptVerifyP2SH|script.ScriptVerifyWitness, NewScriptRealChecker())
	assert.NoError(t, err)
}

func TestVerifyScriptP2WSHWrongScript(t *testing.T) {
	witnessScript := script.NewEmptyScript()
	require.NoError(t, witnessScript.PushInt64(1))

	scriptPubKey := script.NewEmptyScript()
	wrongHash := util.Sha256Hash([]byte("something else"))
	require.NoError(t, scriptPubKey.PushOpCode(opcodes.OP_0))
	require.NoError(t, scriptPubKey.PushSingleData(wrongHash[:]))

	txn := spendingTx(0, script.SequenceFinal)
	txn.GetTxIn(0).SetWitness([][]byte{witnessScript.GetData()})

	err := VerifyScript(txn, script.NewEmptyScript(), scriptPubKey, 0, 0,
		script.ScriptVerifyP2SH|script.ScriptVerifyWitness, NewScriptRealChecker())
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrWitnessProgramMisMatch))
}

func TestVerifyScriptWitnessMalleated(t *testing.T) {
	_, pubKey := testKeyPair()
	scriptPubKey := p2wpkhProgram(pubKey)

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushInt64(1))

	txn := spendingTx(0, script.SequenceFinal)
	require.NoError(t, txn.UpdateInScript(0, scriptSig))
	txn.GetTxIn(0).SetWitness([][]byte{{0x01}})

	err := VerifyScript(txn, scriptSig, scriptPubKey, 0, 0,
		script.ScriptVerifyP2SH|script.ScriptVerifyWitness, NewScriptRealChecker())
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrWitnessMalleated))
}

func TestVerifyScriptWitnessUnexpected(t *testing.T) {
	scriptPubKey := script.NewEmptyScript()
	require.NoError(t, scriptPubKey.PushInt64(1))

	txn := spendingTx(0, script.SequenceFinal)
	txn.GetTxIn(0).SetWitness([][]byte{{0x01}})

	err := VerifyScript(txn, script.NewEmptyScript(), scriptPubKey, 0, 0,
		script.ScriptVerifyP2SH|script.ScriptVerifyWitness, NewScriptRealChecker())
	assert.True(t, errcode.IsErrorCode(err, errcode.ScriptErrWitnessUnexpected))
}

func TestVerifyScriptUpgradableWitnessProgram(t *testing.T) {
	scriptPubKey := script.NewEmptyScript()
	require.NoError(t, scriptPubKey.PushOpCode(opcodes.OP_1))
	require.NoError(t, scriptPubKey.PushSingleData(util.Hash160([]byte("future"))))

	txn := spendingTx(0, script.SequenceFinal)
	txn.GetTxIn(0).SetWitness([][]byte{{0x01}})

	// Tolerated without the discouragement flag.
	err := VerifyScript(txn, script.NewEmptyScript(), scriptPubKey, 0, 0,
		script.ScriptVerifyP2SH|script.ScriptVerifyWitness, NewScriptRealChecker())
	assert.NoError(t, err)

	err = VerifyScript(txn, script.NewEmptyScript(), scriptPubKey, 0, 0,
		script.ScriptVerifyP2SH|script.ScriptVerifyWitness|
			script.ScriptVerifyDiscourageUpgradableWitnessProgram, NewScriptRealChecker())
	assert.True(t, errcode.IsErrorCode(err,
		errcode.ScriptErrDiscourageUpgradableWitnessProgram))
}

func TestVerifyScriptP2SHWrappedP2WPKH(t *testing.T) {
	priv, pubKey := testKeyPair()
	value := amount.Amount(100000)

	witnessProgram := p2wpkhProgram(pubKey)

	scriptPubKey := script.NewEmptyScript()
	require.NoError(t, scriptPubKey.PushOpCode(opcodes.OP_HASH160))
	require.NoError(t, scriptPubKey.PushSingleData(util.Hash160(witnessProgram.GetData())))
	require.NoError(t, scriptPubKey.PushOpCode(opcodes.OP_EQUAL))

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData(witnessProgram.GetData()))

	txn := spendingTx(0, script.SequenceFinal)
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	scriptCode := p2pkhScript(t, pubKey)
	sig := signInput(t, txn, priv, pubKey, scriptCode, 0, value, script.SigVersionWitnessV0)
	txn.GetTxIn(0).SetWitness([][]byte{sig, pubKey})

	err := VerifyScript(txn, scriptSig, scriptPubKey, 0, value,
		script.ScriptVerifyP2SH|script.ScriptVerifyWitness, NewScriptRealChecker())
	assert.NoError(t, err)
}

func TestSignatureCacheOnlyRecordsValidChecks(t *testing.T) {
	priv, pubKey := testKeyPair()
	value := amount.Amount(100000)
	cache := crypto.NewSignatureCache(1 << 18)
	checker := NewCachingChecker(cache)

	entryFor := func(txn *tx.Tx, scriptCode *script.Script, sig []byte) util.Hash {
		sigHash, err := tx.SignatureHash(txn, scriptCode, uint32(sig[len(sig)-1]),
			0, value, script.SigVersionBase)
		require.NoError(t, err)
		return cache.ComputeEntry(sigHash, sig[:len(sig)-1], pubKey)
	}

	// CHECKSIG: a corrupted signature fails the spend and must leave no
	// verified entry behind.
	scriptPubKey := p2pkhScript(t, pubKey)
	txn := spendingTx(0, script.SequenceFinal)
	badSig := signInput(t, txn, priv, pubKey, scriptPubKey, 0, value, script.SigVersionBase)
	badSig[10] ^= 0x01

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData(badSig))
	require.NoError(t, scriptSig.PushSingleData(pubKey))
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	err := VerifyScript(txn, scriptSig, scriptPubKey, 0, value,
		script.ScriptVerifyP2SH, checker)
	assert.Error(t, err)
	assert.False(t, cache.HaveVerified(entryFor(txn, scriptPubKey, badSig), false))

	// CHECKMULTISIG: same through the multisig path.
	multiSig := script.NewEmptyScript()
	require.NoError(t, multiSig.PushInt64(1))
	require.NoError(t, multiSig.PushSingleData(pubKey))
	require.NoError(t, multiSig.PushInt64(1))
	require.NoError(t, multiSig.PushOpCode(opcodes.OP_CHECKMULTISIG))

	txn = spendingTx(0, script.SequenceFinal)
	badSig = signInput(t, txn, priv, pubKey, multiSig, 0, value, script.SigVersionBase)
	badSig[10] ^= 0x01

	scriptSig = script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData(nil))
	require.NoError(t, scriptSig.PushSingleData(badSig))
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	err = VerifyScript(txn, scriptSig, multiSig, 0, value,
		script.ScriptVerifyP2SH, checker)
	assert.Error(t, err)
	assert.False(t, cache.HaveVerified(entryFor(txn, multiSig, badSig), false))

	// A valid check is recorded.
	txn = spendingTx(0, script.SequenceFinal)
	goodSig := signInput(t, txn, priv, pubKey, scriptPubKey, 0, value, script.SigVersionBase)
	scriptSig = script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData(goodSig))
	require.NoError(t, scriptSig.PushSingleData(pubKey))
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	err = VerifyScript(txn, scriptSig, scriptPubKey, 0, value,
		script.ScriptVerifyP2SH, checker)
	assert.NoError(t, err)
	assert.True(t, cache.HaveVerified(entryFor(txn, scriptPubKey, goodSig), false))
}

func TestVerifyScriptSignatureCacheTransparent(t *testing.T) {
	priv, pubKey := testKeyPair()
	scriptPubKey := p2pkhScript(t, pubKey)
	value := amount.Amount(100000)

	txn := spendingTx(0, script.SequenceFinal)
	sig := signInput(t, txn, priv, pubKey, scriptPubKey, 0, value, script.SigVersionBase)

	scriptSig := script.NewEmptyScript()
	require.NoError(t, scriptSig.PushSingleData(sig))
	require.NoError(t, scriptSig.PushSingleData(pubKey))
	require.NoError(t, txn.UpdateInScript(0, scriptSig))

	cache := crypto.NewSignatureCache(1 << 18)
	cached := NewCachingChecker(cache)
	uncached := NewCachingChecker(nil)

	for i := 0; i < 3; i++ {
		errCached := VerifyScript(txn, scriptSig, scriptPubKey, 0, value,
			script.StandardScriptVerifyFlags, cached)
		errUncached := VerifyScript(txn, scriptSig, scriptPubKey, 0, value,
			script.StandardScriptVerifyFlags, uncached)
		assert.Equal(t, errCached == nil, errUncached == nil)
		assert.NoError(t, errCached)
	}
}
