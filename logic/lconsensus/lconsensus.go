package lconsensus

import (
	"bytes"

	"github.com/cillian-osullivan/globenew/crypto"
	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/logic/lscript"
	"github.com/cillian-osullivan/globenew/model/script"
	"github.com/cillian-osullivan/globenew/model/tx"
	"github.com/cillian-osullivan/globenew/util/amount"
)

// ApiVersion only changes on breaking contract changes; additions of new
// flag bits do not bump it.
const ApiVersion = 1

// Script verification flag bits exposed to callers. The values are part
// of the wire contract and must never be renumbered; new rules get new,
// previously unused bits.
const (
	ScriptFlagsVerifyNone                uint32 = 0
	ScriptFlagsVerifyP2SH                uint32 = 1 << 0
	ScriptFlagsVerifyDersig              uint32 = 1 << 2
	ScriptFlagsVerifyNullDummy           uint32 = 1 << 4
	ScriptFlagsVerifyCheckLockTimeVerify uint32 = 1 << 9
	ScriptFlagsVerifyCheckSequenceVerify uint32 = 1 << 10
	ScriptFlagsVerifyWitness             uint32 = 1 << 11

	ScriptFlagsVerifyAll = ScriptFlagsVerifyP2SH | ScriptFlagsVerifyDersig |
		ScriptFlagsVerifyNullDummy | ScriptFlagsVerifyCheckLockTimeVerify |
		ScriptFlagsVerifyCheckSequenceVerify | ScriptFlagsVerifyWitness
)

// Error is the stable verification result discriminant. The numeric
// values are fixed; callers on the other side of the boundary switch on
// them directly.
type Error uint32

const (
	ErrOK Error = iota
	ErrTxIndex
	ErrTxSizeMismatch
	ErrTxDeserialize
	ErrAmountRequired
	ErrInvalidFlags
)

func (e Error) String() string {
	switch e {
	case ErrOK:
		return "OK"
	case ErrTxIndex:
		return "input index out of range"
	case ErrTxSizeMismatch:
		return "serialized length mismatch"
	case ErrTxDeserialize:
		return "transaction deserialization failed"
	case ErrAmountRequired:
		return "amount required but not provided"
	case ErrInvalidFlags:
		return "unknown verification flags"
	}
	return "unknown error"
}

// InitSignatureCache sizes the process-wide signature validation cache.
// Call it once at start-up, before any verification traffic. A zero or
// negative budget leaves verification fully functional; every check just
// pays the cryptographic cost.
func InitSignatureCache(nMaxCacheBytes int64) {
	crypto.InitSignatureCacheInstance(nMaxCacheBytes)
}

// Version reports the contract version of this package's entry points.
func Version() int {
	return ApiVersion
}

// VerifyScript checks whether the input nIn of the serialized transaction
// txData satisfies scriptPubKey under the given flags. Flags whose rules
// depend on the spent amount are rejected; use VerifyScriptWithAmount.
func VerifyScript(scriptPubKey []byte, txData []byte, nIn uint, flags uint32) (bool, Error) {
	if flags&ScriptFlagsVerifyWitness != 0 {
		// Witness evaluation commits to the amount being spent.
		return verifyScript(scriptPubKey, 0, txData, nIn, flags, true)
	}
	return verifyScript(scriptPubKey, 0, txData, nIn, flags, false)
}

// VerifyScriptWithAmount is VerifyScript with the spent output's value
// supplied, enabling amount-committing rules such as witness programs.
func VerifyScriptWithAmount(scriptPubKey []byte, value int64, txData []byte,
	nIn uint, flags uint32) (bool, Error) {
	return verifyScript(scriptPubKey, amount.Amount(value), txData, nIn, flags, false)
}

func verifyScript(scriptPubKey []byte, value amount.Amount, txData []byte,
	nIn uint, flags uint32, missingAmount bool) (bool, Error) {

	transaction := tx.NewEmptyTx()
	if err := transaction.Decode(bytes.NewReader(txData)); err != nil {
		return false, ErrTxDeserialize
	}
	if transaction.EncodeSize() != uint32(len(txData)) {
		return false, ErrTxSizeMismatch
	}
	if nIn >= uint(transaction.GetInsCount()) {
		return false, ErrTxIndex
	}
	if flags&^ScriptFlagsVerifyAll != 0 {
		return false, ErrInvalidFlags
	}
	if missingAmount {
		return false, ErrAmountRequired
	}

	// The exposed flag bits coincide with the interpreter's own values,
	// so activation is a straight mask.
	interpreterFlags := flags & ScriptFlagsVerifyAll

	prevScript := script.NewScriptRaw(scriptPubKey)
	scriptSig := transaction.GetTxIn(int(nIn)).GetScriptSig()

	err := lscript.VerifyScript(transaction, scriptSig, prevScript, int(nIn), value,
		interpreterFlags, lscript.NewCachingChecker(crypto.GetSignatureCacheInstance()))
	if err != nil {
		log.Debug("script verify failed for input %d: %v", nIn, err)
		return false, ErrOK
	}
	return true, ErrOK
}
