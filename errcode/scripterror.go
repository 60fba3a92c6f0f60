package errcode

type ScriptErr int

const (
	ScriptErrOK ScriptErr = ScriptErrorBase + iota
	ScriptErrUnknownError
	ScriptErrEvalFalse
	ScriptErrOpReturn

	/* Max sizes */

	ScriptErrScriptSize
	ScriptErrPushSize
	ScriptErrOpCount
	ScriptErrStackSize
	ScriptErrSigCount
	ScriptErrPubKeyCount

	/* Failed verify operations */

	ScriptErrVerify
	ScriptErrEqualVerify
	ScriptErrCheckMultiSigVerify
	ScriptErrCheckSigVerify
	ScriptErrNumEqualVerify

	/* Logical/Format/Canonical errors */

	ScriptErrBadOpCode
	ScriptErrDisabledOpCode
	ScriptErrInvalidStackOperation
	ScriptErrInvalidAltStackOperation
	ScriptErrUnbalancedConditional
	ScriptErrInvalidNumberRange

	/* CheckLockTimeVerify and CheckSequenceVerify */

	ScriptErrNegativeLockTime
	ScriptErrUnsatisfiedLockTime

	/* Malleability */

	ScriptErrSigHashType
	ScriptErrSigDer
	ScriptErrMinimalData
	ScriptErrSigPushOnly
	ScriptErrSigHighs
	ScriptErrSigNullDummy
	ScriptErrPubKeyType
	ScriptErrCleanStack
	ScriptErrMinimalIf
	ScriptErrSigNullFail

	/* Softfork safeness */

	ScriptErrDiscourageUpgradableNops
	ScriptErrDiscourageUpgradableWitnessProgram

	/* Segregated witness */

	ScriptErrWitnessProgramWrongLength
	ScriptErrWitnessProgramWitnessEmpty
	ScriptErrWitnessProgramMisMatch
	ScriptErrWitnessMalleated
	ScriptErrWitnessMalleatedP2SH
	ScriptErrWitnessUnexpected
	ScriptErrWitnessPubKeyType

	ScriptErrErrorCount
)

func scriptErrorString(scriptError ScriptErr) string {
	switch scriptError {
	case ScriptErrOK:
		return "No error"
	case ScriptErrEvalFalse:
		return "Script evaluated without error but finished with a false/empty top stack element"
	case ScriptErrVerify:
		return "Script failed an OP_VERIFY operation"
	case ScriptErrEqualVerify:
		return "Script failed an OP_EQUALVERIFY operation"
	case ScriptErrCheckMultiSigVerify:
		return "Script failed an OP_CHECKMULTISIGVERIFY operation"
	case ScriptErrCheckSigVerify:
		return "Script failed an OP_CHECKSIGVERIFY operation"
	case ScriptErrNumEqualVerify:
		return "Script failed an OP_NUMEQUALVERIFY operation"
	case ScriptErrScriptSize:
		return "Script is too big"
	case ScriptErrPushSize:
		return "Push value size limit exceeded"
	case ScriptErrOpCount:
		return "Operation limit exceeded"
	case ScriptErrStackSize:
		return "Stack size limit exceeded"
	case ScriptErrSigCount:
		return "Signature count negative or greater than pubKey count"
	case ScriptErrPubKeyCount:
		return "PubKey count negative or limit exceeded"
	case ScriptErrBadOpCode:
		return "OpCode missing or not understood"
	case ScriptErrDisabledOpCode:
		return "Attempted to use a disabled opCode"
	case ScriptErrInvalidStackOperation:
		return "Operation not valid with the current stack size"
	case ScriptErrInvalidAltStackOperation:
		return "Operation not valid with the current altStack size"
	case ScriptErrOpReturn:
		return "OP_RETURN was encountered"
	case ScriptErrUnbalancedConditional:
		return "Invalid OP_IF construction"
	case ScriptErrInvalidNumberRange:
		return "Given operand is not a number within the valid range"
	case ScriptErrNegativeLockTime:
		return "Negative lockTime"
	case ScriptErrUnsatisfiedLockTime:
		return "LockTime requirement not satisfied"
	case ScriptErrSigHashType:
		return "Signature hash type missing or not understood"
	case ScriptErrSigDer:
		return "Non-canonical DER signature"
	case ScriptErrMinimalData:
		return "Data push larger than necessary"
	case ScriptErrSigPushOnly:
		return "Only non-push operators allowed in signatures"
	case ScriptErrSigHighs:
		return "Non-canonical signature: S value is unnecessarily high"
	case ScriptErrSigNullDummy:
		return "Dummy CheckMultiSig argument must be zero"
	case ScriptErrPubKeyType:
		return "Public key is neither compressed or uncompressed"
	case ScriptErrCleanStack:
		return "Script did not clean its stack"
	case ScriptErrMinimalIf:
		return "OP_IF/NOTIF argument must be minimal"
	case ScriptErrSigNullFail:
		return "Signature must be zero for failed CHECK(MULTI)SIG operation"
	case ScriptErrDiscourageUpgradableNops:
		return "NOPx reserved for soft-fork upgrades"
	case ScriptErrDiscourageUpgradableWitnessProgram:
		return "Witness version reserved for soft-fork upgrades"
	case ScriptErrWitnessProgramWrongLength:
		return "Witness program has incorrect length"
	case ScriptErrWitnessProgramWitnessEmpty:
		return "Witness program was passed an empty witness"
	case ScriptErrWitnessProgramMisMatch:
		return "Witness program hash mismatch"
	case ScriptErrWitnessMalleated:
		return "Witness requires empty scriptSig"
	case ScriptErrWitnessMalleatedP2SH:
		return "Witness requires only-redeemscript scriptSig"
	case ScriptErrWitnessUnexpected:
		return "Witness provided for non-witness script"
	case ScriptErrWitnessPubKeyType:
		return "Using non-compressed keys in segwit"
	default:
		break
	}
	return "unknown error"
}

func (se ScriptErr) String() string {
	return scriptErrorString(se)
}
