package lscript

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"

	"github.com/cillian-osullivan/globenew/errcode"
	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/model/opcodes"
	"github.com/cillian-osullivan/globenew/model/script"
	"github.com/cillian-osullivan/globenew/model/tx"
	"github.com/cillian-osullivan/globenew/util"
	"github.com/cillian-osullivan/globenew/util/amount"
)

// VerifyScript runs the full spend authorization check for one input:
// scriptSig, then scriptPubKey over the resulting stack, then the P2SH
// redeem script and/or witness program when the output form and flags
// call for them.
func VerifyScript(transaction *tx.Tx, scriptSig *script.Script, scriptPubKey *script.Script,
	nIn int, value amount.Amount, flags uint32, scriptChecker Checker) error {

	if flags&script.ScriptVerifySigPushOnly != 0 && !scriptSig.IsPushOnly() {
		log.Debug("scriptSig not push only for input %d", nIn)
		return errcode.New(errcode.ScriptErrSigPushOnly)
	}

	stack := util.NewStack()
	err := EvalScript(stack, scriptSig, transaction, nIn, value, flags, scriptChecker, script.SigVersionBase)
	if err != nil {
		return err
	}

	var stackCopy *util.Stack
	if flags&script.ScriptVerifyP2SH != 0 {
		stackCopy = stack.Copy()
	}

	err = EvalScript(stack, scriptPubKey, transaction, nIn, value, flags, scriptChecker, script.SigVersionBase)
	if err != nil {
		return err
	}
	if stack.Empty() {
		return errcode.New(errcode.ScriptErrEvalFalse)
	}
	if !script.BytesToBool(stack.Top(-1).([]byte)) {
		return errcode.New(errcode.ScriptErrEvalFalse)
	}

	hadWitness := false
	witness := transaction.GetTxIn(nIn).GetWitness()

	if flags&script.ScriptVerifyWitness != 0 {
		if version, program, ok := scriptPubKey.IsWitnessProgram(); ok {
			hadWitness = true
			if scriptSig.Size() != 0 {
				// A bare witness program must not be accompanied by a
				// scriptSig, or the txid could be malleated.
				return errcode.New(errcode.ScriptErrWitnessMalleated)
			}
			err = verifyWitnessProgram(transaction, nIn, value, witness, version, program,
				flags, scriptChecker)
			if err != nil {
				return err
			}
			// Leave exactly one true element for the cleanstack check.
			for stack.Size() > 1 {
				stack.Pop()
			}
		}
	}

	// Additional validation for spend-to-script-hash transactions
	if flags&script.ScriptVerifyP2SH != 0 && scriptPubKey.IsPayToScriptHash() {
		// scriptSig must be literals-only or validation fails.
		if !scriptSig.IsPushOnly() {
			return errcode.New(errcode.ScriptErrSigPushOnly)
		}
		// Restore the stack as it stood after the scriptSig; the top
		// element is the serialized redeem script.
		util.Swap(stack, stackCopy)
		if stack.Empty() {
			return errcode.New(errcode.ScriptErrInvalidStackOperation)
		}
		redeemBytes := stack.Pop().([]byte)
		redeemScript := script.NewScriptRaw(redeemBytes)

		err = EvalScript(stack, redeemScript, transaction, nIn, value, flags, scriptChecker,
			script.SigVersionBase)
		if err != nil {
			return err
		}
		if stack.Empty() {
			return errcode.New(errcode.ScriptErrEvalFalse)
		}
		if !script.BytesToBool(stack.Top(-1).([]byte)) {
			return errcode.New(errcode.ScriptErrEvalFalse)
		}

		if flags&script.ScriptVerifyWitness != 0 {
			if version, program, ok := redeemScript.IsWitnessProgram(); ok {
				hadWitness = true
				// The scriptSig must be exactly one push of the redeem
				// script, nothing else, or the txid could be malleated.
				expected := script.NewEmptyScript()
				if err := expected.PushSingleData(redeemBytes); err != nil {
					return err
				}
				if !expected.IsEqual(scriptSig) {
					return errcode.New(errcode.ScriptErrWitnessMalleatedP2SH)
				}
				err = verifyWitnessProgram(transaction, nIn, value, witness, version, program,
					flags, scriptChecker)
				if err != nil {
					return err
				}
				for stack.Size() > 1 {
					stack.Pop()
				}
			}
		}
	}

	// The CLEANSTACK check is only performed after potential P2SH
	// evaluation, as the non-P2SH evaluation of a P2SH script will
	// obviously not result in a clean stack (the P2SH inputs remain). The
	// same holds for witness evaluation.
	if flags&script.ScriptVerifyCleanStack != 0 {
		if stack.Size() != 1 {
			return errcode.New(errcode.ScriptErrCleanStack)
		}
	}

	if flags&script.ScriptVerifyWitness != 0 {
		// Each flag stands on its own; a witness program wrapped in P2SH
		// is only reached when P2SH is also set.
		if !hadWitness && len(witness) > 0 {
			return errcode.New(errcode.ScriptErrWitnessUnexpected)
		}
	}

	return nil
}

// verifyWitnessProgram executes a version 0 witness program (BIP141).
// Higher versions are reserved for upgrades and succeed unless the
// discouragement flag is set.
func verifyWitnessProgram(transaction *tx.Tx, nIn int, value amount.Amount, witness [][]byte,
	version int, program []byte, flags uint32, scriptChecker Checker) error {

	var stack *util.Stack
	var scriptPubKey *script.Script

	if version == 0 {
		switch len(program) {
		case script.WitnessV0ScriptHashSize:
			// P2WSH: the last witness item is the script.
			if len(witness) == 0 {
				return errcode.New(errcode.ScriptErrWitnessProgramWitnessEmpty)
			}
			scriptBytes := witness[len(witness)-1]
			scriptHash := sha256.Sum256(scriptBytes)
			if !bytes.Equal(scriptHash[:], program) {
				return errcode.New(errcode.ScriptErrWitnessProgramMisMatch)
			}
			scriptPubKey = script.NewScriptRaw(scriptBytes)
			stack = util.NewStack()
			for _, item := range witness[:len(witness)-1] {
				stack.Push(item)
			}
		case script.WitnessV0KeyHashSize:
			// P2WPKH: implied script, signature and pubkey on the stack.
			if len(witness) != 2 {
				return errcode.New(errcode.ScriptErrWitnessProgramMisMatch)
			}
			scriptPubKey = script.NewEmptyScript()
			scriptPubKey.PushOpCode(opcodes.OP_DUP)
			scriptPubKey.PushOpCode(opcodes.OP_HASH160)
			scriptPubKey.PushSingleData(program)
			scriptPubKey.PushOpCode(opcodes.OP_EQUALVERIFY)
			scriptPubKey.PushOpCode(opcodes.OP_CHECKSIG)
			stack = util.NewStack()
			for _, item := range witness {
				stack.Push(item)
			}
		default:
			return errcode.New(errcode.ScriptErrWitnessProgramWrongLength)
		}
	} else {
		if flags&script.ScriptVerifyDiscourageUpgradableWitnessProgram != 0 {
			return errcode.New(errcode.ScriptErrDiscourageUpgradableWitnessProgram)
		}
		// Higher version witness scripts return true for future softfork
		// compatibility.
		return nil
	}

	// Disallow stack item size > MaxScriptElementSize in witness stack.
	for i := 0; i < stack.Size(); i++ {
		if len(stack.Top(-(i + 1)).([]byte)) > script.MaxScriptElementSize {
			return errcode.New(errcode.ScriptErrPushSize)
		}
	}

	err := EvalScript(stack, scriptPubKey, transaction, nIn, value, flags, scriptChecker,
		script.SigVersionWitnessV0)
	if err != nil {
		return err
	}

	// Scripts inside witness implicitly require cleanstack behaviour.
	if stack.Size() != 1 {
		return errcode.New(errcode.ScriptErrEvalFalse)
	}
	if !script.BytesToBool(stack.Top(-1).([]byte)) {
		return errcode.New(errcode.ScriptErrEvalFalse)
	}
	return nil
}

// EvalScript executes one script over the given stack.
func EvalScript(stack *util.Stack, s *script.Script, transaction *tx.Tx, nIn int,
	money amount.Amount, flags uint32, scriptChecker Checker, sigVersion int) error {

	if s.GetBadOpCode() {
		return errcode.New(errcode.ScriptErrBadOpCode)
	}
	if s.Size() > script.MaxScriptSize {
		return errcode.New(errcode.ScriptErrScriptSize)
	}

	nOpCount := 0

	bnZero := script.NewScriptNum(0)
	bnFalse := script.NewScriptNum(0)
	bnTrue := script.NewScriptNum(1)

	beginCodeHash := 0
	var vchFalse []byte
	vchTrue := []byte{1}

	stackExec := util.NewStack()
	stackAlt := util.NewStack()

	for i, e := range s.ParsedOpCodes {
		fExec := stackExec.CountBool(false) == 0

		if len(e.Data) > script.MaxScriptElementSize {
			return errcode.New(errcode.ScriptErrPushSize)
		}

		// Note how OP_RESERVED does not count towards the opCode limit.
		if e.OpValue > opcodes.OP_16 {
			nOpCount++
			if nOpCount > script.MaxOpsPerScript {
				return errcode.New(errcode.ScriptErrOpCount)
			}
		}

		if script.IsOpCodeDisabled(e.OpValue) {
			// Disabled opcodes fail the script even when not executed.
			return errcode.New(errcode.ScriptErrDisabledOpCode)
		}

		if fExec && e.OpValue <= opcodes.OP_PUSHDATA4 {
			if flags&script.ScriptVerifyMinimalData != 0 && !e.CheckMinimalDataPush() {
				return errcode.New(errcode.ScriptErrMinimalData)
			}
			stack.Push(e.Data)
		} else if fExec || (opcodes.OP_IF <= e.OpValue && e.OpValue <= opcodes.OP_ENDIF) {
			switch e.OpValue {
			// Push value
			case opcodes.OP_1NEGATE, opcodes.OP_1, opcodes.OP_2, opcodes.OP_3,
				opcodes.OP_4, opcodes.OP_5, opcodes.OP_6, opcodes.OP_7,
				opcodes.OP_8, opcodes.OP_9, opcodes.OP_10, opcodes.OP_11,
				opcodes.OP_12, opcodes.OP_13, opcodes.OP_14, opcodes.OP_15,
				opcodes.OP_16:
				bn := script.NewScriptNum(int64(e.OpValue) - int64(opcodes.OP_1-1))
				stack.Push(bn.Serialize())

			// Control
			case opcodes.OP_NOP:
				// do nothing

			case opcodes.OP_CHECKLOCKTIMEVERIFY:
				if flags&script.ScriptVerifyCheckLockTimeVerify == 0 {
					// treated as a NOP2
					if flags&script.ScriptVerifyDiscourageUpgradableNops != 0 {
						return errcode.New(errcode.ScriptErrDiscourageUpgradableNops)
					}
					break
				}
				if stack.Empty() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				// Note that elsewhere numeric opcodes are limited to
				// operands in the range -2**31+1 to 2**31-1, however it
				// is legal for opcodes to produce results exceeding that
				// range. This limitation is implemented by GetScriptNum's
				// default 4-byte limit.
				//
				// If we kept to that limit we'd have a year 2038 problem,
				// even though the lockTime field in transactions
				// themselves is uint32 which only becomes meaningless
				// after the year 2106.
				//
				// Thus as a special case we tell GetScriptNum to accept
				// up to 5-byte bignums, which are good until 2**39-1,
				// the year 19378.
				topBytes := stack.Top(-1).([]byte)
				lockTime, err := script.GetScriptNum(topBytes,
					flags&script.ScriptVerifyMinimalData != 0, 5)
				if err != nil {
					return err
				}
				// In the rare event that the argument needs to be < 0 due
				// to some arithmetic being done first, you can always use
				// 0 MAX CHECKLOCKTIMEVERIFY.
				if lockTime.Value < 0 {
					return errcode.New(errcode.ScriptErrNegativeLockTime)
				}
				if !scriptChecker.CheckLockTime(lockTime.Value, int64(transaction.GetLockTime()),
					transaction.GetTxIn(nIn).Sequence) {
					return errcode.New(errcode.ScriptErrUnsatisfiedLockTime)
				}

			case opcodes.OP_CHECKSEQUENCEVERIFY:
				if flags&script.ScriptVerifyCheckSequenceVerify == 0 {
					// treated as a NOP3
					if flags&script.ScriptVerifyDiscourageUpgradableNops != 0 {
						return errcode.New(errcode.ScriptErrDiscourageUpgradableNops)
					}
					break
				}
				if stack.Empty() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				// As with CHECKLOCKTIMEVERIFY, 5-byte bignums are accepted.
				topBytes := stack.Top(-1).([]byte)
				sequence, err := script.GetScriptNum(topBytes,
					flags&script.ScriptVerifyMinimalData != 0, 5)
				if err != nil {
					return err
				}
				if sequence.Value < 0 {
					return errcode.New(errcode.ScriptErrNegativeLockTime)
				}
				// To provide for future soft-fork extensibility, if the
				// operand has the disabled lock-time flag set,
				// checkSequenceVerify behaves as a NOP.
				if sequence.Value&script.SequenceLockTimeDisableFlag == script.SequenceLockTimeDisableFlag {
					break
				}
				if !scriptChecker.CheckSequence(sequence.Value,
					int64(transaction.GetTxIn(nIn).Sequence), uint32(transaction.GetVersion())) {
					return errcode.New(errcode.ScriptErrUnsatisfiedLockTime)
				}

			case opcodes.OP_NOP1, opcodes.OP_NOP4, opcodes.OP_NOP5,
				opcodes.OP_NOP6, opcodes.OP_NOP7, opcodes.OP_NOP8,
				opcodes.OP_NOP9, opcodes.OP_NOP10:
				if flags&script.ScriptVerifyDiscourageUpgradableNops != 0 {
					return errcode.New(errcode.ScriptErrDiscourageUpgradableNops)
				}

			case opcodes.OP_IF, opcodes.OP_NOTIF:
				// <expression> if [statements] [else [statements]] endif
				fValue := false
				if fExec {
					if stack.Empty() {
						return errcode.New(errcode.ScriptErrUnbalancedConditional)
					}
					vch := stack.Top(-1).([]byte)
					// Under MINIMALIF the input argument must be exactly
					// empty or a single 0x01 byte.
					if sigVersion == script.SigVersionWitnessV0 &&
						flags&script.ScriptVerifyMinimalIf != 0 {
						if len(vch) > 1 || (len(vch) == 1 && vch[0] != 1) {
							return errcode.New(errcode.ScriptErrMinimalIf)
						}
					}
					fValue = script.BytesToBool(vch)
					if e.OpValue == opcodes.OP_NOTIF {
						fValue = !fValue
					}
					stack.Pop()
				}
				stackExec.Push(fValue)

			case opcodes.OP_ELSE:
				if stackExec.Empty() {
					return errcode.New(errcode.ScriptErrUnbalancedConditional)
				}
				stackExec.SetTop(-1, !stackExec.Top(-1).(bool))

			case opcodes.OP_ENDIF:
				if stackExec.Empty() {
					return errcode.New(errcode.ScriptErrUnbalancedConditional)
				}
				stackExec.Pop()

			case opcodes.OP_VERIFY:
				if stack.Empty() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				if !script.BytesToBool(stack.Top(-1).([]byte)) {
					return errcode.New(errcode.ScriptErrVerify)
				}
				stack.Pop()

			case opcodes.OP_RETURN:
				return errcode.New(errcode.ScriptErrOpReturn)

			// Stack ops
			case opcodes.OP_TOALTSTACK:
				if stack.Empty() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				stackAlt.Push(stack.Pop())

			case opcodes.OP_FROMALTSTACK:
				if stackAlt.Empty() {
					return errcode.New(errcode.ScriptErrInvalidAltStackOperation)
				}
				stack.Push(stackAlt.Pop())

			case opcodes.OP_2DROP:
				// (x1 x2 --)
				if stack.Size() < 2 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				stack.Pop()
				stack.Pop()

			case opcodes.OP_2DUP:
				// (x1 x2 -- x1 x2 x1 x2)
				if stack.Size() < 2 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				vch1 := stack.Top(-2)
				vch2 := stack.Top(-1)
				stack.Push(vch1)
				stack.Push(vch2)

			case opcodes.OP_3DUP:
				// (x1 x2 x3 -- x1 x2 x3 x1 x2 x3)
				if stack.Size() < 3 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				vch1 := stack.Top(-3)
				vch2 := stack.Top(-2)
				vch3 := stack.Top(-1)
				stack.Push(vch1)
				stack.Push(vch2)
				stack.Push(vch3)

			case opcodes.OP_2OVER:
				// (x1 x2 x3 x4 -- x1 x2 x3 x4 x1 x2)
				if stack.Size() < 4 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				vch1 := stack.Top(-4)
				vch2 := stack.Top(-3)
				stack.Push(vch1)
				stack.Push(vch2)

			case opcodes.OP_2ROT:
				// (x1 x2 x3 x4 x5 x6 -- x3 x4 x5 x6 x1 x2)
				if stack.Size() < 6 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				vch1 := stack.Top(-6)
				vch2 := stack.Top(-5)
				stack.Erase(stack.Size()-6, stack.Size()-4)
				stack.Push(vch1)
				stack.Push(vch2)

			case opcodes.OP_2SWAP:
				// (x1 x2 x3 x4 -- x3 x4 x1 x2)
				if stack.Size() < 4 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				stack.Swap(stack.Size()-4, stack.Size()-2)
				stack.Swap(stack.Size()-3, stack.Size()-1)

			case opcodes.OP_IFDUP:
				// (x -- x x) if x is not zero
				if stack.Empty() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				vch := stack.Top(-1).([]byte)
				if script.BytesToBool(vch) {
					stack.Push(vch)
				}

			case opcodes.OP_DEPTH:
				// -- stacksize
				bn := script.NewScriptNum(int64(stack.Size()))
				stack.Push(bn.Serialize())

			case opcodes.OP_DROP:
				// (x --)
				if stack.Empty() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				stack.Pop()

			case opcodes.OP_DUP:
				// (x -- x x)
				if stack.Empty() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				stack.Push(stack.Top(-1))

			case opcodes.OP_NIP:
				// (x1 x2 -- x2)
				if stack.Size() < 2 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				stack.RemoveAt(stack.Size() - 2)

			case opcodes.OP_OVER:
				// (x1 x2 -- x1 x2 x1)
				if stack.Size() < 2 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				stack.Push(stack.Top(-2))

			case opcodes.OP_PICK, opcodes.OP_ROLL:
				// (xn ... x2 x1 x0 n -- xn ... x2 x1 x0 xn)
				// (xn ... x2 x1 x0 n -- ... x2 x1 x0 xn)
				if stack.Size() < 2 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				topBytes := stack.Top(-1).([]byte)
				bn, err := script.GetScriptNum(topBytes,
					flags&script.ScriptVerifyMinimalData != 0, script.DefaultMaxNumSize)
				if err != nil {
					return err
				}
				stack.Pop()
				n := int(bn.Int32())
				if n < 0 || n >= stack.Size() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				vch := stack.Top(-(n + 1))
				if e.OpValue == opcodes.OP_ROLL {
					stack.RemoveAt(stack.Size() - n - 1)
				}
				stack.Push(vch)

			case opcodes.OP_ROT:
				// (x1 x2 x3 -- x2 x3 x1)
				if stack.Size() < 3 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				stack.Swap(stack.Size()-3, stack.Size()-2)
				stack.Swap(stack.Size()-2, stack.Size()-1)

			case opcodes.OP_SWAP:
				// (x1 x2 -- x2 x1)
				if stack.Size() < 2 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				stack.Swap(stack.Size()-2, stack.Size()-1)

			case opcodes.OP_TUCK:
				// (x1 x2 -- x2 x1 x2)
				if stack.Size() < 2 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				stack.Insert(stack.Size()-2, stack.Top(-1))

			case opcodes.OP_SIZE:
				// (in -- in size)
				if stack.Empty() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				bn := script.NewScriptNum(int64(len(stack.Top(-1).([]byte))))
				stack.Push(bn.Serialize())

			// Bitwise logic
			case opcodes.OP_EQUAL, opcodes.OP_EQUALVERIFY:
				// (x1 x2 -- bool)
				if stack.Size() < 2 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				vch1 := stack.Top(-2).([]byte)
				vch2 := stack.Top(-1).([]byte)
				fEqual := bytes.Equal(vch1, vch2)
				stack.Pop()
				stack.Pop()
				if fEqual {
					stack.Push(vchTrue)
				} else {
					stack.Push(vchFalse)
				}
				if e.OpValue == opcodes.OP_EQUALVERIFY {
					if !fEqual {
						return errcode.New(errcode.ScriptErrEqualVerify)
					}
					stack.Pop()
				}

			// Numeric
			case opcodes.OP_1ADD, opcodes.OP_1SUB, opcodes.OP_NEGATE,
				opcodes.OP_ABS, opcodes.OP_NOT, opcodes.OP_0NOTEQUAL:
				// (in -- out)
				if stack.Empty() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				topBytes := stack.Top(-1).([]byte)
				bn, err := script.GetScriptNum(topBytes,
					flags&script.ScriptVerifyMinimalData != 0, script.DefaultMaxNumSize)
				if err != nil {
					return err
				}
				switch e.OpValue {
				case opcodes.OP_1ADD:
					bn.Value++
				case opcodes.OP_1SUB:
					bn.Value--
				case opcodes.OP_NEGATE:
					bn.Value = -bn.Value
				case opcodes.OP_ABS:
					if bn.Value < 0 {
						bn.Value = -bn.Value
					}
				case opcodes.OP_NOT:
					if bn.Value == bnZero.Value {
						bn.Value = 1
					} else {
						bn.Value = 0
					}
				case opcodes.OP_0NOTEQUAL:
					if bn.Value != bnZero.Value {
						bn.Value = 1
					} else {
						bn.Value = 0
					}
				}
				stack.Pop()
				stack.Push(bn.Serialize())

			case opcodes.OP_ADD, opcodes.OP_SUB, opcodes.OP_BOOLAND,
				opcodes.OP_BOOLOR, opcodes.OP_NUMEQUAL, opcodes.OP_NUMEQUALVERIFY,
				opcodes.OP_NUMNOTEQUAL, opcodes.OP_LESSTHAN, opcodes.OP_GREATERTHAN,
				opcodes.OP_LESSTHANOREQUAL, opcodes.OP_GREATERTHANOREQUAL,
				opcodes.OP_MIN, opcodes.OP_MAX:
				// (x1 x2 -- out)
				if stack.Size() < 2 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				requireMinimal := flags&script.ScriptVerifyMinimalData != 0
				bn1, err := script.GetScriptNum(stack.Top(-2).([]byte),
					requireMinimal, script.DefaultMaxNumSize)
				if err != nil {
					return err
				}
				bn2, err := script.GetScriptNum(stack.Top(-1).([]byte),
					requireMinimal, script.DefaultMaxNumSize)
				if err != nil {
					return err
				}
				bn := script.NewScriptNum(0)
				switch e.OpValue {
				case opcodes.OP_ADD:
					bn.Value = bn1.Value + bn2.Value
				case opcodes.OP_SUB:
					bn.Value = bn1.Value - bn2.Value
				case opcodes.OP_BOOLAND:
					if bn1.Value != bnZero.Value && bn2.Value != bnZero.Value {
						bn = bnTrue
					} else {
						bn = bnFalse
					}
				case opcodes.OP_BOOLOR:
					if bn1.Value != bnZero.Value || bn2.Value != bnZero.Value {
						bn = bnTrue
					} else {
						bn = bnFalse
					}
				case opcodes.OP_NUMEQUAL, opcodes.OP_NUMEQUALVERIFY:
					if bn1.Value == bn2.Value {
						bn = bnTrue
					} else {
						bn = bnFalse
					}
				case opcodes.OP_NUMNOTEQUAL:
					if bn1.Value != bn2.Value {
						bn = bnTrue
					} else {
						bn = bnFalse
					}
				case opcodes.OP_LESSTHAN:
					if bn1.Value < bn2.Value {
						bn = bnTrue
					} else {
						bn = bnFalse
					}
				case opcodes.OP_GREATERTHAN:
					if bn1.Value > bn2.Value {
						bn = bnTrue
					} else {
						bn = bnFalse
					}
				case opcodes.OP_LESSTHANOREQUAL:
					if bn1.Value <= bn2.Value {
						bn = bnTrue
					} else {
						bn = bnFalse
					}
				case opcodes.OP_GREATERTHANOREQUAL:
					if bn1.Value >= bn2.Value {
						bn = bnTrue
					} else {
						bn = bnFalse
					}
				case opcodes.OP_MIN:
					if bn1.Value < bn2.Value {
						bn = bn1
					} else {
						bn = bn2
					}
				case opcodes.OP_MAX:
					if bn1.Value > bn2.Value {
						bn = bn1
					} else {
						bn = bn2
					}
				}
				stack.Pop()
				stack.Pop()
				stack.Push(bn.Serialize())
				if e.OpValue == opcodes.OP_NUMEQUALVERIFY {
					if !script.BytesToBool(stack.Top(-1).([]byte)) {
						return errcode.New(errcode.ScriptErrNumEqualVerify)
					}
					stack.Pop()
				}

			case opcodes.OP_WITHIN:
				// (x min max -- out)
				if stack.Size() < 3 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				requireMinimal := flags&script.ScriptVerifyMinimalData != 0
				bn1, err := script.GetScriptNum(stack.Top(-3).([]byte),
					requireMinimal, script.DefaultMaxNumSize)
				if err != nil {
					return err
				}
				bn2, err := script.GetScriptNum(stack.Top(-2).([]byte),
					requireMinimal, script.DefaultMaxNumSize)
				if err != nil {
					return err
				}
				bn3, err := script.GetScriptNum(stack.Top(-1).([]byte),
					requireMinimal, script.DefaultMaxNumSize)
				if err != nil {
					return err
				}
				fValue := bn2.Value <= bn1.Value && bn1.Value < bn3.Value
				stack.Pop()
				stack.Pop()
				stack.Pop()
				if fValue {
					stack.Push(vchTrue)
				} else {
					stack.Push(vchFalse)
				}

			// Crypto
			case opcodes.OP_RIPEMD160, opcodes.OP_SHA1, opcodes.OP_SHA256,
				opcodes.OP_HASH160, opcodes.OP_HASH256:
				// (in -- hash)
				if stack.Empty() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				vch := stack.Top(-1).([]byte)
				var vchHash []byte
				switch e.OpValue {
				case opcodes.OP_RIPEMD160:
					h := ripemd160.New()
					h.Write(vch)
					vchHash = h.Sum(nil)
				case opcodes.OP_SHA1:
					result := sha1.Sum(vch)
					vchHash = result[:]
				case opcodes.OP_SHA256:
					result := sha256.Sum256(vch)
					vchHash = result[:]
				case opcodes.OP_HASH160:
					vchHash = util.Hash160(vch)
				case opcodes.OP_HASH256:
					vchHash = util.DoubleSha256Bytes(vch)
				}
				stack.Pop()
				stack.Push(vchHash)

			case opcodes.OP_CODESEPARATOR:
				// Hash starts after the code separator.
				beginCodeHash = i + 1

			case opcodes.OP_CHECKSIG, opcodes.OP_CHECKSIGVERIFY:
				// (sig pubkey -- bool)
				if stack.Size() < 2 {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				vchSig := stack.Top(-2).([]byte)
				vchPubKey := stack.Top(-1).([]byte)

				scriptCode := script.NewScriptOps(s.ParsedOpCodes[beginCodeHash:])
				// The signature can't be contained by the script it signs;
				// drop it for the legacy scheme.
				if sigVersion == script.SigVersionBase {
					scriptCode = scriptCode.RemoveOpcodeByData(vchSig)
				}

				if err := script.CheckSignatureEncoding(vchSig, flags); err != nil {
					return err
				}
				if err := script.CheckPubKeyEncoding(vchPubKey, flags, sigVersion); err != nil {
					return err
				}

				fSuccess, err := scriptChecker.CheckSig(transaction, vchSig, vchPubKey,
					scriptCode, nIn, money, sigVersion)
				if err != nil {
					return err
				}
				if !fSuccess && flags&script.ScriptVerifyNullFail != 0 && len(vchSig) > 0 {
					return errcode.New(errcode.ScriptErrSigNullFail)
				}

				stack.Pop()
				stack.Pop()
				if fSuccess {
					stack.Push(vchTrue)
				} else {
					stack.Push(vchFalse)
				}
				if e.OpValue == opcodes.OP_CHECKSIGVERIFY {
					if !fSuccess {
						return errcode.New(errcode.ScriptErrCheckSigVerify)
					}
					stack.Pop()
				}

			case opcodes.OP_CHECKMULTISIG, opcodes.OP_CHECKMULTISIGVERIFY:
				// ([sig ...] num_of_signatures [pubkey ...]
				// num_of_pubkeys -- bool)
				idxKeyCount := 1
				if stack.Size() < idxKeyCount {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				requireMinimal := flags&script.ScriptVerifyMinimalData != 0
				keyCountNum, err := script.GetScriptNum(stack.Top(-idxKeyCount).([]byte),
					requireMinimal, script.DefaultMaxNumSize)
				if err != nil {
					return err
				}
				keyCount := int(keyCountNum.Int32())
				if keyCount < 0 || keyCount > script.MaxPubKeysPerMultiSig {
					return errcode.New(errcode.ScriptErrPubKeyCount)
				}
				nOpCount += keyCount
				if nOpCount > script.MaxOpsPerScript {
					return errcode.New(errcode.ScriptErrOpCount)
				}

				idxTopKey := idxKeyCount + 1
				idxSigCount := idxTopKey + keyCount
				if stack.Size() < idxSigCount {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				sigCountNum, err := script.GetScriptNum(stack.Top(-idxSigCount).([]byte),
					requireMinimal, script.DefaultMaxNumSize)
				if err != nil {
					return err
				}
				sigCount := int(sigCountNum.Int32())
				if sigCount < 0 || sigCount > keyCount {
					return errcode.New(errcode.ScriptErrSigCount)
				}

				idxTopSig := idxSigCount + 1
				// One extra unused value, due to an old bug.
				idxDummy := idxTopSig + sigCount
				if stack.Size() < idxDummy {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}

				scriptCode := script.NewScriptOps(s.ParsedOpCodes[beginCodeHash:])
				if sigVersion == script.SigVersionBase {
					for k := 0; k < sigCount; k++ {
						vchSig := stack.Top(-(idxTopSig + k)).([]byte)
						scriptCode = scriptCode.RemoveOpcodeByData(vchSig)
					}
				}

				fSuccess := true
				iSig, iKey := 0, 0
				for fSuccess && sigCount > 0 {
					vchSig := stack.Top(-(idxTopSig + iSig)).([]byte)
					vchPubKey := stack.Top(-(idxTopKey + iKey)).([]byte)

					// Any violation of the encoding rules fails the
					// script, even for pairs that would not be checked.
					if err := script.CheckSignatureEncoding(vchSig, flags); err != nil {
						return err
					}
					if err := script.CheckPubKeyEncoding(vchPubKey, flags, sigVersion); err != nil {
						return err
					}

					fOk, err := scriptChecker.CheckSig(transaction, vchSig, vchPubKey,
						scriptCode, nIn, money, sigVersion)
					if err != nil {
						return err
					}
					if fOk {
						iSig++
						sigCount--
					}
					iKey++
					keyCount--
					// If there are more signatures left than keys left,
					// then too many signatures have failed.
					if sigCount > keyCount {
						fSuccess = false
					}
				}

				// Clean up stack of actual arguments.
				for k := 0; k < idxDummy-1; k++ {
					// A sig might be padded with zeros to defeat NULLFAIL;
					// check every remaining signature.
					if !fSuccess && flags&script.ScriptVerifyNullFail != 0 &&
						iKey == 0 && len(stack.Top(-1).([]byte)) > 0 {
						return errcode.New(errcode.ScriptErrSigNullFail)
					}
					if iKey > 0 {
						iKey--
					}
					stack.Pop()
				}

				// The dummy element is untouched by the sig checking
				// bug, but NULLDUMMY requires it to be zero-length.
				if stack.Empty() {
					return errcode.New(errcode.ScriptErrInvalidStackOperation)
				}
				if flags&script.ScriptVerifyNullDummy != 0 &&
					len(stack.Top(-1).([]byte)) > 0 {
					return errcode.New(errcode.ScriptErrSigNullDummy)
				}
				stack.Pop()

				if fSuccess {
					stack.Push(vchTrue)
				} else {
					stack.Push(vchFalse)
				}
				if e.OpValue == opcodes.OP_CHECKMULTISIGVERIFY {
					if !fSuccess {
						return errcode.New(errcode.ScriptErrCheckMultiSigVerify)
					}
					stack.Pop()
				}

			default:
				return errcode.New(errcode.ScriptErrBadOpCode)
			}
		} else if e.OpValue == opcodes.OP_VERIF || e.OpValue == opcodes.OP_VERNOTIF {
			// Always illegal, even in an unexecuted branch.
			return errcode.New(errcode.ScriptErrBadOpCode)
		}

		if stack.Size()+stackAlt.Size() > script.MaxStackSize {
			return errcode.New(errcode.ScriptErrStackSize)
		}
	}

	if !stackExec.Empty() {
		return errcode.New(errcode.ScriptErrUnbalancedConditional)
	}

	return nil
}
