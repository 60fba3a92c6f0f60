package script

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/cillian-osullivan/globenew/crypto"
	"github.com/cillian-osullivan/globenew/errcode"
	"github.com/cillian-osullivan/globenew/log"
	"github.com/cillian-osullivan/globenew/model/opcodes"
	"github.com/cillian-osullivan/globenew/util"
)

const (
	MaxMessagePayload = 32 * 1024 * 1024
)

const (
	// MaxPubKeysPerMultiSig is the maximum number of public keys per
	// multiSig operation.
	MaxPubKeysPerMultiSig = 20

	// LockTimeThreshold is the threshold for lockTime: below this value it
	// is interpreted as a block number, otherwise as a UNIX timestamp.
	// Tue Nov 5 00:53:20 1985 UTC
	LockTimeThreshold = 500000000

	// SequenceFinal set on every input disables lockTime.
	SequenceFinal = 0xffffffff

	MaxScriptSize        = 10000
	MaxScriptElementSize = 520
	MaxOpsPerScript      = 201

	// MaxStackSize bounds the combined main and alt stack depth.
	MaxStackSize = 1000

	// MaxStandardScriptSigSize rounds up the biggest 'standard' scriptSig,
	// a 15-of-15 P2SH multisig with compressed keys.
	MaxStandardScriptSigSize = 1650
)

const (
	// SequenceLockTimeDisableFlag set in a sequence means it is NOT
	// interpreted as a relative lock-time.
	SequenceLockTimeDisableFlag = 1 << 31

	// SequenceLockTimeTypeFlag set means the relative lock-time has units
	// of 512 seconds, otherwise it counts blocks.
	SequenceLockTimeTypeFlag = 1 << 22

	// SequenceLockTimeMask extracts the lock-time from the sequence field.
	SequenceLockTimeMask = 0x0000ffff

	// SequenceLockTimeGranularity converts a time based relative lock-time
	// to seconds by shifting up 9 bits.
	SequenceLockTimeGranularity = 9
)

/** Script verification flags */
const (
	ScriptVerifyNone = 0

	// Evaluate P2SH subscripts (BIP16).
	ScriptVerifyP2SH = 1 << 0

	// Passing a non-strict-DER signature or one with undefined hashtype to
	// a checksig operation causes script failure. Evaluating a pubkey that
	// is not (0x04 + 64 bytes) or (0x02 or 0x03 + 32 bytes) by checksig
	// causes script failure.
	ScriptVerifyStrictEnc = 1 << 1

	// Passing a non-strict-DER signature to a checksig operation causes
	// script failure (BIP62 rule 1).
	ScriptVerifyDersig = 1 << 2

	// Passing a non-strict-DER signature or one with S > order/2 to a
	// checksig operation causes script failure (BIP62 rule 5).
	ScriptVerifyLowS = 1 << 3

	// Verify dummy stack item consumed by CHECKMULTISIG is of zero-length
	// (BIP62 rule 7).
	ScriptVerifyNullDummy = 1 << 4

	// Using a non-push operator in the scriptSig causes script failure
	// (BIP62 rule 2).
	ScriptVerifySigPushOnly = 1 << 5

	// Require minimal encodings for all push operations and for any stack
	// element interpreted as a number (BIP62 rules 3 and 4).
	ScriptVerifyMinimalData = 1 << 6

	// Discourage use of NOPs reserved for upgrades (NOP1-10). NOPs that
	// are not executed, e.g. within an unexecuted IF ENDIF block, are not
	// rejected. Never a mandatory flag applied to scripts in a block.
	ScriptVerifyDiscourageUpgradableNops = 1 << 7

	// Require that only a single stack element remains after evaluation
	// (BIP62 rule 6). Never used without P2SH or WITNESS.
	ScriptVerifyCleanStack = 1 << 8

	// Verify CHECKLOCKTIMEVERIFY (BIP65).
	ScriptVerifyCheckLockTimeVerify = 1 << 9

	// Support CHECKSEQUENCEVERIFY (BIP112).
	ScriptVerifyCheckSequenceVerify = 1 << 10

	// Support segregated witness (BIP141).
	ScriptVerifyWitness = 1 << 11

	// Making v1-v16 witness programs non-standard.
	ScriptVerifyDiscourageUpgradableWitnessProgram = 1 << 12

	// Segwit script only: require the argument of OP_IF/NOTIF to be
	// exactly 0x01 or empty vector.
	ScriptVerifyMinimalIf = 1 << 13

	// Signature(s) must be empty vector if a CHECK(MULTI)SIG operation
	// failed.
	ScriptVerifyNullFail = 1 << 14

	// Public keys in segwit scripts must be compressed.
	ScriptVerifyWitnessPubKeyType = 1 << 15

	ScriptMaxOpReturnRelay uint = 223
)

// SigVersion selects the signature hashing scheme a checksig runs under.
const (
	SigVersionBase      = 0
	SigVersionWitnessV0 = 1
)

// Witness program constraints (BIP141).
const (
	WitnessV0ScriptHashSize = 32
	WitnessV0KeyHashSize    = 20
	MaxWitnessProgramSize   = 40
	MinWitnessProgramSize   = 2
)

const (
	ScriptNonStandard = iota
	// ScriptPubkey and following are 'standard' transaction types:
	ScriptPubkey
	ScriptPubkeyHash
	ScriptHash
	ScriptMultiSig
	ScriptNullData
	ScriptWitnessV0KeyHash
	ScriptWitnessV0ScriptHash
)

const (
	// MandatoryScriptVerifyFlags are the script verification flags all new
	// blocks must comply with for them to be valid (old blocks may not).
	MandatoryScriptVerifyFlags uint32 = ScriptVerifyP2SH | ScriptVerifyStrictEnc

	// StandardScriptVerifyFlags are the flags standard transactions comply
	// with. Scripts violating them may still be present in valid blocks.
	StandardScriptVerifyFlags uint32 = MandatoryScriptVerifyFlags | ScriptVerifyDersig |
		ScriptVerifyMinimalData | ScriptVerifyNullDummy |
		ScriptVerifyDiscourageUpgradableNops | ScriptVerifyCleanStack |
		ScriptVerifyNullFail | ScriptVerifyCheckLockTimeVerify |
		ScriptVerifyCheckSequenceVerify | ScriptVerifyLowS |
		ScriptVerifyWitness | ScriptVerifyDiscourageUpgradableWitnessProgram |
		ScriptVerifyMinimalIf | ScriptVerifyWitnessPubKeyType

	// StandardNotMandatoryVerifyFlags are, for convenience, the standard
	// but not mandatory verify flags.
	StandardNotMandatoryVerifyFlags uint32 = StandardScriptVerifyFlags &^ MandatoryScriptVerifyFlags
)

type Script struct {
	data          []byte
	ParsedOpCodes []opcodes.ParsedOpCode
	badOpCode     bool
}

func NewScriptRaw(bytes []byte) *Script {
	newBytes := make([]byte, len(bytes))
	copy(newBytes, bytes)
	s := Script{data: newBytes}
	// convertOPS may fail; badOpCode records that.
	s.convertOPS()
	return &s
}

func NewScriptOps(oldParsedOpCodes []opcodes.ParsedOpCode) *Script {
	newParsedOpCodes := make([]opcodes.ParsedOpCode, 0, len(oldParsedOpCodes))
	for _, oldParsedOpCode := range oldParsedOpCodes {
		newParsedOpCodes = append(newParsedOpCodes, *opcodes.NewParsedOpCode(oldParsedOpCode.OpValue,
			oldParsedOpCode.Length, oldParsedOpCode.Data))
	}
	s := Script{ParsedOpCodes: newParsedOpCodes}
	s.convertRaw()
	s.badOpCode = false
	return &s
}

func NewEmptyScript() *Script {
	s := Script{}
	s.data = make([]byte, 0)
	s.ParsedOpCodes = make([]opcodes.ParsedOpCode, 0)
	s.badOpCode = false
	return &s
}

func (s *Script) SerializeSize() uint32 {
	return s.EncodeSize()
}

func (s *Script) Serialize(writer io.Writer) error {
	return s.Encode(writer)
}

func (s *Script) Unserialize(reader io.Reader, isCoinBase bool) error {
	return s.Decode(reader, isCoinBase)
}

func (s *Script) EncodeSize() uint32 {
	return util.VarIntSerializeSize(uint64(len(s.data))) + uint32(len(s.data))
}

func (s *Script) Encode(writer io.Writer) error {
	return util.WriteVarBytes(writer, s.data)
}

func (s *Script) Decode(reader io.Reader, isCoinBase bool) error {
	b, err := ReadScript(reader, MaxMessagePayload, "tx input signature script")
	if err != nil {
		return err
	}
	s.data = b
	if isCoinBase {
		return nil
	}
	s.convertOPS()
	return nil
}

func (s *Script) convertRaw() {
	s.data = make([]byte, 0)
	for _, e := range s.ParsedOpCodes {
		s.data = append(s.data, e.OpValue)
		if e.OpValue == opcodes.OP_PUSHDATA1 {
			s.data = append(s.data, byte(e.Length))
		} else if e.OpValue == opcodes.OP_PUSHDATA2 {
			b := make([]byte, 2)
			binary.LittleEndian.PutUint16(b, uint16(e.Length))
			s.data = append(s.data, b...)
		} else if e.OpValue == opcodes.OP_PUSHDATA4 {
			b := make([]byte, 4)
			binary.LittleEndian.PutUint32(b, uint32(e.Length))
			s.data = append(s.data, b...)
		}
		if e.OpValue <= opcodes.OP_PUSHDATA4 && e.Length > 0 {
			s.data = append(s.data, e.Data...)
		}
	}
}

func (s *Script) GetData() []byte {
	return s.data
}

func (s *Script) Bytes() []byte {
	return s.data
}

func (s *Script) GetBadOpCode() bool {
	return s.badOpCode
}

func (s *Script) convertOPS() (err error) {
	s.ParsedOpCodes = make([]opcodes.ParsedOpCode, 0)
	scriptLen := uint(len(s.data))

	var i uint
	for i < scriptLen {
		var nSize uint
		opcode := s.data[i]
		i++
		if opcode < opcodes.OP_PUSHDATA1 {
			nSize = uint(opcode)
		} else if opcode == opcodes.OP_PUSHDATA1 {
			if scriptLen-i < 1 {
				err = errors.New("OP_PUSHDATA1 has not enough data")
				break
			}
			nSize = uint(s.data[i])
			i++
		} else if opcode == opcodes.OP_PUSHDATA2 {
			if scriptLen-i < 2 {
				err = errors.New("OP_PUSHDATA2 has not enough data")
				break
			}
			nSize = uint(binary.LittleEndian.Uint16(s.data[i : i+2]))
			i += 2
		} else if opcode == opcodes.OP_PUSHDATA4 {
			if scriptLen-i < 4 {
				err = errors.New("OP_PUSHDATA4 has not enough data")
				break
			}
			nSize = uint(binary.LittleEndian.Uint32(s.data[i : i+4]))
			i += 4
		}
		if scriptLen-i < nSize {
			err = errors.New("push data exceeds script length")
			break
		}
		parsedopCode := opcodes.NewParsedOpCode(opcode, int(nSize), s.data[i:i+nSize])
		s.ParsedOpCodes = append(s.ParsedOpCodes, *parsedopCode)
		i += nSize
	}
	s.badOpCode = err != nil
	return
}

// RemoveOpcodeByData drops every compact push whose payload equals data.
// Used to scrub signatures out of the script code before hashing.
func (s *Script) RemoveOpcodeByData(data []byte) *Script {
	parsedOpCodes := make([]opcodes.ParsedOpCode, 0, len(s.ParsedOpCodes))
	for _, e := range s.ParsedOpCodes {
		if e.CheckCompactDataPush() && bytes.Equal(e.Data, data) {
			continue
		}
		parsedOpCodes = append(parsedOpCodes, e)
	}
	return NewScriptOps(parsedOpCodes)
}

func (s *Script) RemoveOpcode(code byte) *Script {
	parsedOpCodes := make([]opcodes.ParsedOpCode, 0, len(s.ParsedOpCodes))
	for _, e := range s.ParsedOpCodes {
		if e.OpValue == code {
			continue
		}
		parsedOpCodes = append(parsedOpCodes, e)
	}
	return NewScriptOps(parsedOpCodes)
}

func ReadScript(reader io.Reader, maxAllowed uint32, fieldName string) (script []byte, err error) {
	count, err := util.ReadVarInt(reader)
	if err != nil {
		return
	}
	if count > uint64(maxAllowed) {
		log.Debug("ReadScript %s size %d too large", fieldName, count)
		err = errcode.New(errcode.ScriptErrScriptSize)
		return
	}
	script = make([]byte, count)
	_, err = io.ReadFull(reader, script)
	if err != nil {
		return nil, err
	}
	return script, nil
}

// BytesToBool interprets a stack element as the script boolean: false is
// empty or all zero bytes allowing a sign bit on the last byte.
func BytesToBool(bytes []byte) bool {
	bytesLen := len(bytes)
	if bytesLen == 0 {
		return false
	}
	for i, e := range bytes {
		if e != 0 {
			if i == bytesLen-1 && e == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

func (s *Script) IsPayToScriptHash() bool {
	size := len(s.data)
	return size == 23 &&
		s.data[0] == opcodes.OP_HASH160 &&
		s.data[1] == 0x14 &&
		s.data[22] == opcodes.OP_EQUAL
}

// IsWitnessProgram reports whether the script is a BIP141 witness program
// and, if so, returns its version and program payload.
func (s *Script) IsWitnessProgram() (version int, program []byte, ok bool) {
	size := len(s.data)
	if size < 4 || size > MaxWitnessProgramSize+2 {
		return 0, nil, false
	}
	if s.data[0] != opcodes.OP_0 &&
		(s.data[0] < opcodes.OP_1 || s.data[0] > opcodes.OP_16) {
		return 0, nil, false
	}
	if int(s.data[1])+2 != size {
		return 0, nil, false
	}
	return DecodeOPN(s.data[0]), s.data[2:], true
}

func (s *Script) IsUnspendable() bool {
	return (s.Size() > 0 && s.data[0] == opcodes.OP_RETURN) || s.Size() > MaxScriptSize
}

func (s *Script) IsPushOnly() bool {
	if s.badOpCode {
		return false
	}
	for _, ops := range s.ParsedOpCodes {
		if ops.OpValue > opcodes.OP_16 {
			return false
		}
	}
	return true
}

func (s *Script) GetSigOpCount(accurate bool) int {
	n := 0
	var lastOpcode byte
	for _, e := range s.ParsedOpCodes {
		opcode := e.OpValue
		if opcode == opcodes.OP_CHECKSIG || opcode == opcodes.OP_CHECKSIGVERIFY {
			n++
		} else if opcode == opcodes.OP_CHECKMULTISIG || opcode == opcodes.OP_CHECKMULTISIGVERIFY {
			if accurate && lastOpcode >= opcodes.OP_1 && lastOpcode <= opcodes.OP_16 {
				n += DecodeOPN(lastOpcode)
			} else {
				n += MaxPubKeysPerMultiSig
			}
		}
		lastOpcode = opcode
	}
	return n
}

// GetP2SHSigOpCount counts sigops in the redeem script, the last item the
// scriptSig pushes onto the stack.
func (s *Script) GetP2SHSigOpCount() int {
	if s.badOpCode || len(s.ParsedOpCodes) == 0 {
		return 0
	}
	for _, e := range s.ParsedOpCodes {
		if e.OpValue > opcodes.OP_16 {
			return 0
		}
	}
	lastOps := s.ParsedOpCodes[len(s.ParsedOpCodes)-1]
	tempScript := NewScriptRaw(lastOps.Data)
	return tempScript.GetSigOpCount(true)
}

func EncodeOPN(n int) (int, error) {
	if n < 0 || n > 16 {
		return 0, errors.New("EncodeOPN n is out of bounds")
	}
	if n == 0 {
		return opcodes.OP_0, nil
	}
	return opcodes.OP_1 + n - 1, nil
}

func DecodeOPN(opcode byte) int {
	if opcode == opcodes.OP_0 {
		return 0
	}
	if opcode < opcodes.OP_1 || opcode > opcodes.OP_16 {
		panic("DecodeOPN opcode out of range")
	}
	return int(opcode) - int(opcodes.OP_1-1)
}

func (s *Script) Size() int {
	return len(s.data)
}

func (s *Script) IsEqual(script2 *Script) bool {
	return bytes.Equal(s.data, script2.data)
}

func (s *Script) PushOpCode(n int) error {
	if n < 0 || n > 0xff {
		return errors.New("push opcode out of range")
	}
	s.data = append(s.data, byte(n))
	return s.convertOPS()
}

func (s *Script) PushInt64(n int64) error {
	if n >= -1 && n <= 16 {
		if n == -1 || (n >= 1 && n <= 16) {
			s.data = append(s.data, byte(n+(opcodes.OP_1-1)))
		} else if n == 0 {
			s.data = append(s.data, byte(opcodes.OP_0))
		}
		return s.convertOPS()
	}
	return s.PushScriptNum(NewScriptNum(n))
}

func (s *Script) PushScriptNum(sn *ScriptNum) error {
	return s.PushSingleData(sn.Serialize())
}

func (s *Script) PushData(data []byte) error {
	s.data = append(s.data, data...)
	return s.convertOPS()
}

func (s *Script) PushSingleData(data []byte) error {
	dataLen := len(data)
	if dataLen < opcodes.OP_PUSHDATA1 {
		s.data = append(s.data, byte(dataLen))
	} else if dataLen <= 0xff {
		s.data = append(s.data, opcodes.OP_PUSHDATA1, byte(dataLen))
	} else if dataLen <= 0xffff {
		s.data = append(s.data, opcodes.OP_PUSHDATA2)
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(dataLen))
		s.data = append(s.data, buf...)
	} else {
		s.data = append(s.data, opcodes.OP_PUSHDATA4)
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(dataLen))
		s.data = append(s.data, buf...)
	}
	s.data = append(s.data, data...)
	return s.convertOPS()
}

func (s *Script) PushMultData(data [][]byte) error {
	for _, e := range data {
		dataLen := len(e)
		if dataLen < opcodes.OP_PUSHDATA1 {
			s.data = append(s.data, byte(dataLen))
		} else if dataLen <= 0xff {
			s.data = append(s.data, opcodes.OP_PUSHDATA1, byte(dataLen))
		} else if dataLen <= 0xffff {
			s.data = append(s.data, opcodes.OP_PUSHDATA2)
			buf := make([]byte, 2)
			binary.LittleEndian.PutUint16(buf, uint16(dataLen))
			s.data = append(s.data, buf...)
		} else {
			s.data = append(s.data, opcodes.OP_PUSHDATA4)
			buf := make([]byte, 4)
			binary.LittleEndian.PutUint32(buf, uint32(dataLen))
			s.data = append(s.data, buf...)
		}
		s.data = append(s.data, e...)
	}
	return s.convertOPS()
}

// IsDefinedHashtypeSignature checks that the hash type byte of a
// signature names one of ALL, NONE or SINGLE, with or without the
// anyone-can-pay flag.
func IsDefinedHashtypeSignature(vchSig []byte) bool {
	if len(vchSig) == 0 {
		return false
	}
	hashType := uint32(vchSig[len(vchSig)-1]) &^ crypto.SigHashAnyoneCanpay
	return hashType >= crypto.SigHashAll && hashType <= crypto.SigHashSingle
}

// CheckSignatureEncoding applies the flag gated strictness rules to a
// signature in <sig> <hashtype> form. An empty signature is allowed; it
// is the compact way to provide an invalid signature to CHECK(MULTI)SIG.
func CheckSignatureEncoding(vchSig []byte, flags uint32) error {
	if len(vchSig) == 0 {
		return nil
	}
	if flags&(ScriptVerifyDersig|ScriptVerifyLowS|ScriptVerifyStrictEnc) != 0 &&
		!crypto.IsValidSignatureEncoding(vchSig) {
		return errcode.New(errcode.ScriptErrSigDer)
	}
	if flags&ScriptVerifyLowS != 0 {
		sig, err := crypto.ParseDERSignature(vchSig[:len(vchSig)-1])
		if err != nil {
			return errcode.New(errcode.ScriptErrSigDer)
		}
		if !sig.IsLowS() {
			return errcode.New(errcode.ScriptErrSigHighs)
		}
	}
	if flags&ScriptVerifyStrictEnc != 0 && !IsDefinedHashtypeSignature(vchSig) {
		return errcode.New(errcode.ScriptErrSigHashType)
	}
	return nil
}

// CheckPubKeyEncoding applies the flag gated strictness rules to a
// serialized public key.
func CheckPubKeyEncoding(vchPubKey []byte, flags uint32, sigVersion int) error {
	if flags&ScriptVerifyStrictEnc != 0 && !crypto.IsCompressedOrUncompressedPubKey(vchPubKey) {
		return errcode.New(errcode.ScriptErrPubKeyType)
	}
	// Only compressed keys are accepted in segwit.
	if flags&ScriptVerifyWitnessPubKeyType != 0 && sigVersion == SigVersionWitnessV0 &&
		!crypto.IsCompressedPubKey(vchPubKey) {
		return errcode.New(errcode.ScriptErrWitnessPubKeyType)
	}
	return nil
}

// IsOpCodeDisabled reports whether the opcode is disabled. Disabled
// opcodes fail the script even inside a non-executed branch.
func IsOpCodeDisabled(opCode byte) bool {
	switch opCode {
	case opcodes.OP_CAT, opcodes.OP_SUBSTR, opcodes.OP_LEFT, opcodes.OP_RIGHT,
		opcodes.OP_INVERT, opcodes.OP_AND, opcodes.OP_OR, opcodes.OP_XOR,
		opcodes.OP_2MUL, opcodes.OP_2DIV, opcodes.OP_MUL, opcodes.OP_DIV,
		opcodes.OP_MOD, opcodes.OP_LSHIFT, opcodes.OP_RSHIFT:
		return true
	}
	return false
}
