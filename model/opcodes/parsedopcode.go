package opcodes

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ParsedOpCode is one decoded script operation. Length mirrors the wire
// form: a positive value is the fixed total size of the operation, while
// -1, -2 and -4 mark OP_PUSHDATA1/2/4 with that many length bytes.
type ParsedOpCode struct {
	OpValue byte

	Length int
	Data   []byte
}

func NewParsedOpCode(opValue byte, length int, data []byte) *ParsedOpCode {
	d := make([]byte, len(data))
	copy(d, data)
	return &ParsedOpCode{OpValue: opValue, Length: length, Data: d}
}

// alwaysIllegal reports whether the opcode fails the script even inside a
// non-executed branch.
func (parsedOpCode *ParsedOpCode) alwaysIllegal() bool {
	switch parsedOpCode.OpValue {
	case OP_VERIF, OP_VERNOTIF:
		return true
	default:
		return false
	}
}

func (parsedOpCode *ParsedOpCode) isConditional() bool {
	switch parsedOpCode.OpValue {
	case OP_IF, OP_NOTIF, OP_ELSE, OP_ENDIF:
		return true
	default:
		return false
	}
}

// CheckCompactDataPush reports whether the push used the shortest opcode
// able to carry its payload length.
func (parsedOpCode *ParsedOpCode) CheckCompactDataPush() bool {
	dataLen := len(parsedOpCode.Data)
	opcode := parsedOpCode.OpValue
	if dataLen <= 75 {
		return int(opcode) == dataLen
	}
	if dataLen <= 255 {
		return opcode == OP_PUSHDATA1
	}
	if dataLen <= 65535 {
		return opcode == OP_PUSHDATA2
	}
	return opcode == OP_PUSHDATA4
}

// CheckMinimalDataPush additionally requires the small-integer opcodes
// for payloads they can express.
func (parsedOpCode *ParsedOpCode) CheckMinimalDataPush() bool {
	data := parsedOpCode.Data
	dataLen := len(data)
	opcode := parsedOpCode.OpValue
	if dataLen == 0 {
		return opcode == OP_0
	}
	if dataLen == 1 {
		if data[0] >= 1 && data[0] <= 16 {
			return opcode == OP_1+data[0]-1
		}
		if data[0] == 0x81 {
			return opcode == OP_1NEGATE
		}
		return true
	}
	return parsedOpCode.CheckCompactDataPush()
}

// bytes re-serializes the operation exactly as it appeared in the script.
func (parsedOpCode *ParsedOpCode) bytes() ([]byte, error) {
	var retBytes []byte
	if parsedOpCode.Length > 0 {
		retBytes = make([]byte, 1, parsedOpCode.Length)
	} else {
		retBytes = make([]byte, 1, 1+len(parsedOpCode.Data)-parsedOpCode.Length)
	}
	retBytes[0] = parsedOpCode.OpValue
	if parsedOpCode.Length == 1 {
		if len(parsedOpCode.Data) != 0 {
			return nil, errors.Errorf(
				"parsed opCode %d has data length %d when 0 was expected",
				parsedOpCode.OpValue, len(parsedOpCode.Data))
		}
		return retBytes, nil
	}
	nBytes := parsedOpCode.Length
	if parsedOpCode.Length < 0 {
		l := len(parsedOpCode.Data)
		switch parsedOpCode.Length {
		case -1:
			retBytes = append(retBytes, byte(l))
			nBytes = int(retBytes[1]) + len(retBytes)
		case -2:
			retBytes = append(retBytes, byte(l&0xff), byte(l>>8&0xff))
			nBytes = int(binary.LittleEndian.Uint16(retBytes[1:])) + len(retBytes)
		case -4:
			retBytes = append(retBytes, byte(l&0xff),
				byte((l>>8)&0xff), byte((l>>16)&0xff),
				byte((l>>24)&0xff))
			nBytes = int(binary.LittleEndian.Uint32(retBytes[1:])) + len(retBytes)
		}
	}
	retBytes = append(retBytes, parsedOpCode.Data...)
	if len(retBytes) != nBytes {
		return nil, errors.Errorf(
			"parsed opCode %d has data length %d when %d was expected",
			parsedOpCode.OpValue, len(retBytes), nBytes)
	}
	return retBytes, nil
}
