package errcode

type ConsensusErr int

const (
	ConsensusErrTxIndex ConsensusErr = ConsensusErrorBase + iota
	ConsensusErrTxSizeMismatch
	ConsensusErrTxDeserialize
	ConsensusErrAmountRequired
	ConsensusErrInvalidFlags
)

func (ce ConsensusErr) String() string {
	switch ce {
	case ConsensusErrTxIndex:
		return "Input index out of range for the deserialized transaction"
	case ConsensusErrTxSizeMismatch:
		return "Declared transaction size does not match the serialized size"
	case ConsensusErrTxDeserialize:
		return "Transaction failed to deserialize"
	case ConsensusErrAmountRequired:
		return "Flags require an input amount but none was supplied"
	case ConsensusErrInvalidFlags:
		return "Unknown bits set in the verification flags"
	}
	return "unknown error"
}
