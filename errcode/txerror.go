package errcode

type TxErr int

const (
	TxErrNoPreviousOut TxErr = TxErrorBase + iota
	TxErrEmptyInputs
	TxErrEmptyOutputs
	TxErrTotalMoneyTooLarge
	TxErrTooManySigOps
	TxErrDupIns
	TxErrNullPreOut
	TxErrBadVersion
	TxErrOverSize
	TxErrDeserialize
	TxErrUnexpectedWitness
)

func (te TxErr) String() string {
	switch te {
	case TxErrNoPreviousOut:
		return "Missing inputs"
	case TxErrEmptyInputs:
		return "bad-txns-vin-empty"
	case TxErrEmptyOutputs:
		return "bad-txns-vout-empty"
	case TxErrTotalMoneyTooLarge:
		return "bad-txns-txouttotal-toolarge"
	case TxErrTooManySigOps:
		return "bad-txn-sigops"
	case TxErrDupIns:
		return "bad-txns-inputs-duplicate"
	case TxErrNullPreOut:
		return "bad-txns-prevout-null"
	case TxErrBadVersion:
		return "bad-txns-version"
	case TxErrOverSize:
		return "bad-txns-oversize"
	case TxErrDeserialize:
		return "bad-txns-deserialize"
	case TxErrUnexpectedWitness:
		return "bad-txns-unexpected-witness"
	}
	return "unknown error"
}
