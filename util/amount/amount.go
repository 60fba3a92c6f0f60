package amount

// Amount is a monetary value carried by an output, in the smallest
// indivisible unit.
type Amount int64

const (
	// COIN is the number of base units in one coin.
	COIN Amount = 100000000

	// MaxMoney is the upper bound on any single value or sum of values
	// in a valid transaction.
	MaxMoney = 21000000 * COIN
)

// MoneyRange reports whether value is a representable monetary value.
func MoneyRange(value Amount) bool {
	return value >= 0 && value <= MaxMoney
}
