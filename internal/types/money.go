// README: Common money value object used across modules.
package types

// Money is an amount in whole currency units (fares are whole rupees).
type Money struct {
	Amount   int64
	Currency string
}

const CurrencyINR = "INR"

func Rupees(amount int64) Money {
	return Money{Amount: amount, Currency: CurrencyINR}
}
