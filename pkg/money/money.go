package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ToMinorUnits converts a decimal currency amount to integer minor units
// (cents), rounding to the nearest cent. 27.50 -> 2750.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits converts integer cents back to a decimal dollar amount.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}

// FormatUSD renders an amount as "$12.00" for email bodies and receipts.
func FormatUSD(amount decimal.Decimal) string {
	return fmt.Sprintf("$%s", amount.StringFixed(2))
}

// LineTotal is unit price times quantity, exact decimal arithmetic.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
