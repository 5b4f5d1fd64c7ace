package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the precision all custodied mints are created with.
const TokenDecimals = 9

// ToBaseUnits converts a display amount (e.g. "1.5" tokens) to the token's
// smallest unit. Fails on negative amounts and on amounts with more
// fractional digits than the mint supports.
func ToBaseUnits(amount decimal.Decimal) (uint64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount must be non-negative, got %s", amount)
	}

	scaled := amount.Shift(TokenDecimals)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount, TokenDecimals)
	}

	base := scaled.BigInt()
	if !base.IsUint64() {
		return 0, fmt.Errorf("amount %s does not fit the token's base unit range", amount)
	}

	return base.Uint64(), nil
}

// FromBaseUnits converts a smallest-unit amount to its display form.
func FromBaseUnits(base uint64) decimal.Decimal {
	return decimal.NewFromUint64(base).Shift(-TokenDecimals)
}

// ParseBaseUnits parses a display-amount string into base units.
func ParseBaseUnits(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return ToBaseUnits(d)
}
