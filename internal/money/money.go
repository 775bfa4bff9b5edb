// Package money implements integer-only currency arithmetic.
//
// All amounts are integer cents and all rates are basis points (1/100 of a
// percent). Floating point never enters a computation; Format exists only for
// display surfaces such as exported reports.
package money

import (
	"fmt"
	"strconv"
)

const (
	// BasisPointsPerUnit is the number of basis points in 100%.
	BasisPointsPerUnit = 10000

	// MaxTaxRateBps is the highest tax rate a menu item may carry.
	MaxTaxRateBps = BasisPointsPerUnit

	// MaxPriceCents caps a catalog price or customization delta (1,000,000.00).
	// Together with the order quantity cap it keeps line and order totals far
	// inside int64.
	MaxPriceCents int64 = 100_000_000
)

// DivRoundHalfAwayFromZero divides num by den and rounds halves away from
// zero, so 42.5 becomes 43 and -42.5 becomes -43. den must be positive.
func DivRoundHalfAwayFromZero(num, den int64) int64 {
	if den <= 0 {
		panic("money: non-positive divisor")
	}
	if num >= 0 {
		return (num + den/2) / den
	}
	return -DivRoundHalfAwayFromZero(-num, den)
}

// Tax returns the tax owed on a line total at the given basis-point rate.
// Whole multiples of BasisPointsPerUnit are taxed exactly and only the
// remainder is rounded, so no intermediate product is larger than the result.
func Tax(lineTotalCents int64, rateBps int) int64 {
	whole := lineTotalCents / BasisPointsPerUnit
	rest := lineTotalCents % BasisPointsPerUnit
	return whole*int64(rateBps) + DivRoundHalfAwayFromZero(rest*int64(rateBps), BasisPointsPerUnit)
}

// LineTotal returns (unit price + sum of deltas) * qty.
func LineTotal(unitPriceCents int64, deltas []int64, qty int) int64 {
	unit := unitPriceCents
	for _, d := range deltas {
		unit += d
	}
	return unit * int64(qty)
}

// ValidTaxRate reports whether bps is within [0, MaxTaxRateBps].
func ValidTaxRate(bps int) bool {
	return bps >= 0 && bps <= MaxTaxRateBps
}

// ValidPrice reports whether cents is within [0, MaxPriceCents].
func ValidPrice(cents int64) bool {
	return cents >= 0 && cents <= MaxPriceCents
}

// Format renders cents as a plain decimal string such as "12.05" or "-0.40".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Parse converts a whole number of cents given as text. Non-numeric input is
// rejected so callers never store a guessed price.
func Parse(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("price must be an integer number of cents: %q", s)
	}
	return v, nil
}
