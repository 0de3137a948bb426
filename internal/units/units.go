// Package units converts between human-entered decimal token amounts and
// integer base units.
package units

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount accepts a user-entered amount, requires it to be a finite number
// strictly greater than zero, and converts it to base units. Amounts that round
// to zero base units are rejected as well.
func ParseAmount(s string, decimals uint8) (*big.Int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	amount, err := ParseUnits(strconv.FormatFloat(f, 'f', -1, 64), decimals)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %q is below the smallest unit", ErrInvalidAmount, s)
	}
	return amount, nil
}

// ParseUnits converts a plain decimal string ("12.5", "-0.001") to an integer
// scaled by 10^decimals. Digits beyond the precision are rounded half up.
func ParseUnits(value string, decimals uint8) (*big.Int, error) {
	negative := strings.HasPrefix(value, "-")
	if negative {
		value = value[1:]
	}

	integer, fraction, _ := strings.Cut(value, ".")
	if integer == "" {
		integer = "0"
	}
	if !isDigits(integer) || !isDigits(fraction) {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, value)
	}

	roundUp := false
	if len(fraction) > int(decimals) {
		roundUp = fraction[decimals] >= '5'
		fraction = fraction[:decimals]
	}
	fraction += strings.Repeat("0", int(decimals)-len(fraction))

	result, ok := new(big.Int).SetString(integer+fraction, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if roundUp {
		result.Add(result, big.NewInt(1))
	}
	if negative {
		result.Neg(result)
	}
	return result, nil
}

// FormatUnits renders base units as a decimal string without trailing zeros.
func FormatUnits(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	digits := new(big.Int).Abs(value).String()
	sign := ""
	if value.Sign() < 0 {
		sign = "-"
	}

	d := int(decimals)
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}
	integer := digits[:len(digits)-d]
	fraction := strings.TrimRight(digits[len(digits)-d:], "0")
	if fraction == "" {
		return sign + integer
	}
	return sign + integer + "." + fraction
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
