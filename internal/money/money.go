// Package money provides a typed monetary value object used at the API
// boundary. Amounts cross the wire as floats but are snapped to their
// currency's minor-unit precision here, with explicit conversion functions
// instead of ambient coercion. The settlement engine itself runs on
// unrounded float64 values; rounding happens only at this boundary so
// error does not compound across matching iterations.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidCurrency is returned for codes that are not 3-letter ISO 4217.
var ErrInvalidCurrency = errors.New("currency must be a 3-letter ISO code")

// exponents maps currency codes to their minor-unit digit count where it
// differs from the usual 2 (ISO 4217 exponents).
var exponents = map[string]int{
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0,
	"KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0,
	"XOF": 0, "XPF": 0,
}

// Money is an amount in minor units of a currency (e.g. cents for USD,
// whole yen for JPY).
type Money struct {
	MinorUnits int64
	Currency   string
}

// ValidateCurrency checks that code is a plausible ISO 4217 code and
// returns it uppercased.
func ValidateCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return code, nil
}

// Exponent returns the number of minor-unit digits for a currency code.
// Unknown codes default to 2.
func Exponent(currency string) int {
	if e, ok := exponents[strings.ToUpper(currency)]; ok {
		return e
	}
	return 2
}

// FromFloat converts a major-unit float amount into Money, rounding half
// away from zero at the currency's precision.
func FromFloat(amount float64, currency string) (Money, error) {
	code, err := ValidateCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	scale := math.Pow10(Exponent(code))
	return Money{MinorUnits: int64(math.Round(amount * scale)), Currency: code}, nil
}

// Float64 converts back to a major-unit float.
func (m Money) Float64() float64 {
	return float64(m.MinorUnits) / math.Pow10(Exponent(m.Currency))
}

// Add returns m + other. Both operands must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{MinorUnits: m.MinorUnits + other.MinorUnits, Currency: m.Currency}, nil
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.MinorUnits < 0
}

// String formats the amount with its currency's minor-unit digits, e.g.
// "12.50 EUR" or "1200 JPY".
func (m Money) String() string {
	exp := Exponent(m.Currency)
	return fmt.Sprintf("%.*f %s", exp, m.Float64(), m.Currency)
}

// Round snaps a major-unit float to the currency's precision. Used when a
// computed value (e.g. a planned transfer amount) leaves the engine for
// presentation or persistence.
func Round(amount float64, currency string) float64 {
	scale := math.Pow10(Exponent(currency))
	return math.Round(amount*scale) / scale
}
