// Package money holds the decimal precision rules shared by prices,
// quantities and payment amounts. Values map onto Postgres NUMERIC(p,s).
package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/mavunohub/internal/apperr"
)

const (
	PricePlaces    = 2
	QuantityPlaces = 3
	MaxDigits      = 12
)

// bounded reports whether the coefficient and exponent of d could fit a
// NUMERIC(digits, places) column. It does no rescaling, so an input such as
// 1e200000000 is rejected without expanding it.
func bounded(d decimal.Decimal, digits int, places int32) bool {
	exp := int(d.Exponent())
	if d.IsZero() {
		return exp <= 0 && exp >= -digits
	}
	n := d.NumDigits()
	if n+exp > digits-int(places) {
		return false
	}
	// Extra fractional digits are only acceptable as trailing zeros of the coefficient.
	return exp >= -int(places) || -int(places)-exp <= n
}

// Fits reports whether d has at most places fractional digits and at most
// digits significant digits in total.
func Fits(d decimal.Decimal, digits int, places int32) bool {
	if !bounded(d, digits, places) {
		return false
	}
	if !d.Equal(d.Round(places)) {
		return false
	}
	limit := decimal.New(1, int32(digits)-places)
	return d.Abs().LessThan(limit)
}

// Check validates d against a minimum and a NUMERIC(digits, places) column,
// recording any failure on field.
func Check(fe apperr.FieldErrors, field string, d decimal.Decimal, min decimal.Decimal, digits int, places int32) {
	minMsg := fmt.Sprintf("Ensure this value is greater than or equal to %s.", min.String())
	placesMsg := fmt.Sprintf("Ensure that there are no more than %d decimal places.", places)
	digitsMsg := fmt.Sprintf("Ensure that there are no more than %d digits in total.", digits)

	if !bounded(d, digits, places) {
		switch {
		case d.Sign() < 0:
			fe.Add(field, minMsg)
		case int(d.Exponent()) < -int(places):
			fe.Add(field, placesMsg)
		default:
			fe.Add(field, digitsMsg)
		}
		return
	}
	if d.LessThan(min) {
		fe.Add(field, minMsg)
		return
	}
	if !d.Equal(d.Round(places)) {
		fe.Add(field, placesMsg)
		return
	}
	if !Fits(d, digits, places) {
		fe.Add(field, digitsMsg)
	}
}

func Price(d decimal.Decimal) string { return d.StringFixed(PricePlaces) }

func Quantity(d decimal.Decimal) string { return d.StringFixed(QuantityPlaces) }
