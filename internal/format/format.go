// Package format holds the presentation boundary: pure helpers that turn
// numeric quote fields into display strings. Output uses pt-BR conventions,
// matching the dashboard's locale.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder marks a value the provider did not supply.
const Placeholder = "---"

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// Number renders a localized decimal with a fixed fraction width.
func Number(val float64, precision int) string {
	return ptBR.Sprint(number.Decimal(val,
		number.MinFractionDigits(precision),
		number.MaxFractionDigits(precision)))
}

// Money prefixes a localized 2-decimal value with the currency sign.
func Money(val float64, currency string) string {
	prefix := currency
	switch currency {
	case "BRL", "R$":
		prefix = "R$"
	case "USD":
		prefix = "$"
	}
	return prefix + " " + Number(val, 2)
}

// Compact abbreviates large magnitudes with pt-BR short-scale suffixes.
// Zero is treated as "no value" and renders the placeholder.
func Compact(val float64, currency string) string {
	if val == 0 {
		return Placeholder
	}

	abs := val
	if abs < 0 {
		abs = -abs
	}
	var out string
	switch {
	case abs >= 1e12:
		out = Number(val/1e12, 2) + " tri"
	case abs >= 1e9:
		out = Number(val/1e9, 2) + " bi"
	case abs >= 1e6:
		out = Number(val/1e6, 2) + " mi"
	case abs >= 1e3:
		out = Number(val/1e3, 2) + " mil"
	default:
		out = Number(val, 2)
	}

	if currency != "" {
		sign := "$"
		if currency == "BRL" {
			sign = "R$"
		}
		return sign + " " + out
	}
	return out
}
