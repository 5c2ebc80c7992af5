package market

import (
	"regexp"
	"strings"
)

// b3TickerRe matches the B3 ON/PN/unit notation: four alphanumerics followed
// by a class digit (3/4/5/6) or the literal unit suffix 11.
var b3TickerRe = regexp.MustCompile(`^[A-Z0-9]{4}(3|4|5|6|11)$`)

// TranslateSymbol maps a display ticker, optionally namespaced as
// EXCHANGE:TICKER, to the Yahoo notation. Rules apply in order, first match
// wins, and the function is idempotent: feeding an already-translated symbol
// back in returns it unchanged.
func TranslateSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[i+1:]
	}

	if b3TickerRe.MatchString(s) && !strings.Contains(s, ".SA") {
		return s + ".SA"
	}

	if s == "IBOV" || s == "BVSP" {
		return "^BVSP"
	}
	if s == "SPX" {
		return "^GSPC"
	}

	// Crypto quoted in USD/USDT becomes BASE-USD, unless the stripped base is
	// itself a reserved forex name (EURUSDT stays as-is, it is not EUR-USD).
	if !strings.Contains(s, "-") && (strings.HasSuffix(s, "USD") || strings.HasSuffix(s, "USDT")) {
		base := strings.TrimSuffix(strings.TrimSuffix(s, "USDT"), "USD")
		if len(base) >= 3 && base != "EUR" && base != "USDBRL" {
			return base + "-USD"
		}
	}

	if s == "USDBRL" {
		return "BRL=X"
	}
	if s == "EURUSD" {
		return "EURUSD=X"
	}

	return s
}
