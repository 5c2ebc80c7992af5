package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		// B3 class suffixing
		{"PETR4", "PETR4.SA"},
		{"VALE3", "VALE3.SA"},
		{"CPLE6", "CPLE6.SA"},
		{"BRKM5", "BRKM5.SA"},
		{"ENGI11", "ENGI11.SA"},
		{"BMFBOVESPA:VALE3", "VALE3.SA"},
		{"PETR4.SA", "PETR4.SA"},

		// indices
		{"IBOV", "^BVSP"},
		{"BVSP", "^BVSP"},
		{"SPX", "^GSPC"},

		// crypto
		{"BTCUSD", "BTC-USD"},
		{"ETHUSDT", "ETH-USD"},
		{"BINANCE:SOLUSD", "SOL-USD"},
		{"BTC-USD", "BTC-USD"},

		// forex
		{"USDBRL", "BRL=X"},
		{"EURUSD", "EURUSD=X"},
		{"FX_IDC:USDBRL", "BRL=X"},
		// a EUR base is forex, not crypto, even with the USDT quote suffix
		{"EURUSDT", "EURUSDT"},

		// passthrough
		{"AAPL", "AAPL"},
		{"NASDAQ:NVDA", "NVDA"},
		{" msft ", "MSFT"},
		{"BRK.B", "BRK.B"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TranslateSymbol(tc.in), "translate %q", tc.in)
	}
}

func TestTranslateSymbolIdempotent(t *testing.T) {
	symbols := []string{
		"PETR4", "BMFBOVESPA:VALE3", "IBOV", "SPX", "BTCUSD", "ETHUSDT",
		"USDBRL", "EURUSD", "EURUSDT", "AAPL", "ENGI11", "SMAL11",
	}
	for _, s := range symbols {
		once := TranslateSymbol(s)
		assert.Equal(t, once, TranslateSymbol(once), "retranslating %q must not change it", s)
	}
}
