package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssets(t *testing.T) {
	all := Assets("")
	assert.NotEmpty(t, all)

	cryptos := Assets(TypeCrypto)
	assert.Len(t, cryptos, 12)
	for _, a := range cryptos {
		assert.Equal(t, TypeCrypto, a.Type)
	}

	forex := Assets(TypeForex)
	assert.Len(t, forex, 2)
}

func TestSymbolsMatchesAssets(t *testing.T) {
	assert.Len(t, Symbols(), len(Assets("")))
}

func TestFind(t *testing.T) {
	a, ok := Find("BMFBOVESPA:PETR4")
	require.True(t, ok)
	assert.Equal(t, "Petrobras PN", a.Name)

	// Bare ticker resolves to the namespaced entry.
	a, ok = Find("petr4")
	require.True(t, ok)
	assert.Equal(t, "BMFBOVESPA:PETR4", a.Symbol)

	_, ok = Find("NOPE9")
	assert.False(t, ok)
}

func TestLogoURL(t *testing.T) {
	assert.Equal(t,
		"https://s3-symbol-logo.tradingview.com/petroleo-brasileiro.svg",
		LogoURL("BMFBOVESPA:PETR4"))
	assert.Equal(t,
		"https://s3-symbol-logo.tradingview.com/crypto/bitcoin.svg",
		LogoURL("BINANCE:BTCUSD"))
	assert.Equal(t,
		"https://s3-symbol-logo.tradingview.com/country/BR.svg",
		LogoURL("BMFBOVESPA:IBOV"))
	// Unmapped B3 tickers fall back to the bovespa slug family.
	assert.Equal(t,
		"https://s3-symbol-logo.tradingview.com/brazil-bovespa--taee11.svg",
		LogoURL("BMFBOVESPA:TAEE11"))
	// Everything else lowercases the bare ticker.
	assert.Equal(t,
		"https://s3-symbol-logo.tradingview.com/aapl.svg",
		LogoURL("NASDAQ:AAPL"))
}
