// Package catalog holds the fixed instrument universe the dashboard serves:
// B3 and US equities, crypto crosses, forex pairs and the index. Symbols keep
// their exchange namespace; the market layer strips it before translation.
package catalog

import "strings"

type AssetType string

const (
	TypeStock  AssetType = "Stock"
	TypeCrypto AssetType = "Crypto"
	TypeIndex  AssetType = "Index"
	TypeForex  AssetType = "Forex"
)

type Asset struct {
	Symbol  string    `json:"symbol"`
	Name    string    `json:"name"`
	Type    AssetType `json:"type"`
	LogoURL string    `json:"logoUrl"`
}

var b3Stocks = [][2]string{
	{"PETR4", "Petrobras PN"}, {"PETR3", "Petrobras ON"}, {"VALE3", "Vale S.A."}, {"ITUB4", "Itaú Unibanco"},
	{"BBDC4", "Bradesco PN"}, {"BBAS3", "Banco do Brasil"}, {"B3SA3", "B3 S.A."}, {"ABEV3", "Ambev"},
	{"WEGE3", "WEG S.A."}, {"MGLU3", "Magalu"}, {"RENT3", "Localiza"}, {"SUZB3", "Suzano"},
	{"JBSS3", "JBS S.A."}, {"GGBR4", "Gerdau PN"}, {"RAIL3", "Rumo"}, {"VIVT3", "Telefônica"},
	{"ELET3", "Eletrobras"}, {"BBSE3", "BB Seguridade"}, {"PRIO3", "Prio"}, {"EQTL3", "Equatorial"},
	{"RADL3", "RaiaDrogasil"}, {"UGPA3", "Ultrapar"}, {"HAPV3", "Hapvida"}, {"RDOR3", "Rede D'Or"},
	{"CSNA3", "Siderúrgica Nacional"}, {"CMIG4", "Cemig"}, {"CPLE6", "Copel"}, {"EMBR3", "Embraer"},
	{"SBSP3", "Sabesp"}, {"TIMS3", "TIM Brasil"}, {"GOAU4", "Gerdau Met"}, {"LREN3", "Lojas Renner"},
	{"KLBN11", "Klabin"}, {"TAEE11", "Taesa"}, {"ENGI11", "Energisa"}, {"TOTS3", "Totvs"},
	{"CSAN3", "Cosan"}, {"MRFG3", "Marfrig"}, {"BRKM5", "Braskem"}, {"SMAL11", "Small Caps ETF"},
}

var usStocks = [][2]string{
	{"AAPL", "Apple Inc."}, {"NVDA", "Nvidia Corp"}, {"TSLA", "Tesla Inc"}, {"MSFT", "Microsoft"},
	{"AMZN", "Amazon.com"}, {"GOOGL", "Alphabet A"}, {"META", "Meta Platforms"}, {"LLY", "Eli Lilly"},
	{"AVGO", "Broadcom"}, {"V", "Visa Inc"}, {"JPM", "JP Morgan"}, {"MA", "Mastercard"},
	{"NFLX", "Netflix"}, {"AMD", "AMD Corp"}, {"ORCL", "Oracle"}, {"INTC", "Intel"},
	{"XOM", "Exxon Mobil"}, {"CVX", "Chevron"}, {"WMT", "Walmart"}, {"COST", "Costco Wholesale"},
}

var cryptos = [][2]string{
	{"BTCUSD", "Bitcoin"}, {"ETHUSD", "Ethereum"}, {"SOLUSD", "Solana"}, {"BNBUSD", "BNB"},
	{"XRPUSD", "XRP"}, {"ADAUSD", "Cardano"}, {"DOGEUSD", "Dogecoin"}, {"DOTUSD", "Polkadot"},
	{"LINKUSD", "Chainlink"}, {"AVAXUSD", "Avalanche"}, {"MATICUSD", "Polygon"}, {"LTCUSD", "Litecoin"},
}

var assets []Asset

func init() {
	assets = append(assets, newAsset("BMFBOVESPA:IBOV", "Ibovespa", TypeIndex))
	assets = append(assets, newAsset("BMFBOVESPA:IBOV11", "iShares Ibovespa", TypeStock))
	for _, s := range b3Stocks {
		assets = append(assets, newAsset("BMFBOVESPA:"+s[0], s[1], TypeStock))
	}
	for _, s := range usStocks {
		assets = append(assets, newAsset("NASDAQ:"+s[0], s[1], TypeStock))
	}
	for _, s := range cryptos {
		assets = append(assets, newAsset("BINANCE:"+s[0], s[1], TypeCrypto))
	}
	assets = append(assets, newAsset("FX_IDC:USDBRL", "Dólar Comercial", TypeForex))
	assets = append(assets, newAsset("FX_IDC:EURUSD", "Euro / Dólar", TypeForex))
}

func newAsset(symbol, name string, t AssetType) Asset {
	return Asset{Symbol: symbol, Name: name, Type: t, LogoURL: LogoURL(symbol)}
}

// Assets returns the full universe, optionally filtered by type.
func Assets(t AssetType) []Asset {
	if t == "" {
		out := make([]Asset, len(assets))
		copy(out, assets)
		return out
	}
	var out []Asset
	for _, a := range assets {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Symbols returns every display symbol in catalog order.
func Symbols() []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.Symbol)
	}
	return out
}

// Find locates an asset by display symbol, with or without the exchange
// namespace.
func Find(symbol string) (Asset, bool) {
	want := strings.ToUpper(strings.TrimSpace(symbol))
	for _, a := range assets {
		if a.Symbol == want || bareTicker(a.Symbol) == bareTicker(want) {
			return a, true
		}
	}
	return Asset{}, false
}

// logoSlugs maps tickers to TradingView logo slugs for the cases the generic
// lowercase fallback gets wrong.
var logoSlugs = map[string]string{
	"BTC": "crypto/bitcoin", "BTCUSD": "crypto/bitcoin",
	"ETH": "crypto/ethereum", "ETHUSD": "crypto/ethereum",
	"SOL": "crypto/solana", "SOLUSD": "crypto/solana",
	"USDBRL": "country/US", "EURUSD": "country/EU",
	"SPX": "s-and-p-500", "IBOV": "country/BR", "BVSP": "country/BR",
	"VALE3": "vale", "PETR4": "petroleo-brasileiro", "PETR3": "petroleo-brasileiro",
	"ITUB4": "itau-unibanco", "BBDC4": "banco-bradesco", "BBAS3": "banco-do-brasil",
	"MGLU3": "magazine-luiza", "WEGE3": "weg", "ABEV3": "ambev", "JBSS3": "jbs",
	"SUZB3": "suzano", "GGBR4": "gerdau", "RENT3": "localiza", "LREN3": "lojas-renner",
	"B3SA3": "b3", "PRIO3": "prio", "CSNA3": "siderurgica-nacional",
	"RDOR3": "rede-dor-sao-luiz", "RAIL3": "rumo", "ELET3": "eletrobras",
	"EQTL3": "equatorial-energia", "HAPV3": "hapvida", "RADL3": "raiadrogasil",
	"UGPA3": "ultrapar", "VIVT3": "telefonica-brasil", "BBSE3": "bb-seguridade",
	"TIMS3": "tim", "SBSP3": "sabesp", "CMIG4": "cemig", "CPLE6": "copel",
	"EMBR3": "embraer",
}

const logoBase = "https://s3-symbol-logo.tradingview.com/"

// LogoURL resolves the TradingView logo for a display symbol.
func LogoURL(symbol string) string {
	ticker := bareTicker(symbol)

	if slug, ok := logoSlugs[ticker]; ok {
		return logoBase + slug + ".svg"
	}
	if strings.Contains(symbol, "BMFBOVESPA") || strings.Contains(symbol, ".SA") {
		return logoBase + "brazil-bovespa--" + strings.ToLower(ticker) + ".svg"
	}
	return logoBase + strings.ToLower(ticker) + ".svg"
}

func bareTicker(symbol string) string {
	s := symbol
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return strings.ToUpper(strings.TrimSuffix(s, ".SA"))
}
