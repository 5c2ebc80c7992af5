package market

import "context"

// MarketData is the canonical quote record produced by the normalizer.
// Change and ChangePercent are always computed when a record exists; a symbol
// with no data at all simply has no record.
type MarketData struct {
	Symbol        string   `json:"symbol"`
	LongName      string   `json:"longName"`
	Currency      string   `json:"currency"`
	Price         float64  `json:"price"`
	PrevClose     float64  `json:"prevClose"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"changePercent"`
	Open          float64  `json:"open"`
	High          float64  `json:"high"`
	Low           float64  `json:"low"`
	Volume        int64    `json:"volume"`
	RangeDay      string   `json:"rangeDay"`
	Range52w      string   `json:"range52w"`
	MarketCap     *float64 `json:"marketCap,omitempty"`
}

// Provider fetches one canonical quote for a display symbol.
type Provider interface {
	Quote(ctx context.Context, symbol string) (*MarketData, error)
}

// chartResponse mirrors the Yahoo v8 chart payload. Only the fields the
// normalizer reads are declared; everything else is dropped at decode time.
type chartResponse struct {
	Chart chartEnvelope `json:"chart"`
}

type chartEnvelope struct {
	Result []chartResult `json:"result"`
	Error  *chartError   `json:"error"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta       *chartMeta      `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators chartIndicators `json:"indicators"`
}

type chartMeta struct {
	Symbol               string  `json:"symbol"`
	Currency             string  `json:"currency"`
	LongName             string  `json:"longName"`
	ShortName            string  `json:"shortName"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	PreviousClose        float64 `json:"previousClose"`
	RegularMarketTime    int64   `json:"regularMarketTime"`
	RegularMarketOpen    float64 `json:"regularMarketOpen"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  int64   `json:"regularMarketVolume"`
	FiftyTwoWeekHigh     float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      float64 `json:"fiftyTwoWeekLow"`
}

type chartIndicators struct {
	Quote []chartQuote `json:"quote"`
}

// Close entries are pointers because the series carries explicit nulls for
// gap days.
type chartQuote struct {
	Close []*float64 `json:"close"`
}

// candle is a validated (timestamp, close) pair after gap filtering.
type candle struct {
	ts    int64
	close float64
}
