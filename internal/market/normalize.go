package market

import (
	"math"
	"strings"
	"time"

	"alphamarket/internal/format"
)

// changeEpsilon snaps sub-noise moves to exactly zero so the UI never shows
// a phantom variation.
const changeEpsilon = 1e-5

// normalizeChart derives the canonical record from a chart result. Called
// only with a result that carries a metadata block.
//
// The daily series' most recent bar is ambiguous: it is either today's
// still-forming session or the last completed one, depending on whether the
// provider has produced a bar for today yet. The baseline for the change
// computation is resolved by comparing the UTC calendar day of the last bar
// against the provider's regular market time (or now, when that is absent):
// same day means the bar before it is the previous close, a different day
// means the last bar itself is.
func normalizeChart(result *chartResult, requestSymbol string, now time.Time) *MarketData {
	meta := result.Meta

	var closes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	candles := make([]candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i < len(closes) && closes[i] != nil {
			candles = append(candles, candle{ts: ts, close: *closes[i]})
		}
	}

	currentPrice := meta.RegularMarketPrice
	if currentPrice == 0 && len(candles) > 0 {
		currentPrice = candles[len(candles)-1].close
	}

	prevClose := meta.PreviousClose
	if len(candles) > 0 {
		last := candles[len(candles)-1]
		marketTime := meta.RegularMarketTime
		if marketTime == 0 {
			marketTime = now.Unix()
		}
		if sameUTCDay(last.ts, marketTime) {
			// Last bar is today's in-progress session; the bar before it
			// holds the previous close.
			if len(candles) >= 2 {
				prevClose = candles[len(candles)-2].close
			}
		} else {
			// Today has no bar yet, so the last bar is the last completed
			// session and the live price is not reflected in any candle.
			prevClose = last.close
		}
	}
	if prevClose == 0 {
		prevClose = currentPrice
	}

	change := currentPrice - prevClose
	changePercent := 0.0
	if prevClose != 0 {
		changePercent = change / prevClose * 100
	}
	if math.Abs(change) < changeEpsilon {
		change = 0
		changePercent = 0
	}

	currency := meta.Currency
	if currency == "" {
		currency = "USD"
	}
	// B3 listings and the BRL cross always settle in BRL, whatever the
	// provider reports.
	if strings.HasSuffix(meta.Symbol, ".SA") || meta.Symbol == "BRL=X" {
		currency = "BRL"
	}

	range52w := format.Placeholder
	if meta.FiftyTwoWeekLow != 0 && meta.FiftyTwoWeekHigh != 0 {
		range52w = format.Number(meta.FiftyTwoWeekLow, 2) + " - " + format.Number(meta.FiftyTwoWeekHigh, 2)
	}
	rangeDay := format.Placeholder
	if meta.RegularMarketDayLow != 0 && meta.RegularMarketDayHigh != 0 {
		rangeDay = format.Number(meta.RegularMarketDayLow, 2) + " - " + format.Number(meta.RegularMarketDayHigh, 2)
	}

	open := meta.RegularMarketOpen
	if open == 0 {
		open = currentPrice
	}
	high := meta.RegularMarketDayHigh
	if high == 0 {
		high = currentPrice
	}
	low := meta.RegularMarketDayLow
	if low == 0 {
		low = currentPrice
	}

	longName := meta.LongName
	if longName == "" {
		longName = meta.ShortName
	}
	if longName == "" {
		longName = requestSymbol
	}

	return &MarketData{
		Symbol:        meta.Symbol,
		LongName:      longName,
		Currency:      currency,
		Price:         currentPrice,
		PrevClose:     prevClose,
		Change:        change,
		ChangePercent: changePercent,
		Open:          open,
		High:          high,
		Low:           low,
		Volume:        meta.RegularMarketVolume,
		RangeDay:      rangeDay,
		Range52w:      range52w,
		// MarketCap is not present in the chart payload shape; the field
		// stays unset until a source for it exists.
	}
}

func sameUTCDay(t1, t2 int64) bool {
	d1 := time.Unix(t1, 0).UTC()
	d2 := time.Unix(t2, 0).UTC()
	return d1.Year() == d2.Year() && d1.Month() == d2.Month() && d1.Day() == d2.Day()
}
