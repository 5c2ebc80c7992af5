package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

const yahooChartAPI = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooProvider fetches quotes from the Yahoo v8 chart endpoint through a
// rotating pool of public relays. Any single relay may be slow, rate-limited
// or down; the retry budget is shared across the pool.
type YahooProvider struct {
	baseURL        string
	relays         []relay
	maxAttempts    int
	attemptTimeout time.Duration
	initialBackoff time.Duration
	backoffFactor  float64
	client         *http.Client
	now            func() time.Time
}

type YahooConfig struct {
	MaxAttempts      int
	AttemptTimeoutMs int
	BackoffInitialMs int
	BackoffFactor    float64
}

func NewYahooProvider(cfg YahooConfig) *YahooProvider {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 6
	}
	if cfg.AttemptTimeoutMs <= 0 {
		cfg.AttemptTimeoutMs = 4000
	}
	if cfg.BackoffInitialMs <= 0 {
		cfg.BackoffInitialMs = 300
	}
	if cfg.BackoffFactor <= 1 {
		cfg.BackoffFactor = 1.5
	}
	return &YahooProvider{
		baseURL:        yahooChartAPI,
		relays:         defaultRelays(),
		maxAttempts:    cfg.MaxAttempts,
		attemptTimeout: time.Duration(cfg.AttemptTimeoutMs) * time.Millisecond,
		initialBackoff: time.Duration(cfg.BackoffInitialMs) * time.Millisecond,
		backoffFactor:  cfg.BackoffFactor,
		// The overall deadline is enforced per attempt, not on the client.
		client: &http.Client{},
		now:    time.Now,
	}
}

// Quote translates the display symbol, fetches the raw chart payload and
// normalizes it. The returned error covers every "no data" failure mode:
// relay exhaustion, provider-reported symbol errors and structurally invalid
// payloads.
func (p *YahooProvider) Quote(ctx context.Context, symbol string) (*MarketData, error) {
	yahooSymbol := TranslateSymbol(symbol)
	result, err := p.fetchChart(ctx, yahooSymbol)
	if err != nil {
		return nil, err
	}
	return normalizeChart(result, symbol, p.now()), nil
}

// fetchChart tries up to the attempt budget, selecting a relay per attempt by
// round-robin (attempt index modulo pool size) and backing off exponentially
// between attempts.
func (p *YahooProvider) fetchChart(ctx context.Context, yahooSymbol string) (*chartResult, error) {
	// Cache buster at second granularity defeats intermediate caching on the
	// relays; includePrePost=false keeps the series to the regular session.
	target := fmt.Sprintf("%s/%s?interval=1d&range=5d&includePrePost=false&_t=%d",
		p.baseURL, yahooSymbol, p.now().Unix())

	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(float64(p.initialBackoff) * math.Pow(p.backoffFactor, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		r := p.relays[attempt%len(p.relays)]
		result, err := p.fetchOnce(ctx, r, target)
		if err != nil {
			lastErr = fmt.Errorf("relay %s: %w", r.name, err)
			continue
		}
		return result, nil
	}
	return nil, fmt.Errorf("chart data unavailable for %s: %w", yahooSymbol, lastErr)
}

func (p *YahooProvider) fetchOnce(ctx context.Context, r relay, target string) (*chartResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, r.rewrite(target), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}

	// A well-formed error block still burns an attempt from the shared budget.
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("provider error: %s", payload.Chart.Error.Code)
	}
	if len(payload.Chart.Result) == 0 || payload.Chart.Result[0].Meta == nil {
		return nil, fmt.Errorf("empty chart payload")
	}
	return &payload.Chart.Result[0], nil
}
