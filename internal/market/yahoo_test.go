package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validChartBody = `{"chart":{"result":[{"meta":{"symbol":"PETR4.SA","currency":"BRL","regularMarketPrice":30.0,"previousClose":29.5},"timestamp":[],"indicators":{"quote":[{"close":[]}]}}],"error":null}}`

// testProvider points the provider at a local server through pass-through
// relays and shrinks the backoff so exhaustion tests stay fast.
func testProvider(srvURL string, relayNames ...string) *YahooProvider {
	p := NewYahooProvider(YahooConfig{BackoffInitialMs: 1})
	p.baseURL = srvURL
	if len(relayNames) == 0 {
		relayNames = []string{"test"}
	}
	p.relays = p.relays[:0]
	for _, name := range relayNames {
		p.relays = append(p.relays, relay{
			name:    name,
			rewrite: func(target string) string { return target },
		})
	}
	return p
}

func TestFetchChartExhaustionReturnsError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	md, err := p.Quote(context.Background(), "PETR4")
	require.Error(t, err)
	assert.Nil(t, md)
	assert.EqualValues(t, 6, attempts.Load())
}

func TestFetchChartSucceedsAfterRelayFailures(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, validChartBody)
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	md, err := p.Quote(context.Background(), "PETR4")
	require.NoError(t, err)
	assert.Equal(t, "PETR4.SA", md.Symbol)
	assert.Equal(t, 30.0, md.Price)
	assert.EqualValues(t, 3, attempts.Load())
}

func TestFetchChartProviderErrorBlockBurnsBudget(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	_, err := p.Quote(context.Background(), "BOGUS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider error")
	assert.EqualValues(t, 6, attempts.Load())
}

func TestFetchChartRejectsPayloadWithoutMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[]}],"error":null}}`)
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	_, err := p.Quote(context.Background(), "PETR4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty chart payload")
}

func TestFetchChartRejectsMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<!doctype html><html>rate limited</html>`)
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	_, err := p.Quote(context.Background(), "PETR4")
	require.Error(t, err)
}

func TestFetchChartRoundRobinRelaySelection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := testProvider(srv.URL, "a", "b", "c")
	var order []string
	for i := range p.relays {
		r := p.relays[i]
		inner := r.rewrite
		p.relays[i].rewrite = func(target string) string {
			order = append(order, r.name)
			return inner(target)
		}
	}

	_, err := p.fetchChart(context.Background(), "PETR4.SA")
	require.Error(t, err)
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, order)
}

func TestFetchChartHonorsContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	p.initialBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.fetchChart(ctx, "PETR4.SA")
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not abort on cancel")
	}
}
