package market

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves canned records and can be told to fail per symbol.
type fakeProvider struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{fail: make(map[string]bool), calls: make(map[string]int)}
}

func (f *fakeProvider) setFail(symbol string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[symbol] = fail
}

func (f *fakeProvider) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

func (f *fakeProvider) Quote(_ context.Context, symbol string) (*MarketData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++
	if f.fail[symbol] {
		return nil, fmt.Errorf("chart data unavailable for %s", symbol)
	}
	return &MarketData{Symbol: TranslateSymbol(symbol), Price: 10, PrevClose: 9}, nil
}

func newTestService(p Provider) *Service {
	return NewService(p, nil, time.Millisecond)
}

func TestGetBatchPartialFailure(t *testing.T) {
	fp := newFakeProvider()
	fp.setFail("VALE3", true)
	svc := newTestService(fp)

	out := svc.GetBatch(context.Background(), []string{"PETR4", "VALE3", "ITUB4"})

	// Exactly the succeeding symbols, no placeholder entries.
	require.Len(t, out, 2)
	assert.Contains(t, out, "PETR4")
	assert.Contains(t, out, "ITUB4")
	assert.NotContains(t, out, "VALE3")
	for _, md := range out {
		assert.NotNil(t, md)
	}
}

func TestBatchFailureKeepsCachedQuote(t *testing.T) {
	fp := newFakeProvider()
	svc := newTestService(fp)

	out := svc.GetBatch(context.Background(), []string{"PETR4", "VALE3"})
	require.Len(t, out, 2)

	// VALE3 starts failing; the cache must keep the last-known record.
	fp.setFail("VALE3", true)
	out = svc.GetBatch(context.Background(), []string{"PETR4", "VALE3"})
	require.Len(t, out, 1)

	cached := svc.Cached("PETR4", "VALE3")
	assert.Len(t, cached, 2)
	assert.Equal(t, "VALE3.SA", cached["VALE3"].Symbol)
}

func TestGetOneUpdatesCache(t *testing.T) {
	fp := newFakeProvider()
	svc := newTestService(fp)

	md, err := svc.GetOne(context.Background(), "PETR4")
	require.NoError(t, err)
	assert.Equal(t, "PETR4.SA", md.Symbol)
	assert.Len(t, svc.Cached(), 1)

	fp.setFail("PETR4", true)
	_, err = svc.GetOne(context.Background(), "PETR4")
	require.Error(t, err)
	// Failure must not evict the cached record.
	assert.Len(t, svc.Cached(), 1)
}

func TestCachedFiltersBySymbol(t *testing.T) {
	fp := newFakeProvider()
	svc := newTestService(fp)
	svc.GetBatch(context.Background(), []string{"PETR4", "VALE3", "ITUB4"})

	got := svc.Cached("PETR4", "UNKNOWN")
	assert.Len(t, got, 1)
	assert.Contains(t, got, "PETR4")

	assert.Len(t, svc.Cached(), 3)
}

func TestPollOnceSkipsWhileFetching(t *testing.T) {
	fp := newFakeProvider()
	svc := newTestService(fp)

	svc.fetching.Store(true)
	svc.pollOnce(context.Background(), []string{"PETR4"})
	assert.Zero(t, fp.callCount("PETR4"))

	svc.fetching.Store(false)
	svc.pollOnce(context.Background(), []string{"PETR4"})
	assert.Equal(t, 1, fp.callCount("PETR4"))
}

func TestGetBatchRespectsContextCancel(t *testing.T) {
	fp := newFakeProvider()
	svc := NewService(fp, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := svc.GetBatch(ctx, []string{"PETR4", "VALE3"})
	assert.Empty(t, out)
	assert.Zero(t, fp.callCount("PETR4"))
}
