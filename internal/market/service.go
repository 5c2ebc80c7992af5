package market

import (
	"context"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"alphamarket/internal/store"
)

// Service owns the last-known quote cache and runs the poll cycle. Batch
// results are partial maps merged on top of the cache, so a transient relay
// outage for a subset of symbols never blanks out known quotes.
type Service struct {
	provider  Provider
	store     *store.Store
	jitterMax time.Duration

	mu    sync.Mutex
	cache map[string]*MarketData

	// fetching guards against overlapping poll cycles: a tick that arrives
	// while a batch is in flight is skipped entirely.
	fetching atomic.Bool
}

func NewService(provider Provider, st *store.Store, jitterMax time.Duration) *Service {
	if jitterMax <= 0 {
		jitterMax = time.Second
	}
	return &Service{
		provider:  provider,
		store:     st,
		jitterMax: jitterMax,
		cache:     make(map[string]*MarketData),
	}
}

// GetOne fetches a single symbol live. An error means "temporarily
// unavailable"; the cache keeps whatever was known before.
func (s *Service) GetOne(ctx context.Context, symbol string) (*MarketData, error) {
	md, err := s.provider.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	s.merge(map[string]*MarketData{symbol: md})
	return md, nil
}

// GetBatch fans out one fetch pipeline per symbol, each delayed by an
// independent uniform jitter to desynchronize load on the shared relay pool.
// Symbols whose pipeline fails are omitted from the result.
func (s *Service) GetBatch(ctx context.Context, symbols []string) map[string]*MarketData {
	out := make(map[string]*MarketData, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			select {
			case <-time.After(rand.N(s.jitterMax)):
			case <-ctx.Done():
				return
			}
			md, err := s.provider.Quote(ctx, symbol)
			if err != nil {
				log.Printf("market: fetch %s: %v", symbol, err)
				return
			}
			mu.Lock()
			out[symbol] = md
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	s.merge(out)
	return out
}

// Cached returns a copy of the last-known records. With no arguments the
// whole cache is returned.
func (s *Service) Cached(symbols ...string) map[string]*MarketData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*MarketData)
	if len(symbols) == 0 {
		for k, v := range s.cache {
			out[k] = v
		}
		return out
	}
	for _, symbol := range symbols {
		if md, ok := s.cache[symbol]; ok {
			out[symbol] = md
		}
	}
	return out
}

// PollLoop refreshes the symbol universe until the context is cancelled.
func (s *Service) PollLoop(ctx context.Context, symbols []string, interval time.Duration) {
	if interval <= 0 {
		interval = 8 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		s.pollOnce(ctx, symbols)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Service) pollOnce(ctx context.Context, symbols []string) {
	if !s.fetching.CompareAndSwap(false, true) {
		log.Printf("market: poll still in flight, skipping cycle")
		return
	}
	defer s.fetching.Store(false)

	data := s.GetBatch(ctx, symbols)
	if len(data) == 0 {
		log.Printf("market: poll yielded no data for %d symbols", len(symbols))
	}
}

func (s *Service) merge(data map[string]*MarketData) {
	if len(data) == 0 {
		return
	}
	s.mu.Lock()
	for symbol, md := range data {
		s.cache[symbol] = md
	}
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	now := time.Now().Unix()
	for symbol, md := range data {
		snap := store.QuoteSnapshot{
			TS:            now,
			Symbol:        symbol,
			YahooSymbol:   md.Symbol,
			LongName:      md.LongName,
			Currency:      md.Currency,
			Price:         md.Price,
			PrevClose:     md.PrevClose,
			Change:        md.Change,
			ChangePercent: md.ChangePercent,
			Open:          md.Open,
			High:          md.High,
			Low:           md.Low,
			Volume:        md.Volume,
		}
		if err := s.store.InsertQuoteSnapshot(snap); err != nil {
			log.Printf("market: insert snapshot %s: %v", symbol, err)
		}
	}
}
