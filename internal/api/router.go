package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"alphamarket/internal/analyst"
	"alphamarket/internal/catalog"
	"alphamarket/internal/format"
	"alphamarket/internal/market"
	"alphamarket/internal/store"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
)

type AnalyzeRequest struct {
	Symbol   string `json:"symbol"`
	Language string `json:"language"`
}

type OverviewRequest struct {
	Language string `json:"language"`
}

// QuoteView is a MarketData record plus the formatted strings the dashboard
// renders directly.
type QuoteView struct {
	market.MarketData
	PriceFmt  string `json:"priceFmt"`
	ChangeFmt string `json:"changeFmt"`
	VolumeFmt string `json:"volumeFmt"`
}

func RegisterRoutes(h *server.Hertz, mkt *market.Service, st *store.Store, agent *analyst.Agent, defaultSymbols []string) {
	// With no configured universe, serve the whole catalog.
	if len(defaultSymbols) == 0 {
		defaultSymbols = catalog.Symbols()
	}

	h.GET("/healthz", func(_ context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	// Cached last-known quotes for the dashboard poll. ?symbols=a,b narrows
	// the map; ?live=true forces a fresh batch fetch first.
	h.GET("/api/v1/quotes", func(ctx context.Context, c *app.RequestContext) {
		symbols := defaultSymbols
		if raw := c.Query("symbols"); raw != "" {
			symbols = splitSymbols(raw)
		}

		if strings.EqualFold(c.Query("live"), "true") {
			mkt.GetBatch(ctx, symbols)
		}

		data := mkt.Cached(symbols...)
		views := make(map[string]QuoteView, len(data))
		for symbol, md := range data {
			views[symbol] = newQuoteView(md)
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":     true,
			"quotes": views,
		})
	})

	h.GET("/api/v1/quote/:symbol", func(ctx context.Context, c *app.RequestContext) {
		symbol := c.Param("symbol")
		md, err := mkt.GetOne(ctx, symbol)
		if err != nil {
			log.Printf("api: quote %s: %v", symbol, err)
			c.JSON(http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "quote temporarily unavailable",
			})
			return
		}
		payload := map[string]any{
			"ok":    true,
			"quote": newQuoteView(md),
		}
		// Known instruments carry their catalog identity for the header card.
		if asset, ok := catalog.Find(symbol); ok {
			payload["asset"] = asset
		}
		c.JSON(http.StatusOK, payload)
	})

	h.GET("/api/v1/quote/:symbol/history", func(_ context.Context, c *app.RequestContext) {
		if st == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "store not configured",
			})
			return
		}
		symbol := c.Param("symbol")
		limit := queryInt(c, "limit", 200)
		offset := queryInt(c, "offset", 0)
		snaps, err := st.QueryQuoteSnapshots(symbol, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":        true,
			"symbol":    symbol,
			"snapshots": snaps,
		})
	})

	h.GET("/api/v1/catalog", func(_ context.Context, c *app.RequestContext) {
		t := catalog.AssetType(c.Query("type"))
		c.JSON(http.StatusOK, map[string]any{
			"ok":     true,
			"assets": catalog.Assets(t),
		})
	})

	h.POST("/api/v1/analyze", func(ctx context.Context, c *app.RequestContext) {
		var req AnalyzeRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "invalid json body",
			})
			return
		}
		if req.Symbol == "" {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "symbol is required",
			})
			return
		}

		md, err := mkt.GetOne(ctx, req.Symbol)
		if err != nil {
			// Fall back to the last-known record so a relay hiccup does not
			// block analysis of an already-displayed quote.
			cached := mkt.Cached(req.Symbol)
			if hit, ok := cached[req.Symbol]; ok {
				md = hit
			} else {
				c.JSON(http.StatusServiceUnavailable, map[string]any{
					"ok":    false,
					"error": "quote temporarily unavailable",
				})
				return
			}
		}

		text, err := agent.AnalyzeAsset(ctx, req.Symbol, md, req.Language)
		if err != nil {
			log.Printf("api: analyze %s: %v", req.Symbol, err)
		}
		persistAnalysis(st, req.Symbol, req.Language, "asset", text)
		c.JSON(http.StatusOK, map[string]any{
			"ok":       true,
			"symbol":   req.Symbol,
			"analysis": text,
		})
	})

	h.POST("/api/v1/analyze/overview", func(ctx context.Context, c *app.RequestContext) {
		var req OverviewRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "invalid json body",
			})
			return
		}

		var entries []analyst.OverviewEntry
		for symbol, md := range mkt.Cached(defaultSymbols...) {
			entries = append(entries, analyst.OverviewEntry{
				Symbol:        symbol,
				ChangePercent: md.ChangePercent,
			})
		}
		if len(entries) == 0 {
			c.JSON(http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "no market data yet",
			})
			return
		}

		text, err := agent.AnalyzeOverview(ctx, entries, req.Language)
		if err != nil {
			log.Printf("api: overview: %v", err)
		}
		persistAnalysis(st, "", req.Language, "overview", text)
		c.JSON(http.StatusOK, map[string]any{
			"ok":       true,
			"analysis": text,
		})
	})

	h.GET("/api/v1/analyses", func(_ context.Context, c *app.RequestContext) {
		if st == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "store not configured",
			})
			return
		}
		records, err := st.QueryAnalyses(c.Query("symbol"), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
		if err != nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":       true,
			"analyses": records,
		})
	})

	h.GET("/api/v1/analyst/ping", func(ctx context.Context, c *app.RequestContext) {
		out, err := agent.Ping(ctx)
		if err != nil {
			log.Printf("api: analyst ping: %v", err)
		}
		c.JSON(http.StatusOK, out)
	})
}

func newQuoteView(md *market.MarketData) QuoteView {
	return QuoteView{
		MarketData: *md,
		PriceFmt:   format.Money(md.Price, md.Currency),
		ChangeFmt:  format.Number(md.ChangePercent, 2) + "%",
		VolumeFmt:  format.Compact(float64(md.Volume), ""),
	}
}

func persistAnalysis(st *store.Store, symbol, language, kind, content string) {
	if st == nil {
		return
	}
	rec := store.AnalysisRecord{
		TS:        time.Now().Unix(),
		Symbol:    symbol,
		Language:  language,
		Kind:      kind,
		ContentMD: content,
	}
	if err := st.InsertAnalysis(rec); err != nil {
		log.Printf("api: insert analysis: %v", err)
	}
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func queryInt(c *app.RequestContext, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
