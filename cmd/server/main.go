package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"alphamarket/internal/analyst"
	"alphamarket/internal/api"
	"alphamarket/internal/config"
	"alphamarket/internal/market"
	"alphamarket/internal/store"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	cfg, err := config.Load("configs/app.yaml")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	h := server.Default(server.WithHostPorts(addr))

	st, err := store.Open(cfg.Store.Sqlite.Path)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("store close error: %v", err)
		}
	}()

	provider := market.NewYahooProvider(market.YahooConfig{
		MaxAttempts:      cfg.Market.MaxAttempts,
		AttemptTimeoutMs: cfg.Market.AttemptTimeoutMs,
		BackoffInitialMs: cfg.Market.BackoffInitialMs,
		BackoffFactor:    cfg.Market.BackoffFactor,
	})
	mktSvc := market.NewService(provider, st, time.Duration(cfg.Market.BatchJitterMs)*time.Millisecond)

	agent := analyst.New(analyst.Config{
		Enabled:    cfg.Analyst.Enabled,
		Model:      cfg.Analyst.Model,
		APIKey:     cfg.Analyst.APIKey,
		BaseURL:    cfg.Analyst.BaseURL,
		ByAzure:    cfg.Analyst.ByAzure,
		APIVersion: cfg.Analyst.APIVersion,
		TimeoutMs:  cfg.Analyst.TimeoutMs,
	})

	if cfg.Market.PollIntervalSec > 0 && len(cfg.Market.Symbols) > 0 {
		go func() {
			mktSvc.PollLoop(context.Background(), cfg.Market.Symbols, time.Duration(cfg.Market.PollIntervalSec)*time.Second)
		}()
	}

	api.RegisterRoutes(h, mktSvc, st, agent, cfg.Market.Symbols)

	log.Printf("server starting on %s (log.level=%s)", addr, cfg.Log.Level)
	if err := h.Run(); err != nil {
		log.Fatalf("server run error: %v", err)
	}
}
