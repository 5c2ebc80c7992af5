package analyst

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"alphamarket/internal/market"
)

type Config struct {
	Enabled    bool   `yaml:"enabled"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	ByAzure    bool   `yaml:"by_azure"`
	APIVersion string `yaml:"api_version"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// OverviewEntry is the per-asset slice of a market overview prompt.
type OverviewEntry struct {
	Symbol        string
	ChangePercent float64
}

// Agent generates narrative analysis for a quote snapshot. When disabled or
// misconfigured it degrades to a fixed offline message instead of failing
// the request.
type Agent struct {
	enabled        bool
	model          *openai.ChatModel
	modelName      string
	disabledReason string
}

func New(cfg Config) *Agent {
	if !cfg.Enabled {
		return &Agent{enabled: false, disabledReason: "disabled by config"}
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("OPENAI_MODEL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if cfg.APIKey == "" || cfg.Model == "" {
		log.Printf("analyst disabled: missing api key or model")
		return &Agent{enabled: false, disabledReason: "api_key or model missing"}
	}

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	model, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		ByAzure:    cfg.ByAzure,
		APIVersion: cfg.APIVersion,
		Timeout:    timeout,
	})
	if err != nil {
		log.Printf("analyst init error: %v", err)
		return &Agent{enabled: false, disabledReason: "init failed"}
	}

	return &Agent{enabled: true, model: model, modelName: cfg.Model}
}

var assetSystemPrompts = map[string]string{
	"en": "You are a senior hedge fund analyst at AlphaMarket. Provide a razor-sharp technical and fundamental outlook. DO NOT OUTPUT JSON. DO NOT OUTPUT CODE BLOCKS. RESPOND ONLY WITH PROFESSIONAL HUMAN-READABLE TEXT IN MARKDOWN. No surrounding quotes.",
	"pt": "Você é um analista sênior de hedge fund no AlphaMarket. Forneça uma análise técnica e fundamentalista ultra-precisa em Português do Brasil. NÃO RESPONDA EM JSON. NÃO USE BLOCOS DE CÓDIGO. RESPONDA APENAS COM TEXTO PROFISSIONAL EM MARKDOWN. Sem aspas iniciais ou finais.",
	"es": "Eres un analista senior de hedge fund en AlphaMarket. Proporciona un análisis técnico y fundamental preciso en Español. NO RESPONDAS EN JSON.",
}

var overviewSystemPrompts = map[string]string{
	"en": "You are a market portfolio manager providing a brief daily snapshot. Plain text only.",
	"pt": "Você é um gestor de portfólio de mercado fornecendo um resumo diário breve. Apenas texto.",
	"es": "Eres un gestor de cartera de mercado proporcionando un resumen diario breve. Solo texto.",
}

const offlineMessage = "Analysis engine offline. Retry on the next refresh."

// AnalyzeAsset produces a narrative outlook for one symbol from its current
// snapshot. The returned string is always renderable; err reports whether
// the model was actually consulted.
func (a *Agent) AnalyzeAsset(ctx context.Context, symbol string, md *market.MarketData, lang string) (string, error) {
	if !a.enabled || a.model == nil {
		return offlineMessage, nil
	}

	marketCap := "N/A"
	if md.MarketCap != nil {
		marketCap = fmt.Sprintf("%.0f", *md.MarketCap)
	}
	prompt := fmt.Sprintf(`ASSET: %s

TECHNICAL SNAPSHOT:
- Last Price: %.2f %s
- Daily Change: %.2f (%.2f%%)
- Range (H/L): %.2f / %.2f
- Volume: %d
- Market Cap: %s

TASK:
1. Deliver a Decisive Signal (BUY/SELL/HOLD).
2. 3 High-impact bullet points on why.
3. Precise Support and Resistance levels.`,
		symbol, md.Price, md.Currency, md.Change, md.ChangePercent, md.High, md.Low, md.Volume, marketCap)

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt(assetSystemPrompts, lang)),
		schema.UserMessage(prompt),
	}

	resp, err := a.model.Generate(ctx, messages)
	if err != nil {
		logLLMError(err)
		return offlineMessage, err
	}
	text := cleanModelText(resp.Content)
	if text == "" {
		return offlineMessage, fmt.Errorf("empty analysis")
	}
	return text, nil
}

// AnalyzeOverview summarizes market sentiment across the leading assets.
func (a *Agent) AnalyzeOverview(ctx context.Context, entries []OverviewEntry, lang string) (string, error) {
	if !a.enabled || a.model == nil {
		return offlineMessage, nil
	}

	if len(entries) > 10 {
		entries = entries[:10]
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s (%.2f%%)", e.Symbol, e.ChangePercent))
	}
	prompt := fmt.Sprintf("Analyze these assets and give a summary of the current market sentiment: %s", strings.Join(parts, ", "))

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt(overviewSystemPrompts, lang)),
		schema.UserMessage(prompt),
	}

	resp, err := a.model.Generate(ctx, messages)
	if err != nil {
		logLLMError(err)
		return offlineMessage, err
	}
	text := cleanModelText(resp.Content)
	if text == "" {
		return offlineMessage, fmt.Errorf("empty overview")
	}
	return text, nil
}

// Ping reports whether the model is reachable, for the diagnostics endpoint.
func (a *Agent) Ping(ctx context.Context) (map[string]any, error) {
	if a == nil || !a.enabled || a.model == nil {
		reason := "not configured"
		if a != nil && a.disabledReason != "" {
			reason = a.disabledReason
		}
		return map[string]any{"ok": true, "mode": "fallback", "reason": reason}, nil
	}
	start := time.Now()
	messages := []*schema.Message{
		schema.SystemMessage("Return ONLY the word pong."),
		schema.UserMessage("ping"),
	}
	_, err := a.model.Generate(ctx, messages)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		logLLMError(err)
		return map[string]any{"ok": true, "mode": "fallback", "reason": "llm error"}, err
	}
	return map[string]any{"ok": true, "mode": "llm", "model": a.modelName, "latency_ms": latency}, nil
}

func systemPrompt(prompts map[string]string, lang string) string {
	if p, ok := prompts[lang]; ok {
		return p
	}
	return prompts["en"]
}

// cleanModelText unwraps the common failure shapes of text endpoints that
// occasionally emit JSON envelopes despite the system prompt.
func cleanModelText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		switch v := parsed.(type) {
		case string:
			text = v
		case map[string]any:
			if content, ok := v["content"].(string); ok {
				text = content
			} else if choices, ok := v["choices"].([]any); ok && len(choices) > 0 {
				if choice, ok := choices[0].(map[string]any); ok {
					if msg, ok := choice["message"].(map[string]any); ok {
						if content, ok := msg["content"].(string); ok {
							text = content
						}
					}
				}
			}
		}
	}

	return strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"`))
}

func logLLMError(err error) {
	apiErr := &openai.APIError{}
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if len(msg) > 300 {
			msg = msg[:300] + "..."
		}
		log.Printf("analyst api error: status=%d message=%s", apiErr.HTTPStatusCode, msg)
		return
	}
	log.Printf("analyst error: %v", err)
}
