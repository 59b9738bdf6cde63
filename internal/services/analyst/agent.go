package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"SignalFuse/internal/domain/models"
	"SignalFuse/pkg/logger"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Config configures one LLM analyst backend.
type Config struct {
	Enabled    bool   `yaml:"enabled"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	ByAzure    bool   `yaml:"by_azure"`
	APIVersion string `yaml:"api_version"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// generator is the slice of the chat model the agent needs.
type generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// Agent wraps a chat model behind a persona and converts its free-form
// output into a validated DirectionalOpinion. A disabled or failing agent
// degrades to the neutral fallback opinion, never an error.
type Agent struct {
	name    string
	persona Persona
	enabled bool
	model   generator
	logger  *logger.Logger

	mu          sync.Mutex
	lastErrTime time.Time
}

// Persona defines an analyst's identity and system instructions.
type Persona struct {
	Source string
	System string
}

// New builds an analyst agent. Missing credentials or init failure
// produce a disabled agent that always returns the fallback opinion.
func New(persona Persona, cfg Config, log *logger.Logger) *Agent {
	a := &Agent{
		name:    persona.Source,
		persona: persona,
		logger:  log,
	}

	if !cfg.Enabled {
		log.Info("analyst disabled by config", logger.String("analyst", a.name))
		return a
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if cfg.APIKey == "" || cfg.Model == "" {
		log.Warn("analyst disabled: missing api key or model", logger.String("analyst", a.name))
		return a
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
		log.Error("analyst init failed", logger.String("analyst", a.name), logger.Error(err))
		return a
	}

	a.enabled = true
	a.model = model
	return a
}

func (a *Agent) Name() string { return a.name }

// Analyze produces the analyst's opinion for the snapshot. Any backend
// failure, malformed output, or contract violation yields the fallback.
func (a *Agent) Analyze(ctx context.Context, snap models.MarketSnapshot, signals models.SignalSet) models.DirectionalOpinion {
	if !a.enabled || a.model == nil {
		return FallbackOpinion(a.name, snap.CurrentPrice)
	}

	messages := []*schema.Message{
		schema.SystemMessage(a.persona.System),
		schema.UserMessage(buildPrompt(snap, signals)),
	}

	resp, err := a.model.Generate(ctx, messages)
	if err != nil {
		a.logErrorOnce("analyst request failed", err)
		return FallbackOpinion(a.name, snap.CurrentPrice)
	}

	opinion, err := a.parseOpinion(strings.TrimSpace(resp.Content), snap.CurrentPrice)
	if err != nil {
		a.logErrorOnce("analyst output rejected", err)
		return FallbackOpinion(a.name, snap.CurrentPrice)
	}
	return opinion
}

// Failures during an outage repeat per request; one log line per window
// is enough.
func (a *Agent) logErrorOnce(msg string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastErrTime) < 5*time.Second {
		return
	}
	a.lastErrTime = time.Now()
	a.logger.Warn(msg, logger.String("analyst", a.name), logger.Error(err))
}

type llmOpinion struct {
	Signal      string  `json:"signal"`
	Confidence  float64 `json:"confidence"`
	TargetPrice float64 `json:"targetPrice"`
	Reasoning   string  `json:"reasoning"`
	RiskLevel   string  `json:"riskLevel"`
	Timeframe   string  `json:"timeframe"`
}

func (a *Agent) parseOpinion(text string, currentPrice float64) (models.DirectionalOpinion, error) {
	var raw llmOpinion
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		jsonStr := extractFirstJSONObject(text)
		if jsonStr == "" {
			return models.DirectionalOpinion{}, fmt.Errorf("no json object in output")
		}
		if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
			return models.DirectionalOpinion{}, fmt.Errorf("parse opinion: %w", err)
		}
	}
	return sanitize(a.name, raw, currentPrice)
}

func sanitize(source string, raw llmOpinion, currentPrice float64) (models.DirectionalOpinion, error) {
	signal := models.Signal(strings.ToLower(strings.TrimSpace(raw.Signal)))
	if !signal.Valid() {
		return models.DirectionalOpinion{}, fmt.Errorf("invalid signal %q", raw.Signal)
	}

	confidence := raw.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	target := raw.TargetPrice
	if target <= 0 {
		target = currentPrice
	}

	risk := models.RiskLevel(strings.ToLower(strings.TrimSpace(raw.RiskLevel)))
	if risk.Severity() == 0 {
		risk = models.RiskMedium
	}

	timeframe := models.Timeframe(strings.ToLower(strings.TrimSpace(raw.Timeframe)))
	switch timeframe {
	case models.TimeframeShort, models.TimeframeMedium, models.TimeframeLong:
	default:
		timeframe = models.TimeframeMedium
	}

	reasoning := strings.TrimSpace(raw.Reasoning)
	if reasoning == "" {
		reasoning = "No reasoning provided."
	}

	return models.DirectionalOpinion{
		Source:      source,
		Signal:      signal,
		Confidence:  confidence,
		TargetPrice: target,
		Reasoning:   reasoning,
		RiskLevel:   risk,
		Timeframe:   timeframe,
	}, nil
}

func extractFirstJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// FallbackOpinion is the neutral opinion substituted whenever an analyst
// cannot produce a usable one.
func FallbackOpinion(source string, currentPrice float64) models.DirectionalOpinion {
	return models.DirectionalOpinion{
		Source:      source,
		Signal:      models.SignalHold,
		Confidence:  50,
		TargetPrice: currentPrice,
		Reasoning:   "Analysis unavailable",
		RiskLevel:   models.RiskMedium,
		Timeframe:   models.TimeframeMedium,
	}
}
