package analyst

import (
	"context"
	"errors"
	"strings"
	"testing"

	"SignalFuse/internal/domain/models"
	"SignalFuse/pkg/logger"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeGenerator struct {
	content string
	err     error
	prompt  string
}

func (g *fakeGenerator) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	if g.err != nil {
		return nil, g.err
	}
	if len(input) > 0 {
		g.prompt = input[len(input)-1].Content
	}
	return &schema.Message{Role: schema.Assistant, Content: g.content}, nil
}

func testAgent(t *testing.T, gen generator) *Agent {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &Agent{
		name:    "technical",
		persona: technicalPersona,
		enabled: true,
		model:   gen,
		logger:  l,
	}
}

func snapshot() models.MarketSnapshot {
	return models.MarketSnapshot{
		Symbol:         "BTCUSDT",
		CurrentPrice:   50000,
		PriceChange24h: 2.5,
		Volume24h:      12000,
		High24h:        51000,
		Low24h:         48500,
	}
}

const validJSON = `{"signal":"buy","confidence":72,"targetPrice":52000,"reasoning":"Momentum is positive.","riskLevel":"low","timeframe":"short"}`

func TestAnalyzeValidOutput(t *testing.T) {
	agent := testAgent(t, &fakeGenerator{content: validJSON})

	op := agent.Analyze(context.Background(), snapshot(), models.SignalSet{})
	if op.Signal != models.SignalBuy {
		t.Fatalf("expected buy, got %s", op.Signal)
	}
	if op.Confidence != 72 {
		t.Fatalf("expected confidence 72, got %v", op.Confidence)
	}
	if op.TargetPrice != 52000 {
		t.Fatalf("expected target 52000, got %v", op.TargetPrice)
	}
	if op.Source != "technical" {
		t.Fatalf("expected technical source, got %q", op.Source)
	}
	if op.RiskLevel != models.RiskLow || op.Timeframe != models.TimeframeShort {
		t.Fatalf("unexpected risk/timeframe: %s/%s", op.RiskLevel, op.Timeframe)
	}
}

func TestAnalyzeJSONWrappedInProse(t *testing.T) {
	content := "Sure, here is my assessment:\n\n" + validJSON + "\n\nLet me know if you need more."
	agent := testAgent(t, &fakeGenerator{content: content})

	op := agent.Analyze(context.Background(), snapshot(), models.SignalSet{})
	if op.Signal != models.SignalBuy {
		t.Fatalf("expected extracted opinion, got %s with reasoning %q", op.Signal, op.Reasoning)
	}
}

func TestAnalyzeMalformedOutputFallsBack(t *testing.T) {
	agent := testAgent(t, &fakeGenerator{content: "I cannot provide financial advice."})

	op := agent.Analyze(context.Background(), snapshot(), models.SignalSet{})
	if op.Signal != models.SignalHold || op.Confidence != 50 {
		t.Fatalf("expected fallback, got %+v", op)
	}
	if op.TargetPrice != 50000 {
		t.Fatalf("fallback must target current price, got %v", op.TargetPrice)
	}
}

func TestAnalyzeInvalidSignalFallsBack(t *testing.T) {
	agent := testAgent(t, &fakeGenerator{
		content: `{"signal":"moon","confidence":90,"targetPrice":60000,"reasoning":"x","riskLevel":"low","timeframe":"short"}`,
	})

	op := agent.Analyze(context.Background(), snapshot(), models.SignalSet{})
	if op.Signal != models.SignalHold || op.Reasoning != "Analysis unavailable" {
		t.Fatalf("expected fallback for invalid signal, got %+v", op)
	}
}

func TestAnalyzeGeneratorErrorFallsBack(t *testing.T) {
	agent := testAgent(t, &fakeGenerator{err: errors.New("upstream timeout")})

	op := agent.Analyze(context.Background(), snapshot(), models.SignalSet{})
	if op.Signal != models.SignalHold || op.Confidence != 50 {
		t.Fatalf("expected fallback on generator error, got %+v", op)
	}
}

func TestAnalyzeDisabledAgent(t *testing.T) {
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	agent := New(technicalPersona, Config{Enabled: false}, l)

	op := agent.Analyze(context.Background(), snapshot(), models.SignalSet{})
	if op != FallbackOpinion("technical", 50000) {
		t.Fatalf("disabled agent must return the fallback, got %+v", op)
	}
}

func TestAnalyzePromptCarriesSignals(t *testing.T) {
	gen := &fakeGenerator{content: validJSON}
	agent := testAgent(t, gen)

	signals := models.SignalSet{
		Trend: &models.SignalScore{Source: "trend", Score: 0.5, SourceCount: 4, Summary: "uptrend"},
	}
	agent.Analyze(context.Background(), snapshot(), signals)

	for _, want := range []string{"BTCUSDT", "50000", "uptrend"} {
		if !strings.Contains(gen.prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, gen.prompt)
		}
	}
}

func TestSanitizeClamping(t *testing.T) {
	raw := llmOpinion{
		Signal:      "  SELL ",
		Confidence:  140,
		TargetPrice: -5,
		Reasoning:   "  ",
		RiskLevel:   "extreme",
		Timeframe:   "forever",
	}
	op, err := sanitize("risk", raw, 41000)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if op.Signal != models.SignalSell {
		t.Fatalf("expected sell, got %s", op.Signal)
	}
	if op.Confidence != 100 {
		t.Fatalf("expected clamped confidence 100, got %v", op.Confidence)
	}
	if op.TargetPrice != 41000 {
		t.Fatalf("expected current price target, got %v", op.TargetPrice)
	}
	if op.RiskLevel != models.RiskMedium || op.Timeframe != models.TimeframeMedium {
		t.Fatalf("expected defaults for bad risk/timeframe, got %s/%s", op.RiskLevel, op.Timeframe)
	}
	if op.Reasoning != "No reasoning provided." {
		t.Fatalf("expected default reasoning, got %q", op.Reasoning)
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`prefix {"a":1} suffix`, `{"a":1}`},
		{`{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{`no braces here`, ``},
		{`{"unterminated":`, ``},
	}
	for _, c := range cases {
		if got := extractFirstJSONObject(c.in); got != c.want {
			t.Fatalf("extractFirstJSONObject(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
