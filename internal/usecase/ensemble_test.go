package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"SignalFuse/internal/domain/models"
	"SignalFuse/pkg/cache"
	"SignalFuse/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordCacheOp(string, string)    {}
func (nopMetrics) RecordAdapterFailure(string)     {}
func (nopMetrics) RecordAgreement(string, float64) {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
func (nopMetrics) RecordError(string)              {}

type fakeAnalyst struct {
	name    string
	opinion models.DirectionalOpinion
	calls   atomic.Int64
}

func (a *fakeAnalyst) Name() string { return a.name }

func (a *fakeAnalyst) Analyze(_ context.Context, snap models.MarketSnapshot, _ models.SignalSet) models.DirectionalOpinion {
	a.calls.Add(1)
	op := a.opinion
	op.Source = a.name
	if op.TargetPrice == 0 {
		op.TargetPrice = snap.CurrentPrice
	}
	return op
}

type fakeSource struct {
	name  string
	score float64
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) FetchSignal(context.Context, string) models.SignalScore {
	return models.SignalScore{Source: s.name, Score: s.score, SourceCount: 1, Summary: "ok"}
}

type countingStore struct {
	stores atomic.Int64
	fail   bool
}

func (s *countingStore) Store(context.Context, string, *models.ConsensusResult) error {
	s.stores.Add(1)
	if s.fail {
		return errors.New("insert failed")
	}
	return nil
}

func (s *countingStore) Latest(context.Context, string, int) ([]models.AnalysisRecord, error) {
	return nil, nil
}
func (s *countingStore) Health(context.Context) error { return nil }
func (s *countingStore) Close() error                 { return nil }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testEnsemble(t *testing.T, tech, risk *fakeAnalyst, store *countingStore) *Ensemble {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	return NewEnsemble(
		tech, risk,
		&fakeSource{name: "trend", score: 0.5},
		&fakeSource{name: "onchain", score: 0.2},
		&fakeSource{name: "sentiment", score: -0.1},
		cache.NewAside(mc),
		store,
		nil,
		testLogger(t),
		nopMetrics{},
		EnsembleConfig{TechnicalWeight: 0.40, RiskWeight: 0.35, CacheTTL: time.Hour},
	)
}

func snapshot(price float64) models.MarketSnapshot {
	return models.MarketSnapshot{
		Symbol:         "BTCUSDT",
		CurrentPrice:   price,
		PriceChange24h: 1.2,
		Volume24h:      1000,
		High24h:        price * 1.02,
		Low24h:         price * 0.98,
	}
}

func TestEnsembleAnalyzeCachesBySymbolAndPrice(t *testing.T) {
	tech := &fakeAnalyst{name: "technical", opinion: opinion("technical", models.SignalBuy, 80)}
	risk := &fakeAnalyst{name: "risk", opinion: opinion("risk", models.SignalBuy, 70)}
	e := testEnsemble(t, tech, risk, &countingStore{})

	ctx := context.Background()
	first, err := e.Analyze(ctx, snapshot(50000))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	second, err := e.Analyze(ctx, snapshot(50000))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if tech.calls.Load() != 1 || risk.calls.Load() != 1 {
		t.Fatalf("expected cached second call, analysts ran %d/%d times", tech.calls.Load(), risk.calls.Load())
	}
	if first.Consensus.Signal != second.Consensus.Signal {
		t.Fatalf("cached result differs: %s vs %s", first.Consensus.Signal, second.Consensus.Signal)
	}

	// A price outside the cent bucket forces a fresh computation.
	if _, err := e.Analyze(ctx, snapshot(50100)); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if tech.calls.Load() != 2 {
		t.Fatalf("expected recompute for new price bucket, got %d calls", tech.calls.Load())
	}
}

func TestEnsembleAnalyzeAttachesSignals(t *testing.T) {
	tech := &fakeAnalyst{name: "technical", opinion: opinion("technical", models.SignalBuy, 80)}
	risk := &fakeAnalyst{name: "risk", opinion: opinion("risk", models.SignalHold, 60)}
	e := testEnsemble(t, tech, risk, &countingStore{})

	res, err := e.Analyze(context.Background(), snapshot(50000))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Signals == nil {
		t.Fatalf("expected signals on result")
	}
	if res.Signals.Trend == nil || res.Signals.Trend.Score != 0.5 {
		t.Fatalf("trend signal missing or wrong: %+v", res.Signals.Trend)
	}
	if res.Signals.OnChain == nil || res.Signals.Sentiment == nil {
		t.Fatalf("expected all three signals, got %+v", res.Signals)
	}
	if len(res.Opinions) != 2 {
		t.Fatalf("expected both opinions, got %d", len(res.Opinions))
	}
}

func TestEnsembleStoreFailureIsBestEffort(t *testing.T) {
	tech := &fakeAnalyst{name: "technical", opinion: opinion("technical", models.SignalBuy, 80)}
	risk := &fakeAnalyst{name: "risk", opinion: opinion("risk", models.SignalBuy, 70)}
	store := &countingStore{fail: true}
	e := testEnsemble(t, tech, risk, store)

	res, err := e.Analyze(context.Background(), snapshot(50000))
	if err != nil {
		t.Fatalf("store failure must not fail analysis: %v", err)
	}
	if store.stores.Load() != 1 {
		t.Fatalf("expected store attempt, got %d", store.stores.Load())
	}
	if res.Consensus.Signal != models.SignalBuy {
		t.Fatalf("unexpected consensus %s", res.Consensus.Signal)
	}
}

func TestEnsembleInvalidateForcesRecompute(t *testing.T) {
	tech := &fakeAnalyst{name: "technical", opinion: opinion("technical", models.SignalBuy, 80)}
	risk := &fakeAnalyst{name: "risk", opinion: opinion("risk", models.SignalBuy, 70)}
	e := testEnsemble(t, tech, risk, &countingStore{})

	ctx := context.Background()
	if _, err := e.Analyze(ctx, snapshot(50000)); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if err := e.Invalidate(ctx, "BTCUSDT"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := e.Analyze(ctx, snapshot(50000)); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if tech.calls.Load() != 2 {
		t.Fatalf("expected recompute after invalidation, got %d calls", tech.calls.Load())
	}
}

func TestEnsembleHistoryWithoutStore(t *testing.T) {
	tech := &fakeAnalyst{name: "technical", opinion: opinion("technical", models.SignalHold, 50)}
	risk := &fakeAnalyst{name: "risk", opinion: opinion("risk", models.SignalHold, 50)}

	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	e := NewEnsemble(
		tech, risk,
		&fakeSource{name: "trend"}, &fakeSource{name: "onchain"}, &fakeSource{name: "sentiment"},
		cache.NewAside(mc), nil, nil, testLogger(t), nopMetrics{},
		EnsembleConfig{TechnicalWeight: 0.40, RiskWeight: 0.35},
	)

	if _, err := e.History(context.Background(), "BTCUSDT", 10); err == nil {
		t.Fatalf("expected error when history store is not configured")
	}
}

func TestBucketPrice(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{50000, "50000.00"},
		{50000.004, "50000.00"},
		{50000.006, "50000.01"},
		{0.12345, "0.12"},
	}
	for _, c := range cases {
		if got := bucketPrice(c.in); got != c.want {
			t.Fatalf("bucketPrice(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
