package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"SignalFuse/internal/domain/repository"
	"SignalFuse/pkg/cache"
)

type fakeProvider struct {
	name  string
	score float64
	err   error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Score(context.Context, string) (float64, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.score, nil
}

func providers(ps ...repository.SentimentProvider) []repository.SentimentProvider {
	return ps
}

func TestSentimentAggregateAveragesSuccesses(t *testing.T) {
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	src := NewSentimentSource(providers(
		&fakeProvider{name: "fear_greed", score: 60},
		&fakeProvider{name: "social", score: 20},
	), cache.NewAside(mc), testLogger(t), nopMetrics{})

	analysis := src.Aggregate(context.Background(), "BTCUSDT")
	if analysis.SourceCount != 2 {
		t.Fatalf("expected 2 sources, got %d", analysis.SourceCount)
	}
	// mean(60, 20) / 100 = 0.4
	if math.Abs(analysis.Score-0.4) > 1e-9 {
		t.Fatalf("expected score 0.4, got %v", analysis.Score)
	}
	if analysis.Sources["fear_greed"] != 60 {
		t.Fatalf("per-source score not preserved: %+v", analysis.Sources)
	}
}

func TestSentimentAggregateSkipsFailedProviders(t *testing.T) {
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	src := NewSentimentSource(providers(
		&fakeProvider{name: "fear_greed", score: -80},
		&fakeProvider{name: "social", err: errors.New("rate limited")},
	), cache.NewAside(mc), testLogger(t), nopMetrics{})

	analysis := src.Aggregate(context.Background(), "BTCUSDT")
	if analysis.SourceCount != 1 {
		t.Fatalf("failed provider must not count, got %d", analysis.SourceCount)
	}
	if math.Abs(analysis.Score-(-0.8)) > 1e-9 {
		t.Fatalf("expected score -0.8, got %v", analysis.Score)
	}
}

func TestSentimentAggregateAllFailedFallsBack(t *testing.T) {
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	src := NewSentimentSource(providers(
		&fakeProvider{name: "fear_greed", err: errors.New("down")},
		&fakeProvider{name: "social", err: errors.New("down")},
	), cache.NewAside(mc), testLogger(t), nopMetrics{})

	analysis := src.Aggregate(context.Background(), "BTCUSDT")
	if analysis.SourceCount != 0 {
		t.Fatalf("expected 0 sources, got %d", analysis.SourceCount)
	}
	if analysis.Score != 0 {
		t.Fatalf("expected neutral score, got %v", analysis.Score)
	}
	if analysis.Summary != "Unable to fetch sentiment data at this time." {
		t.Fatalf("unexpected summary %q", analysis.Summary)
	}
}

func TestSentimentAggregateCaches(t *testing.T) {
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	calls := 0
	counting := &countingProvider{inner: &fakeProvider{name: "fear_greed", score: 50}, calls: &calls}
	src := NewSentimentSource(providers(counting), cache.NewAside(mc), testLogger(t), nopMetrics{})

	ctx := context.Background()
	src.Aggregate(ctx, "BTCUSDT")
	src.Aggregate(ctx, "BTCUSDT")
	if calls != 1 {
		t.Fatalf("expected cached second aggregate, providers ran %d times", calls)
	}

	src.Aggregate(ctx, "ETHUSDT")
	if calls != 2 {
		t.Fatalf("expected per-symbol cache keys, providers ran %d times", calls)
	}
}

func TestSentimentFetchSignalClamped(t *testing.T) {
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	src := NewSentimentSource(providers(
		&fakeProvider{name: "a", score: 100},
		&fakeProvider{name: "b", score: 100},
	), cache.NewAside(mc), testLogger(t), nopMetrics{})

	sig := src.FetchSignal(context.Background(), "BTCUSDT")
	if sig.Score != 1 {
		t.Fatalf("expected clamped score 1, got %v", sig.Score)
	}
	if sig.Source != "sentiment" {
		t.Fatalf("unexpected source %q", sig.Source)
	}
}

type countingProvider struct {
	inner *fakeProvider
	calls *int
}

func (p *countingProvider) Name() string { return p.inner.name }

func (p *countingProvider) Score(ctx context.Context, symbol string) (float64, error) {
	*p.calls++
	return p.inner.Score(ctx, symbol)
}
