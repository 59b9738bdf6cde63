package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"SignalFuse/internal/domain/models"
)

type fakeMarket struct {
	candles map[string][]models.Candle
	err     error
}

func (m *fakeMarket) CurrentPrice(context.Context, string) (float64, error) {
	return 0, errors.New("not implemented")
}

func (m *fakeMarket) Stats24h(context.Context, string) (models.Stats24h, error) {
	return models.Stats24h{}, errors.New("not implemented")
}

func (m *fakeMarket) Candles(_ context.Context, _ string, interval string, _ int) ([]models.Candle, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.candles[interval], nil
}

// candleSeries builds 20 candles whose last close sits changePct above
// the average of the first 10 closes.
func candleSeries(changePct float64) []models.Candle {
	base := 100.0
	out := make([]models.Candle, 20)
	for i := range out {
		out[i] = models.Candle{
			OpenTime: time.Now().Add(time.Duration(i-20) * time.Hour),
			Close:    base,
		}
	}
	out[19].Close = base * (1 + changePct/100)
	return out
}

func TestTrendSourceAllBullish(t *testing.T) {
	market := &fakeMarket{candles: map[string][]models.Candle{
		"1h": candleSeries(3), "4h": candleSeries(3), "1d": candleSeries(3), "1w": candleSeries(3),
	}}
	src := NewTrendSource(market, testLogger(t), nopMetrics{})

	analysis, err := src.Analyze(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.OverallSignal != models.SignalStrongBuy {
		t.Fatalf("expected strong_buy, got %s", analysis.OverallSignal)
	}
	if len(analysis.Votes) != 4 {
		t.Fatalf("expected 4 votes, got %d", len(analysis.Votes))
	}

	sig := src.FetchSignal(context.Background(), "BTCUSDT")
	if sig.Score != 1 {
		t.Fatalf("expected score 1, got %v", sig.Score)
	}
	if sig.SourceCount != 4 {
		t.Fatalf("expected 4 sources, got %d", sig.SourceCount)
	}
}

func TestTrendSourceMajorityBearish(t *testing.T) {
	market := &fakeMarket{candles: map[string][]models.Candle{
		"1h": candleSeries(-3), "4h": candleSeries(-3), "1d": candleSeries(-3), "1w": candleSeries(0.2),
	}}
	src := NewTrendSource(market, testLogger(t), nopMetrics{})

	analysis, err := src.Analyze(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.OverallSignal != models.SignalSell {
		t.Fatalf("expected sell, got %s", analysis.OverallSignal)
	}
}

func TestTrendSourceMixedIsHold(t *testing.T) {
	market := &fakeMarket{candles: map[string][]models.Candle{
		"1h": candleSeries(3), "4h": candleSeries(-3), "1d": candleSeries(3), "1w": candleSeries(-3),
	}}
	src := NewTrendSource(market, testLogger(t), nopMetrics{})

	analysis, err := src.Analyze(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.OverallSignal != models.SignalHold {
		t.Fatalf("expected hold, got %s", analysis.OverallSignal)
	}
}

func TestTrendSourceVoteOrderStable(t *testing.T) {
	market := &fakeMarket{candles: map[string][]models.Candle{
		"1h": candleSeries(3), "4h": candleSeries(3), "1d": candleSeries(3), "1w": candleSeries(3),
	}}
	src := NewTrendSource(market, testLogger(t), nopMetrics{})

	analysis, err := src.Analyze(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for i, want := range trendTimeframes {
		if analysis.Votes[i].Interval != want {
			t.Fatalf("vote %d: expected %s, got %s", i, want, analysis.Votes[i].Interval)
		}
	}
}

func TestTrendSourcePartialFailureDegradesToNeutral(t *testing.T) {
	market := &fakeMarket{candles: map[string][]models.Candle{
		"1h": candleSeries(3), "4h": candleSeries(3), "1d": candleSeries(3),
		// 1w returns no candles
	}}
	src := NewTrendSource(market, testLogger(t), nopMetrics{})

	analysis, err := src.Analyze(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Votes[3].Signal != models.SignalHold {
		t.Fatalf("failed timeframe should vote hold, got %s", analysis.Votes[3].Signal)
	}
	// Three bullish votes out of four still make a buy.
	if analysis.OverallSignal != models.SignalBuy {
		t.Fatalf("expected buy, got %s", analysis.OverallSignal)
	}
}

func TestTrendSourceTotalFailureFallback(t *testing.T) {
	market := &fakeMarket{err: errors.New("exchange down")}
	src := NewTrendSource(market, testLogger(t), nopMetrics{})

	sig := src.FetchSignal(context.Background(), "BTCUSDT")
	if sig.Score != 0 {
		t.Fatalf("expected neutral score, got %v", sig.Score)
	}
	if sig.SourceCount != 0 {
		t.Fatalf("expected 0 sources, got %d", sig.SourceCount)
	}
	if sig.Summary != "Trend analysis temporarily unavailable." {
		t.Fatalf("unexpected summary %q", sig.Summary)
	}
}
