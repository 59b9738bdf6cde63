package usecase

import (
	"context"
	"fmt"
	"sync"

	"SignalFuse/internal/domain/models"
	"SignalFuse/internal/domain/repository"
	"SignalFuse/pkg/logger"
)

var trendTimeframes = []string{"1h", "4h", "1d", "1w"}

const (
	trendKlineLimit   = 20
	trendBaseWindow   = 10
	trendThresholdPct = 1.0
)

// TrendSource derives a multi-timeframe trend signal from exchange
// candles. Each timeframe votes buy/sell/hold by comparing the latest
// close against the average of the window's earliest closes.
type TrendSource struct {
	market  repository.MarketData
	logger  *logger.Logger
	metrics repository.Metrics
}

func NewTrendSource(market repository.MarketData, log *logger.Logger, metrics repository.Metrics) *TrendSource {
	return &TrendSource{market: market, logger: log, metrics: metrics}
}

func (s *TrendSource) Name() string { return "trend" }

// FetchSignal returns the normalized trend signal. If no timeframe could
// be analyzed the neutral default is returned, never an error.
func (s *TrendSource) FetchSignal(ctx context.Context, symbol string) models.SignalScore {
	analysis, err := s.Analyze(ctx, symbol)
	if err != nil {
		s.logger.Warn("trend signal unavailable", logger.String("symbol", symbol), logger.Error(err))
		s.metrics.RecordAdapterFailure("trend")
		return models.SignalScore{
			Source:  "trend",
			Score:   0,
			Summary: "Trend analysis temporarily unavailable.",
		}
	}

	return models.SignalScore{
		Source:      "trend",
		Score:       float64(analysis.OverallSignal.Score()) / 2,
		SourceCount: len(analysis.Votes),
		Summary:     analysis.Summary,
	}
}

type timeframeResult struct {
	index int
	vote  models.TimeframeTrend
	err   error
}

// Analyze runs the full multi-timeframe analysis. It fails only when
// every timeframe fails; partial outages degrade to neutral votes.
func (s *TrendSource) Analyze(ctx context.Context, symbol string) (models.TrendAnalysis, error) {
	results := make(chan timeframeResult, len(trendTimeframes))
	var wg sync.WaitGroup

	for i, interval := range trendTimeframes {
		wg.Add(1)
		go func(index int, interval string) {
			defer wg.Done()
			vote, err := s.analyzeTimeframe(ctx, symbol, interval)
			results <- timeframeResult{index: index, vote: vote, err: err}
		}(i, interval)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	votes := make([]models.TimeframeTrend, len(trendTimeframes))
	failures := 0
	for res := range results {
		if res.err != nil {
			s.logger.Warn("timeframe analysis failed",
				logger.String("symbol", symbol),
				logger.String("timeframe", trendTimeframes[res.index]),
				logger.Error(res.err))
			votes[res.index] = models.TimeframeTrend{
				Interval: trendTimeframes[res.index],
				Trend:    "neutral",
				Signal:   models.SignalHold,
				Reason:   "data unavailable",
			}
			failures++
			continue
		}
		votes[res.index] = res.vote
	}

	if failures == len(trendTimeframes) {
		return models.TrendAnalysis{}, fmt.Errorf("all timeframes failed for %s", symbol)
	}

	overall, summary := tallyVotes(votes)
	return models.TrendAnalysis{
		Symbol:        symbol,
		Votes:         votes,
		OverallSignal: overall,
		Summary:       summary,
	}, nil
}

func (s *TrendSource) analyzeTimeframe(ctx context.Context, symbol, interval string) (models.TimeframeTrend, error) {
	candles, err := s.market.Candles(ctx, symbol, interval, trendKlineLimit)
	if err != nil {
		return models.TimeframeTrend{}, err
	}
	if len(candles) <= trendBaseWindow {
		return models.TimeframeTrend{}, fmt.Errorf("only %d candles for %s", len(candles), interval)
	}

	base := 0.0
	for _, c := range candles[:trendBaseWindow] {
		base += c.Close
	}
	base /= trendBaseWindow

	recent := candles[len(candles)-1].Close
	changePct := (recent - base) / base * 100

	vote := models.TimeframeTrend{Interval: interval}
	switch {
	case changePct > trendThresholdPct:
		vote.Trend = "bullish"
		vote.Signal = models.SignalBuy
	case changePct < -trendThresholdPct:
		vote.Trend = "bearish"
		vote.Signal = models.SignalSell
	default:
		vote.Trend = "neutral"
		vote.Signal = models.SignalHold
	}
	vote.Reason = fmt.Sprintf("Price %.2f%% vs %d-period baseline", changePct, trendBaseWindow)
	return vote, nil
}

// tallyVotes folds per-timeframe votes into an overall signal. Three
// aligned timeframes make a direction, four make it strong.
func tallyVotes(votes []models.TimeframeTrend) (models.Signal, string) {
	buys, sells := 0, 0
	for _, v := range votes {
		switch v.Signal {
		case models.SignalBuy:
			buys++
		case models.SignalSell:
			sells++
		}
	}

	switch {
	case buys >= 4:
		return models.SignalStrongBuy, fmt.Sprintf("All %d timeframes bullish - strong uptrend.", len(votes))
	case buys >= 3:
		return models.SignalBuy, fmt.Sprintf("%d of %d timeframes bullish - uptrend forming.", buys, len(votes))
	case sells >= 4:
		return models.SignalStrongSell, fmt.Sprintf("All %d timeframes bearish - strong downtrend.", len(votes))
	case sells >= 3:
		return models.SignalSell, fmt.Sprintf("%d of %d timeframes bearish - downtrend forming.", sells, len(votes))
	default:
		return models.SignalHold, fmt.Sprintf("Mixed trend: %d bullish, %d bearish of %d timeframes.", buys, sells, len(votes))
	}
}
