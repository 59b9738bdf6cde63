package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"SignalFuse/internal/domain/models"
	"SignalFuse/internal/domain/repository"
	"SignalFuse/internal/domain/service"
	"SignalFuse/pkg/cache"
	"SignalFuse/pkg/logger"
)

// EnsembleConfig holds the fusion weights and consensus cache TTL.
type EnsembleConfig struct {
	TechnicalWeight float64
	RiskWeight      float64
	CacheTTL        time.Duration
}

// Ensemble orchestrates a full analysis round: gather upstream signals,
// run both analysts in parallel, fuse their opinions, and cache the
// result keyed by symbol and price bucket. Persistence and publishing
// are best-effort side effects of a fresh computation.
type Ensemble struct {
	technical service.Analyst
	risk      service.Analyst

	trend     service.SignalSource
	onchain   service.SignalSource
	sentiment service.SignalSource

	aside     *cache.Aside
	store     repository.AnalysisStore
	publisher repository.Publisher
	logger    *logger.Logger
	metrics   repository.Metrics
	cfg       EnsembleConfig
}

func NewEnsemble(
	technical, risk service.Analyst,
	trend, onchain, sentiment service.SignalSource,
	aside *cache.Aside,
	store repository.AnalysisStore,
	publisher repository.Publisher,
	log *logger.Logger,
	metrics repository.Metrics,
	cfg EnsembleConfig,
) *Ensemble {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return &Ensemble{
		technical: technical,
		risk:      risk,
		trend:     trend,
		onchain:   onchain,
		sentiment: sentiment,
		aside:     aside,
		store:     store,
		publisher: publisher,
		logger:    log,
		metrics:   metrics,
		cfg:       cfg,
	}
}

// Analyze returns the consensus for the snapshot, serving from cache when
// the same symbol was already analyzed near the same price. Concurrent
// cache misses each compute independently; results are interchangeable.
func (e *Ensemble) Analyze(ctx context.Context, snap models.MarketSnapshot) (models.ConsensusResult, error) {
	key := cache.GenerateKeyWithParams("consensus", snap.Symbol, bucketPrice(snap.CurrentPrice))
	return cache.GetOrCompute(ctx, e.aside, key, e.cfg.CacheTTL, func(ctx context.Context) (models.ConsensusResult, error) {
		return e.compute(ctx, snap)
	})
}

func (e *Ensemble) compute(ctx context.Context, snap models.MarketSnapshot) (models.ConsensusResult, error) {
	start := time.Now()

	signals := e.collectSignals(ctx, snap.Symbol)

	var technicalOp, riskOp models.DirectionalOpinion
	done := make(chan struct{}, 2)
	go func() {
		technicalOp = e.technical.Analyze(ctx, snap, signals)
		done <- struct{}{}
	}()
	go func() {
		riskOp = e.risk.Analyze(ctx, snap, signals)
		done <- struct{}{}
	}()
	<-done
	<-done

	res, err := Fuse(
		models.WeightedOpinion{Weight: e.cfg.TechnicalWeight, Opinion: technicalOp},
		models.WeightedOpinion{Weight: e.cfg.RiskWeight, Opinion: riskOp},
		time.Now(),
	)
	if err != nil {
		e.metrics.RecordError("fusion")
		return models.ConsensusResult{}, fmt.Errorf("fuse opinions for %s: %w", snap.Symbol, err)
	}
	res.Signals = &signals

	e.metrics.RecordAgreement(snap.Symbol, float64(res.Agreement))
	e.metrics.RecordLatency("analyze", time.Since(start).Seconds())

	if e.store != nil {
		if err := e.store.Store(ctx, snap.Symbol, &res); err != nil {
			e.logger.Warn("analysis history store failed", logger.String("symbol", snap.Symbol), logger.Error(err))
		}
	}
	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, snap.Symbol, &res); err != nil {
			e.logger.Warn("consensus publish failed", logger.String("symbol", snap.Symbol), logger.Error(err))
		}
	}

	e.logger.Info("consensus computed",
		logger.String("symbol", snap.Symbol),
		logger.String("signal", string(res.Consensus.Signal)),
		logger.Int("agreement", res.Agreement),
		logger.Duration("elapsed", time.Since(start)))
	return res, nil
}

// collectSignals queries the three signal sources concurrently. Sources
// never fail; they degrade to their neutral defaults internally.
func (e *Ensemble) collectSignals(ctx context.Context, symbol string) models.SignalSet {
	var trend, onchain, sentiment models.SignalScore
	done := make(chan struct{}, 3)

	go func() {
		trend = e.trend.FetchSignal(ctx, symbol)
		done <- struct{}{}
	}()
	go func() {
		onchain = e.onchain.FetchSignal(ctx, symbol)
		done <- struct{}{}
	}()
	go func() {
		sentiment = e.sentiment.FetchSignal(ctx, symbol)
		done <- struct{}{}
	}()
	for i := 0; i < 3; i++ {
		<-done
	}

	return models.SignalSet{
		Trend:     &trend,
		OnChain:   &onchain,
		Sentiment: &sentiment,
	}
}

// Invalidate drops every cached consensus bucket for the symbol, forcing
// the next Analyze to recompute.
func (e *Ensemble) Invalidate(ctx context.Context, symbol string) error {
	return e.aside.Invalidate(ctx, cache.BuildPattern(cache.GenerateKey("consensus", symbol)+":"))
}

// History returns the latest persisted consensus rows for a symbol.
func (e *Ensemble) History(ctx context.Context, symbol string, limit int) ([]models.AnalysisRecord, error) {
	if e.store == nil {
		return nil, fmt.Errorf("analysis history not configured")
	}
	return e.store.Latest(ctx, symbol, limit)
}

// bucketPrice rounds a price to the nearest cent for cache keying, so a
// symbol re-analyzed at effectively the same price reuses the consensus.
func bucketPrice(price float64) string {
	return strconv.FormatFloat(math.Round(price*100)/100, 'f', 2, 64)
}
