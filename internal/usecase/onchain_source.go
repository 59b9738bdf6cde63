package usecase

import (
	"context"
	"time"

	"SignalFuse/internal/domain/models"
	"SignalFuse/internal/domain/repository"
	"SignalFuse/pkg/cache"
	"SignalFuse/pkg/logger"
)

const onChainTTL = 15 * time.Minute

// Baselines substituted when the on-chain provider is unreachable, so
// downstream consumers always see a fully-populated metric set.
var onChainFallbackBase = models.OnChainMetrics{
	ActiveAddresses24h:      500000,
	NewAddresses24h:         100000,
	TransactionCount24h:     300000,
	LargeTransactionCount:   500,
	CirculatingSupply:       19000000,
	SupplyOnExchangesPct:    15,
	WhaleAccumulationScore:  0,
	Top100HoldersPercentage: 45,
	Summary:                 "On-chain data temporarily unavailable.",
}

// OnChainSource derives a whale-behavior signal from on-chain metrics,
// cached per symbol.
type OnChainSource struct {
	provider repository.OnChainProvider
	aside    *cache.Aside
	logger   *logger.Logger
	metrics  repository.Metrics
}

func NewOnChainSource(provider repository.OnChainProvider, aside *cache.Aside, log *logger.Logger, metrics repository.Metrics) *OnChainSource {
	return &OnChainSource{provider: provider, aside: aside, logger: log, metrics: metrics}
}

func (s *OnChainSource) Name() string { return "onchain" }

// Metrics returns cached on-chain metrics for the symbol, falling back to
// the baseline set when the provider fails.
func (s *OnChainSource) Metrics(ctx context.Context, symbol string) models.OnChainMetrics {
	key := cache.GenerateKey("onchain", symbol)
	m, err := cache.GetOrCompute(ctx, s.aside, key, onChainTTL, func(ctx context.Context) (models.OnChainMetrics, error) {
		return s.provider.Metrics(ctx, symbol)
	})
	if err != nil {
		s.logger.Warn("on-chain metrics unavailable", logger.String("symbol", symbol), logger.Error(err))
		s.metrics.RecordAdapterFailure("onchain")
		fallback := onChainFallbackBase
		fallback.Symbol = symbol
		fallback.LastUpdated = time.Now()
		return fallback
	}
	return m
}

// FetchSignal maps the whale accumulation score onto the signal axis.
func (s *OnChainSource) FetchSignal(ctx context.Context, symbol string) models.SignalScore {
	m := s.Metrics(ctx, symbol)
	return models.SignalScore{
		Source:      "onchain",
		Score:       m.WhaleAccumulationScore,
		SourceCount: 1,
		Summary:     m.Summary,
	}
}
