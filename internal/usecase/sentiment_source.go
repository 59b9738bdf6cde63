package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalFuse/internal/domain/models"
	"SignalFuse/internal/domain/repository"
	"SignalFuse/pkg/cache"
	"SignalFuse/pkg/logger"
)

const sentimentTTL = time.Hour

// SentimentSource aggregates social sentiment across all configured
// providers. Providers are queried concurrently and every one is awaited;
// failed providers are excluded from the average rather than zero-filled.
type SentimentSource struct {
	providers []repository.SentimentProvider
	aside     *cache.Aside
	logger    *logger.Logger
	metrics   repository.Metrics
}

func NewSentimentSource(providers []repository.SentimentProvider, aside *cache.Aside, log *logger.Logger, metrics repository.Metrics) *SentimentSource {
	return &SentimentSource{providers: providers, aside: aside, logger: log, metrics: metrics}
}

func (s *SentimentSource) Name() string { return "sentiment" }

type providerResult struct {
	name  string
	score float64
	err   error
}

// Aggregate returns cached aggregated sentiment for the symbol. When all
// providers fail the neutral default is returned with SourceCount 0.
func (s *SentimentSource) Aggregate(ctx context.Context, symbol string) models.SentimentAnalysis {
	key := cache.GenerateKey("sentiment", symbol)
	analysis, err := cache.GetOrCompute(ctx, s.aside, key, sentimentTTL, func(ctx context.Context) (models.SentimentAnalysis, error) {
		return s.aggregate(ctx, symbol)
	})
	if err != nil {
		s.logger.Warn("sentiment unavailable", logger.String("symbol", symbol), logger.Error(err))
		s.metrics.RecordAdapterFailure("sentiment")
		return models.SentimentAnalysis{
			Symbol:      symbol,
			Score:       0,
			SourceCount: 0,
			LastUpdated: time.Now(),
			Summary:     "Unable to fetch sentiment data at this time.",
			Sources:     map[string]float64{},
		}
	}
	return analysis
}

func (s *SentimentSource) aggregate(ctx context.Context, symbol string) (models.SentimentAnalysis, error) {
	results := make(chan providerResult, len(s.providers))
	var wg sync.WaitGroup

	for _, p := range s.providers {
		wg.Add(1)
		go func(p repository.SentimentProvider) {
			defer wg.Done()
			score, err := p.Score(ctx, symbol)
			results <- providerResult{name: p.Name(), score: score, err: err}
		}(p)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	sources := make(map[string]float64)
	sum := 0.0
	for res := range results {
		if res.err != nil {
			s.logger.Warn("sentiment provider failed",
				logger.String("provider", res.name),
				logger.String("symbol", symbol),
				logger.Error(res.err))
			s.metrics.RecordAdapterFailure("sentiment:" + res.name)
			continue
		}
		sources[res.name] = res.score
		sum += res.score
	}

	if len(sources) == 0 {
		return models.SentimentAnalysis{}, fmt.Errorf("all %d sentiment providers failed for %s", len(s.providers), symbol)
	}

	// Providers score in [-100, 100]; normalize the mean onto [-1, 1].
	score := sum / float64(len(sources)) / 100
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}

	return models.SentimentAnalysis{
		Symbol:      symbol,
		Score:       score,
		SourceCount: len(sources),
		LastUpdated: time.Now(),
		Summary:     sentimentSummary(score),
		Sources:     sources,
	}, nil
}

func sentimentSummary(score float64) string {
	switch {
	case score > 0.5:
		return "Social sentiment is extremely bullish."
	case score > 0.1:
		return "Social sentiment is moderately positive."
	case score > -0.1:
		return "Social sentiment is neutral."
	case score > -0.5:
		return "Social sentiment is slightly negative."
	default:
		return "Social sentiment is overwhelmingly bearish."
	}
}

// FetchSignal exposes the aggregate as a normalized signal score.
func (s *SentimentSource) FetchSignal(ctx context.Context, symbol string) models.SignalScore {
	analysis := s.Aggregate(ctx, symbol)
	return models.SignalScore{
		Source:      "sentiment",
		Score:       analysis.Score,
		SourceCount: analysis.SourceCount,
		Summary:     analysis.Summary,
	}
}
