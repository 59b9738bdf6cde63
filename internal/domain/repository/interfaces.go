package repository

import (
	"context"

	"SignalFuse/internal/domain/models"
)

// MarketData is the exchange market-data client. All calls may fail or
// return empty results; callers must degrade to neutral signals.
type MarketData interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	Stats24h(ctx context.Context, symbol string) (models.Stats24h, error)
	Candles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
}

// MarketStream is a live price feed (WebSocket).
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// OnChainProvider returns on-chain metrics for a symbol. Missing fields
// are the provider's concern; the returned struct is always fully populated
// with baseline defaults where upstream data was absent.
type OnChainProvider interface {
	Metrics(ctx context.Context, symbol string) (models.OnChainMetrics, error)
}

// SentimentProvider returns a raw social sentiment score in [-100, 100].
type SentimentProvider interface {
	Name() string
	Score(ctx context.Context, symbol string) (float64, error)
}

// AnalysisStore persists consensus history rows.
type AnalysisStore interface {
	Store(ctx context.Context, symbol string, res *models.ConsensusResult) error
	Latest(ctx context.Context, symbol string, limit int) ([]models.AnalysisRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits freshly computed consensus events.
type Publisher interface {
	Publish(ctx context.Context, symbol string, res *models.ConsensusResult) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordCacheOp(op, result string)
	RecordAdapterFailure(source string)
	RecordAgreement(symbol string, agreement float64)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordError(kind string)
}
