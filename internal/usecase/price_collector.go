package usecase

import (
	"context"
	"sync"

	"SignalFuse/internal/domain/models"
	drepo "SignalFuse/internal/domain/repository"
	"SignalFuse/pkg/logger"
)

// PriceCollector consumes the live market stream and keeps the latest
// price per symbol for fast reads, reconnecting on stream failure.
type PriceCollector struct {
	stream  drepo.MarketStream
	metrics drepo.Metrics
	logger  *logger.Logger

	mu     sync.RWMutex
	latest map[string]*models.Tick
}

// NewPriceCollector creates a new PriceCollector instance.
func NewPriceCollector(stream drepo.MarketStream, metrics drepo.Metrics, log *logger.Logger) *PriceCollector {
	return &PriceCollector{
		stream:  stream,
		metrics: metrics,
		logger:  log,
		latest:  make(map[string]*models.Tick),
	}
}

// IsConnected returns true if the market stream is connected.
func (c *PriceCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *PriceCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *PriceCollector) consume(ctx context.Context, tickCh <-chan *models.Tick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				c.logger.Warn("market stream error, reconnecting", logger.Error(err))
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.logger.Error("market stream reconnect failed", logger.Error(rerr))
					return
				}
				tickCh, errCh = c.stream.Read(ctx)
			}
		case t := <-tickCh:
			if t == nil {
				continue
			}
			c.mu.Lock()
			c.latest[t.Symbol] = t
			c.mu.Unlock()
			c.metrics.RecordLastPrice(t.Symbol, t.Price)
		}
	}
}

// LatestTick returns the most recent tick for a symbol, if any.
func (c *PriceCollector) LatestTick(symbol string) (*models.Tick, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.latest[symbol]
	return t, ok
}

func (c *PriceCollector) Stop() error { return c.stream.Close() }
