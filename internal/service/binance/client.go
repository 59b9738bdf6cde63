package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"SignalFuse/internal/domain/models"
	"SignalFuse/pkg/cache"
	httpclient "SignalFuse/pkg/http"
	"SignalFuse/pkg/logger"
)

const (
	DefaultBaseURL = "https://api.binance.com"

	priceTTL  = 30 * time.Second
	statsTTL  = 30 * time.Second
	klinesTTL = 5 * time.Minute
)

// Client fetches spot market data from the Binance REST API. Responses
// are cached behind short TTLs so repeated signal computations for the
// same symbol do not hammer the exchange.
type Client struct {
	baseURL string
	http    *httpclient.Client
	aside   *cache.Aside
	logger  *logger.Logger
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func NewClient(http *httpclient.Client, aside *cache.Aside, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    http,
		aside:   aside,
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type ticker24hResponse struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	Volume             string `json:"volume"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
}

// CurrentPrice returns the latest trade price for the symbol.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	key := cache.GenerateKey("binance:price", symbol)
	return cache.GetOrCompute(ctx, c.aside, key, priceTTL, func(ctx context.Context) (float64, error) {
		var resp tickerPriceResponse
		err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
			Method:      httpclient.MethodGet,
			URL:         c.baseURL + "/api/v3/ticker/price",
			QueryParams: map[string][]string{"symbol": {symbol}},
		}, &resp)
		if err != nil {
			return 0, fmt.Errorf("fetch ticker price: %w", err)
		}

		price, err := strconv.ParseFloat(resp.Price, 64)
		if err != nil {
			return 0, fmt.Errorf("parse price %q: %w", resp.Price, err)
		}
		return price, nil
	})
}

// Stats24h returns the rolling 24h statistics for the symbol.
func (c *Client) Stats24h(ctx context.Context, symbol string) (models.Stats24h, error) {
	key := cache.GenerateKey("binance:stats", symbol)
	return cache.GetOrCompute(ctx, c.aside, key, statsTTL, func(ctx context.Context) (models.Stats24h, error) {
		var resp ticker24hResponse
		err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
			Method:      httpclient.MethodGet,
			URL:         c.baseURL + "/api/v3/ticker/24hr",
			QueryParams: map[string][]string{"symbol": {symbol}},
		}, &resp)
		if err != nil {
			return models.Stats24h{}, fmt.Errorf("fetch 24h stats: %w", err)
		}
		return parseStats(resp)
	})
}

func parseStats(resp ticker24hResponse) (models.Stats24h, error) {
	stats := models.Stats24h{Symbol: resp.Symbol}

	fields := []struct {
		raw  string
		dest *float64
	}{
		{resp.LastPrice, &stats.LastPrice},
		{resp.PriceChangePercent, &stats.PriceChangePct},
		{resp.Volume, &stats.Volume},
		{resp.HighPrice, &stats.High},
		{resp.LowPrice, &stats.Low},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return models.Stats24h{}, fmt.Errorf("parse 24h stats field %q: %w", f.raw, err)
		}
		*f.dest = v
	}
	return stats, nil
}

// Candles returns up to limit klines for the symbol and interval, oldest
// first, matching the exchange's ordering.
func (c *Client) Candles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	key := cache.GenerateKeyWithParams("binance:klines", symbol, interval, limit)
	return cache.GetOrCompute(ctx, c.aside, key, klinesTTL, func(ctx context.Context) ([]models.Candle, error) {
		var raw [][]interface{}
		err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
			Method: httpclient.MethodGet,
			URL:    c.baseURL + "/api/v3/klines",
			QueryParams: map[string][]string{
				"symbol":   {symbol},
				"interval": {interval},
				"limit":    {strconv.Itoa(limit)},
			},
		}, &raw)
		if err != nil {
			return nil, fmt.Errorf("fetch klines: %w", err)
		}

		candles := make([]models.Candle, 0, len(raw))
		for _, row := range raw {
			candle, err := parseKline(row)
			if err != nil {
				c.logger.Warn("skipping malformed kline",
					logger.String("symbol", symbol),
					logger.String("interval", interval),
					logger.Error(err))
				continue
			}
			candles = append(candles, candle)
		}
		return candles, nil
	})
}

// Binance klines are positional arrays: open time, then OHLCV as strings.
func parseKline(row []interface{}) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("kline row has %d fields", len(row))
	}

	openTimeMs, ok := row[0].(float64)
	if !ok {
		return models.Candle{}, fmt.Errorf("kline open time is not numeric")
	}

	values := make([]float64, 5)
	for i := 0; i < 5; i++ {
		s, ok := row[i+1].(string)
		if !ok {
			return models.Candle{}, fmt.Errorf("kline field %d is not a string", i+1)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("parse kline field %d: %w", i+1, err)
		}
		values[i] = v
	}

	return models.Candle{
		OpenTime: time.UnixMilli(int64(openTimeMs)),
		Open:     values[0],
		High:     values[1],
		Low:      values[2],
		Close:    values[3],
		Volume:   values[4],
	}, nil
}
