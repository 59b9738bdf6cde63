package models

import "time"

// SignalScore is the normalized output of a signal source adapter:
// a bullish/bearish lean in [-1, 1] with provenance. A failed adapter
// returns its documented neutral default, never an error.
type SignalScore struct {
	Source      string  `json:"source"`
	Score       float64 `json:"score"` // -1.0 (bearish) .. 1.0 (bullish)
	SourceCount int     `json:"sourceCount"`
	Summary     string  `json:"summary"`
}

// SignalSet groups the upstream signal scores fed to the analysts.
type SignalSet struct {
	Trend     *SignalScore `json:"trend,omitempty"`
	OnChain   *SignalScore `json:"onChain,omitempty"`
	Sentiment *SignalScore `json:"sentiment,omitempty"`
}

// TimeframeTrend is one timeframe's vote in the multi-timeframe analysis.
type TimeframeTrend struct {
	Interval string `json:"timeframe"` // 1h, 4h, 1d, 1w
	Trend    string `json:"trend"`     // bullish, bearish, neutral
	Signal   Signal `json:"signal"`    // buy, sell, hold
	Reason   string `json:"reason"`
}

// TrendAnalysis is the full multi-timeframe analysis result.
type TrendAnalysis struct {
	Symbol        string           `json:"symbol"`
	Votes         []TimeframeTrend `json:"analysis"`
	OverallSignal Signal           `json:"overallSignal"`
	Summary       string           `json:"overallSummary"`
}

// OnChainMetrics holds address/transaction/whale metrics for a symbol.
// Providers may leave fields unpopulated; adapters fill baseline defaults.
type OnChainMetrics struct {
	Symbol                  string    `json:"symbol"`
	LastUpdated             time.Time `json:"lastUpdated"`
	ActiveAddresses24h      int64     `json:"activeAddresses24h"`
	NewAddresses24h         int64     `json:"newAddresses24h"`
	TransactionCount24h     int64     `json:"transactionCount24h"`
	LargeTransactionCount   int64     `json:"largeTransactionCount24h"`
	CirculatingSupply       float64   `json:"circulatingSupply"`
	SupplyOnExchangesPct    float64   `json:"supplyOnExchanges"`
	WhaleAccumulationScore  float64   `json:"whaleAccumulationScore"` // -1 .. 1
	Top100HoldersPercentage float64   `json:"top100HoldersPercentage"`
	Summary                 string    `json:"summary"`
}

// SentimentAnalysis is the aggregated social sentiment for a symbol.
type SentimentAnalysis struct {
	Symbol      string             `json:"symbol"`
	Score       float64            `json:"score"` // -1 .. 1
	SourceCount int                `json:"sourceCount"`
	LastUpdated time.Time          `json:"lastUpdated"`
	Summary     string             `json:"summary"`
	Sources     map[string]float64 `json:"sources"` // per-provider raw score, -100 .. 100
}
