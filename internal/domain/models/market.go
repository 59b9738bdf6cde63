package models

import "time"

// Candle represents an OHLCV record for a single interval bucket.
type Candle struct {
	OpenTime time.Time `json:"openTime"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// Tick is a single trade/price update from the market stream.
type Tick struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"t"` // unix seconds
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

// Stats24h holds rolling 24h ticker statistics for a symbol.
type Stats24h struct {
	Symbol         string  `json:"symbol"`
	LastPrice      float64 `json:"lastPrice"`
	PriceChangePct float64 `json:"priceChangePercent"`
	Volume         float64 `json:"volume"`
	High           float64 `json:"highPrice"`
	Low            float64 `json:"lowPrice"`
}

// MACD is the standard MACD indicator triple.
type MACD struct {
	Value     float64 `json:"value"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// BollingerBands holds the three Bollinger band levels.
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// MarketSnapshot is the immutable per-request input to the ensemble:
// current market state plus optional technical indicators.
type MarketSnapshot struct {
	Symbol         string          `json:"symbol"`
	CurrentPrice   float64         `json:"currentPrice"`
	PriceChange24h float64         `json:"priceChange24h"`
	Volume24h      float64         `json:"volume24h"`
	High24h        float64         `json:"high24h"`
	Low24h         float64         `json:"low24h"`
	RSI            *float64        `json:"rsi,omitempty"`
	MACD           *MACD           `json:"macd,omitempty"`
	SMA20          *float64        `json:"sma20,omitempty"`
	SMA50          *float64        `json:"sma50,omitempty"`
	Bollinger      *BollingerBands `json:"bollinger,omitempty"`
}
