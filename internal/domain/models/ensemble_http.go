package models

// Requests for ensemble HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Symbol         string          `json:"symbol" validate:"required"`
	CurrentPrice   float64         `json:"currentPrice" validate:"required,gt=0"`
	PriceChange24h float64         `json:"priceChange24h"`
	Volume24h      float64         `json:"volume24h" validate:"gte=0"`
	High24h        float64         `json:"high24h" validate:"gte=0"`
	Low24h         float64         `json:"low24h" validate:"gte=0"`
	RSI            *float64        `json:"rsi,omitempty" validate:"omitempty,gte=0,lte=100"`
	MACD           *MACD           `json:"macd,omitempty"`
	SMA20          *float64        `json:"sma20,omitempty"`
	SMA50          *float64        `json:"sma50,omitempty"`
	Bollinger      *BollingerBands `json:"bollinger,omitempty"`
}

// Snapshot converts the request into the immutable ensemble input.
func (r *AnalyzeRequest) Snapshot() MarketSnapshot {
	return MarketSnapshot{
		Symbol:         r.Symbol,
		CurrentPrice:   r.CurrentPrice,
		PriceChange24h: r.PriceChange24h,
		Volume24h:      r.Volume24h,
		High24h:        r.High24h,
		Low24h:         r.Low24h,
		RSI:            r.RSI,
		MACD:           r.MACD,
		SMA20:          r.SMA20,
		SMA50:          r.SMA50,
		Bollinger:      r.Bollinger,
	}
}

type SymbolRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=200"`
}
