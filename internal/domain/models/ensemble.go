package models

import "time"

// Signal is a categorical trading recommendation.
type Signal string

const (
	SignalStrongSell Signal = "strong_sell"
	SignalSell       Signal = "sell"
	SignalHold       Signal = "hold"
	SignalBuy        Signal = "buy"
	SignalStrongBuy  Signal = "strong_buy"
)

// Valid reports whether the signal is one of the five known values.
func (s Signal) Valid() bool {
	switch s {
	case SignalStrongSell, SignalSell, SignalHold, SignalBuy, SignalStrongBuy:
		return true
	}
	return false
}

// Score maps a signal onto the numeric bearish-to-bullish axis used for
// fusion: strong_sell -2, sell -1, hold 0, buy 1, strong_buy 2.
func (s Signal) Score() int {
	switch s {
	case SignalStrongSell:
		return -2
	case SignalSell:
		return -1
	case SignalBuy:
		return 1
	case SignalStrongBuy:
		return 2
	default:
		return 0
	}
}

// RiskLevel classifies an opinion's risk assessment.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Severity ranks risk levels for conservative merging (low < medium < high).
// Unknown levels rank 0 so they never win a max comparison.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// Timeframe is the horizon classification of an opinion.
type Timeframe string

const (
	TimeframeShort  Timeframe = "short"
	TimeframeMedium Timeframe = "medium"
	TimeframeLong   Timeframe = "long"
)

// DirectionalOpinion is the structured output of one analyst persona.
// Immutable once produced; a fallback opinion has the same shape as a real one.
type DirectionalOpinion struct {
	Source      string    `json:"source"`
	Signal      Signal    `json:"signal" validate:"required,oneof=strong_sell sell hold buy strong_buy"`
	Confidence  float64   `json:"confidence" validate:"gte=0,lte=100"`
	TargetPrice float64   `json:"targetPrice" validate:"gte=0"`
	Reasoning   string    `json:"reasoning" validate:"required"`
	RiskLevel   RiskLevel `json:"riskLevel" validate:"required,oneof=low medium high"`
	Timeframe   Timeframe `json:"timeframe" validate:"required,oneof=short medium long"`
}

// WeightedOpinion pairs an opinion with its relative trust weight.
// Weights need not sum to 1.
type WeightedOpinion struct {
	Weight  float64
	Opinion DirectionalOpinion
}

// ConsensusResult is the fused ensemble output. Its JSON shape is the
// external contract: it is both cached and returned to API consumers.
type ConsensusResult struct {
	Consensus DirectionalOpinion            `json:"consensus"`
	Opinions  map[string]DirectionalOpinion `json:"opinions"`
	Agreement int                           `json:"agreement"` // 0-100
	Signals   *SignalSet                    `json:"signals,omitempty"`
	Timestamp time.Time                     `json:"timestamp"`
}

// AnalysisRecord is one persisted row of consensus history.
type AnalysisRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Symbol      string    `json:"symbol"`
	Signal      Signal    `json:"signal"`
	Confidence  float64   `json:"confidence"`
	TargetPrice float64   `json:"targetPrice"`
	Agreement   int       `json:"agreement"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Timeframe   Timeframe `json:"timeframe"`
	Reasoning   string    `json:"reasoning"`
}
