package service

import (
	"context"

	"SignalFuse/internal/domain/models"
)

// Analyst produces a structured directional opinion for a market snapshot.
// Implementations never return an error: any backend failure is converted
// into the documented fallback opinion so downstream fusion never
// special-cases failure.
type Analyst interface {
	Name() string
	Analyze(ctx context.Context, snap models.MarketSnapshot, signals models.SignalSet) models.DirectionalOpinion
}

// SignalSource produces a normalized partial signal for a symbol.
// Implementations degrade to their documented neutral default on failure.
type SignalSource interface {
	Name() string
	FetchSignal(ctx context.Context, symbol string) models.SignalScore
}
