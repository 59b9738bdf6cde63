package analyst

import (
	"fmt"
	"strings"

	"SignalFuse/internal/domain/models"
	"SignalFuse/pkg/logger"
)

const responseContract = `Respond with ONLY a valid JSON object, no other text:
{"signal":"strong_sell|sell|hold|buy|strong_buy","confidence":0-100,"targetPrice":number,"reasoning":"2-3 sentences","riskLevel":"low|medium|high","timeframe":"short|medium|long"}`

var technicalPersona = Persona{
	Source: "technical",
	System: `You are a technical market analyst for cryptocurrency trading.
You weigh price action, momentum indicators (RSI, MACD, moving averages, Bollinger bands),
volume, and multi-timeframe trend alignment. You focus on what the chart says now,
favoring short to medium horizons.
` + responseContract,
}

var riskPersona = Persona{
	Source: "risk",
	System: `You are a risk-focused market analyst for cryptocurrency trading.
You weigh downside exposure, volatility, on-chain holder behavior, and crowd sentiment.
You are skeptical of crowded trades and penalize conviction when signals conflict,
favoring medium to long horizons.
` + responseContract,
}

// NewTechnicalAnalyst builds the momentum-oriented analyst.
func NewTechnicalAnalyst(cfg Config, log *logger.Logger) *Agent {
	return New(technicalPersona, cfg, log)
}

// NewRiskAnalyst builds the downside-oriented analyst.
func NewRiskAnalyst(cfg Config, log *logger.Logger) *Agent {
	return New(riskPersona, cfg, log)
}

func buildPrompt(snap models.MarketSnapshot, signals models.SignalSet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze %s at $%.2f.\n", snap.Symbol, snap.CurrentPrice)
	fmt.Fprintf(&b, "24h change: %.2f%%, volume: %.0f, high: %.2f, low: %.2f.\n",
		snap.PriceChange24h, snap.Volume24h, snap.High24h, snap.Low24h)

	if snap.RSI != nil {
		fmt.Fprintf(&b, "RSI(14): %.1f.\n", *snap.RSI)
	}
	if snap.MACD != nil {
		fmt.Fprintf(&b, "MACD: %.4f, signal: %.4f, histogram: %.4f.\n",
			snap.MACD.Value, snap.MACD.Signal, snap.MACD.Histogram)
	}
	if snap.SMA20 != nil && snap.SMA50 != nil {
		fmt.Fprintf(&b, "SMA20: %.2f, SMA50: %.2f.\n", *snap.SMA20, *snap.SMA50)
	}
	if snap.Bollinger != nil {
		fmt.Fprintf(&b, "Bollinger: upper %.2f, middle %.2f, lower %.2f.\n",
			snap.Bollinger.Upper, snap.Bollinger.Middle, snap.Bollinger.Lower)
	}

	writeSignal(&b, "Multi-timeframe trend", signals.Trend)
	writeSignal(&b, "On-chain activity", signals.OnChain)
	writeSignal(&b, "Social sentiment", signals.Sentiment)

	return b.String()
}

func writeSignal(b *strings.Builder, label string, sig *models.SignalScore) {
	if sig == nil {
		return
	}
	fmt.Fprintf(b, "%s: score %.2f (%s)\n", label, sig.Score, sig.Summary)
}
