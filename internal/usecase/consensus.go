package usecase

import (
	"fmt"
	"math"
	"time"

	"SignalFuse/internal/domain/models"
)

// Signal fusion thresholds on the weighted score axis.
const (
	strongBuyThreshold  = 1.5
	buyThreshold        = 0.5
	sellThreshold       = -0.5
	strongSellThreshold = -1.5
)

// Fuse combines two weighted analyst opinions into a single consensus.
// It is a pure function of its inputs: same opinions and timestamp in,
// same result out. Weights are applied as-is without normalization, so
// sub-unity weight sums deliberately dampen confidence and score.
func Fuse(technical, risk models.WeightedOpinion, at time.Time) (models.ConsensusResult, error) {
	if err := checkOpinion(technical.Opinion); err != nil {
		return models.ConsensusResult{}, fmt.Errorf("technical opinion: %w", err)
	}
	if err := checkOpinion(risk.Opinion); err != nil {
		return models.ConsensusResult{}, fmt.Errorf("risk opinion: %w", err)
	}

	to, ro := technical.Opinion, risk.Opinion
	tw, rw := technical.Weight, risk.Weight

	score := float64(to.Signal.Score())*tw + float64(ro.Signal.Score())*rw
	confidence := math.Round(to.Confidence*tw + ro.Confidence*rw)
	target := to.TargetPrice*tw + ro.TargetPrice*rw
	agreement := agreementScore(to, ro)

	consensus := models.DirectionalOpinion{
		Source:      "consensus",
		Signal:      signalFromScore(score),
		Confidence:  confidence,
		TargetPrice: target,
		Reasoning:   buildReasoning(to, ro, agreement),
		RiskLevel:   moreSevere(to.RiskLevel, ro.RiskLevel),
		Timeframe:   to.Timeframe,
	}

	return models.ConsensusResult{
		Consensus: consensus,
		Opinions: map[string]models.DirectionalOpinion{
			to.Source: to,
			ro.Source: ro,
		},
		Agreement: agreement,
		Timestamp: at,
	}, nil
}

func checkOpinion(o models.DirectionalOpinion) error {
	if !o.Signal.Valid() {
		return fmt.Errorf("invalid signal %q", o.Signal)
	}
	if o.Confidence < 0 || o.Confidence > 100 {
		return fmt.Errorf("confidence %v out of range", o.Confidence)
	}
	if o.RiskLevel.Severity() == 0 {
		return fmt.Errorf("invalid risk level %q", o.RiskLevel)
	}
	return nil
}

func signalFromScore(score float64) models.Signal {
	switch {
	case score >= strongBuyThreshold:
		return models.SignalStrongBuy
	case score >= buyThreshold:
		return models.SignalBuy
	case score <= strongSellThreshold:
		return models.SignalStrongSell
	case score <= sellThreshold:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

// agreementScore blends signal proximity and confidence proximity.
// Adjacent signals (one step apart) still count as substantial agreement.
func agreementScore(a, b models.DirectionalOpinion) int {
	diff := a.Signal.Score() - b.Signal.Score()
	if diff < 0 {
		diff = -diff
	}

	var signalAgreement float64
	switch {
	case diff == 0:
		signalAgreement = 100
	case diff == 1:
		signalAgreement = 70
	default:
		signalAgreement = 40
	}

	confidenceAgreement := 100 - math.Abs(a.Confidence-b.Confidence)

	return int(math.Round((signalAgreement + confidenceAgreement) / 2))
}

func moreSevere(a, b models.RiskLevel) models.RiskLevel {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

func buildReasoning(technical, risk models.DirectionalOpinion, agreement int) string {
	var stance string
	switch {
	case agreement > 70:
		stance = "strongly agree"
	case agreement > 50:
		stance = "moderately agree"
	default:
		stance = "have different views"
	}
	return fmt.Sprintf("**Technical Analysis:** %s\n\n**Risk Analysis:** %s\n\n**Consensus:** Both models %s on the market direction.",
		technical.Reasoning, risk.Reasoning, stance)
}
