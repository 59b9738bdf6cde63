package usecase

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"SignalFuse/internal/domain/models"
)

func opinion(source string, signal models.Signal, confidence float64) models.DirectionalOpinion {
	return models.DirectionalOpinion{
		Source:      source,
		Signal:      signal,
		Confidence:  confidence,
		TargetPrice: 50000,
		Reasoning:   "test reasoning",
		RiskLevel:   models.RiskMedium,
		Timeframe:   models.TimeframeShort,
	}
}

func weighted(w float64, o models.DirectionalOpinion) models.WeightedOpinion {
	return models.WeightedOpinion{Weight: w, Opinion: o}
}

func TestFuseDeterminism(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tech := weighted(0.40, opinion("technical", models.SignalBuy, 80))
	risk := weighted(0.35, opinion("risk", models.SignalHold, 60))

	a, err := Fuse(tech, risk, at)
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	b, err := Fuse(tech, risk, at)
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("fuse is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestFuseAlignedBuy(t *testing.T) {
	tech := weighted(0.40, opinion("technical", models.SignalBuy, 80))
	risk := weighted(0.35, opinion("risk", models.SignalBuy, 70))

	res, err := Fuse(tech, risk, time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	// score = 1*0.40 + 1*0.35 = 0.75
	if res.Consensus.Signal != models.SignalBuy {
		t.Fatalf("expected buy, got %s", res.Consensus.Signal)
	}
	// confidence = round(80*0.40 + 70*0.35) = round(56.5) = 57
	if res.Consensus.Confidence != 57 {
		t.Fatalf("expected confidence 57, got %v", res.Consensus.Confidence)
	}
	// agreement = (100 + (100-10)) / 2 = 95
	if res.Agreement != 95 {
		t.Fatalf("expected agreement 95, got %d", res.Agreement)
	}
}

func TestFuseFullAgreement(t *testing.T) {
	tech := weighted(0.40, opinion("technical", models.SignalHold, 60))
	risk := weighted(0.35, opinion("risk", models.SignalHold, 60))

	res, err := Fuse(tech, risk, time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if res.Agreement != 100 {
		t.Fatalf("expected agreement 100, got %d", res.Agreement)
	}
	if !strings.Contains(res.Consensus.Reasoning, "strongly agree") {
		t.Fatalf("expected strongly agree stance, got %q", res.Consensus.Reasoning)
	}
}

func TestFuseDiametricOpposition(t *testing.T) {
	tech := weighted(0.40, opinion("technical", models.SignalStrongBuy, 80))
	risk := weighted(0.35, opinion("risk", models.SignalStrongSell, 80))

	res, err := Fuse(tech, risk, time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	// Equal confidences keep the blended agreement at (40+100)/2 even
	// though the signals point in opposite directions.
	if res.Agreement != 70 {
		t.Fatalf("expected agreement 70, got %d", res.Agreement)
	}
	// score = 2*0.40 - 2*0.35 = 0.10, inside the hold band
	if res.Consensus.Signal != models.SignalHold {
		t.Fatalf("expected hold, got %s", res.Consensus.Signal)
	}
}

func TestFuseMaxDisagreement(t *testing.T) {
	tech := weighted(0.40, opinion("technical", models.SignalStrongBuy, 100))
	risk := weighted(0.35, opinion("risk", models.SignalStrongSell, 0))

	res, err := Fuse(tech, risk, time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	// agreement = (40 + 0) / 2 = 20
	if res.Agreement != 20 {
		t.Fatalf("expected agreement 20, got %d", res.Agreement)
	}
	if !strings.Contains(res.Consensus.Reasoning, "have different views") {
		t.Fatalf("expected different views stance, got %q", res.Consensus.Reasoning)
	}
}

func TestFuseAdjacentSignals(t *testing.T) {
	tech := weighted(0.40, opinion("technical", models.SignalStrongBuy, 75))
	risk := weighted(0.35, opinion("risk", models.SignalBuy, 75))

	res, err := Fuse(tech, risk, time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	// agreement = (70 + 100) / 2 = 85
	if res.Agreement != 85 {
		t.Fatalf("expected agreement 85, got %d", res.Agreement)
	}
}

func TestFuseAgreementSymmetry(t *testing.T) {
	a := opinion("technical", models.SignalBuy, 90)
	b := opinion("risk", models.SignalSell, 40)

	r1, err := Fuse(weighted(0.40, a), weighted(0.35, b), time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	// Swap signals and confidences between the two slots.
	a2 := opinion("technical", models.SignalSell, 40)
	b2 := opinion("risk", models.SignalBuy, 90)
	r2, err := Fuse(weighted(0.40, a2), weighted(0.35, b2), time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if r1.Agreement != r2.Agreement {
		t.Fatalf("agreement not symmetric: %d vs %d", r1.Agreement, r2.Agreement)
	}
}

func TestFuseConfidenceBounds(t *testing.T) {
	cases := []struct {
		tc, rc float64
	}{
		{0, 0}, {100, 100}, {100, 0}, {0, 100}, {50, 50},
	}
	for _, c := range cases {
		tech := weighted(0.40, opinion("technical", models.SignalBuy, c.tc))
		risk := weighted(0.35, opinion("risk", models.SignalBuy, c.rc))
		res, err := Fuse(tech, risk, time.Now())
		if err != nil {
			t.Fatalf("fuse: %v", err)
		}
		if res.Consensus.Confidence < 0 || res.Consensus.Confidence > 100 {
			t.Fatalf("confidence %v out of bounds for %v/%v", res.Consensus.Confidence, c.tc, c.rc)
		}
	}
}

func TestFuseRiskConservatism(t *testing.T) {
	tech := opinion("technical", models.SignalBuy, 80)
	tech.RiskLevel = models.RiskLow
	risk := opinion("risk", models.SignalBuy, 80)
	risk.RiskLevel = models.RiskHigh

	res, err := Fuse(weighted(0.40, tech), weighted(0.35, risk), time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if res.Consensus.RiskLevel != models.RiskHigh {
		t.Fatalf("expected high risk, got %s", res.Consensus.RiskLevel)
	}
}

func TestFuseTimeframeFromTechnical(t *testing.T) {
	tech := opinion("technical", models.SignalBuy, 80)
	tech.Timeframe = models.TimeframeShort
	risk := opinion("risk", models.SignalBuy, 80)
	risk.Timeframe = models.TimeframeLong

	res, err := Fuse(weighted(0.40, tech), weighted(0.35, risk), time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if res.Consensus.Timeframe != models.TimeframeShort {
		t.Fatalf("expected short timeframe, got %s", res.Consensus.Timeframe)
	}
}

func TestFuseTargetPriceWeighting(t *testing.T) {
	tech := opinion("technical", models.SignalBuy, 80)
	tech.TargetPrice = 100
	risk := opinion("risk", models.SignalBuy, 80)
	risk.TargetPrice = 100

	res, err := Fuse(weighted(0.40, tech), weighted(0.35, risk), time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	// Raw weighted sum with unnormalized weights: 100*0.40 + 100*0.35.
	if res.Consensus.TargetPrice != 75 {
		t.Fatalf("expected target 75, got %v", res.Consensus.TargetPrice)
	}
}

func TestFuseStrongBuyThreshold(t *testing.T) {
	tech := weighted(1.0, opinion("technical", models.SignalStrongBuy, 90))
	risk := weighted(1.0, opinion("risk", models.SignalBuy, 85))

	res, err := Fuse(tech, risk, time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	// score = 2 + 1 = 3 >= 1.5
	if res.Consensus.Signal != models.SignalStrongBuy {
		t.Fatalf("expected strong_buy, got %s", res.Consensus.Signal)
	}
}

func TestFuseOpinionsKeyedBySource(t *testing.T) {
	tech := weighted(0.40, opinion("technical", models.SignalBuy, 80))
	risk := weighted(0.35, opinion("risk", models.SignalSell, 60))

	res, err := Fuse(tech, risk, time.Now())
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if len(res.Opinions) != 2 {
		t.Fatalf("expected 2 opinions, got %d", len(res.Opinions))
	}
	if res.Opinions["technical"].Signal != models.SignalBuy {
		t.Fatalf("technical opinion not preserved")
	}
	if res.Opinions["risk"].Signal != models.SignalSell {
		t.Fatalf("risk opinion not preserved")
	}
}

func TestFuseInvalidInput(t *testing.T) {
	bad := opinion("technical", models.Signal("moon"), 80)
	_, err := Fuse(weighted(0.40, bad), weighted(0.35, opinion("risk", models.SignalHold, 50)), time.Now())
	if err == nil {
		t.Fatalf("expected error for invalid signal")
	}

	overConfident := opinion("technical", models.SignalBuy, 120)
	_, err = Fuse(weighted(0.40, overConfident), weighted(0.35, opinion("risk", models.SignalHold, 50)), time.Now())
	if err == nil {
		t.Fatalf("expected error for out-of-range confidence")
	}
}
