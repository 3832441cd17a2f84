package strategy

import (
	"testing"

	"PairPull/internal/domain/models"
)

func passingRow() models.FeatureRow {
	return models.FeatureRow{
		LeadReturn:     0.02,
		LeadGap:        0.02,
		LagReturn:      0.0,
		RelativeVolume: 1.5,
		SpreadZScore:   1.2,
	}
}

func TestEvaluateAllConditions(t *testing.T) {
	e := NewEvaluator(DefaultParams())
	if !e.Evaluate(passingRow()) {
		t.Fatalf("expected signal for passing row")
	}
}

func TestEvaluateSingleConditionFlips(t *testing.T) {
	e := NewEvaluator(DefaultParams())

	r := passingRow()
	r.LeadGap = 0.005
	if e.Evaluate(r) {
		t.Fatalf("expected no signal with gap below threshold")
	}

	r = passingRow()
	r.LagReturn = 0.015 // above half the lead return
	if e.Evaluate(r) {
		t.Fatalf("expected no signal when lag keeps pace")
	}

	r = passingRow()
	r.RelativeVolume = 1.0
	if e.Evaluate(r) {
		t.Fatalf("expected no signal without volume confirmation")
	}

	r = passingRow()
	r.SpreadZScore = 0.5
	if e.Evaluate(r) {
		t.Fatalf("expected no signal with low spread z-score")
	}
}

func TestEvaluateThresholdsAreStrict(t *testing.T) {
	e := NewEvaluator(DefaultParams())
	r := passingRow()
	r.LeadGap = 0.01 // exactly at threshold
	if e.Evaluate(r) {
		t.Fatalf("expected strict inequality at the gap threshold")
	}
}

func TestExplainMatchesEvaluate(t *testing.T) {
	e := NewEvaluator(DefaultParams())
	r := passingRow()
	r.SpreadZScore = 0.5

	cond := e.Explain(r)
	if !cond["gap"] || !cond["decouple"] || !cond["rvol"] || cond["zscore"] {
		t.Fatalf("unexpected condition map: %v", cond)
	}
	if e.Evaluate(r) {
		t.Fatalf("evaluate must agree with the failing condition")
	}
}
