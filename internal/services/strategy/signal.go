package strategy

import (
	"fmt"

	"PairPull/internal/domain/models"
)

// Params are the tunable thresholds of the pair signal and sizing rules.
type Params struct {
	Capital          float64
	GapThreshold     float64
	VolumeMultiplier float64
	ZScoreThreshold  float64
	UseVolSizing     bool
	MaxLeverage      float64
}

// DefaultParams mirrors the research configuration.
func DefaultParams() Params {
	return Params{
		Capital:          1_000_000,
		GapThreshold:     0.01,
		VolumeMultiplier: 1.2,
		ZScoreThreshold:  1,
		UseVolSizing:     true,
		MaxLeverage:      3,
	}
}

// Evaluator applies the entry rule to the latest feature row.
type Evaluator struct {
	params Params
}

func NewEvaluator(params Params) *Evaluator {
	return &Evaluator{params: params}
}

// Evaluate returns true iff all four entry conditions hold. The rule is a
// hard boolean gate with no partial credit:
//  1. lead gap above the gap threshold
//  2. lag underperforms at least half the lead's move
//  3. relative volume above the confirmation multiplier
//  4. spread z-score above the z-score threshold
func (e *Evaluator) Evaluate(row models.FeatureRow) bool {
	p := e.params
	return row.LeadGap > p.GapThreshold &&
		row.LagReturn < row.LeadReturn/2 &&
		row.RelativeVolume > p.VolumeMultiplier &&
		row.SpreadZScore > p.ZScoreThreshold
}

// Explain reports each condition separately, for the API and action log.
func (e *Evaluator) Explain(row models.FeatureRow) map[string]bool {
	p := e.params
	return map[string]bool{
		"gap":      row.LeadGap > p.GapThreshold,
		"decouple": row.LagReturn < row.LeadReturn/2,
		"rvol":     row.RelativeVolume > p.VolumeMultiplier,
		"zscore":   row.SpreadZScore > p.ZScoreThreshold,
	}
}

// Describe renders the row's signal inputs for the action log.
func Describe(row models.FeatureRow) string {
	return fmt.Sprintf("gap=%.4f lag_ret=%.4f rvol=%.2f zscore=%.2f",
		row.LeadGap, row.LagReturn, row.RelativeVolume, row.SpreadZScore)
}
