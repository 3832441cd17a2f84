package strategy

import (
	"math"

	"PairPull/internal/domain/models"
)

// Sizer converts capital and per-leg volatility into integer share
// quantities for both legs.
type Sizer struct {
	params Params
}

func NewSizer(params Params) *Sizer {
	return &Sizer{params: params}
}

// Size computes the leverage-bounded sizing for the given feature row and
// the legs' latest closing prices. With volatility sizing enabled the scale
// is 1/(lead_vol+lag_vol) clamped to MaxLeverage; a zero combined
// volatility degenerates to the clamp itself rather than dividing by zero.
// Quantities are floored and never negative; zero quantities are a valid
// but inactionable result.
func (s *Sizer) Size(row models.FeatureRow, leadClose, lagClose float64) models.SizingDecision {
	p := s.params

	scale := 1.0
	if p.UseVolSizing {
		combined := row.LeadVolatility + row.LagVolatility
		if combined <= 0 {
			scale = p.MaxLeverage
		} else {
			scale = math.Min(1/combined, p.MaxLeverage)
		}
	}

	notional := p.Capital * scale
	return models.SizingDecision{
		Scale:   scale,
		QtyLead: flooredQty(notional, leadClose),
		QtyLag:  flooredQty(notional, lagClose),
	}
}

func flooredQty(notional, price float64) int64 {
	if price <= 0 {
		return 0
	}
	q := math.Floor(notional / price)
	if q < 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return int64(q)
}
