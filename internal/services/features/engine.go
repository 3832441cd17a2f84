package features

import (
	"math"

	"PairPull/internal/domain/models"
)

// epsStdev guards z-score and volatility denominators. A window whose
// sample stdev falls below this is treated as degenerate and the row is
// dropped rather than emitting an infinite or undefined value.
const epsStdev = 1e-12

// Engine derives rolling statistics from aligned daily pair bars.
type Engine struct {
	lookback int
}

// NewEngine creates an Engine with the given rolling window length.
func NewEngine(lookback int) *Engine {
	if lookback < 2 {
		lookback = 2
	}
	return &Engine{lookback: lookback}
}

// Lookback returns the configured rolling window length.
func (e *Engine) Lookback() int { return e.lookback }

// Compute derives one FeatureRow per bar once every rolling window ending at
// that bar is fully populated. The first lookback bars never produce a row,
// and rows with any undefined component (incomplete window, zero-variance
// spread or volume mean) are dropped whole. For fewer than lookback+1 bars
// the result is empty.
func (e *Engine) Compute(bars []models.PriceBar) []models.FeatureRow {
	n := len(bars)
	if n < e.lookback+1 {
		return nil
	}

	// Daily simple returns; undefined at the very first bar.
	leadRet := make([]float64, n)
	lagRet := make([]float64, n)
	for i := 1; i < n; i++ {
		leadRet[i] = pctChange(bars[i-1].LeadClose, bars[i].LeadClose)
		lagRet[i] = pctChange(bars[i-1].LagClose, bars[i].LagClose)
	}

	spread := make([]float64, n)
	for i, b := range bars {
		spread[i] = b.LeadClose - b.LagClose
	}

	out := make([]models.FeatureRow, 0, n-e.lookback)
	for t := e.lookback; t < n; t++ {
		volWin := window(bars, t, e.lookback, func(b models.PriceBar) float64 { return b.LeadVolume })
		volMean := mean(volWin)
		if volMean <= 0 {
			continue
		}

		spreadWin := spread[t-e.lookback+1 : t+1]
		spreadStd := sampleStdev(spreadWin)
		if spreadStd < epsStdev {
			continue
		}

		row := models.FeatureRow{
			Date:           bars[t].Date,
			LeadReturn:     leadRet[t],
			LagReturn:      lagRet[t],
			LeadGap:        leadRet[t], // intentionally identical to LeadReturn
			RelativeVolume: bars[t].LeadVolume / volMean,
			Spread:         spread[t],
			SpreadZScore:   (spread[t] - mean(spreadWin)) / spreadStd,
			LeadVolatility: sampleStdev(leadRet[t-e.lookback+1 : t+1]),
			LagVolatility:  sampleStdev(lagRet[t-e.lookback+1 : t+1]),
		}
		if !finite(row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Latest returns the most recent feature row, if any.
func Latest(rows []models.FeatureRow) (models.FeatureRow, bool) {
	if len(rows) == 0 {
		return models.FeatureRow{}, false
	}
	return rows[len(rows)-1], true
}

func pctChange(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return cur/prev - 1
}

func window(bars []models.PriceBar, t, size int, f func(models.PriceBar) float64) []float64 {
	out := make([]float64, 0, size)
	for i := t - size + 1; i <= t; i++ {
		out = append(out, f(bars[i]))
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdev computes the sample standard deviation (n-1 denominator).
func sampleStdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - m
		sum2 += d * d
	}
	variance := sum2 / float64(len(xs)-1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

func finite(r models.FeatureRow) bool {
	for _, v := range []float64{
		r.LeadReturn, r.LagReturn, r.LeadGap, r.RelativeVolume,
		r.Spread, r.SpreadZScore, r.LeadVolatility, r.LagVolatility,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
