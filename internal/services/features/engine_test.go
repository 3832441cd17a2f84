package features

import (
	"math"
	"testing"
	"time"

	"PairPull/internal/domain/models"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s: got %v, want %v", name, got, want)
	}
}

func TestComputeShortSeries(t *testing.T) {
	e := NewEngine(3)
	bars := []models.PriceBar{
		{Date: day(0), LeadClose: 100, LagClose: 90, LeadVolume: 1000},
		{Date: day(1), LeadClose: 101, LagClose: 91, LeadVolume: 1000},
		{Date: day(2), LeadClose: 102, LagClose: 92, LeadVolume: 1000},
	}
	if rows := e.Compute(bars); rows != nil {
		t.Fatalf("expected no rows for %d bars with lookback 3, got %d", len(bars), len(rows))
	}
}

func TestComputeValues(t *testing.T) {
	e := NewEngine(2)
	bars := []models.PriceBar{
		{Date: day(0), LeadClose: 100, LagClose: 90, LeadVolume: 1000},
		{Date: day(1), LeadClose: 102, LagClose: 91, LeadVolume: 1100},
		{Date: day(2), LeadClose: 105, LagClose: 91, LeadVolume: 1500},
		{Date: day(3), LeadClose: 104, LagClose: 93, LeadVolume: 1200},
	}
	rows := e.Compute(bars)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	r := rows[0]
	if !r.Date.Equal(day(2)) {
		t.Fatalf("first row date: got %v, want %v", r.Date, day(2))
	}
	approx(t, "lead_return", r.LeadReturn, 105.0/102.0-1)
	approx(t, "lag_return", r.LagReturn, 0)
	approx(t, "rvol", r.RelativeVolume, 1500.0/1300.0)
	approx(t, "spread", r.Spread, 14)
	// spread window {11, 14}: mean 12.5, sample stdev sqrt(4.5)
	approx(t, "zscore", r.SpreadZScore, 1.5/math.Sqrt(4.5))

	r = rows[1]
	if !r.Date.Equal(day(3)) {
		t.Fatalf("second row date: got %v, want %v", r.Date, day(3))
	}
	approx(t, "rvol", r.RelativeVolume, 1200.0/1350.0)
	approx(t, "zscore", r.SpreadZScore, -1.5/math.Sqrt(4.5))
}

func TestComputeLeadGapEqualsLeadReturn(t *testing.T) {
	e := NewEngine(2)
	bars := []models.PriceBar{
		{Date: day(0), LeadClose: 100, LagClose: 90, LeadVolume: 1000},
		{Date: day(1), LeadClose: 103, LagClose: 92, LeadVolume: 1100},
		{Date: day(2), LeadClose: 101, LagClose: 95, LeadVolume: 1200},
		{Date: day(3), LeadClose: 107, LagClose: 91, LeadVolume: 900},
	}
	for _, r := range e.Compute(bars) {
		if r.LeadGap != r.LeadReturn {
			t.Fatalf("lead_gap %v != lead_return %v", r.LeadGap, r.LeadReturn)
		}
	}
}

func TestComputeDropsDegenerateSpread(t *testing.T) {
	e := NewEngine(2)
	// Constant spread: zero variance in every window.
	bars := []models.PriceBar{
		{Date: day(0), LeadClose: 100, LagClose: 90, LeadVolume: 1000},
		{Date: day(1), LeadClose: 101, LagClose: 91, LeadVolume: 1100},
		{Date: day(2), LeadClose: 102, LagClose: 92, LeadVolume: 1200},
		{Date: day(3), LeadClose: 103, LagClose: 93, LeadVolume: 1300},
	}
	if rows := e.Compute(bars); len(rows) != 0 {
		t.Fatalf("expected all rows dropped for constant spread, got %d", len(rows))
	}
}

func TestComputeDropsNearZeroSpreadStdev(t *testing.T) {
	e := NewEngine(2)
	// Spreads differ by ~1e-15: stdev is nonzero but far below the
	// denominator guard, so every row must still be dropped.
	bars := []models.PriceBar{
		{Date: day(0), LeadClose: 1, LagClose: 0.5, LeadVolume: 1000},
		{Date: day(1), LeadClose: 1 + 1e-15, LagClose: 0.5, LeadVolume: 1000},
		{Date: day(2), LeadClose: 1 + 2e-15, LagClose: 0.5, LeadVolume: 1000},
		{Date: day(3), LeadClose: 1 + 3e-15, LagClose: 0.5, LeadVolume: 1000},
	}
	if rows := e.Compute(bars); len(rows) != 0 {
		t.Fatalf("expected rows dropped for near-zero spread stdev, got %d", len(rows))
	}
}

func TestComputeDropsZeroVolumeWindow(t *testing.T) {
	e := NewEngine(2)
	bars := []models.PriceBar{
		{Date: day(0), LeadClose: 100, LagClose: 90},
		{Date: day(1), LeadClose: 102, LagClose: 91},
		{Date: day(2), LeadClose: 105, LagClose: 91},
	}
	if rows := e.Compute(bars); len(rows) != 0 {
		t.Fatalf("expected rows dropped for zero volume mean, got %d", len(rows))
	}
}

func TestLatest(t *testing.T) {
	if _, ok := Latest(nil); ok {
		t.Fatalf("expected no latest row for empty input")
	}
	rows := []models.FeatureRow{{Spread: 1}, {Spread: 2}}
	r, ok := Latest(rows)
	if !ok || r.Spread != 2 {
		t.Fatalf("expected last row, got %+v ok=%v", r, ok)
	}
}
