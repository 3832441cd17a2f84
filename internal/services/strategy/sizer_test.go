package strategy

import (
	"testing"

	"PairPull/internal/domain/models"
)

func TestSizeClampsToMaxLeverage(t *testing.T) {
	s := NewSizer(DefaultParams())
	// 1/(0.1+0.1) = 5, clamped to 3.
	row := models.FeatureRow{LeadVolatility: 0.1, LagVolatility: 0.1}
	d := s.Size(row, 100, 50)
	if d.Scale != 3 {
		t.Fatalf("expected scale clamped to 3, got %v", d.Scale)
	}
	if d.QtyLead != 30000 || d.QtyLag != 60000 {
		t.Fatalf("unexpected quantities: %+v", d)
	}
}

func TestSizeVolatilityScaling(t *testing.T) {
	s := NewSizer(DefaultParams())
	// 1/(1.0+1.0) = 0.5, below the clamp.
	row := models.FeatureRow{LeadVolatility: 1.0, LagVolatility: 1.0}
	d := s.Size(row, 100, 50)
	if d.Scale != 0.5 {
		t.Fatalf("expected scale 0.5, got %v", d.Scale)
	}
	if d.QtyLead != 5000 || d.QtyLag != 10000 {
		t.Fatalf("unexpected quantities: %+v", d)
	}
}

func TestSizeZeroVolatilityDegeneratesToClamp(t *testing.T) {
	s := NewSizer(DefaultParams())
	d := s.Size(models.FeatureRow{}, 100, 50)
	if d.Scale != 3 {
		t.Fatalf("expected max leverage for zero combined volatility, got %v", d.Scale)
	}
}

func TestSizeWithoutVolSizing(t *testing.T) {
	p := DefaultParams()
	p.UseVolSizing = false
	s := NewSizer(p)
	d := s.Size(models.FeatureRow{LeadVolatility: 0.1, LagVolatility: 0.1}, 100, 50)
	if d.Scale != 1 {
		t.Fatalf("expected scale 1 with vol sizing disabled, got %v", d.Scale)
	}
	if d.QtyLead != 10000 || d.QtyLag != 20000 {
		t.Fatalf("unexpected quantities: %+v", d)
	}
}

func TestSizeBadPrices(t *testing.T) {
	s := NewSizer(DefaultParams())
	d := s.Size(models.FeatureRow{LeadVolatility: 1, LagVolatility: 1}, 0, -5)
	if d.QtyLead != 0 || d.QtyLag != 0 {
		t.Fatalf("expected zero quantities for non-positive prices, got %+v", d)
	}
	if d.Actionable() {
		t.Fatalf("zero-quantity sizing must not be actionable")
	}
}

func TestSizeQuantitiesFloored(t *testing.T) {
	p := DefaultParams()
	p.UseVolSizing = false
	p.Capital = 1000
	s := NewSizer(p)
	d := s.Size(models.FeatureRow{}, 333, 7)
	if d.QtyLead != 3 || d.QtyLag != 142 {
		t.Fatalf("expected floored quantities 3 and 142, got %+v", d)
	}
}
