package cache

import (
	"context"
	"testing"
	"time"

	"PairPull/internal/domain/models"
)

type countingMarket struct {
	calls int
	bars  []models.PriceBar
}

func (m *countingMarket) DailyHistory(ctx context.Context, lead, lag string, days int) ([]models.PriceBar, error) {
	m.calls++
	return m.bars, nil
}

func TestHistoryCacheReusesUpstreamFetch(t *testing.T) {
	upstream := &countingMarket{bars: []models.PriceBar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), LeadClose: 100, LagClose: 50, LeadVolume: 1000},
	}}
	hc := NewHistoryCache(upstream, NewTTLCache(), time.Minute)

	for i := 0; i < 3; i++ {
		bars, err := hc.DailyHistory(context.Background(), "GLD", "GDX", 21)
		if err != nil {
			t.Fatalf("daily history: %v", err)
		}
		if len(bars) != 1 || bars[0].LeadClose != 100 {
			t.Fatalf("unexpected bars: %+v", bars)
		}
	}
	if upstream.calls != 1 {
		t.Fatalf("expected one upstream fetch, got %d", upstream.calls)
	}
}

func TestHistoryCacheKeyIncludesWindow(t *testing.T) {
	upstream := &countingMarket{bars: []models.PriceBar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), LeadClose: 100, LagClose: 50},
	}}
	hc := NewHistoryCache(upstream, NewTTLCache(), time.Minute)

	if _, err := hc.DailyHistory(context.Background(), "GLD", "GDX", 21); err != nil {
		t.Fatalf("daily history: %v", err)
	}
	if _, err := hc.DailyHistory(context.Background(), "GLD", "GDX", 42); err != nil {
		t.Fatalf("daily history: %v", err)
	}
	if upstream.calls != 2 {
		t.Fatalf("different windows must not share a cache entry, got %d calls", upstream.calls)
	}
}
