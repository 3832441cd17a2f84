package alpaca

import (
	"testing"
	"time"
)

func bar(day int, c, v float64) barResp {
	return barResp{T: time.Date(2024, 3, day, 5, 0, 0, 0, time.UTC), C: c, V: v}
}

func TestAlignDailyDropsUnmatchedDays(t *testing.T) {
	lead := []barResp{bar(1, 100, 1000), bar(2, 101, 1100), bar(4, 103, 1200)}
	lag := []barResp{bar(1, 50, 2000), bar(3, 51, 2100), bar(4, 52, 2200)}

	out := AlignDaily(lead, lag)
	if len(out) != 2 {
		t.Fatalf("expected 2 aligned bars, got %d", len(out))
	}
	if out[0].LeadClose != 100 || out[0].LagClose != 50 {
		t.Fatalf("unexpected first bar: %+v", out[0])
	}
	if out[1].LeadClose != 103 || out[1].LagClose != 52 {
		t.Fatalf("unexpected second bar: %+v", out[1])
	}
}

func TestAlignDailySortsChronologically(t *testing.T) {
	lead := []barResp{bar(4, 103, 1), bar(1, 100, 1), bar(2, 101, 1)}
	lag := []barResp{bar(2, 51, 1), bar(4, 52, 1), bar(1, 50, 1)}

	out := AlignDaily(lead, lag)
	if len(out) != 3 {
		t.Fatalf("expected 3 aligned bars, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if !out[i-1].Date.Before(out[i].Date) {
			t.Fatalf("bars out of order at %d: %v >= %v", i, out[i-1].Date, out[i].Date)
		}
	}
}
