package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"PairPull/internal/domain/models"
	drepo "PairPull/internal/domain/repository"
)

// HistoryCache decorates a MarketData source with a short-lived cache so
// repeated cycle or API invocations within the TTL reuse one upstream fetch.
type HistoryCache struct {
	next drepo.MarketData
	c    BytesCache
	ttl  time.Duration
}

func NewHistoryCache(next drepo.MarketData, c BytesCache, ttl time.Duration) *HistoryCache {
	return &HistoryCache{next: next, c: c, ttl: ttl}
}

func (h *HistoryCache) DailyHistory(ctx context.Context, lead, lag string, days int) ([]models.PriceBar, error) {
	key := fmt.Sprintf("pairpull:history:%s:%s:%d", lead, lag, days)

	if b, ok, err := h.c.GetBytes(key); err == nil && ok {
		var bars []models.PriceBar
		if json.Unmarshal(b, &bars) == nil && len(bars) > 0 {
			return bars, nil
		}
	}

	bars, err := h.next.DailyHistory(ctx, lead, lag, days)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(bars); err == nil {
		_ = h.c.SetBytes(key, b, h.ttl)
	}
	return bars, nil
}

var _ drepo.MarketData = (*HistoryCache)(nil)
