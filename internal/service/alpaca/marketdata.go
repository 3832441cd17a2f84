package alpaca

import (
	"context"
	"fmt"
	"sort"
	"time"

	"PairPull/internal/domain/models"
	drepo "PairPull/internal/domain/repository"
	"PairPull/pkg/config"
	xhttp "PairPull/pkg/http"
)

// MarketData fetches daily bars from the Alpaca market-data API and aligns
// the two instruments by date.
type MarketData struct {
	dataURL   string
	apiKey    string
	secretKey string
	client    *xhttp.Client
}

// NewMarketData builds the daily-history client from config.
func NewMarketData(cfg *config.Config) *MarketData {
	timeout := cfg.Alpaca.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MarketData{
		dataURL:   cfg.Alpaca.DataURL,
		apiKey:    cfg.Alpaca.APIKey,
		secretKey: cfg.Alpaca.SecretKey,
		client:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type barResp struct {
	T time.Time `json:"t"`
	C float64   `json:"c"`
	V float64   `json:"v"`
}

type barsResp struct {
	Bars map[string][]barResp `json:"bars"`
}

// DailyHistory returns the last `days` aligned daily bars for the pair.
// Days missing either instrument are dropped; callers must check the
// returned length against their window requirement.
func (m *MarketData) DailyHistory(ctx context.Context, lead, lag string, days int) ([]models.PriceBar, error) {
	if days < 1 {
		return nil, fmt.Errorf("daily history: non-positive day count %d", days)
	}

	var br barsResp
	err := m.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    m.dataURL + "/v2/stocks/bars",
		Headers: map[string]string{
			"APCA-API-KEY-ID":     m.apiKey,
			"APCA-API-SECRET-KEY": m.secretKey,
		},
		QueryParams: map[string][]string{
			"symbols":   {lead + "," + lag},
			"timeframe": {"1Day"},
			// fetch extra days to survive holidays and dropped rows
			"limit": {fmt.Sprintf("%d", days*2)},
		},
	}, &br)
	if err != nil {
		return nil, fmt.Errorf("daily history: %w", err)
	}

	bars := AlignDaily(br.Bars[lead], br.Bars[lag])
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// AlignDaily joins the two per-instrument series on calendar date, keeping
// only days present in both, sorted chronologically.
func AlignDaily(lead, lag []barResp) []models.PriceBar {
	byDate := make(map[string]barResp, len(lag))
	for _, b := range lag {
		byDate[dateKey(b.T)] = b
	}

	out := make([]models.PriceBar, 0, len(lead))
	for _, lb := range lead {
		gb, ok := byDate[dateKey(lb.T)]
		if !ok {
			continue
		}
		out = append(out, models.PriceBar{
			Date:       lb.T,
			LeadClose:  lb.C,
			LagClose:   gb.C,
			LeadVolume: lb.V,
			LagVolume:  gb.V,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

var _ drepo.MarketData = (*MarketData)(nil)
