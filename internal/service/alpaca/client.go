package alpaca

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"PairPull/internal/domain/models"
	drepo "PairPull/internal/domain/repository"
	"PairPull/internal/service/ratelimit"
	"PairPull/pkg/config"
	xhttp "PairPull/pkg/http"
)

// Alpaca's published REST limit is 200 requests/min per key.
const (
	rateKey       = "alpaca"
	rateCapacity  = 200
	ratePerSecond = 200.0 / 60.0
)

// Client implements the Broker collaborator against the Alpaca trading API
// (paper or live, depending on the configured base URL).
type Client struct {
	baseURL   string
	apiKey    string
	secretKey string
	client    *xhttp.Client
	limiter   *ratelimit.Limiter
}

// NewClient builds an HTTP broker client from config.
func NewClient(cfg *config.Config) *Client {
	timeout := cfg.Alpaca.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   cfg.Alpaca.BaseURL,
		apiKey:    cfg.Alpaca.APIKey,
		secretKey: cfg.Alpaca.SecretKey,
		client:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:   ratelimit.New(),
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"APCA-API-KEY-ID":     c.apiKey,
		"APCA-API-SECRET-KEY": c.secretKey,
		"Content-Type":        "application/json",
	}
}

func (c *Client) allow() error {
	if !c.limiter.Allow(rateKey, rateCapacity, ratePerSecond) {
		return fmt.Errorf("alpaca rate limit exceeded")
	}
	return nil
}

type orderResp struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Status string `json:"status"`
}

// SubmitOrder places one market GTC order for a single leg. A rejected or
// failed submission is returned as an error wrapping ErrOrderRejected so
// the lifecycle can classify it.
func (c *Client) SubmitOrder(ctx context.Context, req models.OrderRequest) (models.OrderResult, error) {
	if req.Qty <= 0 {
		return models.OrderResult{}, fmt.Errorf("submit order %s: non-positive qty %d: %w", req.Symbol, req.Qty, models.ErrOrderRejected)
	}
	if err := c.allow(); err != nil {
		return models.OrderResult{}, fmt.Errorf("submit order %s: %v: %w", req.Symbol, err, models.ErrOrderRejected)
	}

	var or orderResp
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + "/v2/orders",
		Headers: c.headers(),
		Body:    req,
	}, &or)
	if err != nil {
		return models.OrderResult{}, fmt.Errorf("submit order %s: %v: %w", req.Symbol, err, models.ErrOrderRejected)
	}
	return models.OrderResult{ID: or.ID, Symbol: or.Symbol, Status: or.Status}, nil
}

type positionResp struct {
	Symbol       string `json:"symbol"`
	Qty          string `json:"qty"`
	Side         string `json:"side"` // long or short
	UnrealizedPL string `json:"unrealized_pl"`
	// Not part of the official position schema; populated only when the
	// account's position source can supply it.
	OpenedAt string `json:"opened_at,omitempty"`
}

// ListPositions returns the currently open positions. Short positions are
// reported with their absolute quantity and SideSell.
func (c *Client) ListPositions(ctx context.Context) ([]models.Position, error) {
	if err := c.allow(); err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	var raw []positionResp
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/v2/positions",
		Headers: c.headers(),
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	out := make([]models.Position, 0, len(raw))
	for _, p := range raw {
		qty, err := strconv.ParseFloat(p.Qty, 64)
		if err != nil {
			return nil, fmt.Errorf("list positions: parse qty %q: %w", p.Qty, err)
		}
		side := models.SideBuy
		if p.Side == "short" || qty < 0 {
			side = models.SideSell
			if qty < 0 {
				qty = -qty
			}
		}
		pl, _ := strconv.ParseFloat(p.UnrealizedPL, 64)
		pos := models.Position{
			Symbol:       p.Symbol,
			Qty:          int64(qty),
			Side:         side,
			UnrealizedPL: pl,
		}
		if p.OpenedAt != "" {
			if t, err := time.Parse(time.RFC3339, p.OpenedAt); err == nil {
				pos.OpenedAt = t
			}
		}
		out = append(out, pos)
	}
	return out, nil
}

var _ drepo.Broker = (*Client)(nil)
