package repository

import (
	"context"
	"time"

	"PairPull/internal/domain/models"
)

// MarketData returns aligned daily OHLCV history for the configured pair.
// Implementations must return bars in chronological order, one per trading
// day, with days missing either instrument dropped.
type MarketData interface {
	DailyHistory(ctx context.Context, lead, lag string, days int) ([]models.PriceBar, error)
}

// Broker submits orders and reports open positions. Order acceptance does
// not guarantee an immediate fill.
type Broker interface {
	SubmitOrder(ctx context.Context, req models.OrderRequest) (models.OrderResult, error)
	ListPositions(ctx context.Context) ([]models.Position, error)
}

// QuoteStream is an optional live quote feed used for monitoring only.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Journal is the append-only record of trade events and system actions.
// The two streams are logically independent.
type Journal interface {
	RecordTrade(ctx context.Context, ev models.TradeEvent) error
	RecordAction(ctx context.Context, a models.ActionEntry) error
	Trades(ctx context.Context, from, to time.Time, limit int) ([]models.TradeEvent, error)
	// LastOpen returns the most recent open event, used to resolve a
	// position's open timestamp when the broker cannot supply one.
	LastOpen(ctx context.Context) (models.TradeEvent, bool, error)
	Close() error
}

// EventPublisher appends journal entries to a streaming backend for
// downstream ingestion.
type EventPublisher interface {
	PublishTrade(ctx context.Context, ev models.TradeEvent) error
	PublishAction(ctx context.Context, a models.ActionEntry) error
	Close() error
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordCycle(result string)
	RecordOrder(symbol string, side string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordSignal(active bool)
}
