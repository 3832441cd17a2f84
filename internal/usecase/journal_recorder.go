package usecase

import (
	"context"
	"fmt"
	"time"

	"PairPull/internal/domain/models"
	drepo "PairPull/internal/domain/repository"
)

// JournalRecorder routes append-only journal writes to the configured
// backend. With the kafka backend, entries flow through the events topic
// and are ingested into ClickHouse by the consumer; with the clickhouse
// backend they are written directly. Reads always come from ClickHouse.
type JournalRecorder struct {
	pub     drepo.EventPublisher
	store   drepo.Journal
	metrics drepo.Metrics
	backend string
}

func NewJournalRecorder(pub drepo.EventPublisher, store drepo.Journal, metrics drepo.Metrics, backend string) *JournalRecorder {
	return &JournalRecorder{pub: pub, store: store, metrics: metrics, backend: backend}
}

func (r *JournalRecorder) RecordTrade(ctx context.Context, ev models.TradeEvent) error {
	start := time.Now()
	var err error

	switch r.backend {
	case "kafka":
		err = r.pub.PublishTrade(ctx, ev)
	case "clickhouse":
		err = r.store.RecordTrade(ctx, ev)
	default:
		err = fmt.Errorf("unknown journal backend: %s", r.backend)
	}

	if err != nil {
		r.metrics.RecordError("journal_trade")
		return fmt.Errorf("record trade: %w", err)
	}
	r.metrics.RecordLatency("journal_trade", time.Since(start).Seconds())
	return nil
}

func (r *JournalRecorder) RecordAction(ctx context.Context, a models.ActionEntry) error {
	start := time.Now()
	var err error

	switch r.backend {
	case "kafka":
		err = r.pub.PublishAction(ctx, a)
	case "clickhouse":
		err = r.store.RecordAction(ctx, a)
	default:
		err = fmt.Errorf("unknown journal backend: %s", r.backend)
	}

	if err != nil {
		r.metrics.RecordError("journal_action")
		return fmt.Errorf("record action: %w", err)
	}
	r.metrics.RecordLatency("journal_action", time.Since(start).Seconds())
	return nil
}

func (r *JournalRecorder) Trades(ctx context.Context, from, to time.Time, limit int) ([]models.TradeEvent, error) {
	return r.store.Trades(ctx, from, to, limit)
}

func (r *JournalRecorder) LastOpen(ctx context.Context) (models.TradeEvent, bool, error) {
	return r.store.LastOpen(ctx)
}

// Close closes underlying resources if available.
func (r *JournalRecorder) Close() error {
	if r.pub != nil {
		_ = r.pub.Close()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
	return nil
}

var _ drepo.Journal = (*JournalRecorder)(nil)
