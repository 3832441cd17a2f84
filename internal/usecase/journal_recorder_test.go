package usecase

import (
	"context"
	"testing"
	"time"

	"PairPull/internal/domain/models"
)

type fakePublisher struct {
	trades  []models.TradeEvent
	actions []models.ActionEntry
	closed  bool
}

func (p *fakePublisher) PublishTrade(ctx context.Context, ev models.TradeEvent) error {
	p.trades = append(p.trades, ev)
	return nil
}

func (p *fakePublisher) PublishAction(ctx context.Context, a models.ActionEntry) error {
	p.actions = append(p.actions, a)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func TestJournalRecorderKafkaBackend(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeJournal{}
	r := NewJournalRecorder(pub, store, newFakeMetrics(), "kafka")

	ev := models.TradeEvent{Timestamp: day(0), Kind: models.EventOpen}
	if err := r.RecordTrade(context.Background(), ev); err != nil {
		t.Fatalf("record trade: %v", err)
	}
	if err := r.RecordAction(context.Background(), models.ActionEntry{Action: "opened"}); err != nil {
		t.Fatalf("record action: %v", err)
	}

	if len(pub.trades) != 1 || len(pub.actions) != 1 {
		t.Fatalf("expected writes via publisher, got %d/%d", len(pub.trades), len(pub.actions))
	}
	if len(store.trades) != 0 || len(store.actions) != 0 {
		t.Fatalf("kafka backend must not write to the store directly")
	}
}

func TestJournalRecorderClickHouseBackend(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeJournal{}
	r := NewJournalRecorder(pub, store, newFakeMetrics(), "clickhouse")

	if err := r.RecordTrade(context.Background(), models.TradeEvent{Kind: models.EventClose}); err != nil {
		t.Fatalf("record trade: %v", err)
	}
	if len(store.trades) != 1 || len(pub.trades) != 0 {
		t.Fatalf("clickhouse backend must write to the store, got store=%d pub=%d", len(store.trades), len(pub.trades))
	}
}

func TestJournalRecorderUnknownBackend(t *testing.T) {
	r := NewJournalRecorder(&fakePublisher{}, &fakeJournal{}, newFakeMetrics(), "filesystem")
	if err := r.RecordTrade(context.Background(), models.TradeEvent{}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestJournalRecorderReadsFromStore(t *testing.T) {
	store := &fakeJournal{
		trades:   []models.TradeEvent{{Kind: models.EventOpen, Timestamp: day(1)}},
		lastOpen: &models.TradeEvent{Kind: models.EventOpen, Timestamp: day(1)},
	}
	r := NewJournalRecorder(&fakePublisher{}, store, newFakeMetrics(), "kafka")

	trades, err := r.Trades(context.Background(), time.Time{}, day(5), 10)
	if err != nil || len(trades) != 1 {
		t.Fatalf("expected store-backed reads, got %v %v", trades, err)
	}
	ev, ok, err := r.LastOpen(context.Background())
	if err != nil || !ok || !ev.Timestamp.Equal(day(1)) {
		t.Fatalf("expected store-backed last open, got %+v ok=%v err=%v", ev, ok, err)
	}
}
