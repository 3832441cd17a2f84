package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"PairPull/internal/domain/models"
	"PairPull/internal/services/features"
	"PairPull/internal/services/strategy"
	applogger "PairPull/pkg/logger"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// trendBars produces a rising lead against a flat lag: the lag decouples
// from the lead's move and relative volume stays at 1.
func trendBars(n int) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	for i := range bars {
		bars[i] = models.PriceBar{
			Date:       day(i),
			LeadClose:  100 * math.Pow(1.01, float64(i)),
			LagClose:   50,
			LeadVolume: 1000,
			LagVolume:  2000,
		}
	}
	return bars
}

// signalParams always fire on trendBars; quietParams never do.
func signalParams() strategy.Params {
	return strategy.Params{
		Capital:          1_000_000,
		GapThreshold:     0.005,
		VolumeMultiplier: 0.5,
		ZScoreThreshold:  0,
		UseVolSizing:     true,
		MaxLeverage:      3,
	}
}

func quietParams() strategy.Params {
	p := signalParams()
	p.GapThreshold = 10
	return p
}

type fakeMarket struct {
	bars []models.PriceBar
	err  error
}

func (m *fakeMarket) DailyHistory(ctx context.Context, lead, lag string, days int) ([]models.PriceBar, error) {
	return m.bars, m.err
}

type fakeBroker struct {
	positions []models.Position
	posErr    error
	reject    map[string]bool
	orders    []models.OrderRequest
}

func (b *fakeBroker) SubmitOrder(ctx context.Context, req models.OrderRequest) (models.OrderResult, error) {
	if b.reject[req.Symbol] {
		return models.OrderResult{}, fmt.Errorf("submit order %s: %w", req.Symbol, models.ErrOrderRejected)
	}
	b.orders = append(b.orders, req)
	return models.OrderResult{ID: "o1", Symbol: req.Symbol, Status: "accepted"}, nil
}

func (b *fakeBroker) ListPositions(ctx context.Context) ([]models.Position, error) {
	if b.posErr != nil {
		return nil, b.posErr
	}
	return b.positions, nil
}

type fakeJournal struct {
	trades   []models.TradeEvent
	actions  []models.ActionEntry
	lastOpen *models.TradeEvent
}

func (j *fakeJournal) RecordTrade(ctx context.Context, ev models.TradeEvent) error {
	j.trades = append(j.trades, ev)
	return nil
}

func (j *fakeJournal) RecordAction(ctx context.Context, a models.ActionEntry) error {
	j.actions = append(j.actions, a)
	return nil
}

func (j *fakeJournal) Trades(ctx context.Context, from, to time.Time, limit int) ([]models.TradeEvent, error) {
	return j.trades, nil
}

func (j *fakeJournal) LastOpen(ctx context.Context) (models.TradeEvent, bool, error) {
	if j.lastOpen == nil {
		return models.TradeEvent{}, false, nil
	}
	return *j.lastOpen, true, nil
}

func (j *fakeJournal) Close() error { return nil }

func (j *fakeJournal) hasAction(action string) bool {
	for _, a := range j.actions {
		if a.Action == action {
			return true
		}
	}
	return false
}

type fakeMetrics struct {
	errors map[string]int
}

func newFakeMetrics() *fakeMetrics                          { return &fakeMetrics{errors: map[string]int{}} }
func (m *fakeMetrics) RecordCycle(result string)            {}
func (m *fakeMetrics) RecordOrder(symbol, side string)      {}
func (m *fakeMetrics) RecordError(kind string)              { m.errors[kind]++ }
func (m *fakeMetrics) RecordLastPrice(s string, p float64)  {}
func (m *fakeMetrics) RecordLatency(op string, sec float64) {}
func (m *fakeMetrics) RecordSignal(active bool)             {}

func newTestLifecycle(t *testing.T, market *fakeMarket, broker *fakeBroker, journal *fakeJournal, p strategy.Params) *Lifecycle {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewLifecycle(
		market, broker, journal, newFakeMetrics(),
		features.NewEngine(3),
		strategy.NewEvaluator(p),
		strategy.NewSizer(p),
		LifecycleConfig{Lead: "GLD", Lag: "GDX", HoldDays: 1},
		l,
	)
}

func TestCycleOpensOnSignal(t *testing.T) {
	market := &fakeMarket{bars: trendBars(10)}
	broker := &fakeBroker{}
	journal := &fakeJournal{}
	lc := newTestLifecycle(t, market, broker, journal, signalParams())

	res, err := lc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Action != "opened" || res.State != models.StateOpen {
		t.Fatalf("expected opened/open, got %s/%s", res.Action, res.State)
	}

	if len(broker.orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(broker.orders))
	}
	lead, lag := broker.orders[0], broker.orders[1]
	if lead.Symbol != "GLD" || lead.Side != models.SideBuy || lead.Qty <= 0 {
		t.Fatalf("unexpected lead order: %+v", lead)
	}
	if lag.Symbol != "GDX" || lag.Side != models.SideSell || lag.Qty <= 0 {
		t.Fatalf("unexpected lag order: %+v", lag)
	}

	if len(journal.trades) != 1 || journal.trades[0].Kind != models.EventOpen {
		t.Fatalf("expected one open trade event, got %+v", journal.trades)
	}
	if !journal.hasAction("opened") {
		t.Fatalf("expected an 'opened' action entry")
	}
}

func TestCycleNoSignal(t *testing.T) {
	market := &fakeMarket{bars: trendBars(10)}
	broker := &fakeBroker{}
	journal := &fakeJournal{}
	lc := newTestLifecycle(t, market, broker, journal, quietParams())

	res, err := lc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Action != "none" || res.Signal {
		t.Fatalf("expected none without signal, got %+v", res)
	}
	if len(broker.orders) != 0 || len(journal.trades) != 0 {
		t.Fatalf("expected no orders or trades")
	}
}

func TestCycleHoldsWithinHoldingPeriod(t *testing.T) {
	bars := trendBars(10)
	last := bars[len(bars)-1].Date
	market := &fakeMarket{bars: bars}
	broker := &fakeBroker{positions: []models.Position{
		{Symbol: "GLD", Qty: 100, Side: models.SideBuy, OpenedAt: last},
		{Symbol: "GDX", Qty: 200, Side: models.SideSell, OpenedAt: last},
	}}
	journal := &fakeJournal{}
	lc := newTestLifecycle(t, market, broker, journal, signalParams())

	res, err := lc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Action != "hold" {
		t.Fatalf("expected hold on the open day, got %s", res.Action)
	}
	if len(broker.orders) != 0 {
		t.Fatalf("expected no orders while holding, got %d", len(broker.orders))
	}
}

func TestCycleClosesAfterHold(t *testing.T) {
	bars := trendBars(10)
	opened := bars[len(bars)-1].Date.AddDate(0, 0, -2)
	market := &fakeMarket{bars: bars}
	broker := &fakeBroker{positions: []models.Position{
		{Symbol: "GLD", Qty: 123, Side: models.SideBuy, OpenedAt: opened},
		{Symbol: "GDX", Qty: 456, Side: models.SideSell, OpenedAt: opened},
	}}
	journal := &fakeJournal{}
	lc := newTestLifecycle(t, market, broker, journal, quietParams())

	res, err := lc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Action != "closed" || res.State != models.StateFlat {
		t.Fatalf("expected closed/flat, got %s/%s", res.Action, res.State)
	}

	if len(broker.orders) != 2 {
		t.Fatalf("expected 2 closing orders, got %d", len(broker.orders))
	}
	if broker.orders[0].Side != models.SideSell || broker.orders[0].Qty != 123 {
		t.Fatalf("lead close must sell the reported quantity: %+v", broker.orders[0])
	}
	if broker.orders[1].Side != models.SideBuy || broker.orders[1].Qty != 456 {
		t.Fatalf("lag close must buy back the reported quantity: %+v", broker.orders[1])
	}

	if len(journal.trades) != 1 || journal.trades[0].Kind != models.EventClose {
		t.Fatalf("expected one close trade event, got %+v", journal.trades)
	}
}

func TestCycleClosesUsingJournalOpenDate(t *testing.T) {
	bars := trendBars(10)
	market := &fakeMarket{bars: bars}
	broker := &fakeBroker{positions: []models.Position{
		{Symbol: "GLD", Qty: 10, Side: models.SideBuy},
		{Symbol: "GDX", Qty: 20, Side: models.SideSell},
	}}
	journal := &fakeJournal{lastOpen: &models.TradeEvent{
		Timestamp: bars[len(bars)-1].Date.AddDate(0, 0, -3),
		Kind:      models.EventOpen,
	}}
	lc := newTestLifecycle(t, market, broker, journal, quietParams())

	res, err := lc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Action != "closed" {
		t.Fatalf("expected close via journal open date, got %s", res.Action)
	}
}

func TestCycleHoldsWhenOpenDateUnknown(t *testing.T) {
	market := &fakeMarket{bars: trendBars(10)}
	broker := &fakeBroker{positions: []models.Position{
		{Symbol: "GLD", Qty: 10, Side: models.SideBuy},
		{Symbol: "GDX", Qty: 20, Side: models.SideSell},
	}}
	journal := &fakeJournal{}
	lc := newTestLifecycle(t, market, broker, journal, quietParams())

	res, err := lc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Action != "hold" {
		t.Fatalf("expected hold with unknown open date, got %s", res.Action)
	}
	if len(broker.orders) != 0 {
		t.Fatalf("expected no orders with unknown open date")
	}
}

func TestCycleAbortsOnMarketError(t *testing.T) {
	market := &fakeMarket{err: errors.New("connection refused")}
	broker := &fakeBroker{}
	journal := &fakeJournal{}
	lc := newTestLifecycle(t, market, broker, journal, signalParams())

	res, err := lc.RunCycle(context.Background())
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if res.Action != "aborted" {
		t.Fatalf("expected aborted cycle, got %s", res.Action)
	}
	if len(broker.orders) != 0 {
		t.Fatalf("aborted cycle must not submit orders")
	}
}

func TestCycleAbortsOnShortHistory(t *testing.T) {
	market := &fakeMarket{bars: trendBars(3)}
	broker := &fakeBroker{}
	lc := newTestLifecycle(t, market, broker, &fakeJournal{}, signalParams())

	if _, err := lc.RunCycle(context.Background()); !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for short history, got %v", err)
	}
}

func TestCycleAbortsOnPositionQueryFailure(t *testing.T) {
	market := &fakeMarket{bars: trendBars(10)}
	broker := &fakeBroker{posErr: errors.New("502 bad gateway")}
	journal := &fakeJournal{}
	lc := newTestLifecycle(t, market, broker, journal, signalParams())

	res, err := lc.RunCycle(context.Background())
	if !errors.Is(err, models.ErrPositionUnknown) {
		t.Fatalf("expected ErrPositionUnknown, got %v", err)
	}
	if res.Action != "aborted" || len(broker.orders) != 0 {
		t.Fatalf("unknown position state must veto all orders, got %+v", res)
	}
}

func TestCycleLeadRejectStaysFlat(t *testing.T) {
	market := &fakeMarket{bars: trendBars(10)}
	broker := &fakeBroker{reject: map[string]bool{"GLD": true}}
	journal := &fakeJournal{}
	lc := newTestLifecycle(t, market, broker, journal, signalParams())

	res, err := lc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Action != "none" || res.State != models.StateFlat {
		t.Fatalf("rejected lead leg must leave the book flat, got %+v", res)
	}
	if len(journal.trades) != 0 {
		t.Fatalf("no trade event may be recorded for a failed open")
	}
}

func TestCyclePartialOpenMarksInconsistent(t *testing.T) {
	market := &fakeMarket{bars: trendBars(10)}
	broker := &fakeBroker{reject: map[string]bool{"GDX": true}}
	journal := &fakeJournal{}
	lc := newTestLifecycle(t, market, broker, journal, signalParams())

	res, err := lc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != models.StateInconsistent || res.Action != "none" {
		t.Fatalf("expected inconsistent state after partial open, got %+v", res)
	}
	if len(journal.trades) != 0 {
		t.Fatalf("partial open must not record a trade event")
	}
	if !journal.hasAction("open_partial_failure") {
		t.Fatalf("expected a distinct partial-failure action entry")
	}
}

func TestCyclePartialCloseMarksInconsistent(t *testing.T) {
	bars := trendBars(10)
	opened := bars[len(bars)-1].Date.AddDate(0, 0, -2)
	market := &fakeMarket{bars: bars}
	broker := &fakeBroker{
		positions: []models.Position{
			{Symbol: "GLD", Qty: 100, Side: models.SideBuy, OpenedAt: opened},
			{Symbol: "GDX", Qty: 200, Side: models.SideSell, OpenedAt: opened},
		},
		reject: map[string]bool{"GDX": true},
	}
	journal := &fakeJournal{}
	lc := newTestLifecycle(t, market, broker, journal, quietParams())

	res, err := lc.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != models.StateInconsistent {
		t.Fatalf("expected inconsistent state after partial close, got %+v", res)
	}
	if len(journal.trades) != 0 {
		t.Fatalf("partial close must not record a trade event")
	}
	if !journal.hasAction("close_partial_failure") {
		t.Fatalf("expected a distinct partial-failure action entry")
	}
}

func TestCycleInconsistentStateFreezesTrading(t *testing.T) {
	market := &fakeMarket{bars: trendBars(10)}
	broker := &fakeBroker{positions: []models.Position{
		{Symbol: "GLD", Qty: 100, Side: models.SideBuy},
	}}
	journal := &fakeJournal{}
	lc := newTestLifecycle(t, market, broker, journal, signalParams())

	res, err := lc.RunCycle(context.Background())
	if !errors.Is(err, models.ErrInconsistentPosition) {
		t.Fatalf("expected ErrInconsistentPosition, got %v", err)
	}
	if res.Action != "none" || len(broker.orders) != 0 {
		t.Fatalf("inconsistent state must freeze trading, got %+v", res)
	}
}
