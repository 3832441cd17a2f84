package usecase

import (
	"context"
	"fmt"
	"time"

	"PairPull/internal/domain/models"
	drepo "PairPull/internal/domain/repository"
	"PairPull/internal/services/features"
	"PairPull/internal/services/strategy"
	applogger "PairPull/pkg/logger"
	"PairPull/pkg/util"
)

// LifecycleConfig carries the pair identity and holding period.
type LifecycleConfig struct {
	Lead     string
	Lag      string
	HoldDays int
}

// CycleResult summarizes one daily evaluation for callers and the API.
type CycleResult struct {
	Date   time.Time              `json:"date"`
	State  models.PairState       `json:"state"`
	Signal bool                   `json:"signal"`
	Action string                 `json:"action"` // opened | closed | hold | none | aborted
	Sizing *models.SizingDecision `json:"sizing,omitempty"`
	Reason string                 `json:"reason,omitempty"`
}

// Lifecycle runs the open/hold/close state machine once per invocation.
// It is stateless between runs: every cycle recomputes features and reads
// the broker's reported positions fresh, so overlapping invocations must be
// excluded by the caller.
type Lifecycle struct {
	market  drepo.MarketData
	broker  drepo.Broker
	journal drepo.Journal
	metrics drepo.Metrics
	engine  *features.Engine
	eval    *strategy.Evaluator
	sizer   *strategy.Sizer
	cfg     LifecycleConfig
	l       *applogger.Logger
}

// NewLifecycle wires the cycle's collaborators.
func NewLifecycle(
	market drepo.MarketData,
	broker drepo.Broker,
	journal drepo.Journal,
	metrics drepo.Metrics,
	engine *features.Engine,
	eval *strategy.Evaluator,
	sizer *strategy.Sizer,
	cfg LifecycleConfig,
	l *applogger.Logger,
) *Lifecycle {
	return &Lifecycle{
		market:  market,
		broker:  broker,
		journal: journal,
		metrics: metrics,
		engine:  engine,
		eval:    eval,
		sizer:   sizer,
		cfg:     cfg,
		l:       l,
	}
}

// RunCycle executes one full evaluation: history fetch, feature compute,
// signal, sizing, and the lifecycle decision. Errors from the taxonomy are
// returned for reporting; the cycle itself always degrades to "no action"
// on uncertainty and never takes a destructive step with unknown state.
func (lc *Lifecycle) RunCycle(ctx context.Context) (CycleResult, error) {
	start := time.Now()
	res := CycleResult{Action: "aborted"}

	bars, err := lc.market.DailyHistory(ctx, lc.cfg.Lead, lc.cfg.Lag, lc.engine.Lookback()+1)
	if err != nil {
		lc.metrics.RecordError("market_data")
		lc.warn(ctx, "data_unavailable", err.Error())
		return res, fmt.Errorf("daily history: %w", models.ErrDataUnavailable)
	}
	if len(bars) < lc.engine.Lookback()+1 {
		lc.metrics.RecordError("market_data")
		lc.warn(ctx, "data_unavailable", fmt.Sprintf("got %d bars, need %d", len(bars), lc.engine.Lookback()+1))
		return res, models.ErrDataUnavailable
	}

	rows := lc.engine.Compute(bars)
	row, ok := features.Latest(rows)
	if !ok {
		lc.metrics.RecordError("degenerate_stats")
		lc.warn(ctx, "degenerate_stats", "no feature row could be derived")
		return res, models.ErrDegenerateStats
	}

	bar := bars[len(bars)-1]
	res.Date = bar.Date
	lc.metrics.RecordLastPrice(lc.cfg.Lead, bar.LeadClose)
	lc.metrics.RecordLastPrice(lc.cfg.Lag, bar.LagClose)

	res.Signal = lc.eval.Evaluate(row)
	lc.metrics.RecordSignal(res.Signal)

	positions, err := lc.broker.ListPositions(ctx)
	if err != nil {
		// Unknown state: opening here could double up a position we cannot
		// see, so the only safe decision is none at all.
		lc.metrics.RecordError("position_query")
		lc.warn(ctx, "position_query_failed", err.Error())
		return res, fmt.Errorf("list positions: %w", models.ErrPositionUnknown)
	}

	pair := lc.pairOf(positions)
	res.State = pair.State()

	switch res.State {
	case models.StateInconsistent:
		lc.metrics.RecordError("inconsistent_position")
		lc.warn(ctx, "inconsistent_position", lc.describeLegs(pair))
		res.Action = "none"
		res.Reason = "single-leg position requires manual intervention"
		err = models.ErrInconsistentPosition

	case models.StateOpen:
		res = lc.stepOpen(ctx, res, bar, pair)

	case models.StateFlat:
		res = lc.stepFlat(ctx, res, row, bar)
	}

	lc.metrics.RecordCycle(res.Action)
	lc.metrics.RecordLatency("cycle", time.Since(start).Seconds())
	return res, err
}

// stepFlat opens a new position when the signal fires and sizing is
// actionable. A failed lead order leaves the book flat; a failed lag order
// after a filled lead leaves it inconsistent and is logged distinctly.
func (lc *Lifecycle) stepFlat(ctx context.Context, res CycleResult, row models.FeatureRow, bar models.PriceBar) CycleResult {
	if !res.Signal {
		res.Action = "none"
		res.Reason = "no signal"
		return res
	}

	sizing := lc.sizer.Size(row, bar.LeadClose, bar.LagClose)
	res.Sizing = &sizing
	if !sizing.Actionable() {
		lc.warn(ctx, "sizing_inactionable", fmt.Sprintf("qty_lead=%d qty_lag=%d", sizing.QtyLead, sizing.QtyLag))
		res.Action = "none"
		res.Reason = "zero-quantity sizing"
		return res
	}

	if _, err := lc.broker.SubmitOrder(ctx, marketOrder(lc.cfg.Lead, models.SideBuy, sizing.QtyLead)); err != nil {
		// Nothing filled yet; flat is preserved and the next cycle may retry.
		lc.metrics.RecordError("order_submit")
		lc.warn(ctx, "open_failed", fmt.Sprintf("lead leg rejected: %v", err))
		res.Action = "none"
		res.Reason = "lead order rejected"
		return res
	}
	lc.metrics.RecordOrder(lc.cfg.Lead, string(models.SideBuy))

	if _, err := lc.broker.SubmitOrder(ctx, marketOrder(lc.cfg.Lag, models.SideSell, sizing.QtyLag)); err != nil {
		lc.metrics.RecordError("order_submit")
		lc.warn(ctx, "open_partial_failure",
			fmt.Sprintf("lead leg submitted, lag leg rejected: %v; manual reconciliation required", err))
		res.State = models.StateInconsistent
		res.Action = "none"
		res.Reason = "partial open"
		return res
	}
	lc.metrics.RecordOrder(lc.cfg.Lag, string(models.SideSell))

	ev := models.TradeEvent{
		Timestamp: bar.Date,
		Kind:      models.EventOpen,
		QtyLead:   sizing.QtyLead,
		QtyLag:    sizing.QtyLag,
		PriceLead: bar.LeadClose,
		PriceLag:  bar.LagClose,
	}
	if err := lc.journal.RecordTrade(ctx, ev); err != nil {
		lc.metrics.RecordError("journal")
		lc.l.Error("trade journal append failed", applogger.Error(err))
	}
	lc.action(ctx, "opened", fmt.Sprintf("scale=%.2f qty_lead=%d qty_lag=%d %s",
		sizing.Scale, sizing.QtyLead, sizing.QtyLag, strategy.Describe(row)))

	res.State = models.StateOpen
	res.Action = "opened"
	return res
}

// stepOpen closes the position once the holding period has elapsed, sized
// to the broker-reported quantities rather than a recomputed sizing.
func (lc *Lifecycle) stepOpen(ctx context.Context, res CycleResult, bar models.PriceBar, pair models.PairPosition) CycleResult {
	openedAt, ok := lc.openedAt(ctx, pair)
	if !ok {
		lc.warn(ctx, "open_date_unknown", "holding position until an open timestamp can be resolved")
		res.Action = "hold"
		res.Reason = "open date unknown"
		return res
	}

	if util.DaysBetween(openedAt, bar.Date) < lc.cfg.HoldDays {
		res.Action = "hold"
		return res
	}

	qtyLead := pair.Lead.Qty
	qtyLag := pair.Lag.Qty

	if _, err := lc.broker.SubmitOrder(ctx, marketOrder(lc.cfg.Lead, models.SideSell, qtyLead)); err != nil {
		lc.metrics.RecordError("order_submit")
		lc.warn(ctx, "close_failed", fmt.Sprintf("lead leg rejected: %v", err))
		res.Action = "hold"
		res.Reason = "lead close rejected"
		return res
	}
	lc.metrics.RecordOrder(lc.cfg.Lead, string(models.SideSell))

	if _, err := lc.broker.SubmitOrder(ctx, marketOrder(lc.cfg.Lag, models.SideBuy, qtyLag)); err != nil {
		lc.metrics.RecordError("order_submit")
		lc.warn(ctx, "close_partial_failure",
			fmt.Sprintf("lead leg submitted, lag leg rejected: %v; manual reconciliation required", err))
		res.State = models.StateInconsistent
		res.Action = "none"
		res.Reason = "partial close"
		return res
	}
	lc.metrics.RecordOrder(lc.cfg.Lag, string(models.SideBuy))

	ev := models.TradeEvent{
		Timestamp: bar.Date,
		Kind:      models.EventClose,
		QtyLead:   qtyLead,
		QtyLag:    qtyLag,
		PriceLead: bar.LeadClose,
		PriceLag:  bar.LagClose,
	}
	if err := lc.journal.RecordTrade(ctx, ev); err != nil {
		lc.metrics.RecordError("journal")
		lc.l.Error("trade journal append failed", applogger.Error(err))
	}
	lc.action(ctx, "closed", fmt.Sprintf("qty_lead=%d qty_lag=%d held_since=%s",
		qtyLead, qtyLag, openedAt.Format("2006-01-02")))

	res.State = models.StateFlat
	res.Action = "closed"
	return res
}

// openedAt resolves the position's open timestamp: broker-reported when
// present, otherwise the journal's latest open event. It is never inferred
// from unrelated broker fields.
func (lc *Lifecycle) openedAt(ctx context.Context, pair models.PairPosition) (time.Time, bool) {
	if pair.Lead != nil && !pair.Lead.OpenedAt.IsZero() {
		return pair.Lead.OpenedAt, true
	}
	ev, ok, err := lc.journal.LastOpen(ctx)
	if err != nil {
		lc.metrics.RecordError("journal")
		lc.l.Warn("journal last-open lookup failed", applogger.Error(err))
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}
	return ev.Timestamp, true
}

func (lc *Lifecycle) pairOf(positions []models.Position) models.PairPosition {
	var pair models.PairPosition
	for i := range positions {
		switch positions[i].Symbol {
		case lc.cfg.Lead:
			pair.Lead = &positions[i]
		case lc.cfg.Lag:
			pair.Lag = &positions[i]
		}
	}
	return pair
}

func (lc *Lifecycle) describeLegs(pair models.PairPosition) string {
	if pair.Lead != nil {
		return fmt.Sprintf("only lead leg open: %s qty=%d", pair.Lead.Symbol, pair.Lead.Qty)
	}
	return fmt.Sprintf("only lag leg open: %s qty=%d", pair.Lag.Symbol, pair.Lag.Qty)
}

func (lc *Lifecycle) action(ctx context.Context, action, details string) {
	entry := models.ActionEntry{Timestamp: time.Now().UTC(), Action: action, Details: details}
	if err := lc.journal.RecordAction(ctx, entry); err != nil {
		lc.metrics.RecordError("journal")
		lc.l.Warn("action journal append failed", applogger.Error(err))
	}
	lc.l.Info(action, applogger.String("details", details))
}

func (lc *Lifecycle) warn(ctx context.Context, action, details string) {
	entry := models.ActionEntry{Timestamp: time.Now().UTC(), Action: action, Details: details}
	if err := lc.journal.RecordAction(ctx, entry); err != nil {
		lc.metrics.RecordError("journal")
	}
	lc.l.Warn(action, applogger.String("details", details))
}

func marketOrder(symbol string, side models.Side, qty int64) models.OrderRequest {
	return models.OrderRequest{
		Symbol:      symbol,
		Side:        side,
		Qty:         qty,
		Type:        "market",
		TimeInForce: "gtc",
	}
}
