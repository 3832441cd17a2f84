package usecase

import (
	"context"
	"time"

	"PairPull/internal/domain/models"
	drepo "PairPull/internal/domain/repository"
	"PairPull/internal/services/features"
	"PairPull/internal/services/strategy"
)

// SignalView is the API representation of the latest evaluated signal.
type SignalView struct {
	Date       time.Time         `json:"date"`
	Signal     bool              `json:"signal"`
	Conditions map[string]bool   `json:"conditions"`
	Row        models.FeatureRow `json:"row"`
}

// PositionView is the API representation of the reported pair position.
type PositionView struct {
	State models.PairState `json:"state"`
	Lead  *models.Position `json:"lead,omitempty"`
	Lag   *models.Position `json:"lag,omitempty"`
}

// Status serves the read-only API: latest features, signal preview,
// reported position, and trade history. It never submits orders.
type Status struct {
	market  drepo.MarketData
	broker  drepo.Broker
	journal drepo.Journal
	engine  *features.Engine
	eval    *strategy.Evaluator
	lead    string
	lag     string
}

func NewStatus(market drepo.MarketData, broker drepo.Broker, journal drepo.Journal, engine *features.Engine, eval *strategy.Evaluator, lead, lag string) *Status {
	return &Status{market: market, broker: broker, journal: journal, engine: engine, eval: eval, lead: lead, lag: lag}
}

// Features returns the most recent n feature rows.
func (s *Status) Features(ctx context.Context, n int) ([]models.FeatureRow, error) {
	bars, err := s.market.DailyHistory(ctx, s.lead, s.lag, s.engine.Lookback()+n)
	if err != nil {
		return nil, err
	}
	rows := s.engine.Compute(bars)
	if len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	return rows, nil
}

// Signal evaluates the entry rule against the latest feature row.
func (s *Status) Signal(ctx context.Context) (SignalView, error) {
	bars, err := s.market.DailyHistory(ctx, s.lead, s.lag, s.engine.Lookback()+1)
	if err != nil {
		return SignalView{}, err
	}
	row, ok := features.Latest(s.engine.Compute(bars))
	if !ok {
		return SignalView{}, models.ErrDegenerateStats
	}
	return SignalView{
		Date:       row.Date,
		Signal:     s.eval.Evaluate(row),
		Conditions: s.eval.Explain(row),
		Row:        row,
	}, nil
}

// Position returns the broker-reported pair position and its state.
func (s *Status) Position(ctx context.Context) (PositionView, error) {
	positions, err := s.broker.ListPositions(ctx)
	if err != nil {
		return PositionView{}, err
	}
	var pair models.PairPosition
	for i := range positions {
		switch positions[i].Symbol {
		case s.lead:
			pair.Lead = &positions[i]
		case s.lag:
			pair.Lag = &positions[i]
		}
	}
	return PositionView{State: pair.State(), Lead: pair.Lead, Lag: pair.Lag}, nil
}

// Trades returns journaled trade events in the given range.
func (s *Status) Trades(ctx context.Context, from, to time.Time, limit int) ([]models.TradeEvent, error) {
	return s.journal.Trades(ctx, from, to, limit)
}
