package models

import "time"

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// PairState classifies the broker-reported state of the pair position.
type PairState string

const (
	StateFlat         PairState = "flat"
	StateOpen         PairState = "open"
	StateInconsistent PairState = "inconsistent" // exactly one leg present
)

// OrderRequest is a market, good-till-cancelled order for one leg.
type OrderRequest struct {
	Symbol      string `json:"symbol"`
	Side        Side   `json:"side"`
	Qty         int64  `json:"qty,string"`
	Type        string `json:"type"`
	TimeInForce string `json:"time_in_force"`
}

// OrderResult is the broker's acknowledgement of a submitted order.
// Acceptance is not a fill confirmation.
type OrderResult struct {
	ID     string
	Symbol string
	Status string
}

// Position is one broker-reported open leg.
type Position struct {
	Symbol       string
	Qty          int64
	Side         Side
	UnrealizedPL float64
	OpenedAt     time.Time // zero when the broker cannot supply it
}

// PairPosition pairs the broker-reported legs for the configured instruments.
type PairPosition struct {
	Lead *Position
	Lag  *Position
}

// State returns the lifecycle state implied by the reported legs.
func (p PairPosition) State() PairState {
	switch {
	case p.Lead != nil && p.Lag != nil:
		return StateOpen
	case p.Lead == nil && p.Lag == nil:
		return StateFlat
	default:
		return StateInconsistent
	}
}

// SizingDecision is the leverage-bounded share count for both legs.
type SizingDecision struct {
	Scale   float64
	QtyLead int64
	QtyLag  int64
}

// Actionable reports whether the sizing can be turned into orders.
// A zero quantity on either leg is valid but must never reach the broker.
func (s SizingDecision) Actionable() bool {
	return s.QtyLead > 0 && s.QtyLag > 0
}

// EventKind is the trade journal entry type.
type EventKind string

const (
	EventOpen  EventKind = "open"
	EventClose EventKind = "close"
)

// TradeEvent is one append-only trade journal entry. Events are never
// mutated or deleted after being recorded.
type TradeEvent struct {
	Timestamp time.Time `json:"ts"`
	Kind      EventKind `json:"kind"`
	QtyLead   int64     `json:"qty_lead"`
	QtyLag    int64     `json:"qty_lag"`
	PriceLead float64   `json:"price_lead"`
	PriceLag  float64   `json:"price_lag"`
}

// ActionEntry is one system/action log entry, kept separate from the
// trade journal.
type ActionEntry struct {
	Timestamp time.Time `json:"ts"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}
