package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PairPull/internal/domain/models"
	domrepo "PairPull/internal/domain/repository"
	pkgch "PairPull/pkg/clickhouse"
	applogger "PairPull/pkg/logger"
)

// Journal table DDL, applied idempotently at startup.
var JournalSchema = []string{
	`CREATE DATABASE IF NOT EXISTS pairpull`,
	`CREATE TABLE IF NOT EXISTS pairpull.trade_events (
        ts DateTime,
        kind String,
        qty_lead Int64,
        qty_lag Int64,
        price_lead Float64,
        price_lag Float64
    ) ENGINE=MergeTree ORDER BY ts`,
	`CREATE TABLE IF NOT EXISTS pairpull.actions (
        ts DateTime,
        action String,
        details String
    ) ENGINE=MergeTree ORDER BY ts`,
}

// CHJournal implements the append-only Journal backed by ClickHouse.
type CHJournal struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHJournal(ch *pkgch.Client) *CHJournal {
	return &CHJournal{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (j *CHJournal) SetLogger(l *applogger.Logger) { j.l = l }

func (j *CHJournal) RecordTrade(ctx context.Context, ev models.TradeEvent) error {
	const q = `INSERT INTO pairpull.trade_events (ts, kind, qty_lead, qty_lag, price_lead, price_lag) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := j.db.ExecContext(ctx, q, ev.Timestamp, string(ev.Kind), ev.QtyLead, ev.QtyLag, ev.PriceLead, ev.PriceLag)
	if err != nil {
		if j.l != nil {
			j.l.Error("clickhouse trade insert error", applogger.Error(err))
		}
		return fmt.Errorf("insert trade event: %w", err)
	}
	return nil
}

func (j *CHJournal) RecordAction(ctx context.Context, a models.ActionEntry) error {
	const q = `INSERT INTO pairpull.actions (ts, action, details) VALUES (?, ?, ?)`
	_, err := j.db.ExecContext(ctx, q, a.Timestamp, a.Action, a.Details)
	if err != nil {
		if j.l != nil {
			j.l.Error("clickhouse action insert error", applogger.Error(err))
		}
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

func (j *CHJournal) Trades(ctx context.Context, from, to time.Time, limit int) ([]models.TradeEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
        SELECT ts, kind, qty_lead, qty_lag, price_lead, price_lag
        FROM pairpull.trade_events
        WHERE ts >= ? AND ts <= ?
        ORDER BY ts ASC
        LIMIT ?`
	rows, err := j.db.QueryContext(ctx, q, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	out := make([]models.TradeEvent, 0, limit)
	for rows.Next() {
		var ev models.TradeEvent
		var kind string
		if err := rows.Scan(&ev.Timestamp, &kind, &ev.QtyLead, &ev.QtyLag, &ev.PriceLead, &ev.PriceLag); err != nil {
			return nil, fmt.Errorf("scan trade event: %w", err)
		}
		ev.Kind = models.EventKind(kind)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (j *CHJournal) LastOpen(ctx context.Context) (models.TradeEvent, bool, error) {
	const q = `
        SELECT ts, kind, qty_lead, qty_lag, price_lead, price_lag
        FROM pairpull.trade_events
        WHERE kind = 'open'
        ORDER BY ts DESC
        LIMIT 1`
	var ev models.TradeEvent
	var kind string
	err := j.db.QueryRowContext(ctx, q).Scan(&ev.Timestamp, &kind, &ev.QtyLead, &ev.QtyLag, &ev.PriceLead, &ev.PriceLag)
	if err == sql.ErrNoRows {
		return models.TradeEvent{}, false, nil
	}
	if err != nil {
		return models.TradeEvent{}, false, fmt.Errorf("query last open: %w", err)
	}
	ev.Kind = models.EventKind(kind)
	return ev, true, nil
}

// Close is a no-op; the underlying pool is owned by the clickhouse client.
func (j *CHJournal) Close() error { return nil }

var _ domrepo.Journal = (*CHJournal)(nil)
