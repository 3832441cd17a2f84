package usecase

import (
	"context"

	"PairPull/internal/domain/models"
	drepo "PairPull/internal/domain/repository"
)

// QuoteMonitor feeds live quote ticks into the last-price gauges. It is a
// pure observability sidecar; the trading cycle only ever uses daily bars.
type QuoteMonitor struct {
	stream  drepo.QuoteStream
	metrics drepo.Metrics
}

func NewQuoteMonitor(stream drepo.QuoteStream, metrics drepo.Metrics) *QuoteMonitor {
	return &QuoteMonitor{stream: stream, metrics: metrics}
}

// IsConnected returns true if the quote stream is connected.
func (m *QuoteMonitor) IsConnected() bool {
	return m.stream.IsConnected()
}

func (m *QuoteMonitor) Start(ctx context.Context) error {
	if err := m.stream.Connect(ctx); err != nil {
		return err
	}
	if err := m.stream.Subscribe(ctx); err != nil {
		return err
	}
	qCh, errCh := m.stream.Read(ctx)
	go m.consume(ctx, qCh, errCh)
	return nil
}

func (m *QuoteMonitor) consume(ctx context.Context, qCh <-chan *models.Quote, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				m.metrics.RecordError("stream")
				_ = m.stream.Reconnect(ctx)
			}
		case q := <-qCh:
			if q == nil {
				continue
			}
			m.metrics.RecordLastPrice(q.Symbol, q.Price)
		}
	}
}

func (m *QuoteMonitor) Stop() error { return m.stream.Close() }
