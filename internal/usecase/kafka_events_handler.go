package usecase

import (
	"context"
	"encoding/json"
	"time"

	"PairPull/internal/domain/models"
	drepo "PairPull/internal/domain/repository"
	pkgkafka "PairPull/pkg/kafka"
)

// KafkaTradesHandler consumes trade events and writes them to ClickHouse.
type KafkaTradesHandler struct {
	topic   string
	store   drepo.Journal
	metrics drepo.Metrics
}

func NewKafkaTradesHandler(topic string, store drepo.Journal, metrics drepo.Metrics) *KafkaTradesHandler {
	return &KafkaTradesHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaTradesHandler) Topic() string { return h.topic }

func (h *KafkaTradesHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.TradeEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	start := time.Now()
	if err := h.store.RecordTrade(ctx, ev); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordLatency("ch_insert", time.Since(start).Seconds())
	return nil
}

// KafkaActionsHandler consumes system-action entries and writes them to
// ClickHouse.
type KafkaActionsHandler struct {
	topic   string
	store   drepo.Journal
	metrics drepo.Metrics
}

func NewKafkaActionsHandler(topic string, store drepo.Journal, metrics drepo.Metrics) *KafkaActionsHandler {
	return &KafkaActionsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaActionsHandler) Topic() string { return h.topic }

func (h *KafkaActionsHandler) Handle(ctx context.Context, b []byte) error {
	var a models.ActionEntry
	if err := json.Unmarshal(b, &a); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	start := time.Now()
	if err := h.store.RecordAction(ctx, a); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordLatency("ch_insert", time.Since(start).Seconds())
	return nil
}

var (
	_ pkgkafka.MessageHandler = (*KafkaTradesHandler)(nil)
	_ pkgkafka.MessageHandler = (*KafkaActionsHandler)(nil)
)
