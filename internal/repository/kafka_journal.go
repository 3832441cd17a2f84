package repository

import (
	"context"
	"fmt"

	"PairPull/internal/domain/models"
	domrepo "PairPull/internal/domain/repository"
	pkgkafka "PairPull/pkg/kafka"
)

// KafkaPublisher appends journal entries to Kafka topics; a consumer
// ingests them into ClickHouse so reads stay queryable either way.
type KafkaPublisher struct {
	producer     *pkgkafka.Producer
	tradesTopic  string
	actionsTopic string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, tradesTopic, actionsTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, tradesTopic: tradesTopic, actionsTopic: actionsTopic}
}

func (p *KafkaPublisher) PublishTrade(ctx context.Context, ev models.TradeEvent) error {
	if err := p.producer.Publish(ctx, p.tradesTopic, []byte(ev.Kind), ev); err != nil {
		return fmt.Errorf("publish trade event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) PublishAction(ctx context.Context, a models.ActionEntry) error {
	if err := p.producer.Publish(ctx, p.actionsTopic, []byte(a.Action), a); err != nil {
		return fmt.Errorf("publish action: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.EventPublisher = (*KafkaPublisher)(nil)
