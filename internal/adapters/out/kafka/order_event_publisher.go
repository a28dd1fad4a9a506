// Package kafka publishes committed order status changes to a Kafka topic for
// downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"souvlaki/internal/core/domain/model/order"

	"github.com/IBM/sarama"
)

// OrderStatusChangedEvent is the message value. The message key is the order id, so all
// changes of one order land on the same partition in order.
type OrderStatusChangedEvent struct {
	OrderID    int64     `json:"orderId"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurredAt"`
}

// OrderEventPublisher implements ports.EventPublisher with a synchronous producer.
type OrderEventPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewProducerConfig returns the producer settings used in production.
func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Version = sarama.V2_6_0_0
	return config
}

// NewOrderEventPublisher connects to the brokers.
func NewOrderEventPublisher(brokers []string, topic string, logger *slog.Logger) (*OrderEventPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewOrderEventPublisherWithProducer(producer, topic, logger), nil
}

// NewOrderEventPublisherWithProducer wraps an existing producer.
func NewOrderEventPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *OrderEventPublisher {
	return &OrderEventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.With("component", "kafka-publisher"),
	}
}

// Publish sends all events as one batch.
func (p *OrderEventPublisher) Publish(ctx context.Context, events ...order.StatusChanged) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]*sarama.ProducerMessage, 0, len(events))
	for _, e := range events {
		data, err := json.Marshal(OrderStatusChangedEvent{
			OrderID:    e.OrderID.Int64(),
			From:       e.From.String(),
			To:         e.To.String(),
			OccurredAt: e.OccurredAt,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal order event: %w", err)
		}

		messages = append(messages, &sarama.ProducerMessage{
			Topic:     p.topic,
			Key:       sarama.StringEncoder(e.OrderID.String()),
			Value:     sarama.ByteEncoder(data),
			Timestamp: e.OccurredAt,
		})
	}

	if err := p.producer.SendMessages(messages); err != nil {
		return fmt.Errorf("failed to publish %d order events: %w", len(messages), err)
	}

	p.logger.DebugContext(ctx, "order events published", "topic", p.topic, "count", len(messages))
	return nil
}

func (p *OrderEventPublisher) Close() error {
	return p.producer.Close()
}
