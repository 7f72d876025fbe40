package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter builds a producer for the domain event topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
}

// Envelope is the wire format published for every domain event.
type Envelope struct {
	ID          string          `json:"id"`
	Topic       string          `json:"topic"`
	AggregateID string          `json:"aggregateId"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Payload     json.RawMessage `json:"payload"`
}

// KafkaNotifier publishes events keyed by aggregate so one order's events stay ordered.
type KafkaNotifier struct {
	Writer MessageWriter
}

// Notify implements Notifier.
func (k KafkaNotifier) Notify(ctx context.Context, event dbgen.DomainEvent) error {
	if k.Writer == nil {
		return nil
	}
	occurred := time.Now().UTC()
	if event.OccurredAt.Valid {
		occurred = event.OccurredAt.Time.UTC()
	}
	value, err := json.Marshal(Envelope{
		ID:          fmt.Sprintf("%d", event.ID),
		Topic:       event.Topic,
		AggregateID: fmt.Sprintf("%d", event.AggregateID),
		OccurredAt:  occurred,
		Payload:     json.RawMessage(event.Payload),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%d", event.AggregateID)),
		Value: value,
		Time:  occurred,
		Headers: []kafka.Header{
			{Key: "topic", Value: []byte(event.Topic)},
		},
	}
	if err := k.Writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message to kafka: %w", err)
	}
	return nil
}
