// Package kafka publishes order lifecycle events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/glassgo/planning-api/internal/orders/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// EventBus writes order events as JSON messages keyed by order ID, so events
// for the same order land on the same partition in order.
type EventBus struct {
	writer *kafkago.Writer
}

// NewEventBus constructs an EventBus producing to the given topic.
func NewEventBus(brokers []string, topic string) *EventBus {
	return &EventBus{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

type orderCreatedEvent struct {
	EventType   string    `json:"eventType"`
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Timestamp   time.Time `json:"timestamp"`
}

type orderStatusChangedEvent struct {
	EventType string    `json:"eventType"`
	OrderID   int64     `json:"orderId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (b *EventBus) PublishOrderCreated(ctx context.Context, orderID int64, orderNumber string) error {
	return b.publish(ctx, orderID, orderCreatedEvent{
		EventType:   "order.created",
		OrderID:     orderID,
		OrderNumber: orderNumber,
		Timestamp:   time.Now().UTC(),
	})
}

func (b *EventBus) PublishOrderStatusChanged(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	return b.publish(ctx, orderID, orderStatusChangedEvent{
		EventType: "order.status_changed",
		OrderID:   orderID,
		Status:    string(status),
		Timestamp: time.Now().UTC(),
	})
}

func (b *EventBus) publish(ctx context.Context, orderID int64, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(strconv.FormatInt(orderID, 10)),
		Value: payload,
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (b *EventBus) Close() error {
	return b.writer.Close()
}
