package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher forwards fulfillment events to a Kafka topic for external
// consumers (dashboards, alerting). Writes are keyed by order id so one
// order's events land on one partition in order.
type Publisher struct {
	w *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  5,
			WriteTimeout: 5 * time.Second,
			ReadTimeout:  5 * time.Second,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *Publisher) Close() error { return p.w.Close() }

// Notify publishes the event, logging failures instead of surfacing them:
// a broken broker must not block fulfillment transitions.
func (p *Publisher) Notify(event Event) {
	b, err := json.Marshal(event)
	if err != nil {
		log.Printf("publisher marshal event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.OrderID)),
		Value: b,
	})
	if err != nil {
		log.Printf("publisher write event %s order=%d: %v", event.Type, event.OrderID, err)
	}
}
