package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/stock-orders-api/internal/application/orders"
)

// Channel la parte de *amqp.Channel que usa el publisher.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

var _ orders.EventPublisher = (*Publisher)(nil)

// Publisher implementa orders.EventPublisher sobre RabbitMQ.
type Publisher struct {
	ch       Channel
	exchange string
}

// NewPublisher crea el publisher sobre un canal ya configurado con SetupConn.
func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// RoutingKey orders.<tipo> (ej. orders.created).
func RoutingKey(eventType string) string {
	return "orders." + eventType
}

// Publish serializa el evento en JSON y lo publica como mensaje persistente.
func (p *Publisher) Publish(ctx context.Context, event orders.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal order event: %w", err)
	}
	err = p.ch.PublishWithContext(ctx,
		p.exchange,             // exchange
		RoutingKey(event.Type), // routing key
		false,                  // mandatory
		false,                  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.OrderID + ":" + event.Type + ":" + event.OccurredAt.UTC().Format("20060102T150405.000000000"),
			Timestamp:    event.OccurredAt,
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish order event %s: %w", event.Type, err)
	}
	return nil
}
