package orders

import (
	"context"
	"time"
)

// Tipos de evento publicados tras confirmar una transición.
const (
	EventOrderCreated   = "created"
	EventOrderUpdated   = "updated"
	EventOrderCompleted = "completed"
	EventOrderCanceled  = "canceled"
	EventOrderResumed   = "resumed"
)

// EventItem línea del pedido dentro de un evento.
type EventItem struct {
	ProductID string `json:"product_id"`
	Count     int    `json:"count"`
}

// OrderEvent evento de dominio de una transición ya confirmada.
type OrderEvent struct {
	Type        string      `json:"type"`
	OrderID     string      `json:"order_id"`
	WarehouseID string      `json:"warehouse_id"`
	Status      string      `json:"status"`
	Items       []EventItem `json:"items"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// EventPublisher publica eventos de pedido. Se invoca después del commit: un error
// de publicación no deshace la transición.
type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// NopPublisher descarta los eventos (sin broker configurado).
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
