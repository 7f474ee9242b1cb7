package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// OrderFilter filtros del listado de pedidos.
type OrderFilter struct {
	Status      string
	Customer    string // coincidencia parcial, sin distinguir mayúsculas
	WarehouseID string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// OrderRepository define el puerto de persistencia para pedidos y sus líneas.
type OrderRepository interface {
	// Create persiste el pedido y sus líneas.
	Create(ctx context.Context, order *entity.Order) error
	// GetByID obtiene el pedido con sus líneas. nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate como GetByID pero bloquea la fila del pedido hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// Update actualiza customer, status y completed_at.
	Update(ctx context.Context, order *entity.Order) error
	// ReplaceItems borra las líneas actuales y crea las nuevas.
	ReplaceItems(ctx context.Context, orderID string, items []entity.OrderItem) error
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int, error)
}
