package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// Campos por los que se puede ordenar el historial de movimientos.
var MovementSortFields = map[string]bool{
	"id":              true,
	"product_id":      true,
	"warehouse_id":    true,
	"quantity_change": true,
	"quantity_after":  true,
	"order_id":        true,
	"movement_kind":   true,
	"created_at":      true,
}

// MovementFilter filtros, orden y paginación para el historial de movimientos.
// Campos vacíos/nil no filtran.
type MovementFilter struct {
	ProductID   string
	WarehouseID string
	OrderID     string
	Kind        string
	From        *time.Time
	To          *time.Time
	SortField   string // uno de MovementSortFields; por defecto created_at
	SortDesc    bool
	Limit       int
	Offset      int
}

// MovementRepository define el puerto de persistencia para movimientos (solo inserción y lectura).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// List devuelve la página pedida y el total de filas que cumplen el filtro.
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, int, error)
}
