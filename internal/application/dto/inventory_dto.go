package dto

import "time"

// ReceiveStockRequest body para POST /api/stock/receipts.
type ReceiveStockRequest struct {
	WarehouseID string         `json:"warehouse_id" validate:"required"`
	Items       []OrderItemDTO `json:"items" validate:"required,min=1,dive"`
}

// MovementListRequest filtros de GET /api/movements (query string).
type MovementListRequest struct {
	ProductID     string     `query:"product_id"`
	WarehouseID   string     `query:"warehouse_id"`
	OrderID       string     `query:"order_id"`
	MovementKind  string     `query:"movement_kind"`
	DateFrom      *time.Time `query:"-"`
	DateTo        *time.Time `query:"-"`
	SortField     string     `query:"sort_field"`
	SortDirection string     `query:"sort_direction" validate:"omitempty,oneof=asc desc"`
	PageRequest
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	WarehouseID    string    `json:"warehouse_id"`
	QuantityChange int       `json:"quantity_change"`
	QuantityAfter  int       `json:"quantity_after"`
	OrderID        *string   `json:"order_id"`
	MovementKind   string    `json:"movement_kind"`
	CreatedAt      time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
