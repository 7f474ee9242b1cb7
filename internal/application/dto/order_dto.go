package dto

import "time"

// OrderItemDTO línea de pedido en requests y responses.
type OrderItemDTO struct {
	ProductID string `json:"product_id" validate:"required"`
	Count     int    `json:"count" validate:"required,min=1,max=2147483647"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	Customer    string         `json:"customer" validate:"required,max=255"`
	WarehouseID string         `json:"warehouse_id" validate:"required"`
	Items       []OrderItemDTO `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest body para PUT /api/orders/:id. Customer vacío conserva el actual.
type UpdateOrderRequest struct {
	Customer *string        `json:"customer" validate:"omitempty,min=1,max=255"`
	Items    []OrderItemDTO `json:"items" validate:"required,min=1,dive"`
}

// OrderListRequest filtros de GET /api/orders.
type OrderListRequest struct {
	Status      string     `query:"status" validate:"omitempty,oneof=active completed canceled"`
	Customer    string     `query:"customer"`
	WarehouseID string     `query:"warehouse_id"`
	CreatedFrom *time.Time `query:"-"`
	CreatedTo   *time.Time `query:"-"`
	PageRequest
}

// OrderResponse salida de un pedido con sus líneas.
type OrderResponse struct {
	ID          string         `json:"id"`
	Customer    string         `json:"customer"`
	WarehouseID string         `json:"warehouse_id"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	Items       []OrderItemDTO `json:"items"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
