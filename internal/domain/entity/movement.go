package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementKindOrderCreated  = "order_created"
	MovementKindOrderUpdated  = "order_updated"
	MovementKindOrderCanceled = "order_canceled"
	MovementKindOrderResumed  = "order_resumed"
	MovementKindStockReceived = "stock_received" // recepción manual, sin pedido
)

// IsValidMovementKind indica si kind es uno de los tipos conocidos.
func IsValidMovementKind(kind string) bool {
	switch kind {
	case MovementKindOrderCreated, MovementKindOrderUpdated, MovementKindOrderCanceled,
		MovementKindOrderResumed, MovementKindStockReceived:
		return true
	}
	return false
}

// Movement registro inmutable de un cambio de stock. Se crea una vez por mutación y nunca se edita.
type Movement struct {
	ID             string
	ProductID      string
	WarehouseID    string
	QuantityChange int     // con signo: negativo salida, positivo entrada
	QuantityAfter  int     // cantidad absoluta resultante
	OrderID        *string // nil si el movimiento no proviene de un pedido
	Kind           string
	CreatedAt      time.Time
}
