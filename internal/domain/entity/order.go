package entity

import "time"

// Estados del pedido. completed es terminal; canceled puede volver a active (resume).
const (
	OrderStatusActive    = "active"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
)

// Order pedido de un cliente contra una bodega fija.
type Order struct {
	ID          string
	Customer    string
	WarehouseID string
	Status      string
	CreatedAt   time.Time
	CompletedAt *time.Time
	Items       []OrderItem
}

// OrderItem línea del pedido. El conjunto se reemplaza completo al actualizar.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Count     int
}

// ItemCount par producto/cantidad que consume el ledger.
type ItemCount struct {
	ProductID string
	Count     int
}

// ItemCounts proyecta las líneas del pedido a pares producto/cantidad.
func (o *Order) ItemCounts() []ItemCount {
	out := make([]ItemCount, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, ItemCount{ProductID: it.ProductID, Count: it.Count})
	}
	return out
}

// IsActive indica si el pedido admite update/complete/cancel.
func (o *Order) IsActive() bool { return o.Status == OrderStatusActive }

// IsCanceled indica si el pedido admite resume.
func (o *Order) IsCanceled() bool { return o.Status == OrderStatusCanceled }
