package entity

import "time"

// Stock representa la cantidad de un producto en una bodega (una fila por par producto+bodega).
// Quantity nunca es negativa: el débito se rechaza antes de cruzar cero.
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    int
	UpdatedAt   time.Time
}

// StockKey clave compuesta de una fila de stock.
type StockKey struct {
	ProductID   string
	WarehouseID string
}

// Key devuelve la clave compuesta de la fila.
func (s Stock) Key() StockKey {
	return StockKey{ProductID: s.ProductID, WarehouseID: s.WarehouseID}
}
