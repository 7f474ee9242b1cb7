package repository

import (
	"context"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// WarehouseStock stock de un producto en una bodega, con el nombre de la bodega (para consultas de catálogo).
type WarehouseStock struct {
	WarehouseID   string
	WarehouseName string
	Quantity      int
}

// StockRepository define el puerto para consultar/actualizar stock por bodega+producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get lee sin bloqueo. Devuelve nil si la fila no existe.
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE). nil si no existe.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// Materialize crea la fila con cantidad 0 si no existe; no toca filas existentes.
	Materialize(ctx context.Context, productID, warehouseID string) error
	// Upsert escribe la cantidad de la fila.
	Upsert(ctx context.Context, stock *entity.Stock) error
	ListByProduct(ctx context.Context, productID string) ([]WarehouseStock, error)
}
