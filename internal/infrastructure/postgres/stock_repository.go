package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una bodega. nil si no hay fila.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stocks WHERE product_id = $1 AND warehouse_id = $2`
	return r.scanOne(ctx, "get stock", query, productID, warehouseID)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stocks WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	return r.scanOne(ctx, "get stock for update", query, productID, warehouseID)
}

// Materialize inserta la fila en 0 si no existe. Un INSERT concurrente de la misma fila espera
// al commit/rollback del primero, así que después se puede bloquear con GetForUpdate.
func (r *StockRepo) Materialize(ctx context.Context, productID, warehouseID string) error {
	query := `
		INSERT INTO stocks (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, productID, warehouseID); err != nil {
		return fmt.Errorf("materialize stock: %w", err)
	}
	return nil
}

// Upsert inserta o actualiza la cantidad en stock (por producto y bodega).
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	query := `
		INSERT INTO stocks (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, stock.ProductID, stock.WarehouseID, stock.Quantity, stock.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByProduct stock del producto en cada bodega con fila, con el nombre de la bodega.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]repository.WarehouseStock, error) {
	query := `
		SELECT s.warehouse_id, w.name, s.quantity
		FROM stocks s
		JOIN warehouses w ON w.id = s.warehouse_id
		WHERE s.product_id = $1
		ORDER BY w.name, s.warehouse_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock by product: %w", err)
	}
	defer rows.Close()
	var list []repository.WarehouseStock
	for rows.Next() {
		var ws repository.WarehouseStock
		if err := rows.Scan(&ws.WarehouseID, &ws.WarehouseName, &ws.Quantity); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, ws)
	}
	return list, rows.Err()
}

func (r *StockRepo) scanOne(ctx context.Context, op, query string, args ...any) (*entity.Stock, error) {
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, args...).Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}
