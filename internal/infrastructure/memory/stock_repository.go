package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

var errNoTx = errors.New("memory: lock requires a transaction")

// StockRepository implementa repository.StockRepository.
type StockRepository struct {
	store *Store
	tx    *tx
}

// NewStockRepository repositorio fuera de transacción (lecturas de estado confirmado).
func NewStockRepository(store *Store) *StockRepository {
	return &StockRepository{store: store}
}

var _ repository.StockRepository = (*StockRepository)(nil)

func (r *StockRepository) lookup(key entity.StockKey) (entity.Stock, bool) {
	if r.tx != nil {
		return r.tx.stock(key)
	}
	return r.store.committedStock(key)
}

// Get lee sin bloqueo.
func (r *StockRepository) Get(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	st, ok := r.lookup(entity.StockKey{ProductID: productID, WarehouseID: warehouseID})
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// GetForUpdate bloquea la fila hasta el fin de la tx; espera mientras otra tx la tenga.
func (r *StockRepository) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	if r.tx == nil {
		return nil, errNoTx
	}
	key := entity.StockKey{ProductID: productID, WarehouseID: warehouseID}
	if err := r.tx.lock(ctx, stockLockKey(key)); err != nil {
		return nil, err
	}
	st, ok := r.tx.stock(key)
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// Materialize crea la fila en 0 si no existe. Toma el bloqueo de la fila, como un INSERT.
func (r *StockRepository) Materialize(ctx context.Context, productID, warehouseID string) error {
	return r.store.within(ctx, r.tx, func(t *tx) error {
		key := entity.StockKey{ProductID: productID, WarehouseID: warehouseID}
		if err := t.lock(ctx, stockLockKey(key)); err != nil {
			return err
		}
		if _, ok := t.stock(key); !ok {
			t.stocks[key] = entity.Stock{ProductID: productID, WarehouseID: warehouseID, UpdatedAt: time.Now()}
		}
		return nil
	})
}

// Upsert escribe la cantidad de la fila.
func (r *StockRepository) Upsert(ctx context.Context, stock *entity.Stock) error {
	return r.store.within(ctx, r.tx, func(t *tx) error {
		key := stock.Key()
		if err := t.lock(ctx, stockLockKey(key)); err != nil {
			return err
		}
		t.stocks[key] = *stock
		return nil
	})
}

// ListByProduct stock del producto por bodega, ordenado por nombre de bodega.
func (r *StockRepository) ListByProduct(_ context.Context, productID string) ([]repository.WarehouseStock, error) {
	r.store.mu.RLock()
	rows := make(map[entity.StockKey]entity.Stock)
	for k, v := range r.store.stocks {
		if k.ProductID == productID {
			rows[k] = v
		}
	}
	names := make(map[string]string, len(r.store.warehouses))
	for id, w := range r.store.warehouses {
		names[id] = w.Name
	}
	r.store.mu.RUnlock()
	if r.tx != nil {
		for k, v := range r.tx.stocks {
			if k.ProductID == productID {
				rows[k] = v
			}
		}
	}

	out := make([]repository.WarehouseStock, 0, len(rows))
	for k, v := range rows {
		out = append(out, repository.WarehouseStock{
			WarehouseID:   k.WarehouseID,
			WarehouseName: names[k.WarehouseID],
			Quantity:      v.Quantity,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WarehouseName != out[j].WarehouseName {
			return out[i].WarehouseName < out[j].WarehouseName
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, nil
}
