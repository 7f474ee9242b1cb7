// Package memory implementa los puertos de persistencia sobre un almacén en memoria con
// bloqueos por fila y transacciones con commit/rollback. Lo usan los tests y STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// Store estado confirmado. Las escrituras se preparan en un tx y se publican en commit.
type Store struct {
	mu         sync.RWMutex
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	stocks     map[entity.StockKey]entity.Stock
	orders     map[string]*entity.Order
	movements  []entity.Movement

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]entity.Product),
		warehouses: make(map[string]entity.Warehouse),
		stocks:     make(map[entity.StockKey]entity.Stock),
		orders:     make(map[string]*entity.Order),
		locks:      make(map[string]chan struct{}),
	}
}

// AddWarehouse registra una bodega.
func (s *Store) AddWarehouse(w entity.Warehouse) {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.ID] = w
}

// AddProduct registra un producto.
func (s *Store) AddProduct(p entity.Product) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// SetStock fija la cantidad de una fila sin escribir movimiento (carga inicial).
func (s *Store) SetStock(productID, warehouseID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entity.StockKey{ProductID: productID, WarehouseID: warehouseID}
	s.stocks[key] = entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: quantity, UpdatedAt: time.Now()}
}

func (s *Store) rowLock(key string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

func (s *Store) begin() *tx {
	return &tx{
		store:  s,
		held:   make(map[string]chan struct{}),
		stocks: make(map[entity.StockKey]entity.Stock),
		orders: make(map[string]*entity.Order),
	}
}

// within ejecuta fn en t o, si t es nil, en una transacción de una sola sentencia.
func (s *Store) within(ctx context.Context, t *tx, fn func(t *tx) error) error {
	if t != nil {
		return fn(t)
	}
	auto := s.begin()
	defer auto.rollback()
	if err := fn(auto); err != nil {
		return err
	}
	auto.commit()
	return nil
}

func (s *Store) committedStock(key entity.StockKey) (entity.Stock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stocks[key]
	return st, ok
}

func (s *Store) committedOrder(id string) *entity.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrder(s.orders[id])
}

// tx transacción: escrituras preparadas más los bloqueos de fila que posee hasta commit/rollback.
// Los bloqueos son reentrantes dentro de la misma tx.
type tx struct {
	store     *Store
	held      map[string]chan struct{}
	stocks    map[entity.StockKey]entity.Stock
	orders    map[string]*entity.Order
	movements []entity.Movement
	done      bool
}

func (t *tx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	ch := t.store.rowLock(key)
	select {
	case ch <- struct{}{}:
		t.held[key] = ch
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *tx) stock(key entity.StockKey) (entity.Stock, bool) {
	if st, ok := t.stocks[key]; ok {
		return st, true
	}
	return t.store.committedStock(key)
}

func (t *tx) order(id string) *entity.Order {
	if o, ok := t.orders[id]; ok {
		return cloneOrder(o)
	}
	return t.store.committedOrder(id)
}

func (t *tx) commit() {
	if t.done {
		return
	}
	s := t.store
	s.mu.Lock()
	for k, v := range t.stocks {
		s.stocks[k] = v
	}
	for id, o := range t.orders {
		s.orders[id] = o
	}
	s.movements = append(s.movements, t.movements...)
	s.mu.Unlock()
	t.release()
}

func (t *tx) rollback() {
	if t.done {
		return
	}
	t.release()
}

func (t *tx) release() {
	t.done = true
	for _, ch := range t.held {
		<-ch
	}
	t.held = nil
}

func stockLockKey(key entity.StockKey) string {
	return "stock:" + key.WarehouseID + "/" + key.ProductID
}

func orderLockKey(id string) string {
	return "order:" + id
}

func cloneOrder(o *entity.Order) *entity.Order {
	if o == nil {
		return nil
	}
	c := *o
	if o.CompletedAt != nil {
		completedAt := *o.CompletedAt
		c.CompletedAt = &completedAt
	}
	c.Items = append([]entity.OrderItem(nil), o.Items...)
	return &c
}
