package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// OrderRepository implementa repository.OrderRepository.
type OrderRepository struct {
	store *Store
	tx    *tx
}

// NewOrderRepository repositorio fuera de transacción.
func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) lookup(id string) *entity.Order {
	if r.tx != nil {
		return r.tx.order(id)
	}
	return r.store.committedOrder(id)
}

// Create persiste el pedido con sus líneas.
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.store.within(ctx, r.tx, func(t *tx) error {
		if err := t.lock(ctx, orderLockKey(order.ID)); err != nil {
			return err
		}
		if t.order(order.ID) != nil {
			return fmt.Errorf("create order %s: %w", order.ID, domain.ErrConflict)
		}
		t.orders[order.ID] = cloneOrder(order)
		return nil
	})
}

// GetByID obtiene el pedido con sus líneas. nil si no existe.
func (r *OrderRepository) GetByID(_ context.Context, id string) (*entity.Order, error) {
	return r.lookup(id), nil
}

// GetForUpdate bloquea el pedido hasta el fin de la tx.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	if r.tx == nil {
		return nil, errNoTx
	}
	if err := r.tx.lock(ctx, orderLockKey(id)); err != nil {
		return nil, err
	}
	return r.tx.order(id), nil
}

// Update actualiza customer, status y completed_at.
func (r *OrderRepository) Update(ctx context.Context, order *entity.Order) error {
	return r.store.within(ctx, r.tx, func(t *tx) error {
		if err := t.lock(ctx, orderLockKey(order.ID)); err != nil {
			return err
		}
		current := t.order(order.ID)
		if current == nil {
			return fmt.Errorf("update order %s: %w", order.ID, domain.ErrNotFound)
		}
		current.Customer = order.Customer
		current.Status = order.Status
		current.CompletedAt = order.CompletedAt
		t.orders[order.ID] = cloneOrder(current)
		return nil
	})
}

// ReplaceItems reemplaza las líneas del pedido.
func (r *OrderRepository) ReplaceItems(ctx context.Context, orderID string, items []entity.OrderItem) error {
	return r.store.within(ctx, r.tx, func(t *tx) error {
		if err := t.lock(ctx, orderLockKey(orderID)); err != nil {
			return err
		}
		current := t.order(orderID)
		if current == nil {
			return fmt.Errorf("replace items of order %s: %w", orderID, domain.ErrNotFound)
		}
		current.Items = append([]entity.OrderItem(nil), items...)
		t.orders[orderID] = current
		return nil
	})
}

// List filtra y pagina, más recientes primero. customer compara con case folding Unicode, como ILIKE.
func (r *OrderRepository) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	r.store.mu.RLock()
	all := make(map[string]*entity.Order, len(r.store.orders))
	for id, o := range r.store.orders {
		all[id] = cloneOrder(o)
	}
	r.store.mu.RUnlock()
	if r.tx != nil {
		for id, o := range r.tx.orders {
			all[id] = cloneOrder(o)
		}
	}

	fold := cases.Fold()
	customer := fold.String(f.Customer)
	matched := make([]*entity.Order, 0, len(all))
	for _, o := range all {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if customer != "" && !strings.Contains(fold.String(o.Customer), customer) {
			continue
		}
		if f.WarehouseID != "" && o.WarehouseID != f.WarehouseID {
			continue
		}
		if f.CreatedFrom != nil && o.CreatedAt.Before(*f.CreatedFrom) {
			continue
		}
		if f.CreatedTo != nil && o.CreatedAt.After(*f.CreatedTo) {
			continue
		}
		matched = append(matched, o)
	}
	slices.SortFunc(matched, func(a, b *entity.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}
