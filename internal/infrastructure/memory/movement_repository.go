package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// MovementRepository implementa repository.MovementRepository (solo inserción).
type MovementRepository struct {
	store *Store
	tx    *tx
}

// NewMovementRepository repositorio fuera de transacción.
func NewMovementRepository(store *Store) *MovementRepository {
	return &MovementRepository{store: store}
}

var _ repository.MovementRepository = (*MovementRepository)(nil)

// Create agrega un movimiento.
func (r *MovementRepository) Create(ctx context.Context, m *entity.Movement) error {
	return r.store.within(ctx, r.tx, func(t *tx) error {
		t.movements = append(t.movements, *m)
		return nil
	})
}

// List filtra, ordena y pagina. Limit <= 0 devuelve todas las filas.
func (r *MovementRepository) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	r.store.mu.RLock()
	all := append([]entity.Movement(nil), r.store.movements...)
	r.store.mu.RUnlock()
	if r.tx != nil {
		all = append(all, r.tx.movements...)
	}

	matched := make([]*entity.Movement, 0, len(all))
	for i := range all {
		m := &all[i]
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
			continue
		}
		if f.OrderID != "" && (m.OrderID == nil || *m.OrderID != f.OrderID) {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		matched = append(matched, m)
	}

	field := f.SortField
	if field == "" {
		field = "created_at"
	}
	slices.SortStableFunc(matched, func(a, b *entity.Movement) int {
		c := compareMovements(field, a, b)
		if f.SortDesc {
			return -c
		}
		return c
	})
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}

func compareMovements(field string, a, b *entity.Movement) int {
	switch field {
	case "id":
		return strings.Compare(a.ID, b.ID)
	case "product_id":
		return strings.Compare(a.ProductID, b.ProductID)
	case "warehouse_id":
		return strings.Compare(a.WarehouseID, b.WarehouseID)
	case "quantity_change":
		return cmp.Compare(a.QuantityChange, b.QuantityChange)
	case "quantity_after":
		return cmp.Compare(a.QuantityAfter, b.QuantityAfter)
	case "order_id":
		return strings.Compare(deref(a.OrderID), deref(b.OrderID))
	case "movement_kind":
		return strings.Compare(a.Kind, b.Kind)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
