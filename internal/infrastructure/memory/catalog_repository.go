package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// ProductRepository implementa repository.ProductRepository.
type ProductRepository struct {
	store *Store
}

// NewProductRepository crea el repositorio.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// GetByID nil si no existe.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// List ordenados por nombre.
func (r *ProductRepository) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.store.mu.RLock()
	out := make([]*entity.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		p := p
		out = append(out, &p)
	}
	r.store.mu.RUnlock()
	slices.SortFunc(out, func(a, b *entity.Product) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(out, limit, offset), nil
}

// WarehouseRepository implementa repository.WarehouseRepository.
type WarehouseRepository struct {
	store *Store
}

// NewWarehouseRepository crea el repositorio.
func NewWarehouseRepository(store *Store) *WarehouseRepository {
	return &WarehouseRepository{store: store}
}

var _ repository.WarehouseRepository = (*WarehouseRepository)(nil)

// GetByID nil si no existe.
func (r *WarehouseRepository) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	w, ok := r.store.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

// List ordenadas por nombre.
func (r *WarehouseRepository) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	r.store.mu.RLock()
	out := make([]*entity.Warehouse, 0, len(r.store.warehouses))
	for _, w := range r.store.warehouses {
		w := w
		out = append(out, &w)
	}
	r.store.mu.RUnlock()
	slices.SortFunc(out, func(a, b *entity.Warehouse) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(out, limit, offset), nil
}
