package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// ProductUseCase consultas de productos con su stock por bodega. El stock solo cambia vía ledger.
type ProductUseCase struct {
	repo      repository.ProductRepository
	stockRepo repository.StockRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, stockRepo repository.StockRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, stockRepo: stockRepo}
}

// GetByID obtiene un producto y su stock en cada bodega donde tiene fila.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return uc.withStocks(ctx, product)
}

// List lista productos con paginación, cada uno con su stock por bodega.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		resp, err := uc.withStocks(ctx, p)
		if err != nil {
			return nil, err
		}
		items = append(items, *resp)
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}, nil
}

func (uc *ProductUseCase) withStocks(ctx context.Context, p *entity.Product) (*dto.ProductResponse, error) {
	stocks, err := uc.stockRepo.ListByProduct(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("stocks of product %s: %w", p.ID, err)
	}
	out := &dto.ProductResponse{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		Stocks: make([]dto.ProductStockDTO, 0, len(stocks)),
	}
	for _, s := range stocks {
		out.Stocks = append(out.Stocks, dto.ProductStockDTO{
			WarehouseID:   s.WarehouseID,
			WarehouseName: s.WarehouseName,
			Stock:         s.Quantity,
		})
	}
	return out, nil
}
