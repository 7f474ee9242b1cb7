package inventory

import (
	"context"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// ReceiveStockUseCase registra entradas de mercancía (sin pedido) a través del ledger.
type ReceiveStockUseCase struct {
	ledger        *StockLedger
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewReceiveStockUseCase construye el caso de uso.
func NewReceiveStockUseCase(
	ledger *StockLedger,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *ReceiveStockUseCase {
	return &ReceiveStockUseCase{ledger: ledger, productRepo: productRepo, warehouseRepo: warehouseRepo}
}

// ReceiveStock valida bodega y productos y acredita las cantidades (kind stock_received).
func (uc *ReceiveStockUseCase) ReceiveStock(ctx context.Context, in dto.ReceiveStockRequest) error {
	if in.WarehouseID == "" || len(in.Items) == 0 {
		return domain.ErrInvalidInput
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.ErrNotFound
	}
	items := make([]entity.ItemCount, 0, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID == "" || it.Count <= 0 {
			return domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		items = append(items, entity.ItemCount{ProductID: it.ProductID, Count: it.Count})
	}
	return uc.ledger.Credit(ctx, in.WarehouseID, items, nil, entity.MovementKindStockReceived)
}
