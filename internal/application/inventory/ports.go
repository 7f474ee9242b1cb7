package inventory

import (
	"context"

	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn retorna nil; Rollback en cualquier otro caso (incluida la cancelación de ctx).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
