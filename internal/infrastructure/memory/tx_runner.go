package memory

import (
	"context"

	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// TxRunner implementa inventory.TxRunner sobre el Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner crea el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repositorios atados a una tx. Commit si fn y ctx terminan sin error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := r.store.begin()
	defer t.rollback()

	if err := fn(
		&MovementRepository{store: r.store, tx: t},
		&StockRepository{store: r.store, tx: t},
		&OrderRepository{store: r.store, tx: t},
	); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.commit()
	return nil
}
