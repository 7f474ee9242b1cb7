package inventory

import (
	"context"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	invdomain "github.com/jhoicas/stock-orders-api/internal/domain/inventory"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// Reconciler traduce el cambio de líneas de un pedido en el mínimo conjunto de deltas de stock.
type Reconciler struct {
	txRunner TxRunner
	ledger   *StockLedger
}

// NewReconciler construye el reconciliador sobre el ledger.
func NewReconciler(txRunner TxRunner, ledger *StockLedger) *Reconciler {
	return &Reconciler{txRunner: txRunner, ledger: ledger}
}

// ComputeDeltas delta de reserva por producto (Σnuevo − Σviejo), sin entradas en cero.
func (r *Reconciler) ComputeDeltas(oldItems, newItems []entity.ItemCount) map[string]int {
	return invdomain.ComputeDeltas(oldItems, newItems)
}

// Reconcile aplica en su propia transacción los deltas entre oldItems y newItems (kind order_updated).
func (r *Reconciler) Reconcile(ctx context.Context, warehouseID string, oldItems, newItems []entity.ItemCount, orderRef *string) error {
	var movements []*entity.Movement
	err := r.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.OrderRepository,
	) error {
		var err error
		movements, err = r.ReconcileInTx(ctx, movRepo, stockRepo, warehouseID, oldItems, newItems, orderRef)
		return err
	})
	if err != nil {
		return err
	}
	r.ledger.RecordCommitted(ctx, movements)
	return nil
}

// ReconcileInTx como Reconcile, dentro de la transacción del caller. Si no hay deltas no toca
// el ledger: un update sin cambios netos no deja movimientos.
// Ante *domain.InsufficientStockError el caller debe hacer rollback y no reemplazar las líneas.
func (r *Reconciler) ReconcileInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	warehouseID string,
	oldItems, newItems []entity.ItemCount,
	orderRef *string,
) ([]*entity.Movement, error) {
	reservation := r.ComputeDeltas(oldItems, newItems)
	if len(reservation) == 0 {
		return nil, nil
	}
	return r.ledger.ApplyDeltaInTx(ctx, movRepo, stockRepo, warehouseID,
		invdomain.StockDeltas(reservation), orderRef, entity.MovementKindOrderUpdated)
}
