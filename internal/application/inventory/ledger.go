package inventory

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	invdomain "github.com/jhoicas/stock-orders-api/internal/domain/inventory"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

var tracer = otel.Tracer("github.com/jhoicas/stock-orders-api/internal/application/inventory")

// StockLedger es el único componente que modifica cantidades de stock. Cada mutación escribe
// exactamente un movimiento por producto tocado, en la misma transacción que la fila de stock.
//
// Las filas se bloquean (SELECT FOR UPDATE) en orden ascendente de product_id antes de leer
// cantidades bajo bloqueo; dos operaciones multi-producto concurrentes no pueden cruzarse.
type StockLedger struct {
	txRunner  TxRunner
	stockRepo repository.StockRepository // lecturas sin bloqueo (CheckAvailability)
	metrics   *Metrics
	now       func() time.Time
}

// NewStockLedger construye el ledger. metrics puede ser nil.
func NewStockLedger(txRunner TxRunner, stockRepo repository.StockRepository, metrics *Metrics) *StockLedger {
	return &StockLedger{
		txRunner:  txRunner,
		stockRepo: stockRepo,
		metrics:   metrics,
		now:       time.Now,
	}
}

// CheckAvailability lee las cantidades sin bloqueo y devuelve false si algún producto no tiene
// fila de stock o no alcanza. No es atómico frente a escritores concurrentes: sólo sirve como
// pre-chequeo optimista; el re-chequeo bajo bloqueo de Debit es el que decide.
func (l *StockLedger) CheckAvailability(ctx context.Context, warehouseID string, items []entity.ItemCount) (bool, error) {
	short, err := l.Shortage(ctx, warehouseID, items)
	if err != nil {
		return false, err
	}
	return short == nil, nil
}

// Shortage como CheckAvailability, pero devuelve el primer producto (orden ascendente) que no alcanza.
// nil significa que todo alcanza.
func (l *StockLedger) Shortage(ctx context.Context, warehouseID string, items []entity.ItemCount) (*domain.InsufficientStockError, error) {
	for _, it := range invdomain.MergeItems(items) {
		stock, err := l.stockRepo.Get(ctx, it.ProductID, warehouseID)
		if err != nil {
			return nil, fmt.Errorf("check availability %s: %w", it.ProductID, err)
		}
		if stock == nil || stock.Quantity < it.Count {
			available := 0
			if stock != nil {
				available = stock.Quantity
			}
			return &domain.InsufficientStockError{
				ProductID:   it.ProductID,
				WarehouseID: warehouseID,
				Requested:   it.Count,
				Available:   available,
			}, nil
		}
	}
	return nil, nil
}

// Debit descuenta items en su propia transacción. Todo o nada: si un producto no alcanza
// devuelve *domain.InsufficientStockError y no queda ninguna escritura.
func (l *StockLedger) Debit(ctx context.Context, warehouseID string, items []entity.ItemCount, orderRef *string, kind string) error {
	return l.runStandalone(ctx, func(movRepo repository.MovementRepository, stockRepo repository.StockRepository) ([]*entity.Movement, error) {
		return l.DebitInTx(ctx, movRepo, stockRepo, warehouseID, items, orderRef, kind)
	})
}

// Credit devuelve/ingresa items en su propia transacción. Crea la fila de stock si no existe.
func (l *StockLedger) Credit(ctx context.Context, warehouseID string, items []entity.ItemCount, orderRef *string, kind string) error {
	return l.runStandalone(ctx, func(movRepo repository.MovementRepository, stockRepo repository.StockRepository) ([]*entity.Movement, error) {
		return l.CreditInTx(ctx, movRepo, stockRepo, warehouseID, items, orderRef, kind)
	})
}

// ApplyDelta aplica cambios de stock con signo (producto → delta) en su propia transacción.
func (l *StockLedger) ApplyDelta(ctx context.Context, warehouseID string, deltas map[string]int, orderRef *string, kind string) error {
	return l.runStandalone(ctx, func(movRepo repository.MovementRepository, stockRepo repository.StockRepository) ([]*entity.Movement, error) {
		return l.ApplyDeltaInTx(ctx, movRepo, stockRepo, warehouseID, deltas, orderRef, kind)
	})
}

// DebitInTx ejecuta Debit con los repositorios de la transacción del caller.
// Si retorna error, el caller debe hacer rollback.
func (l *StockLedger) DebitInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	warehouseID string,
	items []entity.ItemCount,
	orderRef *string,
	kind string,
) ([]*entity.Movement, error) {
	deltas, err := itemDeltas(items, -1)
	if err != nil {
		return nil, err
	}
	return l.apply(ctx, movRepo, stockRepo, warehouseID, deltas, orderRef, kind)
}

// CreditInTx ejecuta Credit con los repositorios de la transacción del caller.
func (l *StockLedger) CreditInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	warehouseID string,
	items []entity.ItemCount,
	orderRef *string,
	kind string,
) ([]*entity.Movement, error) {
	deltas, err := itemDeltas(items, 1)
	if err != nil {
		return nil, err
	}
	return l.apply(ctx, movRepo, stockRepo, warehouseID, deltas, orderRef, kind)
}

// ApplyDeltaInTx ejecuta ApplyDelta con los repositorios de la transacción del caller.
// Las entradas con delta 0 se ignoran.
func (l *StockLedger) ApplyDeltaInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	warehouseID string,
	deltas map[string]int,
	orderRef *string,
	kind string,
) ([]*entity.Movement, error) {
	clean := make(map[string]int, len(deltas))
	for productID, d := range deltas {
		if productID == "" {
			return nil, domain.ErrInvalidInput
		}
		if d != 0 {
			clean[productID] = d
		}
	}
	return l.apply(ctx, movRepo, stockRepo, warehouseID, clean, orderRef, kind)
}

// RecordCommitted informa a las métricas de movimientos confirmados por un caller transaccional.
func (l *StockLedger) RecordCommitted(ctx context.Context, movements []*entity.Movement) {
	l.metrics.RecordCommitted(ctx, movements)
}

// MaxQuantity tope de una fila de stock; coincide con la columna INTEGER del esquema.
const MaxQuantity = math.MaxInt32

// apply: 1) bloquea todas las filas en orden ascendente (materializando las que van a recibir
// stock), 2) valida todos los deltas (stock suficiente, créditos sin exceder MaxQuantity),
// 3) escribe cantidades y movimientos.
// Un fallo en 1 o 2 no deja escrituras de cantidad ni movimientos.
func (l *StockLedger) apply(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	warehouseID string,
	deltas map[string]int,
	orderRef *string,
	kind string,
) ([]*entity.Movement, error) {
	if warehouseID == "" || !entity.IsValidMovementKind(kind) {
		return nil, domain.ErrInvalidInput
	}
	if len(deltas) == 0 {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "StockLedger.apply")
	defer span.End()
	span.SetAttributes(
		attribute.String("warehouse_id", warehouseID),
		attribute.String("movement_kind", kind),
		attribute.Int("products", len(deltas)),
	)

	productIDs := invdomain.SortedProductIDs(deltas)
	rows := make(map[string]*entity.Stock, len(productIDs))

	lockStart := time.Now()
	for _, productID := range productIDs {
		if deltas[productID] > 0 {
			if err := stockRepo.Materialize(ctx, productID, warehouseID); err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("materialize stock %s: %w", productID, err)
			}
		}
		stock, err := stockRepo.GetForUpdate(ctx, productID, warehouseID)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("lock stock %s: %w", productID, err)
		}
		rows[productID] = stock
	}
	l.metrics.recordLockWait(ctx, kind, time.Since(lockStart))

	for _, productID := range productIDs {
		d := deltas[productID]
		if d > 0 {
			if stock := rows[productID]; stock != nil && stock.Quantity > MaxQuantity-d {
				span.SetStatus(codes.Error, "quantity overflow")
				return nil, fmt.Errorf("credit %s: %d + %d exceeds %d: %w",
					productID, stock.Quantity, d, MaxQuantity, domain.ErrInvalidInput)
			}
			continue
		}
		if d == 0 {
			continue
		}
		stock := rows[productID]
		if stock == nil || stock.Quantity < -d {
			available := 0
			if stock != nil {
				available = stock.Quantity
			}
			l.metrics.recordInsufficient(ctx, kind)
			shortErr := &domain.InsufficientStockError{
				ProductID:   productID,
				WarehouseID: warehouseID,
				Requested:   -d,
				Available:   available,
			}
			span.SetStatus(codes.Error, shortErr.Error())
			return nil, shortErr
		}
	}

	now := l.now()
	movements := make([]*entity.Movement, 0, len(productIDs))
	for _, productID := range productIDs {
		d := deltas[productID]
		stock := rows[productID]
		if stock == nil {
			return nil, fmt.Errorf("stock %s/%s no materializado", productID, warehouseID)
		}
		stock.Quantity += d
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, stock); err != nil {
			span.RecordError(err)
			return nil, err
		}
		mov := &entity.Movement{
			ID:             uuid.New().String(),
			ProductID:      productID,
			WarehouseID:    warehouseID,
			QuantityChange: d,
			QuantityAfter:  stock.Quantity,
			OrderID:        orderRef,
			Kind:           kind,
			CreatedAt:      now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			span.RecordError(err)
			return nil, err
		}
		movements = append(movements, mov)
	}
	return movements, nil
}

func (l *StockLedger) runStandalone(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
) ([]*entity.Movement, error)) error {
	var movements []*entity.Movement
	err := l.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.OrderRepository,
	) error {
		var err error
		movements, err = fn(movRepo, stockRepo)
		return err
	})
	if err != nil {
		return err
	}
	l.metrics.RecordCommitted(ctx, movements)
	return nil
}

// itemDeltas suma por producto y aplica el signo. Cantidades no positivas son entrada inválida.
func itemDeltas(items []entity.ItemCount, sign int) (map[string]int, error) {
	deltas := make(map[string]int, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Count <= 0 {
			return nil, domain.ErrInvalidInput
		}
		deltas[it.ProductID] += sign * it.Count
	}
	return deltas, nil
}
