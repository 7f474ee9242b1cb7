package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

var tracer = otel.Tracer("github.com/jhoicas/stock-orders-api/internal/application/orders")

// Operaciones del ciclo de vida (también usadas en InvalidTransitionError).
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpComplete = "complete"
	OpCancel   = "cancel"
	OpResume   = "resume"
)

// LifecycleUseCase gestiona los estados del pedido (active → completed | canceled, canceled → active)
// y orquesta el ledger en cada transición. Cada transición es una sola transacción: la fila del
// pedido se bloquea, su estado se revalida bajo bloqueo y el cambio de estado y la mutación de stock
// se confirman o se revierten juntos.
type LifecycleUseCase struct {
	txRunner      inventory.TxRunner
	ledger        *inventory.StockLedger
	reconciler    *inventory.Reconciler
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	publisher     EventPublisher
	log           zerolog.Logger
	now           func() time.Time
}

// NewLifecycleUseCase construye el caso de uso. publisher nil equivale a NopPublisher.
func NewLifecycleUseCase(
	txRunner inventory.TxRunner,
	ledger *inventory.StockLedger,
	reconciler *inventory.Reconciler,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	publisher EventPublisher,
	log zerolog.Logger,
) *LifecycleUseCase {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &LifecycleUseCase{
		txRunner:      txRunner,
		ledger:        ledger,
		reconciler:    reconciler,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		publisher:     publisher,
		log:           log,
		now:           time.Now,
	}
}

// Create crea el pedido en estado active y reserva (Debit) todas sus líneas.
// Si el pre-chequeo sin bloqueo ya detecta faltante, falla con InsufficientStock sin abrir transacción.
func (uc *LifecycleUseCase) Create(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "orders.Create")
	defer span.End()

	customer := strings.TrimSpace(in.Customer)
	if customer == "" || in.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	items, err := uc.validateItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("warehouse %s: %w", in.WarehouseID, domain.ErrNotFound)
	}

	counts := toItemCounts(items)
	short, err := uc.ledger.Shortage(ctx, in.WarehouseID, counts)
	if err != nil {
		return nil, err
	}
	if short != nil {
		uc.log.Debug().Str("warehouse_id", in.WarehouseID).Str("product_id", short.ProductID).
			Msg("pedido rechazado en pre-chequeo de stock")
		return nil, fmt.Errorf("create order: %w", short)
	}

	now := uc.now()
	order := &entity.Order{
		ID:          uuid.New().String(),
		Customer:    customer,
		WarehouseID: in.WarehouseID,
		Status:      entity.OrderStatusActive,
		CreatedAt:   now,
	}
	order.Items = newOrderItems(order.ID, items)
	span.SetAttributes(attribute.String("order_id", order.ID))

	var movements []*entity.Movement
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error {
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		var err error
		movements, err = uc.ledger.DebitInTx(ctx, movRepo, stockRepo, order.WarehouseID, counts, &order.ID, entity.MovementKindOrderCreated)
		return err
	})
	if err != nil {
		return nil, uc.fail(span, OpCreate, order.ID, err)
	}
	uc.committed(ctx, OpCreate, EventOrderCreated, order, movements)
	return toOrderResponse(order), nil
}

// Update reemplaza las líneas de un pedido activo y reconcilia solo el delta neto contra el stock.
// Si el delta no alcanza, ni el stock ni las líneas cambian.
func (uc *LifecycleUseCase) Update(ctx context.Context, id string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "orders.Update", trace.WithAttributes(attribute.String("order_id", id)))
	defer span.End()

	items, err := uc.validateItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	var customer string
	if in.Customer != nil {
		customer = strings.TrimSpace(*in.Customer)
		if customer == "" {
			return nil, domain.ErrInvalidInput
		}
	}

	order, movements, err := uc.transition(ctx, id, func(
		order *entity.Order,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) ([]*entity.Movement, error) {
		if !order.IsActive() {
			return nil, invalidTransition(order, OpUpdate, entity.OrderStatusActive)
		}
		newItems := newOrderItems(order.ID, items)
		movements, err := uc.reconciler.ReconcileInTx(ctx, movRepo, stockRepo, order.WarehouseID,
			order.ItemCounts(), toItemCounts(items), &order.ID)
		if err != nil {
			return nil, err
		}
		if customer != "" {
			order.Customer = customer
		}
		if err := orderRepo.Update(ctx, order); err != nil {
			return nil, err
		}
		if err := orderRepo.ReplaceItems(ctx, order.ID, newItems); err != nil {
			return nil, err
		}
		order.Items = newItems
		return movements, nil
	})
	if err != nil {
		return nil, uc.fail(span, OpUpdate, id, err)
	}
	uc.committed(ctx, OpUpdate, EventOrderUpdated, order, movements)
	return toOrderResponse(order), nil
}

// Complete cierra un pedido activo. No toca stock (ya se descontó al crear/actualizar).
func (uc *LifecycleUseCase) Complete(ctx context.Context, id string) (*dto.OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "orders.Complete", trace.WithAttributes(attribute.String("order_id", id)))
	defer span.End()

	order, _, err := uc.transition(ctx, id, func(
		order *entity.Order,
		_ repository.MovementRepository,
		_ repository.StockRepository,
		orderRepo repository.OrderRepository,
	) ([]*entity.Movement, error) {
		if !order.IsActive() {
			return nil, invalidTransition(order, OpComplete, entity.OrderStatusActive)
		}
		completedAt := uc.now()
		order.Status = entity.OrderStatusCompleted
		order.CompletedAt = &completedAt
		return nil, orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, uc.fail(span, OpComplete, id, err)
	}
	uc.committed(ctx, OpComplete, EventOrderCompleted, order, nil)
	return toOrderResponse(order), nil
}

// Cancel cancela un pedido activo y devuelve (Credit) todas sus líneas a la bodega.
func (uc *LifecycleUseCase) Cancel(ctx context.Context, id string) (*dto.OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "orders.Cancel", trace.WithAttributes(attribute.String("order_id", id)))
	defer span.End()

	order, movements, err := uc.transition(ctx, id, func(
		order *entity.Order,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) ([]*entity.Movement, error) {
		if !order.IsActive() {
			return nil, invalidTransition(order, OpCancel, entity.OrderStatusActive)
		}
		order.Status = entity.OrderStatusCanceled
		if err := orderRepo.Update(ctx, order); err != nil {
			return nil, err
		}
		return uc.ledger.CreditInTx(ctx, movRepo, stockRepo, order.WarehouseID, order.ItemCounts(), &order.ID, entity.MovementKindOrderCanceled)
	})
	if err != nil {
		return nil, uc.fail(span, OpCancel, id, err)
	}
	uc.committed(ctx, OpCancel, EventOrderCanceled, order, movements)
	return toOrderResponse(order), nil
}

// Resume reactiva un pedido cancelado y vuelve a reservar (Debit) todas sus líneas.
func (uc *LifecycleUseCase) Resume(ctx context.Context, id string) (*dto.OrderResponse, error) {
	ctx, span := tracer.Start(ctx, "orders.Resume", trace.WithAttributes(attribute.String("order_id", id)))
	defer span.End()

	current, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	if !current.IsCanceled() {
		return nil, uc.fail(span, OpResume, id, invalidTransition(current, OpResume, entity.OrderStatusCanceled))
	}
	short, err := uc.ledger.Shortage(ctx, current.WarehouseID, current.ItemCounts())
	if err != nil {
		return nil, err
	}
	if short != nil {
		return nil, uc.fail(span, OpResume, id, short)
	}

	order, movements, err := uc.transition(ctx, id, func(
		order *entity.Order,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) ([]*entity.Movement, error) {
		if !order.IsCanceled() {
			return nil, invalidTransition(order, OpResume, entity.OrderStatusCanceled)
		}
		order.Status = entity.OrderStatusActive
		if err := orderRepo.Update(ctx, order); err != nil {
			return nil, err
		}
		return uc.ledger.DebitInTx(ctx, movRepo, stockRepo, order.WarehouseID, order.ItemCounts(), &order.ID, entity.MovementKindOrderResumed)
	})
	if err != nil {
		return nil, uc.fail(span, OpResume, id, err)
	}
	uc.committed(ctx, OpResume, EventOrderResumed, order, movements)
	return toOrderResponse(order), nil
}

// transition abre la transacción, bloquea la fila del pedido (SELECT FOR UPDATE) y ejecuta fn.
// La fila del pedido se bloquea siempre antes que las de stock.
func (uc *LifecycleUseCase) transition(ctx context.Context, id string, fn func(
	order *entity.Order,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
) ([]*entity.Movement, error)) (*entity.Order, []*entity.Movement, error) {
	if id == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	var (
		order     *entity.Order
		movements []*entity.Movement
	)
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error {
		var err error
		order, err = orderRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
		}
		movements, err = fn(order, movRepo, stockRepo, orderRepo)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return order, movements, nil
}

// validateItems exige al menos una línea, cantidades > 0 y productos existentes.
func (uc *LifecycleUseCase) validateItems(ctx context.Context, in []dto.OrderItemDTO) ([]dto.OrderItemDTO, error) {
	if len(in) == 0 {
		return nil, domain.ErrInvalidInput
	}
	seen := make(map[string]bool, len(in))
	for _, it := range in {
		if it.ProductID == "" || it.Count <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		product, err := uc.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, domain.ErrNotFound)
		}
	}
	return in, nil
}

func (uc *LifecycleUseCase) fail(span trace.Span, op, orderID string, err error) error {
	span.RecordError(err)
	uc.log.Debug().Err(err).Str("operation", op).Str("order_id", orderID).Msg("transición rechazada")
	return err
}

// committed registra métricas, log y evento de una transición ya confirmada.
func (uc *LifecycleUseCase) committed(ctx context.Context, op, eventType string, order *entity.Order, movements []*entity.Movement) {
	uc.ledger.RecordCommitted(ctx, movements)
	uc.log.Info().
		Str("operation", op).
		Str("order_id", order.ID).
		Str("status", order.Status).
		Int("movements", len(movements)).
		Msg("transición de pedido confirmada")

	event := OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		WarehouseID: order.WarehouseID,
		Status:      order.Status,
		Items:       make([]EventItem, 0, len(order.Items)),
		OccurredAt:  uc.now(),
	}
	for _, it := range order.Items {
		event.Items = append(event.Items, EventItem{ProductID: it.ProductID, Count: it.Count})
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.log.Error().Err(err).Str("order_id", order.ID).Str("event", eventType).Msg("publicar evento de pedido")
	}
}

func invalidTransition(order *entity.Order, op, required string) error {
	return &domain.InvalidTransitionError{
		OrderID:   order.ID,
		Operation: op,
		Status:    order.Status,
		Required:  required,
	}
}

func newOrderItems(orderID string, in []dto.OrderItemDTO) []entity.OrderItem {
	items := make([]entity.OrderItem, 0, len(in))
	for _, it := range in {
		items = append(items, entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: it.ProductID,
			Count:     it.Count,
		})
	}
	return items
}

func toItemCounts(in []dto.OrderItemDTO) []entity.ItemCount {
	out := make([]entity.ItemCount, 0, len(in))
	for _, it := range in {
		out = append(out, entity.ItemCount{ProductID: it.ProductID, Count: it.Count})
	}
	return out
}
