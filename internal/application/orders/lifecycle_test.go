package orders_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/orders"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/memory"
)

const wh = "w1"

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event orders.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type fixture struct {
	store     *memory.Store
	uc        *orders.LifecycleUseCase
	stocks    *memory.StockRepository
	movements *memory.MovementRepository
	orders    *memory.OrderRepository
}

func newFixture(t *testing.T, publisher orders.EventPublisher) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddWarehouse(entity.Warehouse{ID: wh, Name: "Central"})
	store.AddWarehouse(entity.Warehouse{ID: "w2", Name: "Norte"})
	for _, id := range []string{"p1", "p2", "p3"} {
		store.AddProduct(entity.Product{ID: id, Name: "Producto " + id})
	}
	txRunner := memory.NewTxRunner(store)
	stocks := memory.NewStockRepository(store)
	orderRepo := memory.NewOrderRepository(store)
	ledger := inventory.NewStockLedger(txRunner, stocks, nil)
	uc := orders.NewLifecycleUseCase(
		txRunner, ledger, inventory.NewReconciler(txRunner, ledger),
		orderRepo, memory.NewProductRepository(store), memory.NewWarehouseRepository(store),
		publisher, zerolog.Nop(),
	)
	return &fixture{
		store:     store,
		uc:        uc,
		stocks:    stocks,
		movements: memory.NewMovementRepository(store),
		orders:    orderRepo,
	}
}

func (f *fixture) quantity(t *testing.T, productID string) int {
	t.Helper()
	st, err := f.stocks.Get(context.Background(), productID, wh)
	require.NoError(t, err)
	if st == nil {
		return 0
	}
	return st.Quantity
}

func (f *fixture) orderMovements(t *testing.T, orderID string) []*entity.Movement {
	t.Helper()
	list, _, err := f.movements.List(context.Background(), repository.MovementFilter{OrderID: orderID, SortField: "created_at"})
	require.NoError(t, err)
	return list
}

func (f *fixture) movementCount(t *testing.T) int {
	t.Helper()
	_, total, err := f.movements.List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	return total
}

func lines(pairs ...any) []dto.OrderItemDTO {
	out := make([]dto.OrderItemDTO, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, dto.OrderItemDTO{ProductID: pairs[i].(string), Count: pairs[i+1].(int)})
	}
	return out
}

func (f *fixture) create(t *testing.T, items []dto.OrderItemDTO) *dto.OrderResponse {
	t.Helper()
	out, err := f.uc.Create(context.Background(), dto.CreateOrderRequest{Customer: "Ana", WarehouseID: wh, Items: items})
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

// 10 en stock → crear 3 (7) → subir a 5 (5) → cancelar (10) → reactivar (5).
func TestLifecycle_EscenarioCompleto(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 10)
	ctx := context.Background()

	order := f.create(t, lines("p1", 3))
	assert.Equal(t, entity.OrderStatusActive, order.Status)
	assert.Equal(t, 7, f.quantity(t, "p1"))

	_, err := f.uc.Update(ctx, order.ID, dto.UpdateOrderRequest{Items: lines("p1", 5)})
	require.NoError(t, err)
	assert.Equal(t, 5, f.quantity(t, "p1"))

	canceled, err := f.uc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCanceled, canceled.Status)
	assert.Equal(t, 10, f.quantity(t, "p1"))

	resumed, err := f.uc.Resume(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusActive, resumed.Status)
	assert.Equal(t, 5, f.quantity(t, "p1"))

	h := f.orderMovements(t, order.ID)
	require.Len(t, h, 4)
	kinds := []string{h[0].Kind, h[1].Kind, h[2].Kind, h[3].Kind}
	assert.Equal(t, []string{
		entity.MovementKindOrderCreated,
		entity.MovementKindOrderUpdated,
		entity.MovementKindOrderCanceled,
		entity.MovementKindOrderResumed,
	}, kinds)
	changes := []int{h[0].QuantityChange, h[1].QuantityChange, h[2].QuantityChange, h[3].QuantityChange}
	assert.Equal(t, []int{-3, -2, 5, -5}, changes)
}

func TestCreate_StockInsuficienteNoCreaNada(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 2)

	_, err := f.uc.Create(context.Background(), dto.CreateOrderRequest{Customer: "Ana", WarehouseID: wh, Items: lines("p1", 5)})

	var short *domain.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, "p1", short.ProductID)
	assert.Equal(t, 2, f.quantity(t, "p1"))
	assert.Zero(t, f.movementCount(t))

	list, total, err := f.orders.List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 10)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, dto.CreateOrderRequest{Customer: "Ana", WarehouseID: wh})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = f.uc.Create(ctx, dto.CreateOrderRequest{Customer: "  ", WarehouseID: wh, Items: lines("p1", 1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cliente vacío")

	_, err = f.uc.Create(ctx, dto.CreateOrderRequest{Customer: "Ana", WarehouseID: wh, Items: lines("p1", 0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = f.uc.Create(ctx, dto.CreateOrderRequest{Customer: "Ana", WarehouseID: "w-x", Items: lines("p1", 1)})
	assert.ErrorIs(t, err, domain.ErrNotFound, "bodega inexistente")

	_, err = f.uc.Create(ctx, dto.CreateOrderRequest{Customer: "Ana", WarehouseID: wh, Items: lines("p-x", 1)})
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto inexistente")

	assert.Zero(t, f.movementCount(t))
}

func TestUpdate_InsuficienteRevierteTodo(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 4)
	f.store.SetStock("p2", wh, 5)
	order := f.create(t, lines("p1", 3, "p2", 1))

	_, err := f.uc.Update(context.Background(), order.ID, dto.UpdateOrderRequest{Items: lines("p1", 9)})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 1, f.quantity(t, "p1"))
	assert.Equal(t, 4, f.quantity(t, "p2"), "la liberación de p2 también se revierte")

	got, err := f.uc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, lines("p1", 3, "p2", 1), got.Items, "las líneas no se reemplazan")
	assert.Len(t, f.orderMovements(t, order.ID), 2)
}

func TestUpdate_SinCambiosNetosNoEscribeMovimientos(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 10)
	f.store.SetStock("p2", wh, 10)
	order := f.create(t, lines("p1", 2, "p2", 3))
	before := f.movementCount(t)

	customer := "Beatriz"
	out, err := f.uc.Update(context.Background(), order.ID, dto.UpdateOrderRequest{
		Customer: &customer,
		Items:    lines("p2", 3, "p1", 1, "p1", 1),
	})
	require.NoError(t, err)

	assert.Equal(t, before, f.movementCount(t))
	assert.Equal(t, "Beatriz", out.Customer)
	assert.Len(t, out.Items, 3)
}

func TestUpdate_ConservaClienteSiNoSeEnvia(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 10)
	order := f.create(t, lines("p1", 1))

	out, err := f.uc.Update(context.Background(), order.ID, dto.UpdateOrderRequest{Items: lines("p1", 2)})
	require.NoError(t, err)
	assert.Equal(t, "Ana", out.Customer)
}

func TestCancelResume_NetoCeroConDosMovimientos(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 10)
	f.store.SetStock("p2", wh, 10)
	order := f.create(t, lines("p1", 2))
	ctx := context.Background()
	before := f.quantity(t, "p1")

	_, err := f.uc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	_, err = f.uc.Resume(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, before, f.quantity(t, "p1"))
	assert.Len(t, f.orderMovements(t, order.ID), 3, "creación + cancelación + reactivación")
}

func TestResume_SinStockFalla(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 3)
	ctx := context.Background()
	order := f.create(t, lines("p1", 3))
	_, err := f.uc.Cancel(ctx, order.ID)
	require.NoError(t, err)

	// Otro pedido consume el stock liberado.
	f.create(t, lines("p1", 2))

	_, err = f.uc.Resume(ctx, order.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.uc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCanceled, got.Status)
	assert.Equal(t, 1, f.quantity(t, "p1"))
}

func TestComplete_NoTocaStock(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 10)
	order := f.create(t, lines("p1", 4))
	before := f.movementCount(t)

	out, err := f.uc.Complete(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusCompleted, out.Status)
	require.NotNil(t, out.CompletedAt)
	assert.Equal(t, 6, f.quantity(t, "p1"))
	assert.Equal(t, before, f.movementCount(t))
}

func TestTransicionesInvalidas(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 10)
	ctx := context.Background()

	completed := f.create(t, lines("p1", 1))
	_, err := f.uc.Complete(ctx, completed.ID)
	require.NoError(t, err)

	canceled := f.create(t, lines("p1", 1))
	_, err = f.uc.Cancel(ctx, canceled.ID)
	require.NoError(t, err)

	active := f.create(t, lines("p1", 1))
	before := f.movementCount(t)

	cases := []struct {
		name string
		op   func() error
	}{
		{"update completado", func() error {
			_, err := f.uc.Update(ctx, completed.ID, dto.UpdateOrderRequest{Items: lines("p1", 2)})
			return err
		}},
		{"update cancelado", func() error {
			_, err := f.uc.Update(ctx, canceled.ID, dto.UpdateOrderRequest{Items: lines("p1", 2)})
			return err
		}},
		{"complete completado", func() error { _, err := f.uc.Complete(ctx, completed.ID); return err }},
		{"complete cancelado", func() error { _, err := f.uc.Complete(ctx, canceled.ID); return err }},
		{"cancel cancelado", func() error { _, err := f.uc.Cancel(ctx, canceled.ID); return err }},
		{"cancel completado", func() error { _, err := f.uc.Cancel(ctx, completed.ID); return err }},
		{"resume activo", func() error { _, err := f.uc.Resume(ctx, active.ID); return err }},
		{"resume completado", func() error { _, err := f.uc.Resume(ctx, completed.ID); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op()
			var trans *domain.InvalidTransitionError
			require.ErrorAs(t, err, &trans)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		})
	}
	assert.Equal(t, before, f.movementCount(t))

	_, err = f.uc.Update(ctx, completed.ID, dto.UpdateOrderRequest{Items: lines("p1", 2)})
	assert.EqualError(t, err, "update on non-active order "+completed.ID+" (status: completed)")
}

func TestPedidoInexistente(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.Cancel(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.Resume(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.Update(ctx, "nope", dto.UpdateOrderRequest{Items: lines("p1", 1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_ConcurrenteAcreditaUnaSolaVez(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 10)
	order := f.create(t, lines("p1", 4))

	var ok, rejected atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := f.uc.Cancel(ctx, order.ID)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInvalidTransition):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 9, rejected.Load())
	assert.Equal(t, 10, f.quantity(t, "p1"))
}

func TestCreate_ConcurrenteNoSobrevende(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 5)

	var created atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 12; i++ {
		g.Go(func() error {
			_, err := f.uc.Create(ctx, dto.CreateOrderRequest{Customer: "Ana", WarehouseID: wh, Items: lines("p1", 1)})
			if err == nil {
				created.Add(1)
				return nil
			}
			if errors.Is(err, domain.ErrInsufficientStock) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 5, created.Load())
	assert.Equal(t, 0, f.quantity(t, "p1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Eventos
// ──────────────────────────────────────────────────────────────────────────────

func TestEventos_SePublicanTrasElCommit(t *testing.T) {
	pub := new(mockPublisher)
	f := newFixture(t, pub)
	f.store.SetStock("p1", wh, 10)
	ctx := context.Background()

	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e orders.OrderEvent) bool {
		return e.Type == orders.EventOrderCreated && e.Status == entity.OrderStatusActive &&
			len(e.Items) == 1 && e.Items[0] == orders.EventItem{ProductID: "p1", Count: 2}
	})).Return(nil).Once()
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e orders.OrderEvent) bool {
		return e.Type == orders.EventOrderCanceled && e.Status == entity.OrderStatusCanceled
	})).Return(nil).Once()

	order := f.create(t, lines("p1", 2))
	_, err := f.uc.Cancel(ctx, order.ID)
	require.NoError(t, err)

	// Una transición rechazada no publica.
	_, err = f.uc.Complete(ctx, order.ID)
	require.Error(t, err)

	pub.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "Publish", 2)
}

func TestEventos_FalloDePublicacionNoRevierte(t *testing.T) {
	pub := new(mockPublisher)
	f := newFixture(t, pub)
	f.store.SetStock("p1", wh, 10)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker caído"))

	order := f.create(t, lines("p1", 3))

	got, err := f.uc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusActive, got.Status)
	assert.Equal(t, 7, f.quantity(t, "p1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestList_Filtros(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SetStock("p1", wh, 50)
	ctx := context.Background()

	a := f.create(t, lines("p1", 1))
	_, err := f.uc.Create(ctx, dto.CreateOrderRequest{Customer: "Carlos Pérez", WarehouseID: wh, Items: lines("p1", 1)})
	require.NoError(t, err)
	_, err = f.uc.Cancel(ctx, a.ID)
	require.NoError(t, err)

	out, err := f.uc.List(ctx, dto.OrderListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page.Total)
	assert.Equal(t, dto.DefaultPageLimit, out.Page.Limit)

	out, err = f.uc.List(ctx, dto.OrderListRequest{Status: entity.OrderStatusCanceled})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, a.ID, out.Items[0].ID)

	out, err = f.uc.List(ctx, dto.OrderListRequest{Customer: "pérez"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Carlos Pérez", out.Items[0].Customer)

	out, err = f.uc.List(ctx, dto.OrderListRequest{WarehouseID: "w2"})
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	_, err = f.uc.List(ctx, dto.OrderListRequest{Status: "draft"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
