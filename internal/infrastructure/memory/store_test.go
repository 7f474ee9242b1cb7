package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/memory"
)

func newStore() *memory.Store {
	s := memory.NewStore()
	s.AddWarehouse(entity.Warehouse{ID: "w1", Name: "Central"})
	s.AddWarehouse(entity.Warehouse{ID: "w2", Name: "Avenida"})
	s.AddProduct(entity.Product{ID: "p1", Name: "Tornillo"})
	return s
}

func TestTxRunner_RollbackDescartaEscrituras(t *testing.T) {
	s := newStore()
	s.SetStock("p1", "w1", 10)
	runner := memory.NewTxRunner(s)
	boom := errors.New("boom")

	err := runner.Run(context.Background(), func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error {
		st, err := stockRepo.GetForUpdate(context.Background(), "p1", "w1")
		require.NoError(t, err)
		st.Quantity = 3
		require.NoError(t, stockRepo.Upsert(context.Background(), st))
		require.NoError(t, movRepo.Create(context.Background(), &entity.Movement{ID: "m1", ProductID: "p1", WarehouseID: "w1"}))
		require.NoError(t, orderRepo.Create(context.Background(), &entity.Order{ID: "o1", WarehouseID: "w1", Status: entity.OrderStatusActive}))

		// Dentro de la tx se ven las escrituras propias.
		inTx, err := stockRepo.Get(context.Background(), "p1", "w1")
		require.NoError(t, err)
		assert.Equal(t, 3, inTx.Quantity)
		return boom
	})
	require.ErrorIs(t, err, boom)

	st, err := memory.NewStockRepository(s).Get(context.Background(), "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, 10, st.Quantity)

	_, total, err := memory.NewMovementRepository(s).List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	o, err := memory.NewOrderRepository(s).GetByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestTxRunner_ContextoCanceladoNoConfirma(t *testing.T) {
	s := newStore()
	runner := memory.NewTxRunner(s)
	ctx, cancel := context.WithCancel(context.Background())

	err := runner.Run(ctx, func(_ repository.MovementRepository, stockRepo repository.StockRepository, _ repository.OrderRepository) error {
		require.NoError(t, stockRepo.Materialize(ctx, "p1", "w2"))
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	st, err := memory.NewStockRepository(s).Get(context.Background(), "p1", "w2")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestGetForUpdate_RequiereTransaccion(t *testing.T) {
	s := newStore()
	_, err := memory.NewStockRepository(s).GetForUpdate(context.Background(), "p1", "w1")
	assert.Error(t, err)
	_, err = memory.NewOrderRepository(s).GetForUpdate(context.Background(), "o1")
	assert.Error(t, err)
}

func TestRowLock_EsperaRespetaContexto(t *testing.T) {
	s := newStore()
	s.SetStock("p1", "w1", 1)
	runner := memory.NewTxRunner(s)
	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- runner.Run(context.Background(), func(_ repository.MovementRepository, stockRepo repository.StockRepository, _ repository.OrderRepository) error {
			if _, err := stockRepo.GetForUpdate(context.Background(), "p1", "w1"); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := runner.Run(ctx, func(_ repository.MovementRepository, stockRepo repository.StockRepository, _ repository.OrderRepository) error {
		_, err := stockRepo.GetForUpdate(ctx, "p1", "w1")
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Las lecturas sin bloqueo no esperan.
	st, err := memory.NewStockRepository(s).Get(context.Background(), "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Quantity)

	close(release)
	require.NoError(t, <-done)

	err = runner.Run(context.Background(), func(_ repository.MovementRepository, stockRepo repository.StockRepository, _ repository.OrderRepository) error {
		_, err := stockRepo.GetForUpdate(context.Background(), "p1", "w1")
		return err
	})
	assert.NoError(t, err, "el bloqueo se libera en commit")
}

func TestOrderRepository_CreateDuplicado(t *testing.T) {
	s := newStore()
	repo := memory.NewOrderRepository(s)
	order := &entity.Order{ID: "o1", Customer: "Ana", WarehouseID: "w1", Status: entity.OrderStatusActive, CreatedAt: time.Now()}

	require.NoError(t, repo.Create(context.Background(), order))
	assert.ErrorIs(t, repo.Create(context.Background(), order), domain.ErrConflict)
	assert.ErrorIs(t, repo.Update(context.Background(), &entity.Order{ID: "nope"}), domain.ErrNotFound)
}

func TestOrderRepository_ListFiltraYPagina(t *testing.T) {
	s := newStore()
	repo := memory.NewOrderRepository(s)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seed := []*entity.Order{
		{ID: "o1", Customer: "Ana Gómez", WarehouseID: "w1", Status: entity.OrderStatusActive, CreatedAt: base},
		{ID: "o2", Customer: "Luis", WarehouseID: "w2", Status: entity.OrderStatusCanceled, CreatedAt: base.Add(time.Hour)},
		{ID: "o3", Customer: "ana maría", WarehouseID: "w1", Status: entity.OrderStatusActive, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, o := range seed {
		require.NoError(t, repo.Create(context.Background(), o))
	}

	all, total, err := repo.List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"o3", "o2", "o1"}, ids(all))

	byCustomer, _, err := repo.List(context.Background(), repository.OrderFilter{Customer: "ANA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"o3", "o1"}, ids(byCustomer))

	from := base.Add(30 * time.Minute)
	to := base.Add(90 * time.Minute)
	inRange, _, err := repo.List(context.Background(), repository.OrderFilter{CreatedFrom: &from, CreatedTo: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"o2"}, ids(inRange))

	page, total, err := repo.List(context.Background(), repository.OrderFilter{Status: entity.OrderStatusActive, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"o1"}, ids(page))
}

func TestStockRepository_ListByProduct(t *testing.T) {
	s := newStore()
	s.SetStock("p1", "w1", 4)
	s.SetStock("p1", "w2", 9)

	rows, err := memory.NewStockRepository(s).ListByProduct(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Avenida", rows[0].WarehouseName)
	assert.Equal(t, 9, rows[0].Quantity)
	assert.Equal(t, "Central", rows[1].WarehouseName)
}

func TestLoadSeed(t *testing.T) {
	s := memory.NewStore()
	err := s.LoadSeed(strings.NewReader(`{
		"warehouses": [{"id": "w1", "name": "Central"}],
		"products": [{"id": "p1", "name": "Tornillo", "price": "1250.50"}],
		"stocks": [{"product_id": "p1", "warehouse_id": "w1", "quantity": 7}]
	}`))
	require.NoError(t, err)

	p, err := memory.NewProductRepository(s).GetByID(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("1250.50")))

	w, err := memory.NewWarehouseRepository(s).GetByID(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "Central", w.Name)

	st, err := memory.NewStockRepository(s).Get(context.Background(), "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, 7, st.Quantity)
}

func TestLoadSeed_Invalido(t *testing.T) {
	s := memory.NewStore()
	assert.Error(t, s.LoadSeed(strings.NewReader(`{"stocks": [{"product_id": "p1", "warehouse_id": "w1", "quantity": -1}]}`)))
	assert.Error(t, s.LoadSeed(strings.NewReader(`{`)))
}

func ids(orders []*entity.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}
