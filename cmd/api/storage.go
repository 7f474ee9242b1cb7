package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-orders-api/pkg/config"
	"github.com/jhoicas/stock-orders-api/pkg/logger"
)

// storage repositorios fuera de transacción más el TxRunner del driver elegido.
type storage struct {
	txRunner   inventory.TxRunner
	stocks     repository.StockRepository
	movements  repository.MovementRepository
	orders     repository.OrderRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		if cfg.App.MemorySeedFile != "" {
			f, err := os.Open(cfg.App.MemorySeedFile)
			if err != nil {
				return nil, fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()
			if err := store.LoadSeed(f); err != nil {
				return nil, err
			}
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			txRunner:   memory.NewTxRunner(store),
			stocks:     memory.NewStockRepository(store),
			movements:  memory.NewMovementRepository(store),
			orders:     memory.NewOrderRepository(store),
			products:   memory.NewProductRepository(store),
			warehouses: memory.NewWarehouseRepository(store),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return &storage{
		txRunner:   postgres.NewTxRunner(pool, cfg.DB.TxTimeout),
		stocks:     postgres.NewStockRepository(pool),
		movements:  postgres.NewMovementRepository(pool),
		orders:     postgres.NewOrderRepository(pool),
		products:   postgres.NewProductRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		close:      pool.Close,
	}, nil
}
