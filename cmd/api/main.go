package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/orders"
	"github.com/jhoicas/stock-orders-api/internal/application/usecase"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/rabbitmq"
	"github.com/jhoicas/stock-orders-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/stock-orders-api/internal/interfaces/http"
	"github.com/jhoicas/stock-orders-api/pkg/config"
	"github.com/jhoicas/stock-orders-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	otelProviders, err := telemetry.Setup(ctx, cfg.OTel)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar OpenTelemetry")
	}
	metrics, err := inventory.NewMetrics(otelProviders.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("registrar métricas")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.close()

	var publisher orders.EventPublisher = orders.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		conn, ch, err := rabbitmq.SetupConn(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log.Component("rabbitmq"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer conn.Close()
		publisher = rabbitmq.NewPublisher(ch, cfg.RabbitMQ.Exchange)
	} else {
		log.Warn().Msg("RABBITMQ_URL vacío: los eventos de pedido no se publican")
	}

	ledger := inventory.NewStockLedger(store.txRunner, store.stocks, metrics)
	reconciler := inventory.NewReconciler(store.txRunner, ledger)
	lifecycleUC := orders.NewLifecycleUseCase(
		store.txRunner, ledger, reconciler,
		store.orders, store.products, store.warehouses,
		publisher, log.Component("orders"),
	)
	warehouseUC := usecase.NewWarehouseUseCase(store.warehouses)
	productUC := usecase.NewProductUseCase(store.products, store.stocks)
	movementUC := inventory.NewMovementQueryUseCase(store.movements)
	receiveStockUC := inventory.NewReceiveStockUseCase(ledger, store.products, store.warehouses)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Stock & Orders API",
		}))
	} else {
		log.Warn().Str("file", cfg.App.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.StorageDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		WarehouseUC:  warehouseUC,
		ProductUC:    productUC,
		Orders:       lifecycleUC,
		Movements:    movementUC,
		ReceiveStock: receiveStockUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := otelProviders.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de OpenTelemetry")
	}

	log.Info().Msg("aplicación detenida")
}
