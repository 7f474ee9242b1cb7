package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
	"github.com/jhoicas/stock-orders-api/internal/application/orders"
	"github.com/jhoicas/stock-orders-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC  *usecase.WarehouseUseCase
	ProductUC    *usecase.ProductUseCase
	Orders       *orders.LifecycleUseCase
	Movements    *inventory.MovementQueryUseCase
	ReceiveStock *inventory.ReceiveStockUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	ordersGroup := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Put("/:id", orderHandler.Update)
	ordersGroup.Patch("/:id/complete", orderHandler.Complete)
	ordersGroup.Patch("/:id/cancel", orderHandler.Cancel)
	ordersGroup.Patch("/:id/resume", orderHandler.Resume)

	movementHandler := NewMovementHandler(deps.Movements)
	api.Get("/movements", movementHandler.List)
	api.Get("/product-movements", movementHandler.List) // alias histórico

	inventoryHandler := NewInventoryHandler(deps.ReceiveStock)
	api.Post("/stock/receipts", inventoryHandler.ReceiveStock)
}
