package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
)

// InventoryHandler entradas de mercancía.
type InventoryHandler struct {
	uc *inventory.ReceiveStockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.ReceiveStockUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// ReceiveStock godoc
// @Summary      Registrar entrada de stock en una bodega
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "warehouse_id, items"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/receipts [post]
func (h *InventoryHandler) ReceiveStock(c *fiber.Ctx) error {
	var in dto.ReceiveStockRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	if err := h.uc.ReceiveStock(c.UserContext(), in); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "stock recibido"})
}
