package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/application/inventory"
)

// MovementHandler historial de movimientos de stock (solo lectura).
type MovementHandler struct {
	uc *inventory.MovementQueryUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementQueryUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// List godoc
// @Summary      Listar movimientos de stock
// @Tags         movements
// @Produce      json
// @Param        product_id      query  string  false  "Producto"
// @Param        warehouse_id    query  string  false  "Bodega"
// @Param        order_id        query  string  false  "Pedido"
// @Param        movement_kind   query  string  false  "order_created | order_updated | order_canceled | order_resumed | stock_received"
// @Param        date_from       query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        date_to         query  string  false  "RFC3339 o YYYY-MM-DD (día completo)"
// @Param        sort_field      query  string  false  "Campo de orden (default created_at)"
// @Param        sort_direction  query  string  false  "asc | desc (default desc)"
// @Param        limit           query  int     false  "Límite (default 15)"
// @Param        per_page        query  int     false  "Alias de limit"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
// @Router       /api/product-movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	in := dto.MovementListRequest{
		ProductID:     c.Query("product_id"),
		WarehouseID:   c.Query("warehouse_id"),
		OrderID:       c.Query("order_id"),
		MovementKind:  c.Query("movement_kind"),
		SortField:     c.Query("sort_field"),
		SortDirection: c.Query("sort_direction"),
	}
	var err error
	if in.DateFrom, err = queryTime(c, "date_from", false); err != nil {
		return writeError(c, err)
	}
	if in.DateTo, err = queryTime(c, "date_to", true); err != nil {
		return writeError(c, err)
	}
	if in.PageRequest, err = pageFromQuery(c); err != nil {
		return writeError(c, err)
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
