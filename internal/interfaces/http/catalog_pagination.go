package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
)

// pageFromQuery lee limit/offset; per_page se acepta como alias de limit.
func pageFromQuery(c *fiber.Ctx) (dto.PageRequest, error) {
	var (
		page dto.PageRequest
		err  error
	)
	limitKey := "limit"
	if c.Query("limit") == "" && c.Query("per_page") != "" {
		limitKey = "per_page"
	}
	if page.Limit, err = queryInt(c, limitKey); err != nil {
		return page, err
	}
	if page.Offset, err = queryInt(c, "offset"); err != nil {
		return page, err
	}
	return page, validateStruct(page)
}
