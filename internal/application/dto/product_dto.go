package dto

import "github.com/shopspring/decimal"

// ProductStockDTO stock del producto en una bodega.
type ProductStockDTO struct {
	WarehouseID   string `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name"`
	Stock         int    `json:"stock"`
}

// ProductResponse salida de un producto con su stock por bodega.
type ProductResponse struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Price  decimal.Decimal   `json:"price"`
	Stocks []ProductStockDTO `json:"stocks"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
