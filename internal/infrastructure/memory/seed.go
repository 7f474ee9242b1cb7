package memory

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// Seed catálogo inicial para STORAGE_DRIVER=memory (bodegas, productos y stock de apertura).
type Seed struct {
	Warehouses []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"warehouses"`
	Products []struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	} `json:"products"`
	Stocks []struct {
		ProductID   string `json:"product_id"`
		WarehouseID string `json:"warehouse_id"`
		Quantity    int    `json:"quantity"`
	} `json:"stocks"`
}

// LoadSeed lee un Seed en JSON y lo carga en el almacén.
func (s *Store) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}
	for _, w := range seed.Warehouses {
		s.AddWarehouse(entity.Warehouse{ID: w.ID, Name: w.Name})
	}
	for _, p := range seed.Products {
		s.AddProduct(entity.Product{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	for _, st := range seed.Stocks {
		if st.Quantity < 0 {
			return fmt.Errorf("seed stock %s/%s: negative quantity", st.WarehouseID, st.ProductID)
		}
		s.SetStock(st.ProductID, st.WarehouseID, st.Quantity)
	}
	return nil
}
