package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Inmutable una vez creado.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal // precio unitario, solo se almacena
	CreatedAt time.Time
}
