package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de pedido inválida")
)

// InsufficientStockError indica qué producto no alcanzó a cubrir un débito.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s en la bodega %s: solicitado %d, disponible %d",
		e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidTransitionError operación de ciclo de vida pedida desde un estado que no la permite.
// Required es el estado que la operación exige (active para update/complete/cancel, canceled para resume).
type InvalidTransitionError struct {
	OrderID   string
	Operation string
	Status    string
	Required  string
}

// Error produce mensajes como "update on non-active order <id> (status: completed)".
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s on non-%s order %s (status: %s)", e.Operation, e.Required, e.OrderID, e.Status)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }
