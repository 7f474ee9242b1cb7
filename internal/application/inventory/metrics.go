package inventory

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// Metrics contadores del ledger. Un *Metrics nil no registra nada.
type Metrics struct {
	movements    metric.Int64Counter
	units        metric.Int64Counter
	insufficient metric.Int64Counter
	lockWait     metric.Float64Histogram
}

// NewMetrics registra los instrumentos en el meter dado.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	movements, err := meter.Int64Counter("stock.movements",
		metric.WithDescription("Movimientos de stock confirmados"))
	if err != nil {
		return nil, err
	}
	units, err := meter.Int64Counter("stock.units",
		metric.WithDescription("Unidades movidas (valor absoluto)"))
	if err != nil {
		return nil, err
	}
	insufficient, err := meter.Int64Counter("stock.insufficient",
		metric.WithDescription("Operaciones rechazadas por stock insuficiente"))
	if err != nil {
		return nil, err
	}
	lockWait, err := meter.Float64Histogram("stock.lock.wait",
		metric.WithDescription("Tiempo para bloquear las filas de stock de una operación"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &Metrics{movements: movements, units: units, insufficient: insufficient, lockWait: lockWait}, nil
}

// RecordCommitted registra movimientos ya confirmados.
func (m *Metrics) RecordCommitted(ctx context.Context, movements []*entity.Movement) {
	if m == nil {
		return
	}
	for _, mv := range movements {
		attrs := metric.WithAttributes(attribute.String("kind", mv.Kind))
		m.movements.Add(ctx, 1, attrs)
		units := mv.QuantityChange
		if units < 0 {
			units = -units
		}
		m.units.Add(ctx, int64(units), attrs)
	}
}

func (m *Metrics) recordInsufficient(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.insufficient.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) recordLockWait(ctx context.Context, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributes(attribute.String("kind", kind)))
}
