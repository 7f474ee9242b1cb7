package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-orders-api/pkg/config"
)

func TestSetup_WithoutEndpointIsNoop(t *testing.T) {
	p, err := Setup(context.Background(), config.OTelConfig{ServiceName: "stock-orders-api"})
	require.NoError(t, err)
	require.NotNil(t, p.Meter)

	counter, err := p.Meter.Int64Counter("test.counter")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_WithEndpoint(t *testing.T) {
	p, err := Setup(context.Background(), config.OTelConfig{Endpoint: "localhost:4318", ServiceName: "stock-orders-api"})
	require.NoError(t, err)
	assert.Len(t, p.shutdown, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Sin collector el flush falla o se cancela; solo se verifica que no bloquea.
	_ = p.Shutdown(ctx)
}
