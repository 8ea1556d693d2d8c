package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), Options{ServiceName: "contractd"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestMeter_NoopInstrumentsUsable(t *testing.T) {
	counter, err := Meter("contract-engine/test").Int64Counter("test.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
}
