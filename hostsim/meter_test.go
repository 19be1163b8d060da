package hostsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

func TestComputeMeter(t *testing.T) {
	meter := NewComputeMeter(100)
	require.NoError(t, meter.Consume(60))
	assert.Equal(t, uint64(40), meter.Remaining())

	// Overdraw empties the meter and fails.
	require.ErrorIs(t, meter.Consume(41), types.InstrErrComputationalBudgetExceeded)
	assert.Equal(t, uint64(0), meter.Remaining())

	// Spent stays spent.
	require.ErrorIs(t, meter.Consume(1), types.InstrErrComputationalBudgetExceeded)
	require.NoError(t, meter.Consume(0))
}
