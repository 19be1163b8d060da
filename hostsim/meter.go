package hostsim

import (
	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// ComputeMeter counts one transaction's compute budget down.
type ComputeMeter struct {
	remaining uint64
}

func NewComputeMeter(budget uint64) *ComputeMeter {
	return &ComputeMeter{remaining: budget}
}

// Consume deducts units. Once the budget is spent the meter stays at
// zero and every further deduction fails.
func (m *ComputeMeter) Consume(units uint64) error {
	if units > m.remaining {
		m.remaining = 0
		return types.InstrErrComputationalBudgetExceeded
	}
	m.remaining -= units
	return nil
}

func (m *ComputeMeter) Remaining() uint64 {
	return m.remaining
}
