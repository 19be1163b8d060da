package trident

import (
	"github.com/gagliardetto/solana-go"

	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// Aliases of the wire-level types so guest programs can stay on a
// single import.
type (
	Instruction     = types.Instruction
	AccountMeta     = types.AccountMeta
	AccountView     = types.AccountView
	ProgramError    = types.ProgramError
	Clock           = types.Clock
	EpochSchedule   = types.EpochSchedule
	EpochRewards    = types.EpochRewards
	Fees            = types.Fees
	LastRestartSlot = types.LastRestartSlot
	Rent            = types.Rent
	PublicKey       = solana.PublicKey
)
