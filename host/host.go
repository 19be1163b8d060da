// Package host defines the contract between the syscall stubs and the
// execution environment backing them. Anything that can stage and process
// instructions, serve sysvars, and hand out account borrows can drive
// guest programs through the stubs; hostsim ships a complete
// implementation.
package host

import (
	"github.com/gagliardetto/solana-go"

	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// InstructionAccount describes one entry of a staged instruction's
// account list. IndexInTransaction addresses the transaction-wide account
// set, IndexInCaller the caller frame's account list, IndexInCallee the
// position in the staged instruction. An entry is a duplicate unless its
// position equals IndexInCallee.
type InstructionAccount struct {
	IndexInTransaction uint16
	IndexInCaller      uint16
	IndexInCallee      uint16
	IsSigner           bool
	IsWritable         bool
}

// ExecuteTimings accumulates host-side timing counters for one
// invocation.
type ExecuteTimings struct {
	ExecuteUs             uint64
	ProcessInstructionsUs uint64
}

// InvokeContext is the host as seen by the stubs during one transaction.
type InvokeContext interface {
	TransactionContext() TransactionContext

	// PrepareInstruction validates and stages an instruction on behalf of
	// the currently executing program. signers lists addresses the caller
	// holds signing authority over beyond its own signed accounts.
	// Returns the expanded instruction account list and the program
	// account indices.
	PrepareInstruction(ix types.Instruction, signers []solana.PublicKey) ([]InstructionAccount, []uint16, error)

	// ProcessInstruction executes a staged instruction. consumed reports
	// the compute units spent by this invocation alone.
	ProcessInstruction(data []byte, accounts []InstructionAccount, programIndices []uint16, consumed *uint64, timings *ExecuteTimings) error

	SysvarCache() SysvarCache

	// LogCollector may be nil, meaning no collector is attached.
	LogCollector() LogCollector

	StackHeight() uint64
	RemainingComputeUnits() uint64
}

// TransactionContext is the per-transaction account and return data
// state.
type TransactionContext interface {
	KeyOfAccountAtIndex(index uint16) (solana.PublicKey, error)
	CurrentInstructionContext() (InstructionContext, error)
	ReturnData() (solana.PublicKey, []byte)
	SetReturnData(programID solana.PublicKey, data []byte)
}

// InstructionContext is one frame of the invocation stack.
type InstructionContext interface {
	ProgramID() (solana.PublicKey, error)

	// BorrowInstructionAccount hands out the exclusive borrow of the
	// account at the given index of this frame's account list. The
	// caller must Drop it before borrowing the same account again.
	BorrowInstructionAccount(indexInCaller uint16) (BorrowedAccount, error)

	NumberOfInstructionAccounts() uint16
	IsInstructionAccountSigner(index uint16) (bool, error)

	StackHeight() uint64
}

// BorrowedAccount is an exclusively borrowed account handle enforcing
// the runtime's write rules.
type BorrowedAccount interface {
	Key() solana.PublicKey
	Lamports() uint64
	SetLamports(lamports uint64) error
	Data() []byte
	SetDataFromSlice(data []byte) error
	CanDataBeResized(length int) error
	CanDataBeChanged() error
	Owner() solana.PublicKey
	SetOwner(owner solana.PublicKey) error
	Executable() bool
	RentEpoch() uint64
	Drop()
}

// SysvarCache serves the sysvars the host chose to populate. The second
// result is false when a sysvar is unavailable; accessors report that to
// the guest as a status code, never an abort.
type SysvarCache interface {
	Clock() (types.Clock, bool)
	EpochSchedule() (types.EpochSchedule, bool)
	EpochRewards() (types.EpochRewards, bool)
	Fees() (types.Fees, bool)
	LastRestartSlot() (types.LastRestartSlot, bool)
	Rent() (types.Rent, bool)
}

// LogCollector receives guest log lines verbatim.
type LogCollector interface {
	Log(message string)
}
