// Package trident routes the syscalls of natively executed programs to an
// in-process host. Guest code calls the package-level functions; the host
// side attaches a host.InvokeContext around each transaction and installs
// the context-backed stubs once per process. Before Install, calls fall
// through to neutral defaults mirroring the SDK's off-chain behavior.
package trident

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"

	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// SyscallStubs is the full syscall surface a guest program can reach.
// The sysvar accessors copy the canonical encoding into out and return a
// status code: 0 on success, the unsupported-sysvar code when the host
// cannot serve the request. They never abort.
type SyscallStubs interface {
	Log(message string)
	LogData(fields [][]byte)
	GetClockSysvar(out []byte) uint64
	GetEpochScheduleSysvar(out []byte) uint64
	GetEpochRewardsSysvar(out []byte) uint64
	GetFeesSysvar(out []byte) uint64
	GetRentSysvar(out []byte) uint64
	GetLastRestartSlotSysvar(out []byte) uint64
	InvokeSigned(ix types.Instruction, accounts []*types.AccountView, signersSeeds [][][]byte) error
	SetReturnData(data []byte)
	GetReturnData() (solana.PublicKey, []byte)
	GetStackHeight() uint64
	RemainingComputeUnits() uint64
}

var (
	activeStubs atomic.Value
	installOnce sync.Once
)

type stubsBox struct {
	stubs SyscallStubs
}

func current() SyscallStubs {
	if box, ok := activeStubs.Load().(stubsBox); ok {
		return box.stubs
	}
	return defaultStubs{}
}

// Install activates the invoke-context-backed stubs for the whole
// process. The first call wins; later calls return without effect, even
// from other goroutines racing the first use. There is no uninstall.
func Install() {
	installOnce.Do(func() {
		activeStubs.Store(stubsBox{stubs: contextStubs{}})
	})
}

// Log relays a message from the guest program.
func Log(message string) { current().Log(message) }

// LogData relays binary fields, base64-encoded into one line.
func LogData(fields ...[]byte) { current().LogData(fields) }

func GetClockSysvar(out []byte) uint64         { return current().GetClockSysvar(out) }
func GetEpochScheduleSysvar(out []byte) uint64 { return current().GetEpochScheduleSysvar(out) }
func GetEpochRewardsSysvar(out []byte) uint64  { return current().GetEpochRewardsSysvar(out) }

// GetFeesSysvar serves the deprecated fees sysvar for guests that still
// ask for it.
func GetFeesSysvar(out []byte) uint64 { return current().GetFeesSysvar(out) }

func GetRentSysvar(out []byte) uint64            { return current().GetRentSysvar(out) }
func GetLastRestartSlotSysvar(out []byte) uint64 { return current().GetLastRestartSlotSysvar(out) }

// InvokeSigned executes a cross-program invocation, signing for program
// derived addresses with the given seed sets.
func InvokeSigned(ix types.Instruction, accounts []*types.AccountView, signersSeeds [][][]byte) error {
	return current().InvokeSigned(ix, accounts, signersSeeds)
}

// Invoke executes a cross-program invocation with no derived signers.
func Invoke(ix types.Instruction, accounts []*types.AccountView) error {
	return current().InvokeSigned(ix, accounts, nil)
}

// SetReturnData overwrites the transaction-wide return data slot with
// (current program, data). Last writer wins.
func SetReturnData(data []byte) { current().SetReturnData(data) }

// GetReturnData returns a copy of the return data slot, or the zero key
// and nil before any write.
func GetReturnData() (solana.PublicKey, []byte) { return current().GetReturnData() }

// GetStackHeight reports the invocation depth, 1 for transaction level.
func GetStackHeight() uint64 { return current().GetStackHeight() }

// RemainingComputeUnits reports the budget left on the host's meter.
func RemainingComputeUnits() uint64 { return current().RemainingComputeUnits() }

// defaultStubs mirror the SDK's behavior outside a host: logs go to
// stdout, sysvars are unavailable, invocations are announced and
// skipped.
type defaultStubs struct{}

var _ SyscallStubs = defaultStubs{}

func (defaultStubs) Log(message string) { fmt.Println(message) }

func (defaultStubs) LogData(fields [][]byte) {
	encoded := make([]string, len(fields))
	for i, f := range fields {
		encoded[i] = base64.StdEncoding.EncodeToString(f)
	}
	fmt.Println("data:", strings.Join(encoded, " "))
}

func (defaultStubs) GetClockSysvar([]byte) uint64           { return types.UnsupportedSysvarCode }
func (defaultStubs) GetEpochScheduleSysvar([]byte) uint64   { return types.UnsupportedSysvarCode }
func (defaultStubs) GetEpochRewardsSysvar([]byte) uint64    { return types.UnsupportedSysvarCode }
func (defaultStubs) GetFeesSysvar([]byte) uint64            { return types.UnsupportedSysvarCode }
func (defaultStubs) GetRentSysvar([]byte) uint64            { return types.UnsupportedSysvarCode }
func (defaultStubs) GetLastRestartSlotSysvar([]byte) uint64 { return types.UnsupportedSysvarCode }

func (defaultStubs) InvokeSigned(types.Instruction, []*types.AccountView, [][][]byte) error {
	fmt.Println("SyscallStubs: invoke_signed() not available")
	return nil
}

func (defaultStubs) SetReturnData([]byte) {}

func (defaultStubs) GetReturnData() (solana.PublicKey, []byte) {
	return solana.PublicKey{}, nil
}

func (defaultStubs) GetStackHeight() uint64 { return 0 }

func (defaultStubs) RemainingComputeUnits() uint64 { return math.MaxUint64 }
