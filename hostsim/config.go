// Package hostsim is an in-process host for programs driven through the
// syscall stubs. It keeps accounts in a memdb-backed bank, enforces the
// runtime's account write rules, meters compute, collects logs, and
// routes instructions to builtin or registered native programs.
package hostsim

// Config tunes one Simulator. Start from DefaultConfig; the zero value
// rejects every instruction.
type Config struct {
	// ComputeBudget is the number of compute units one transaction may
	// spend across all of its invocations.
	ComputeBudget uint64 `json:"compute_budget"`
	// BuiltinComputeCost is charged for each builtin invocation.
	BuiltinComputeCost uint64 `json:"builtin_compute_cost"`
	// MaxInvokeStackHeight bounds the invocation stack, transaction
	// level included.
	MaxInvokeStackHeight int `json:"max_invoke_stack_height"`
	// MaxInstructionTraceLength bounds the total number of invocations
	// in one transaction, successful or not.
	MaxInstructionTraceLength int `json:"max_instruction_trace_length"`
	// LogBytesLimit caps the bytes kept by the log collector before it
	// truncates.
	LogBytesLimit int `json:"log_bytes_limit"`
	// PrintDebug mirrors collected log lines to stdout as they arrive.
	PrintDebug bool `json:"print_debug"`
}

// DefaultConfig returns the limits of a stock cluster.
func DefaultConfig() Config {
	return Config{
		ComputeBudget:             1_400_000,
		BuiltinComputeCost:        150,
		MaxInvokeStackHeight:      5,
		MaxInstructionTraceLength: 64,
		LogBytesLimit:             10_000,
		PrintDebug:                false,
	}
}
