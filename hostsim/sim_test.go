package hostsim

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

func TestRegisteredProgramsGetExecutableAccounts(t *testing.T) {
	sim := NewSimulator(DefaultConfig())

	system, ok := sim.GetAccount(solana.SystemProgramID)
	require.True(t, ok)
	assert.True(t, system.Executable)
	assert.Equal(t, NativeLoaderID, system.Owner)

	programID := bankKey(0x50)
	sim.RegisterProgram(programID, func(solana.PublicKey, []*types.AccountView, []byte) error {
		return nil
	})
	program, ok := sim.GetAccount(programID)
	require.True(t, ok)
	assert.True(t, program.Executable)
	assert.Equal(t, NativeLoaderID, program.Owner)
}

func TestFundAccountCreatesAndCredits(t *testing.T) {
	sim := NewSimulator(DefaultConfig())
	key := bankKey(0x01)

	sim.FundAccount(key, 100)
	account, ok := sim.GetAccount(key)
	require.True(t, ok)
	assert.Equal(t, uint64(100), account.Lamports)
	assert.Equal(t, solana.SystemProgramID, account.Owner)

	sim.FundAccount(key, 50)
	account, _ = sim.GetAccount(key)
	assert.Equal(t, uint64(150), account.Lamports)
}

func TestRollbackOnFailedTransaction(t *testing.T) {
	sim := NewSimulator(DefaultConfig())
	from := bankKey(0x01)
	to := bankKey(0x02)
	sim.FundAccount(from, 1000)

	// The first transfer would succeed; the second overdraws. Neither
	// may reach the bank.
	result := sim.RunTransaction(Transaction{
		Instructions: []types.Instruction{
			NewTransferInstruction(from, to, 300),
			NewTransferInstruction(from, to, 5000),
		},
		Signers: []solana.PublicKey{from},
	})
	require.Error(t, result.Err)

	source, _ := sim.GetAccount(from)
	assert.Equal(t, uint64(1000), source.Lamports)
	_, ok := sim.GetAccount(to)
	assert.False(t, ok)
}

func TestUnknownProgramIsNotExecutable(t *testing.T) {
	sim := NewSimulator(DefaultConfig())
	account := bankKey(0x01)
	sim.FundAccount(account, 1000)

	ix := types.NewInstruction(bankKey(0x99), nil, solana.Meta(account).WRITE())
	result := sim.RunTransaction(Transaction{Instructions: []types.Instruction{ix}})
	require.ErrorIs(t, result.Err, types.InstrErrAccountNotExecutable)
}

func TestComputeBudgetExhaustion(t *testing.T) {
	config := DefaultConfig()
	config.ComputeBudget = 100 // below one builtin invocation
	sim := NewSimulator(config)
	from := bankKey(0x01)
	sim.FundAccount(from, 1000)

	result := sim.RunTransaction(Transaction{
		Instructions: []types.Instruction{NewTransferInstruction(from, bankKey(0x02), 10)},
		Signers:      []solana.PublicKey{from},
	})
	require.ErrorIs(t, result.Err, types.InstrErrComputationalBudgetExceeded)
	assert.Equal(t, uint64(100), result.UnitsConsumed)
}

func TestInstructionTraceLimitStopsTransaction(t *testing.T) {
	config := DefaultConfig()
	config.MaxInstructionTraceLength = 2
	sim := NewSimulator(config)
	from := bankKey(0x01)
	sim.FundAccount(from, 1000)

	transfer := NewTransferInstruction(from, bankKey(0x02), 10)
	result := sim.RunTransaction(Transaction{
		Instructions: []types.Instruction{transfer, transfer, transfer},
		Signers:      []solana.PublicKey{from},
	})
	require.ErrorIs(t, result.Err, types.InstrErrMaxInstructionTraceLengthExceeded)
}

func TestNativeProgramErrorMapsBack(t *testing.T) {
	sim := NewSimulator(DefaultConfig())
	programID := bankKey(0x50)
	sim.RegisterProgram(programID, func(solana.PublicKey, []*types.AccountView, []byte) error {
		return types.NewCustomError(7)
	})

	result := sim.RunTransaction(Transaction{
		Instructions: []types.Instruction{types.NewInstruction(programID, nil)},
	})
	require.Equal(t, types.InstrErrCustom(7), result.Err)

	// The failure line carries the mapped host error.
	require.NotEmpty(t, result.Logs)
	last := result.Logs[len(result.Logs)-1]
	assert.True(t, strings.HasSuffix(last, "failed: custom program error: 0x7"), last)
}

func TestNativeProgramViewsAreDetached(t *testing.T) {
	sim := NewSimulator(DefaultConfig())
	programID := bankKey(0x50)
	target := bankKey(0x01)
	sim.SetAccount(target, Account{Lamports: 10, Owner: programID, Data: []byte{1, 2}})

	// A read-only view may be scribbled on freely; nothing reaches the
	// host state.
	sim.RegisterProgram(programID, func(_ solana.PublicKey, accounts []*types.AccountView, _ []byte) error {
		accounts[0].Data[0] = 0xFF
		accounts[0].Lamports = 0
		return nil
	})

	ix := types.NewInstruction(programID, nil, solana.Meta(target))
	result := sim.RunTransaction(Transaction{Instructions: []types.Instruction{ix}})
	require.NoError(t, result.Err, "logs: %v", result.Logs)

	committed, _ := sim.GetAccount(target)
	assert.Equal(t, uint64(10), committed.Lamports)
	assert.Equal(t, []byte{1, 2}, committed.Data)
}

func TestLogTruncation(t *testing.T) {
	config := DefaultConfig()
	config.LogBytesLimit = 60
	sim := NewSimulator(config)
	from := bankKey(0x01)
	sim.FundAccount(from, 1000)

	result := sim.RunTransaction(Transaction{
		Instructions: []types.Instruction{NewTransferInstruction(from, bankKey(0x02), 10)},
		Signers:      []solana.PublicKey{from},
	})
	require.NoError(t, result.Err)

	require.Len(t, result.Logs, 2)
	assert.Contains(t, result.Logs[0], "invoke [1]")
	assert.Equal(t, "Log truncated", result.Logs[1])
}

func TestRecordCapturesRun(t *testing.T) {
	sim := NewSimulator(DefaultConfig())
	from := bankKey(0x01)
	to := bankKey(0x02)
	sim.FundAccount(from, 1000)

	result := sim.RunTransaction(Transaction{
		Instructions: []types.Instruction{NewTransferInstruction(from, to, 300)},
		Signers:      []solana.PublicKey{from},
	})
	require.NoError(t, result.Err)

	record := sim.Record(result, solana.SystemProgramID, from, to)
	assert.Equal(t, solana.SystemProgramID.String(), record.Program)
	assert.Equal(t, result.Logs, record.Logs)
	assert.Equal(t, result.UnitsConsumed, record.UnitsConsumed)
	require.Len(t, record.Accounts, 2)
	assert.Equal(t, uint64(700), record.Accounts[0].Lamports)
	assert.Equal(t, uint64(300), record.Accounts[1].Lamports)

	raw, err := record.Marshal()
	require.NoError(t, err)
	back, err := types.UnmarshalExecutionRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, record, back)
}
