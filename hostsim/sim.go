package hostsim

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/Ackee-Blockchain/trident-syscall-stubs/host"
	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// NativeLoaderID owns builtin and registered native program accounts.
var NativeLoaderID = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")

// ProgramFunc is a native guest program. It receives its own id, one
// view per instruction account entry, and the raw instruction data.
type ProgramFunc func(programID solana.PublicKey, accounts []*types.AccountView, data []byte) error

// BuiltinFunc is a host-side program operating directly on borrowed
// accounts of its frame.
type BuiltinFunc func(ictx host.InstructionContext, data []byte) error

// Transaction is one batch of instructions sharing account state,
// signed by Signers.
type Transaction struct {
	Instructions []types.Instruction
	Signers      []solana.PublicKey
}

// ExecutionResult reports one transaction run.
type ExecutionResult struct {
	Logs              []string
	UnitsConsumed     uint64
	ReturnDataProgram solana.PublicKey
	ReturnData        []byte
	Err               error
}

// Simulator is an in-process host. It keeps accounts in a bank across
// transactions and serves the invoke context while one runs. Not safe
// for concurrent use; run transactions from one goroutine.
type Simulator struct {
	config   Config
	bank     *Bank
	sysvars  SysvarCache
	builtins map[solana.PublicKey]BuiltinFunc
	programs map[solana.PublicKey]ProgramFunc

	tx        *TxContext
	meter     *ComputeMeter
	collector *LogCollector
}

var _ host.InvokeContext = (*Simulator)(nil)

// NewSimulator returns a simulator with the system program installed.
func NewSimulator(config Config) *Simulator {
	s := &Simulator{
		config:   config,
		bank:     NewBank(),
		builtins: make(map[solana.PublicKey]BuiltinFunc),
		programs: make(map[solana.PublicKey]ProgramFunc),
	}
	s.RegisterBuiltin(solana.SystemProgramID, processSystemInstruction)
	return s
}

// RegisterBuiltin installs a host-side program under id and gives it an
// executable account owned by the native loader.
func (s *Simulator) RegisterBuiltin(id solana.PublicKey, fn BuiltinFunc) {
	s.builtins[id] = fn
	s.registerProgramAccount(id)
}

// RegisterProgram installs a native guest program under id.
func (s *Simulator) RegisterProgram(id solana.PublicKey, fn ProgramFunc) {
	s.programs[id] = fn
	s.registerProgramAccount(id)
}

func (s *Simulator) registerProgramAccount(id solana.PublicKey) {
	if _, ok := s.bank.GetAccount(id); ok {
		return
	}
	s.bank.SetAccount(id, Account{
		Lamports:   1,
		Owner:      NativeLoaderID,
		Executable: true,
	})
}

// SetAccount writes an account straight into the bank.
func (s *Simulator) SetAccount(key solana.PublicKey, account Account) {
	s.bank.SetAccount(key, account.Clone())
}

// GetAccount reads an account from the bank.
func (s *Simulator) GetAccount(key solana.PublicKey) (Account, bool) {
	return s.bank.GetAccount(key)
}

// FundAccount credits lamports, creating a system-owned account when
// the address is new.
func (s *Simulator) FundAccount(key solana.PublicKey, lamports uint64) {
	account, ok := s.bank.GetAccount(key)
	if !ok {
		account = Account{Owner: solana.SystemProgramID}
	}
	account.Lamports += lamports
	s.bank.SetAccount(key, account)
}

func (s *Simulator) SetClock(clock types.Clock) { s.sysvars.SetClock(clock) }

func (s *Simulator) SetEpochSchedule(es types.EpochSchedule) { s.sysvars.SetEpochSchedule(es) }

func (s *Simulator) SetEpochRewards(er types.EpochRewards) { s.sysvars.SetEpochRewards(er) }

func (s *Simulator) SetFees(fees types.Fees) { s.sysvars.SetFees(fees) }

func (s *Simulator) SetLastRestartSlot(l types.LastRestartSlot) { s.sysvars.SetLastRestartSlot(l) }

func (s *Simulator) SetRent(rent types.Rent) { s.sysvars.SetRent(rent) }

func (s *Simulator) TransactionContext() host.TransactionContext {
	if s.tx == nil {
		panic("no transaction in progress")
	}
	return s.tx
}

func (s *Simulator) SysvarCache() host.SysvarCache {
	return &s.sysvars
}

func (s *Simulator) LogCollector() host.LogCollector {
	if s.collector == nil {
		return nil
	}
	return s.collector
}

func (s *Simulator) StackHeight() uint64 {
	if s.tx == nil {
		return 0
	}
	return uint64(len(s.tx.stack))
}

func (s *Simulator) RemainingComputeUnits() uint64 {
	if s.meter == nil {
		return 0
	}
	return s.meter.Remaining()
}

// RunTransaction executes the instructions in order against a fresh
// transaction context, stopping at the first failure. Account changes
// reach the bank only when every instruction succeeded.
func (s *Simulator) RunTransaction(tx Transaction) *ExecutionResult {
	s.beginTransaction(tx)
	defer s.endTransaction()

	result := &ExecutionResult{}
	for _, ix := range tx.Instructions {
		accounts, programIndices, err := s.stageTopLevel(ix, tx.Signers)
		if err != nil {
			result.Err = err
			break
		}
		host.ProgramInvoke(s.LogCollector(), ix.ProgramID, 1)
		var consumed uint64
		var timings host.ExecuteTimings
		err = s.ProcessInstruction(ix.Data, accounts, programIndices, &consumed, &timings)
		result.UnitsConsumed += consumed
		if err != nil {
			result.Err = err
			break
		}
		host.ProgramSuccess(s.LogCollector(), ix.ProgramID)
	}

	result.Logs = s.collector.Messages()
	program, data := s.tx.ReturnData()
	result.ReturnDataProgram = program
	result.ReturnData = append([]byte(nil), data...)
	if result.Err == nil {
		s.commit()
	}
	return result
}

func (s *Simulator) beginTransaction(tx Transaction) {
	s.tx = newTxContext(s.config.MaxInvokeStackHeight, s.config.MaxInstructionTraceLength)
	s.meter = NewComputeMeter(s.config.ComputeBudget)
	s.collector = NewLogCollector(s.config.LogBytesLimit, s.config.PrintDebug)
	for _, ix := range tx.Instructions {
		for _, meta := range ix.Accounts {
			s.ensureLoaded(meta.PublicKey)
		}
		s.ensureLoaded(ix.ProgramID)
	}
	host.SetInvokeContext(s)
}

func (s *Simulator) endTransaction() {
	host.ClearInvokeContext()
	s.tx = nil
	s.meter = nil
	s.collector = nil
}

// ensureLoaded pulls an account into the transaction context once.
// Unknown addresses enter as empty system-owned accounts.
func (s *Simulator) ensureLoaded(key solana.PublicKey) {
	if _, ok := s.tx.indexOfAccount(key); ok {
		return
	}
	account, ok := s.bank.GetAccount(key)
	if !ok {
		account = Account{Owner: solana.SystemProgramID}
	}
	s.tx.loadAccount(key, account.Clone())
}

// stageTopLevel builds the expanded instruction account list for a
// transaction-level instruction. Privileges come from the metas; the
// signer bit additionally requires the address among the transaction
// signers.
func (s *Simulator) stageTopLevel(ix types.Instruction, signers []solana.PublicKey) ([]host.InstructionAccount, []uint16, error) {
	deduplicated := make([]host.InstructionAccount, 0, len(ix.Accounts))
	duplicateIndices := make([]int, 0, len(ix.Accounts))
	for calleeIndex, meta := range ix.Accounts {
		indexInTransaction, ok := s.tx.indexOfAccount(meta.PublicKey)
		if !ok {
			return nil, nil, types.InstrErrMissingAccount
		}
		isSigner := meta.IsSigner && containsKey(signers, meta.PublicKey)
		dup := -1
		for i := range deduplicated {
			if deduplicated[i].IndexInTransaction == indexInTransaction {
				dup = i
				break
			}
		}
		if dup >= 0 {
			duplicateIndices = append(duplicateIndices, dup)
			deduplicated[dup].IsSigner = deduplicated[dup].IsSigner || isSigner
			deduplicated[dup].IsWritable = deduplicated[dup].IsWritable || meta.IsWritable
			continue
		}
		duplicateIndices = append(duplicateIndices, len(deduplicated))
		deduplicated = append(deduplicated, host.InstructionAccount{
			IndexInTransaction: indexInTransaction,
			IndexInCaller:      indexInTransaction,
			IndexInCallee:      uint16(calleeIndex),
			IsSigner:           isSigner,
			IsWritable:         meta.IsWritable,
		})
	}

	expanded := make([]host.InstructionAccount, 0, len(duplicateIndices))
	for _, dup := range duplicateIndices {
		expanded = append(expanded, deduplicated[dup])
	}

	programIndex, ok := s.tx.indexOfAccount(ix.ProgramID)
	if !ok {
		return nil, nil, types.InstrErrMissingAccount
	}
	if !s.tx.accounts[programIndex].shared.Executable {
		s.logf("Account %s is not executable", ix.ProgramID)
		return nil, nil, types.InstrErrAccountNotExecutable
	}
	return expanded, []uint16{programIndex}, nil
}

// commit writes the transaction's account state back to the bank.
// Accounts drained to zero lamports are reaped.
func (s *Simulator) commit() {
	for _, slot := range s.tx.accounts {
		if slot.shared.Lamports == 0 {
			s.bank.DeleteAccount(slot.key)
			continue
		}
		s.bank.SetAccount(slot.key, *slot.shared)
	}
}

// Record snapshots a finished run plus the named accounts' bank state
// into the portable record format.
func (s *Simulator) Record(result *ExecutionResult, program solana.PublicKey, accounts ...solana.PublicKey) types.ExecutionRecord {
	record := types.ExecutionRecord{
		Program:           program.String(),
		Logs:              result.Logs,
		UnitsConsumed:     result.UnitsConsumed,
		ReturnDataProgram: result.ReturnDataProgram.String(),
		ReturnData:        result.ReturnData,
	}
	if result.Err != nil {
		record.Err = result.Err.Error()
	}
	for _, key := range accounts {
		account, ok := s.bank.GetAccount(key)
		if !ok {
			continue
		}
		record.Accounts = append(record.Accounts, types.AccountRecord{
			Address:  key.String(),
			Lamports: account.Lamports,
			Owner:    account.Owner.String(),
			Data:     account.Data,
		})
	}
	return record
}

func (s *Simulator) logf(format string, args ...interface{}) {
	if s.collector == nil {
		return
	}
	s.collector.Log(fmt.Sprintf(format, args...))
}

func containsKey(keys []solana.PublicKey, key solana.PublicKey) bool {
	for _, k := range keys {
		if k.Equals(key) {
			return true
		}
	}
	return false
}
