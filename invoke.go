package trident

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/Ackee-Blockchain/trident-syscall-stubs/host"
	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// contextStubs back the syscall surface with the process-wide invoke
// context. They assume a host has one set; use outside a transaction is
// fatal.
type contextStubs struct{}

var _ SyscallStubs = contextStubs{}

func (contextStubs) Log(message string) {
	host.ProgramLog(host.GetInvokeContext().LogCollector(), message)
}

func (contextStubs) LogData(fields [][]byte) {
	host.ProgramData(host.GetInvokeContext().LogCollector(), fields...)
}

func (contextStubs) SetReturnData(data []byte) {
	tc := host.GetInvokeContext().TransactionContext()
	ictx, err := tc.CurrentInstructionContext()
	if err != nil {
		panic(fmt.Sprintf("set return data outside an instruction: %v", err))
	}
	programID, err := ictx.ProgramID()
	if err != nil {
		panic(fmt.Sprintf("set return data outside an instruction: %v", err))
	}
	tc.SetReturnData(programID, append([]byte(nil), data...))
}

func (contextStubs) GetReturnData() (solana.PublicKey, []byte) {
	programID, data := host.GetInvokeContext().TransactionContext().ReturnData()
	if len(data) == 0 {
		return programID, nil
	}
	return programID, append([]byte(nil), data...)
}

func (contextStubs) GetStackHeight() uint64 {
	return host.GetInvokeContext().StackHeight()
}

func (contextStubs) RemainingComputeUnits() uint64 {
	return host.GetInvokeContext().RemainingComputeUnits()
}

// InvokeSigned runs a cross-program invocation through the host: derive
// the program's signers from the seed sets, stage the instruction, push
// the caller's view of every staged account into the host, execute, and
// pull the host state of the writable ones back out. Errors the callee
// can act on come back translated; everything else is fatal.
func (contextStubs) InvokeSigned(ix types.Instruction, accounts []*types.AccountView, signersSeeds [][][]byte) error {
	ic := host.GetInvokeContext()
	tc := ic.TransactionContext()

	ictx, err := tc.CurrentInstructionContext()
	if err != nil {
		panic(fmt.Sprintf("invoke outside an instruction: %v", err))
	}
	callerID, err := ictx.ProgramID()
	if err != nil {
		panic(fmt.Sprintf("invoke outside an instruction: %v", err))
	}

	signers := make([]solana.PublicKey, 0, len(signersSeeds))
	for _, seeds := range signersSeeds {
		signer, err := solana.CreateProgramAddress(seeds, callerID)
		if err != nil {
			panic(fmt.Sprintf("Unable to create program address with signer seeds: %v", err))
		}
		signers = append(signers, signer)
	}

	instructionAccounts, programIndices, err := ic.PrepareInstruction(ix, signers)
	if err != nil {
		return translateOrAbort(err)
	}

	// Push the caller's account views into the host before the callee
	// runs. A duplicate entry aliases an earlier one and is skipped.
	writable := make([]writableView, 0, len(instructionAccounts))
	for i, ia := range instructionAccounts {
		if uint16(i) != ia.IndexInCallee {
			continue
		}
		key, err := tc.KeyOfAccountAtIndex(ia.IndexInTransaction)
		if err != nil {
			panic(fmt.Sprintf("staged account %d out of range: %v", ia.IndexInTransaction, err))
		}
		view := findAccountView(accounts, key)
		if view == nil {
			panic(fmt.Sprintf("instruction references account %s missing from the passed accounts", key))
		}
		syncToHost(ictx, ia.IndexInCaller, view)
		if ia.IsWritable {
			writable = append(writable, writableView{indexInCaller: ia.IndexInCaller, view: view})
		}
	}

	host.ProgramInvoke(ic.LogCollector(), ix.ProgramID, ic.StackHeight()+1)

	var consumed uint64
	var timings host.ExecuteTimings
	if err := ic.ProcessInstruction(ix.Data, instructionAccounts, programIndices, &consumed, &timings); err != nil {
		return translateOrAbort(err)
	}

	for _, w := range writable {
		syncFromHost(ictx, w.indexInCaller, w.view)
	}

	host.ProgramSuccess(ic.LogCollector(), ix.ProgramID)
	return nil
}

type writableView struct {
	indexInCaller uint16
	view          *types.AccountView
}

// translateOrAbort maps a host failure to the guest error the caller
// can handle. Kinds with no guest representation are fatal.
func translateOrAbort(err error) error {
	if guestErr := types.ToProgramError(err); guestErr != nil {
		return guestErr
	}
	panic(fmt.Sprintf("invocation failed with untranslatable error: %v", err))
}

func findAccountView(accounts []*types.AccountView, key solana.PublicKey) *types.AccountView {
	for _, a := range accounts {
		if a != nil && a.Key.Equals(key) {
			return a
		}
	}
	return nil
}

// syncToHost writes one guest view into the borrowed host account,
// lamports first, then data, then owner. The owner write comes last so
// the earlier writes still pass the current-owner checks. A forbidden
// data write is tolerated only when the bytes did not change.
func syncToHost(ictx host.InstructionContext, indexInCaller uint16, view *types.AccountView) {
	borrowed, err := ictx.BorrowInstructionAccount(indexInCaller)
	if err != nil {
		panic(fmt.Sprintf("borrow of account %d failed: %v", indexInCaller, err))
	}
	defer borrowed.Drop()

	if borrowed.Lamports() != view.Lamports {
		if err := borrowed.SetLamports(view.Lamports); err != nil {
			panic(fmt.Sprintf("%v: %s", err, borrowed.Key()))
		}
	}

	writeErr := borrowed.CanDataBeResized(len(view.Data))
	if writeErr == nil {
		writeErr = borrowed.CanDataBeChanged()
	}
	if writeErr == nil {
		if err := borrowed.SetDataFromSlice(view.Data); err != nil {
			panic(fmt.Sprintf("%v: %s", err, borrowed.Key()))
		}
	} else if !bytes.Equal(borrowed.Data(), view.Data) {
		panic(fmt.Sprintf("%v: %s", writeErr, borrowed.Key()))
	}

	if !borrowed.Owner().Equals(view.Owner) {
		if err := borrowed.SetOwner(view.Owner); err != nil {
			panic(fmt.Sprintf("%v: %s", err, borrowed.Key()))
		}
	}
}

// syncFromHost overwrites one guest view with the host state after the
// callee ran.
func syncFromHost(ictx host.InstructionContext, indexInCaller uint16, view *types.AccountView) {
	borrowed, err := ictx.BorrowInstructionAccount(indexInCaller)
	if err != nil {
		panic(fmt.Sprintf("borrow of account %d failed: %v", indexInCaller, err))
	}
	defer borrowed.Drop()

	view.Lamports = borrowed.Lamports()
	if !view.Owner.Equals(borrowed.Owner()) {
		view.Owner = borrowed.Owner()
	}
	data := borrowed.Data()
	if len(view.Data) != len(data) {
		view.Resize(len(data))
	}
	copy(view.Data, data)
}
