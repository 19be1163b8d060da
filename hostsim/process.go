package hostsim

import (
	"bytes"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/Ackee-Blockchain/trident-syscall-stubs/host"
	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// PrepareInstruction stages a cross-program invocation on behalf of the
// currently executing program: dedupe the account metas into the
// expanded instruction account list, check privileges against the
// caller's frame plus the derived signers, and resolve the program
// account.
func (s *Simulator) PrepareInstruction(ix types.Instruction, signers []solana.PublicKey) ([]host.InstructionAccount, []uint16, error) {
	frame, err := s.tx.currentFrame()
	if err != nil {
		return nil, nil, err
	}

	deduplicated := make([]host.InstructionAccount, 0, len(ix.Accounts))
	duplicateIndices := make([]int, 0, len(ix.Accounts))
	for calleeIndex, meta := range ix.Accounts {
		indexInTransaction, ok := s.tx.indexOfAccount(meta.PublicKey)
		if !ok {
			s.logf("Instruction references an unknown account %s", meta.PublicKey)
			return nil, nil, types.InstrErrMissingAccount
		}
		dup := -1
		for i := range deduplicated {
			if deduplicated[i].IndexInTransaction == indexInTransaction {
				dup = i
				break
			}
		}
		if dup >= 0 {
			duplicateIndices = append(duplicateIndices, dup)
			deduplicated[dup].IsSigner = deduplicated[dup].IsSigner || meta.IsSigner
			deduplicated[dup].IsWritable = deduplicated[dup].IsWritable || meta.IsWritable
			continue
		}
		indexInCaller, ok := frame.indexOfAccount(meta.PublicKey)
		if !ok {
			s.logf("Instruction references an unknown account %s", meta.PublicKey)
			return nil, nil, types.InstrErrMissingAccount
		}
		duplicateIndices = append(duplicateIndices, len(deduplicated))
		deduplicated = append(deduplicated, host.InstructionAccount{
			IndexInTransaction: indexInTransaction,
			IndexInCaller:      indexInCaller,
			IndexInCallee:      uint16(calleeIndex),
			IsSigner:           meta.IsSigner,
			IsWritable:         meta.IsWritable,
		})
	}

	for _, ia := range deduplicated {
		key := s.tx.accounts[ia.IndexInTransaction].key
		caller := frame.accounts[ia.IndexInCaller]
		if ia.IsWritable && !caller.IsWritable {
			s.logf("%s's writable privilege escalated", key)
			return nil, nil, types.InstrErrPrivilegeEscalation
		}
		if ia.IsSigner && !(caller.IsSigner || containsKey(signers, key)) {
			s.logf("%s's signer privilege escalated", key)
			return nil, nil, types.InstrErrPrivilegeEscalation
		}
	}

	expanded := make([]host.InstructionAccount, 0, len(duplicateIndices))
	for _, dup := range duplicateIndices {
		expanded = append(expanded, deduplicated[dup])
	}

	programIndexInCaller, ok := frame.indexOfAccount(ix.ProgramID)
	if !ok {
		s.logf("Unknown program %s", ix.ProgramID)
		return nil, nil, types.InstrErrMissingAccount
	}
	programIndexInTx := frame.accounts[programIndexInCaller].IndexInTransaction
	if !s.tx.accounts[programIndexInTx].shared.Executable {
		s.logf("Account %s is not executable", ix.ProgramID)
		return nil, nil, types.InstrErrAccountNotExecutable
	}

	return expanded, []uint16{programIndexInTx}, nil
}

// ProcessInstruction pushes a frame for a staged instruction, runs the
// program behind it, and pops the frame. consumed accumulates the
// compute units spent by this invocation, nested ones included.
func (s *Simulator) ProcessInstruction(data []byte, accounts []host.InstructionAccount, programIndices []uint16, consumed *uint64, timings *host.ExecuteTimings) error {
	start := time.Now()
	defer func() {
		elapsed := uint64(time.Since(start).Microseconds())
		timings.ExecuteUs += elapsed
		timings.ProcessInstructionsUs += elapsed
	}()

	if len(programIndices) == 0 {
		return types.InstrErrUnsupportedProgramID
	}
	programID, err := s.tx.KeyOfAccountAtIndex(programIndices[len(programIndices)-1])
	if err != nil {
		return err
	}

	frame, err := s.tx.pushFrame(programID, accounts)
	if err != nil {
		host.ProgramFailure(s.LogCollector(), programID, err)
		return err
	}
	defer s.tx.popFrame()

	before := s.meter.Remaining()
	err = s.executeFrame(frame, programID, data)
	*consumed += before - s.meter.Remaining()
	if err != nil {
		host.ProgramFailure(s.LogCollector(), programID, err)
		return err
	}
	return nil
}

func (s *Simulator) executeFrame(frame *instructionCtx, programID solana.PublicKey, data []byte) error {
	if builtin, ok := s.builtins[programID]; ok {
		if err := s.meter.Consume(s.config.BuiltinComputeCost); err != nil {
			return err
		}
		return builtin(frame, data)
	}
	if program, ok := s.programs[programID]; ok {
		return s.runNativeProgram(frame, programID, program, data)
	}
	return types.InstrErrUnsupportedProgramID
}

// runNativeProgram hands the guest detached copies of the frame's
// accounts and writes its reported mutations back through the borrowed
// account rules. Duplicate entries share one view.
func (s *Simulator) runNativeProgram(frame *instructionCtx, programID solana.PublicKey, program ProgramFunc, data []byte) error {
	views := make([]*types.AccountView, len(frame.accounts))
	for i, ia := range frame.accounts {
		if int(ia.IndexInCallee) != i {
			views[i] = views[ia.IndexInCallee]
			continue
		}
		slot := s.tx.accounts[ia.IndexInTransaction]
		views[i] = &types.AccountView{
			Key:        slot.key,
			Lamports:   slot.shared.Lamports,
			Data:       append([]byte(nil), slot.shared.Data...),
			Owner:      slot.shared.Owner,
			RentEpoch:  slot.shared.RentEpoch,
			IsSigner:   ia.IsSigner,
			IsWritable: ia.IsWritable,
			Executable: slot.shared.Executable,
		}
	}

	if err := program(programID, views, data); err != nil {
		return types.ToInstrErr(err)
	}

	for i, ia := range frame.accounts {
		if int(ia.IndexInCallee) != i || !ia.IsWritable {
			continue
		}
		if err := writeBackView(frame, uint16(i), views[i]); err != nil {
			return err
		}
	}
	return nil
}

// writeBackView applies one guest view to the host account. Unchanged
// fields don't count as writes.
func writeBackView(frame *instructionCtx, index uint16, view *types.AccountView) error {
	borrowed, err := frame.BorrowInstructionAccount(index)
	if err != nil {
		return err
	}
	defer borrowed.Drop()

	if borrowed.Lamports() != view.Lamports {
		if err := borrowed.SetLamports(view.Lamports); err != nil {
			return err
		}
	}
	if !bytes.Equal(borrowed.Data(), view.Data) {
		if err := borrowed.SetDataFromSlice(view.Data); err != nil {
			return err
		}
	}
	if !borrowed.Owner().Equals(view.Owner) {
		if err := borrowed.SetOwner(view.Owner); err != nil {
			return err
		}
	}
	return nil
}
