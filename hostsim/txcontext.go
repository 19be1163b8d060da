package hostsim

import (
	"github.com/gagliardetto/solana-go"

	"github.com/Ackee-Blockchain/trident-syscall-stubs/host"
	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// MaxPermittedDataLength caps account data size, matching the runtime's
// 10 MiB limit.
const MaxPermittedDataLength = 10 * 1024 * 1024

// txAccount is one transaction-wide account slot. Every borrow of the
// same address goes through the state shared behind it.
type txAccount struct {
	key      solana.PublicKey
	shared   *Account
	borrowed bool
}

// TxContext carries the account set, the invocation stack, and the
// return data slot of one transaction.
type TxContext struct {
	accounts  []*txAccount
	stack     []*instructionCtx
	trace     int
	maxHeight int
	maxTrace  int

	returnDataProgram solana.PublicKey
	returnData        []byte
}

var _ host.TransactionContext = (*TxContext)(nil)

func newTxContext(maxHeight, maxTrace int) *TxContext {
	return &TxContext{maxHeight: maxHeight, maxTrace: maxTrace}
}

// loadAccount appends an account slot and returns its transaction-wide
// index. Addresses must be unique; callers dedupe.
func (tc *TxContext) loadAccount(key solana.PublicKey, account Account) uint16 {
	tc.accounts = append(tc.accounts, &txAccount{key: key, shared: &account})
	return uint16(len(tc.accounts) - 1)
}

func (tc *TxContext) indexOfAccount(key solana.PublicKey) (uint16, bool) {
	for i, slot := range tc.accounts {
		if slot.key.Equals(key) {
			return uint16(i), true
		}
	}
	return 0, false
}

func (tc *TxContext) KeyOfAccountAtIndex(index uint16) (solana.PublicKey, error) {
	if int(index) >= len(tc.accounts) {
		return solana.PublicKey{}, types.InstrErrNotEnoughAccountKeys
	}
	return tc.accounts[index].key, nil
}

func (tc *TxContext) CurrentInstructionContext() (host.InstructionContext, error) {
	frame, err := tc.currentFrame()
	if err != nil {
		return nil, err
	}
	return frame, nil
}

func (tc *TxContext) currentFrame() (*instructionCtx, error) {
	if len(tc.stack) == 0 {
		return nil, types.InstrErrCallDepth
	}
	return tc.stack[len(tc.stack)-1], nil
}

func (tc *TxContext) ReturnData() (solana.PublicKey, []byte) {
	return tc.returnDataProgram, tc.returnData
}

func (tc *TxContext) SetReturnData(programID solana.PublicKey, data []byte) {
	tc.returnDataProgram = programID
	tc.returnData = data
}

// pushFrame guards the trace and stack limits, then makes the new frame
// current. The trace counts the attempt even when the stack is full.
func (tc *TxContext) pushFrame(programKey solana.PublicKey, accounts []host.InstructionAccount) (*instructionCtx, error) {
	if tc.trace >= tc.maxTrace {
		return nil, types.InstrErrMaxInstructionTraceLengthExceeded
	}
	tc.trace++
	if len(tc.stack) >= tc.maxHeight {
		return nil, types.InstrErrCallDepth
	}
	frame := &instructionCtx{
		tx:         tc,
		programKey: programKey,
		accounts:   accounts,
		height:     uint64(len(tc.stack) + 1),
	}
	tc.stack = append(tc.stack, frame)
	return frame, nil
}

func (tc *TxContext) popFrame() {
	tc.stack = tc.stack[:len(tc.stack)-1]
}

// instructionCtx is one frame of the invocation stack.
type instructionCtx struct {
	tx         *TxContext
	programKey solana.PublicKey
	accounts   []host.InstructionAccount
	height     uint64
}

var _ host.InstructionContext = (*instructionCtx)(nil)

func (ictx *instructionCtx) ProgramID() (solana.PublicKey, error) {
	return ictx.programKey, nil
}

func (ictx *instructionCtx) NumberOfInstructionAccounts() uint16 {
	return uint16(len(ictx.accounts))
}

func (ictx *instructionCtx) IsInstructionAccountSigner(index uint16) (bool, error) {
	if int(index) >= len(ictx.accounts) {
		return false, types.InstrErrNotEnoughAccountKeys
	}
	return ictx.accounts[index].IsSigner, nil
}

func (ictx *instructionCtx) StackHeight() uint64 {
	return ictx.height
}

// indexOfAccount finds the first frame position holding the address.
func (ictx *instructionCtx) indexOfAccount(key solana.PublicKey) (uint16, bool) {
	for i, ia := range ictx.accounts {
		if ictx.tx.accounts[ia.IndexInTransaction].key.Equals(key) {
			return uint16(i), true
		}
	}
	return 0, false
}

func (ictx *instructionCtx) BorrowInstructionAccount(index uint16) (host.BorrowedAccount, error) {
	if int(index) >= len(ictx.accounts) {
		return nil, types.InstrErrNotEnoughAccountKeys
	}
	ia := ictx.accounts[index]
	slot := ictx.tx.accounts[ia.IndexInTransaction]
	if slot.borrowed {
		return nil, types.InstrErrAccountBorrowFailed
	}
	slot.borrowed = true
	return &borrowedAccount{
		slot:       slot,
		programKey: ictx.programKey,
		isWritable: ia.IsWritable,
	}, nil
}

// borrowedAccount enforces the runtime's write rules against the
// borrowing program.
type borrowedAccount struct {
	slot       *txAccount
	programKey solana.PublicKey
	isWritable bool
	dropped    bool
}

var _ host.BorrowedAccount = (*borrowedAccount)(nil)

func (ba *borrowedAccount) Key() solana.PublicKey { return ba.slot.key }

func (ba *borrowedAccount) Lamports() uint64 { return ba.slot.shared.Lamports }

func (ba *borrowedAccount) Data() []byte { return ba.slot.shared.Data }

func (ba *borrowedAccount) Owner() solana.PublicKey { return ba.slot.shared.Owner }

func (ba *borrowedAccount) Executable() bool { return ba.slot.shared.Executable }

func (ba *borrowedAccount) RentEpoch() uint64 { return ba.slot.shared.RentEpoch }

func (ba *borrowedAccount) ownedByCurrentProgram() bool {
	return ba.slot.shared.Owner.Equals(ba.programKey)
}

func (ba *borrowedAccount) SetLamports(lamports uint64) error {
	if !ba.ownedByCurrentProgram() && lamports < ba.slot.shared.Lamports {
		return types.InstrErrExternalAccountLamportSpend
	}
	if !ba.isWritable {
		return types.InstrErrReadonlyLamportChange
	}
	if ba.slot.shared.Executable {
		return types.InstrErrExecutableLamportChange
	}
	ba.slot.shared.Lamports = lamports
	return nil
}

func (ba *borrowedAccount) CanDataBeChanged() error {
	if ba.slot.shared.Executable {
		return types.InstrErrExecutableDataModified
	}
	if !ba.isWritable {
		return types.InstrErrReadonlyDataModified
	}
	if !ba.ownedByCurrentProgram() {
		return types.InstrErrExternalAccountDataModified
	}
	return nil
}

func (ba *borrowedAccount) CanDataBeResized(length int) error {
	// Only the owner may change the data length.
	if length != len(ba.slot.shared.Data) && !ba.ownedByCurrentProgram() {
		return types.InstrErrAccountDataSizeChanged
	}
	if length > MaxPermittedDataLength {
		return types.InstrErrInvalidRealloc
	}
	return nil
}

func (ba *borrowedAccount) SetDataFromSlice(data []byte) error {
	if err := ba.CanDataBeResized(len(data)); err != nil {
		return err
	}
	if err := ba.CanDataBeChanged(); err != nil {
		return err
	}
	ba.slot.shared.Data = append([]byte(nil), data...)
	return nil
}

// SetOwner reassigns the account. Only the current owner may do it, the
// account must be writable, not executable, and its data zeroed.
func (ba *borrowedAccount) SetOwner(owner solana.PublicKey) error {
	if !ba.ownedByCurrentProgram() || !ba.isWritable || ba.slot.shared.Executable || !isZeroed(ba.slot.shared.Data) {
		return types.InstrErrModifiedProgramID
	}
	ba.slot.shared.Owner = owner
	return nil
}

func (ba *borrowedAccount) Drop() {
	if ba.dropped {
		return
	}
	ba.dropped = true
	ba.slot.borrowed = false
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
