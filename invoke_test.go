package trident

import (
	"bytes"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ackee-Blockchain/trident-syscall-stubs/host"
	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// Host doubles. The fake records every account operation so tests can
// assert the bridge's synchronization order, and every rule can be made
// to fail on demand.

type memCollector struct {
	lines []string
}

func (c *memCollector) Log(message string) {
	c.lines = append(c.lines, message)
}

type fakeAccount struct {
	key      solana.PublicKey
	lamports uint64
	data     []byte
	owner    solana.PublicKey
	borrowed bool
	ops      []string

	lamportsErr error
	changeErr   error
	resizeErr   error
	setOwner    func(a *fakeAccount, owner solana.PublicKey) error
}

type fakeBorrowed struct {
	a *fakeAccount
}

var _ host.BorrowedAccount = (*fakeBorrowed)(nil)

func (b *fakeBorrowed) Key() solana.PublicKey { return b.a.key }
func (b *fakeBorrowed) Lamports() uint64      { return b.a.lamports }

func (b *fakeBorrowed) SetLamports(lamports uint64) error {
	if b.a.lamportsErr != nil {
		return b.a.lamportsErr
	}
	b.a.ops = append(b.a.ops, "set_lamports")
	b.a.lamports = lamports
	return nil
}

func (b *fakeBorrowed) Data() []byte { return b.a.data }

func (b *fakeBorrowed) SetDataFromSlice(data []byte) error {
	b.a.ops = append(b.a.ops, "set_data")
	b.a.data = append([]byte(nil), data...)
	return nil
}

func (b *fakeBorrowed) CanDataBeResized(int) error { return b.a.resizeErr }
func (b *fakeBorrowed) CanDataBeChanged() error    { return b.a.changeErr }
func (b *fakeBorrowed) Owner() solana.PublicKey    { return b.a.owner }

func (b *fakeBorrowed) SetOwner(owner solana.PublicKey) error {
	if b.a.setOwner != nil {
		if err := b.a.setOwner(b.a, owner); err != nil {
			return err
		}
	}
	b.a.ops = append(b.a.ops, "set_owner")
	b.a.owner = owner
	return nil
}

func (b *fakeBorrowed) Executable() bool  { return false }
func (b *fakeBorrowed) RentEpoch() uint64 { return 0 }
func (b *fakeBorrowed) Drop()             { b.a.borrowed = false }

type fakeIctx struct {
	tx *fakeTx
}

var _ host.InstructionContext = (*fakeIctx)(nil)

func (f *fakeIctx) ProgramID() (solana.PublicKey, error) { return f.tx.callerID, nil }

func (f *fakeIctx) BorrowInstructionAccount(index uint16) (host.BorrowedAccount, error) {
	if int(index) >= len(f.tx.accounts) {
		return nil, types.InstrErrNotEnoughAccountKeys
	}
	a := f.tx.accounts[index]
	if a.borrowed {
		return nil, types.InstrErrAccountBorrowFailed
	}
	a.borrowed = true
	a.ops = append(a.ops, "borrow")
	return &fakeBorrowed{a: a}, nil
}

func (f *fakeIctx) NumberOfInstructionAccounts() uint16 { return uint16(len(f.tx.accounts)) }

func (f *fakeIctx) IsInstructionAccountSigner(uint16) (bool, error) { return false, nil }

func (f *fakeIctx) StackHeight() uint64 { return f.tx.height }

type fakeTx struct {
	accounts      []*fakeAccount
	callerID      solana.PublicKey
	height        uint64
	returnProgram solana.PublicKey
	returnData    []byte
}

var _ host.TransactionContext = (*fakeTx)(nil)

func (tx *fakeTx) KeyOfAccountAtIndex(index uint16) (solana.PublicKey, error) {
	if int(index) >= len(tx.accounts) {
		return solana.PublicKey{}, types.InstrErrNotEnoughAccountKeys
	}
	return tx.accounts[index].key, nil
}

func (tx *fakeTx) CurrentInstructionContext() (host.InstructionContext, error) {
	return &fakeIctx{tx: tx}, nil
}

func (tx *fakeTx) ReturnData() (solana.PublicKey, []byte) {
	return tx.returnProgram, tx.returnData
}

func (tx *fakeTx) SetReturnData(programID solana.PublicKey, data []byte) {
	tx.returnProgram = programID
	tx.returnData = data
}

type fakeHost struct {
	tx         *fakeTx
	sysvars    fakeSysvars
	collector  *memCollector
	prepared   []host.InstructionAccount
	programIdx []uint16
	prepareErr error
	processErr error
	process    func()
	gotSigners []solana.PublicKey
	processed  bool
	remaining  uint64
}

var _ host.InvokeContext = (*fakeHost)(nil)

func (f *fakeHost) TransactionContext() host.TransactionContext { return f.tx }

func (f *fakeHost) PrepareInstruction(ix types.Instruction, signers []solana.PublicKey) ([]host.InstructionAccount, []uint16, error) {
	f.gotSigners = signers
	if f.prepareErr != nil {
		return nil, nil, f.prepareErr
	}
	return f.prepared, f.programIdx, nil
}

func (f *fakeHost) ProcessInstruction(data []byte, accounts []host.InstructionAccount, programIndices []uint16, consumed *uint64, timings *host.ExecuteTimings) error {
	f.processed = true
	if f.process != nil {
		f.process()
	}
	*consumed += 42
	return f.processErr
}

func (f *fakeHost) SysvarCache() host.SysvarCache { return &f.sysvars }

func (f *fakeHost) LogCollector() host.LogCollector {
	if f.collector == nil {
		return nil
	}
	return f.collector
}

func (f *fakeHost) StackHeight() uint64 { return f.tx.height }

func (f *fakeHost) RemainingComputeUnits() uint64 { return f.remaining }

type fakeSysvars struct {
	clock           *types.Clock
	epochSchedule   *types.EpochSchedule
	epochRewards    *types.EpochRewards
	fees            *types.Fees
	lastRestartSlot *types.LastRestartSlot
	rent            *types.Rent
}

var _ host.SysvarCache = (*fakeSysvars)(nil)

func (c *fakeSysvars) Clock() (types.Clock, bool) {
	if c.clock == nil {
		return types.Clock{}, false
	}
	return *c.clock, true
}

func (c *fakeSysvars) EpochSchedule() (types.EpochSchedule, bool) {
	if c.epochSchedule == nil {
		return types.EpochSchedule{}, false
	}
	return *c.epochSchedule, true
}

func (c *fakeSysvars) EpochRewards() (types.EpochRewards, bool) {
	if c.epochRewards == nil {
		return types.EpochRewards{}, false
	}
	return *c.epochRewards, true
}

func (c *fakeSysvars) Fees() (types.Fees, bool) {
	if c.fees == nil {
		return types.Fees{}, false
	}
	return *c.fees, true
}

func (c *fakeSysvars) LastRestartSlot() (types.LastRestartSlot, bool) {
	if c.lastRestartSlot == nil {
		return types.LastRestartSlot{}, false
	}
	return *c.lastRestartSlot, true
}

func (c *fakeSysvars) Rent() (types.Rent, bool) {
	if c.rent == nil {
		return types.Rent{}, false
	}
	return *c.rent, true
}

func testKey(tag byte) solana.PublicKey {
	var raw [32]byte
	for i := range raw {
		raw[i] = tag
	}
	return solana.PublicKeyFromBytes(raw[:])
}

// withFakeHost attaches f as the process host for the test's duration.
func withFakeHost(t *testing.T, f *fakeHost) {
	t.Helper()
	host.SetInvokeContext(f)
	t.Cleanup(host.ClearInvokeContext)
}

// identityStaging stages every account at its own index, the writable
// flags taken per position.
func identityStaging(f *fakeHost, writable ...bool) {
	f.prepared = f.prepared[:0]
	for i := range f.tx.accounts {
		f.prepared = append(f.prepared, host.InstructionAccount{
			IndexInTransaction: uint16(i),
			IndexInCaller:      uint16(i),
			IndexInCallee:      uint16(i),
			IsWritable:         i < len(writable) && writable[i],
		})
	}
	f.programIdx = []uint16{0}
}

func viewFromAccount(a *fakeAccount, writable bool) *types.AccountView {
	return &types.AccountView{
		Key:        a.key,
		Lamports:   a.lamports,
		Data:       append([]byte(nil), a.data...),
		Owner:      a.owner,
		IsWritable: writable,
	}
}

func TestInvokeSignedReadOnlyRoundTrip(t *testing.T) {
	ownerA, ownerB := testKey(0x0A), testKey(0x0B)
	accountA := &fakeAccount{key: testKey(1), lamports: 100, data: []byte{1, 2, 3}, owner: ownerA}
	accountB := &fakeAccount{key: testKey(2), lamports: 200, data: []byte{4, 5}, owner: ownerB}

	f := &fakeHost{tx: &fakeTx{accounts: []*fakeAccount{accountA, accountB}, callerID: testKey(0xCA)}, collector: &memCollector{}}
	identityStaging(f, false, false)
	// Host-side churn during the nested call must not leak into
	// read-only guest views.
	f.process = func() {
		accountA.lamports = 1
		accountA.data = []byte{9, 9, 9, 9}
	}
	withFakeHost(t, f)

	viewA := viewFromAccount(accountA, false)
	viewB := viewFromAccount(accountB, false)
	beforeA, beforeB := viewA.Clone(), viewB.Clone()

	ix := types.NewInstruction(testKey(0xEE), nil, solana.Meta(viewA.Key), solana.Meta(viewB.Key))
	err := contextStubs{}.InvokeSigned(ix, []*types.AccountView{viewA, viewB}, nil)
	require.NoError(t, err)
	require.True(t, f.processed)

	assert.Equal(t, beforeA, viewA)
	assert.Equal(t, beforeB, viewB)
}

func TestInvokeSignedWritableSync(t *testing.T) {
	ownerBefore, ownerAfter := testKey(0x0A), testKey(0x0B)
	account := &fakeAccount{key: testKey(1), lamports: 100, data: bytes.Repeat([]byte{0xAA}, 4), owner: ownerBefore}

	f := &fakeHost{tx: &fakeTx{accounts: []*fakeAccount{account}, callerID: testKey(0xCA)}, collector: &memCollector{}}
	identityStaging(f, true)
	f.process = func() {
		account.lamports = 50
		account.data = bytes.Repeat([]byte{0xBB}, 8)
		account.owner = ownerAfter
	}
	withFakeHost(t, f)

	view := viewFromAccount(account, true)
	ix := types.NewInstruction(testKey(0xEE), nil, solana.Meta(view.Key).WRITE())
	err := contextStubs{}.InvokeSigned(ix, []*types.AccountView{view}, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(50), view.Lamports)
	assert.Equal(t, bytes.Repeat([]byte{0xBB}, 8), view.Data)
	assert.Equal(t, ownerAfter, view.Owner)
}

func TestInvokeSignedCopyInOrder(t *testing.T) {
	guestData := []byte{7, 7}
	account := &fakeAccount{key: testKey(1), lamports: 10, data: []byte{1, 2}, owner: testKey(0x0A)}
	// A host in the owner-transferable state only after lamports and
	// data are synchronized. Wrong ordering fails the whole call.
	account.setOwner = func(a *fakeAccount, owner solana.PublicKey) error {
		if a.lamports != 99 || !bytes.Equal(a.data, guestData) {
			return types.InstrErrModifiedProgramID
		}
		return nil
	}

	f := &fakeHost{tx: &fakeTx{accounts: []*fakeAccount{account}, callerID: testKey(0xCA)}, collector: &memCollector{}}
	identityStaging(f, true)
	withFakeHost(t, f)

	view := &types.AccountView{
		Key:        account.key,
		Lamports:   99,
		Data:       guestData,
		Owner:      testKey(0x0B),
		IsWritable: true,
	}
	ix := types.NewInstruction(testKey(0xEE), nil, solana.Meta(view.Key).WRITE())
	err := contextStubs{}.InvokeSigned(ix, []*types.AccountView{view}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"borrow", "set_lamports", "set_data", "set_owner", "borrow"}, account.ops)
}

func TestInvokeSignedForbiddenDataChangeIsFatal(t *testing.T) {
	account := &fakeAccount{
		key:       testKey(1),
		data:      []byte{1, 2, 3},
		owner:     testKey(0x0A),
		changeErr: types.InstrErrReadonlyDataModified,
	}
	f := &fakeHost{tx: &fakeTx{accounts: []*fakeAccount{account}, callerID: testKey(0xCA)}, collector: &memCollector{}}
	identityStaging(f, false)
	withFakeHost(t, f)

	// Unchanged bytes under a forbidden write are tolerated.
	view := viewFromAccount(account, false)
	ix := types.NewInstruction(testKey(0xEE), nil, solana.Meta(view.Key))
	require.NoError(t, contextStubs{}.InvokeSigned(ix, []*types.AccountView{view}, nil))

	// Changed bytes are a consistency violation, not an error return.
	view.Data[0] = 0xFF
	require.Panics(t, func() {
		_ = contextStubs{}.InvokeSigned(ix, []*types.AccountView{view}, nil)
	})
}

func TestInvokeSignedMissingGuestAccountIsFatal(t *testing.T) {
	account := &fakeAccount{key: testKey(1), owner: testKey(0x0A)}
	f := &fakeHost{tx: &fakeTx{accounts: []*fakeAccount{account}, callerID: testKey(0xCA)}, collector: &memCollector{}}
	identityStaging(f, false)
	withFakeHost(t, f)

	ix := types.NewInstruction(testKey(0xEE), nil, solana.Meta(account.key))
	require.Panics(t, func() {
		_ = contextStubs{}.InvokeSigned(ix, nil, nil)
	})
}

func TestInvokeSignedBadSeedsAreFatal(t *testing.T) {
	f := &fakeHost{tx: &fakeTx{callerID: testKey(0xCA)}, collector: &memCollector{}}
	withFakeHost(t, f)

	// A single seed longer than 32 bytes can never derive an address.
	seeds := [][][]byte{{make([]byte, 33)}}
	ix := types.NewInstruction(testKey(0xEE), nil)
	require.Panics(t, func() {
		_ = contextStubs{}.InvokeSigned(ix, nil, seeds)
	})
}

func TestInvokeSignedDerivedSignersReachStaging(t *testing.T) {
	callerID := testKey(0xCA)
	f := &fakeHost{tx: &fakeTx{callerID: callerID}, collector: &memCollector{}}
	withFakeHost(t, f)

	seeds := [][]byte{[]byte("vault"), {42}}
	want, err := solana.CreateProgramAddress(seeds, callerID)
	require.NoError(t, err)

	ix := types.NewInstruction(testKey(0xEE), nil)
	require.NoError(t, contextStubs{}.InvokeSigned(ix, nil, [][][]byte{seeds}))
	require.Len(t, f.gotSigners, 1)
	assert.Equal(t, want, f.gotSigners[0])
}

func TestInvokeSignedStagingFailureTranslated(t *testing.T) {
	f := &fakeHost{tx: &fakeTx{callerID: testKey(0xCA)}, collector: &memCollector{}}
	f.prepareErr = types.InstrErrMissingRequiredSignature
	withFakeHost(t, f)

	ix := types.NewInstruction(testKey(0xEE), nil)
	err := contextStubs{}.InvokeSigned(ix, nil, nil)
	require.Equal(t, types.ErrMissingRequiredSignatures, err)
	assert.False(t, f.processed)
}

func TestInvokeSignedUnmappableStagingFailureIsFatal(t *testing.T) {
	f := &fakeHost{tx: &fakeTx{callerID: testKey(0xCA)}, collector: &memCollector{}}
	f.prepareErr = types.InstrErrPrivilegeEscalation
	withFakeHost(t, f)

	ix := types.NewInstruction(testKey(0xEE), nil)
	require.Panics(t, func() {
		_ = contextStubs{}.InvokeSigned(ix, nil, nil)
	})
}

func TestInvokeSignedExecutionFailureTranslated(t *testing.T) {
	f := &fakeHost{tx: &fakeTx{callerID: testKey(0xCA)}, collector: &memCollector{}}
	f.processErr = types.InstrErrCustom(3)
	withFakeHost(t, f)

	ix := types.NewInstruction(testKey(0xEE), nil)
	err := contextStubs{}.InvokeSigned(ix, nil, nil)
	require.Equal(t, types.NewCustomError(3), err)
}

func TestInvokeSignedUnmappableExecutionFailureIsFatal(t *testing.T) {
	f := &fakeHost{tx: &fakeTx{callerID: testKey(0xCA)}, collector: &memCollector{}}
	f.processErr = types.InstrErrUnbalancedInstruction
	withFakeHost(t, f)

	ix := types.NewInstruction(testKey(0xEE), nil)
	require.Panics(t, func() {
		_ = contextStubs{}.InvokeSigned(ix, nil, nil)
	})
}

func TestInvokeSignedSkipsDuplicateEntries(t *testing.T) {
	account := &fakeAccount{key: testKey(1), lamports: 5, owner: testKey(0x0A)}
	f := &fakeHost{tx: &fakeTx{accounts: []*fakeAccount{account}, callerID: testKey(0xCA)}, collector: &memCollector{}}
	// The account appears twice; the second entry aliases the first.
	f.prepared = []host.InstructionAccount{
		{IndexInTransaction: 0, IndexInCaller: 0, IndexInCallee: 0, IsWritable: true},
		{IndexInTransaction: 0, IndexInCaller: 0, IndexInCallee: 0, IsWritable: true},
	}
	f.programIdx = []uint16{0}
	withFakeHost(t, f)

	view := viewFromAccount(account, true)
	ix := types.NewInstruction(testKey(0xEE), nil, solana.Meta(view.Key).WRITE(), solana.Meta(view.Key).WRITE())
	require.NoError(t, contextStubs{}.InvokeSigned(ix, []*types.AccountView{view}, nil))

	// One copy-in borrow and one copy-out borrow, not two of each.
	assert.Equal(t, []string{"borrow", "borrow"}, account.ops)
}

func TestInvokeSignedLogsInvocationAndSuccess(t *testing.T) {
	f := &fakeHost{tx: &fakeTx{callerID: testKey(0xCA), height: 1}, collector: &memCollector{}}
	withFakeHost(t, f)

	programID := testKey(0xEE)
	ix := types.NewInstruction(programID, nil)
	require.NoError(t, contextStubs{}.InvokeSigned(ix, nil, nil))

	require.Len(t, f.collector.lines, 2)
	assert.Equal(t, "Program "+programID.String()+" invoke [2]", f.collector.lines[0])
	assert.Equal(t, "Program "+programID.String()+" success", f.collector.lines[1])
}

func TestLogRelay(t *testing.T) {
	f := &fakeHost{tx: &fakeTx{}, collector: &memCollector{}}
	withFakeHost(t, f)

	contextStubs{}.Log("first")
	contextStubs{}.Log("second")
	assert.Equal(t, []string{"Program log: first", "Program log: second"}, f.collector.lines)
}

func TestLogRelayWithoutCollector(t *testing.T) {
	f := &fakeHost{tx: &fakeTx{}}
	withFakeHost(t, f)

	// Absent collector means silent drop, not a failure.
	contextStubs{}.Log("into the void")
	contextStubs{}.LogData([][]byte{{1, 2}})
}

func TestReturnDataChannel(t *testing.T) {
	programID := testKey(0xEE)
	f := &fakeHost{tx: &fakeTx{callerID: programID}, collector: &memCollector{}}
	withFakeHost(t, f)

	// Unset slot reads as zero values.
	gotProgram, gotData := contextStubs{}.GetReturnData()
	assert.Equal(t, solana.PublicKey{}, gotProgram)
	assert.Nil(t, gotData)

	contextStubs{}.SetReturnData([]byte{1, 2, 3})
	gotProgram, gotData = contextStubs{}.GetReturnData()
	assert.Equal(t, programID, gotProgram)
	assert.Equal(t, []byte{1, 2, 3}, gotData)

	// The returned bytes are a copy, not a window into the slot.
	gotData[0] = 0xFF
	_, again := contextStubs{}.GetReturnData()
	assert.Equal(t, []byte{1, 2, 3}, again)

	// Clearing with empty data keeps the producer and empties the
	// payload. Last writer wins.
	contextStubs{}.SetReturnData(nil)
	gotProgram, gotData = contextStubs{}.GetReturnData()
	assert.Equal(t, programID, gotProgram)
	assert.Empty(t, gotData)
}

func TestStackHeightAndComputePassthrough(t *testing.T) {
	f := &fakeHost{tx: &fakeTx{height: 3}, remaining: 77}
	withFakeHost(t, f)

	assert.Equal(t, uint64(3), contextStubs{}.GetStackHeight())
	assert.Equal(t, uint64(77), contextStubs{}.RemainingComputeUnits())
}
