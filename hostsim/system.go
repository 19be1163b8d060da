package hostsim

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/Ackee-Blockchain/trident-syscall-stubs/host"
	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// System program instruction discriminants, u32 little endian.
const (
	sysInstrCreateAccount uint32 = 0
	sysInstrAssign        uint32 = 1
	sysInstrTransfer      uint32 = 2
	sysInstrAllocate      uint32 = 8
)

// System program custom error codes.
const (
	SysErrAccountAlreadyInUse        uint32 = 0
	SysErrResultWithNegativeLamports uint32 = 1
	SysErrInvalidAccountDataLength   uint32 = 3
)

// NewCreateAccountInstruction funds a new account with lamports,
// allocates space bytes, and assigns it to owner. Funder and the new
// account both sign.
func NewCreateAccountInstruction(funder, newAccount, owner solana.PublicKey, lamports, space uint64) types.Instruction {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	mustWrite(enc.WriteUint32(sysInstrCreateAccount, bin.LE))
	mustWrite(enc.WriteUint64(lamports, bin.LE))
	mustWrite(enc.WriteUint64(space, bin.LE))
	mustWrite(enc.WriteBytes(owner.Bytes(), false))
	return types.NewInstruction(
		solana.SystemProgramID,
		buf.Bytes(),
		solana.Meta(funder).WRITE().SIGNER(),
		solana.Meta(newAccount).WRITE().SIGNER(),
	)
}

// NewAssignInstruction reassigns a system-owned account to owner. The
// account signs.
func NewAssignInstruction(account, owner solana.PublicKey) types.Instruction {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	mustWrite(enc.WriteUint32(sysInstrAssign, bin.LE))
	mustWrite(enc.WriteBytes(owner.Bytes(), false))
	return types.NewInstruction(
		solana.SystemProgramID,
		buf.Bytes(),
		solana.Meta(account).WRITE().SIGNER(),
	)
}

// NewTransferInstruction moves lamports between accounts. The source
// signs.
func NewTransferInstruction(from, to solana.PublicKey, lamports uint64) types.Instruction {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	mustWrite(enc.WriteUint32(sysInstrTransfer, bin.LE))
	mustWrite(enc.WriteUint64(lamports, bin.LE))
	return types.NewInstruction(
		solana.SystemProgramID,
		buf.Bytes(),
		solana.Meta(from).WRITE().SIGNER(),
		solana.Meta(to).WRITE(),
	)
}

// NewAllocateInstruction sets the data length of a system-owned
// account. The account signs.
func NewAllocateInstruction(account solana.PublicKey, space uint64) types.Instruction {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	mustWrite(enc.WriteUint32(sysInstrAllocate, bin.LE))
	mustWrite(enc.WriteUint64(space, bin.LE))
	return types.NewInstruction(
		solana.SystemProgramID,
		buf.Bytes(),
		solana.Meta(account).WRITE().SIGNER(),
	)
}

func processSystemInstruction(ictx host.InstructionContext, data []byte) error {
	dec := bin.NewBinDecoder(data)
	discriminant, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return types.InstrErrInvalidInstructionData
	}
	switch discriminant {
	case sysInstrCreateAccount:
		lamports, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return types.InstrErrInvalidInstructionData
		}
		space, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return types.InstrErrInvalidInstructionData
		}
		owner, err := decodeKey(dec)
		if err != nil {
			return types.InstrErrInvalidInstructionData
		}
		return systemCreateAccount(ictx, lamports, space, owner)
	case sysInstrAssign:
		owner, err := decodeKey(dec)
		if err != nil {
			return types.InstrErrInvalidInstructionData
		}
		return systemAssign(ictx, owner)
	case sysInstrTransfer:
		lamports, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return types.InstrErrInvalidInstructionData
		}
		return systemTransfer(ictx, lamports)
	case sysInstrAllocate:
		space, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return types.InstrErrInvalidInstructionData
		}
		return systemAllocate(ictx, space)
	default:
		return types.InstrErrInvalidInstructionData
	}
}

func systemCreateAccount(ictx host.InstructionContext, lamports, space uint64, owner solana.PublicKey) error {
	if err := checkAccounts(ictx, 2); err != nil {
		return err
	}
	if err := requireSigner(ictx, 1); err != nil {
		return err
	}
	if err := initializeAccount(ictx, 1, space, owner); err != nil {
		return err
	}
	if err := requireSigner(ictx, 0); err != nil {
		return err
	}
	if err := withdrawLamports(ictx, 0, lamports); err != nil {
		return err
	}
	return depositLamports(ictx, 1, lamports)
}

func systemAssign(ictx host.InstructionContext, owner solana.PublicKey) error {
	if err := checkAccounts(ictx, 1); err != nil {
		return err
	}
	if err := requireSigner(ictx, 0); err != nil {
		return err
	}
	account, err := ictx.BorrowInstructionAccount(0)
	if err != nil {
		return err
	}
	defer account.Drop()
	if account.Owner().Equals(owner) {
		return nil
	}
	return account.SetOwner(owner)
}

func systemTransfer(ictx host.InstructionContext, lamports uint64) error {
	if err := checkAccounts(ictx, 2); err != nil {
		return err
	}
	if err := requireSigner(ictx, 0); err != nil {
		return err
	}
	if err := withdrawLamports(ictx, 0, lamports); err != nil {
		return err
	}
	return depositLamports(ictx, 1, lamports)
}

func systemAllocate(ictx host.InstructionContext, space uint64) error {
	if err := checkAccounts(ictx, 1); err != nil {
		return err
	}
	if err := requireSigner(ictx, 0); err != nil {
		return err
	}
	account, err := ictx.BorrowInstructionAccount(0)
	if err != nil {
		return err
	}
	defer account.Drop()
	return allocate(account, space)
}

// initializeAccount allocates and assigns a fresh account. An account
// holding lamports is considered in use.
func initializeAccount(ictx host.InstructionContext, index uint16, space uint64, owner solana.PublicKey) error {
	account, err := ictx.BorrowInstructionAccount(index)
	if err != nil {
		return err
	}
	defer account.Drop()
	if account.Lamports() > 0 {
		return types.InstrErrCustom(SysErrAccountAlreadyInUse)
	}
	if err := allocate(account, space); err != nil {
		return err
	}
	if account.Owner().Equals(owner) {
		return nil
	}
	return account.SetOwner(owner)
}

func allocate(account host.BorrowedAccount, space uint64) error {
	if len(account.Data()) > 0 || !account.Owner().Equals(solana.SystemProgramID) {
		return types.InstrErrCustom(SysErrAccountAlreadyInUse)
	}
	if space > MaxPermittedDataLength {
		return types.InstrErrCustom(SysErrInvalidAccountDataLength)
	}
	return account.SetDataFromSlice(make([]byte, space))
}

func withdrawLamports(ictx host.InstructionContext, index uint16, lamports uint64) error {
	from, err := ictx.BorrowInstructionAccount(index)
	if err != nil {
		return err
	}
	defer from.Drop()
	if len(from.Data()) > 0 {
		return types.InstrErrInvalidArgument
	}
	if lamports > from.Lamports() {
		return types.InstrErrCustom(SysErrResultWithNegativeLamports)
	}
	return from.SetLamports(from.Lamports() - lamports)
}

func depositLamports(ictx host.InstructionContext, index uint16, lamports uint64) error {
	to, err := ictx.BorrowInstructionAccount(index)
	if err != nil {
		return err
	}
	defer to.Drop()
	return to.SetLamports(to.Lamports() + lamports)
}

func requireSigner(ictx host.InstructionContext, index uint16) error {
	signed, err := ictx.IsInstructionAccountSigner(index)
	if err != nil {
		return err
	}
	if !signed {
		return types.InstrErrMissingRequiredSignature
	}
	return nil
}

func checkAccounts(ictx host.InstructionContext, n uint16) error {
	if ictx.NumberOfInstructionAccounts() < n {
		return types.InstrErrNotEnoughAccountKeys
	}
	return nil
}

func decodeKey(dec *bin.Decoder) (solana.PublicKey, error) {
	var key solana.PublicKey
	raw, err := dec.ReadNBytes(32)
	if err != nil {
		return key, err
	}
	copy(key[:], raw)
	return key, nil
}

func mustWrite(err error) {
	if err != nil {
		panic(err)
	}
}
