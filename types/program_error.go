package types

import (
	"errors"
	"fmt"
	"reflect"
)

// Builtin program error codes as they travel across the syscall boundary.
// Builtin kinds occupy the high 32 bits; a custom error keeps its code in
// the low 32 bits, with Custom(0) remapped to CustomZeroCode so it stays
// distinguishable from success.
const (
	CustomZeroCode                             = uint64(1) << 32
	InvalidArgumentCode                        = uint64(2) << 32
	InvalidInstructionDataCode                 = uint64(3) << 32
	InvalidAccountDataCode                     = uint64(4) << 32
	AccountDataTooSmallCode                    = uint64(5) << 32
	InsufficientFundsCode                      = uint64(6) << 32
	IncorrectProgramIDCode                     = uint64(7) << 32
	MissingRequiredSignaturesCode              = uint64(8) << 32
	AccountAlreadyInitializedCode              = uint64(9) << 32
	UninitializedAccountCode                   = uint64(10) << 32
	NotEnoughAccountKeysCode                   = uint64(11) << 32
	AccountBorrowFailedCode                    = uint64(12) << 32
	MaxSeedLengthExceededCode                  = uint64(13) << 32
	InvalidSeedsCode                           = uint64(14) << 32
	BorshIoErrorCode                           = uint64(15) << 32
	AccountNotRentExemptCode                   = uint64(16) << 32
	UnsupportedSysvarCode                      = uint64(17) << 32
	IllegalOwnerCode                           = uint64(18) << 32
	MaxAccountsDataAllocationsExceededCode     = uint64(19) << 32
	InvalidReallocCode                         = uint64(20) << 32
	MaxInstructionTraceLengthExceededCode      = uint64(21) << 32
	BuiltinProgramsMustConsumeComputeUnitsCode = uint64(22) << 32
	InvalidAccountOwnerCode                    = uint64(23) << 32
	ArithmeticOverflowCode                     = uint64(24) << 32
	ImmutableCode                              = uint64(25) << 32
	IncorrectAuthorityCode                     = uint64(26) << 32
)

// ProgramError is the error a guest program observes. Code carries the
// full u64 ABI value; Msg is only set for BorshIo errors and does not
// survive a round trip through the numeric form.
type ProgramError struct {
	Code uint64
	Msg  string
}

var _ error = (*ProgramError)(nil)

func (e *ProgramError) Error() string {
	if e == nil {
		return "(nil)"
	}
	if e.Code == BorshIoErrorCode {
		return "io error: " + e.Msg
	}
	if e.Code == CustomZeroCode {
		return "custom program error: 0x0"
	}
	if e.Code>>32 == 0 {
		return fmt.Sprintf("custom program error: %#x", e.Code)
	}
	for _, m := range instrErrMappings {
		if m.code == e.Code {
			return m.text
		}
	}
	return fmt.Sprintf("program error: %#x", e.Code)
}

// Ready-made values for the payload-free kinds.
var (
	ErrInvalidArgument                        = &ProgramError{Code: InvalidArgumentCode}
	ErrInvalidInstructionData                 = &ProgramError{Code: InvalidInstructionDataCode}
	ErrInvalidAccountData                     = &ProgramError{Code: InvalidAccountDataCode}
	ErrAccountDataTooSmall                    = &ProgramError{Code: AccountDataTooSmallCode}
	ErrInsufficientFunds                      = &ProgramError{Code: InsufficientFundsCode}
	ErrIncorrectProgramID                     = &ProgramError{Code: IncorrectProgramIDCode}
	ErrMissingRequiredSignatures              = &ProgramError{Code: MissingRequiredSignaturesCode}
	ErrAccountAlreadyInitialized              = &ProgramError{Code: AccountAlreadyInitializedCode}
	ErrUninitializedAccount                   = &ProgramError{Code: UninitializedAccountCode}
	ErrNotEnoughAccountKeys                   = &ProgramError{Code: NotEnoughAccountKeysCode}
	ErrAccountBorrowFailed                    = &ProgramError{Code: AccountBorrowFailedCode}
	ErrMaxSeedLengthExceeded                  = &ProgramError{Code: MaxSeedLengthExceededCode}
	ErrInvalidSeeds                           = &ProgramError{Code: InvalidSeedsCode}
	ErrAccountNotRentExempt                   = &ProgramError{Code: AccountNotRentExemptCode}
	ErrUnsupportedSysvar                      = &ProgramError{Code: UnsupportedSysvarCode}
	ErrIllegalOwner                           = &ProgramError{Code: IllegalOwnerCode}
	ErrMaxAccountsDataAllocationsExceeded     = &ProgramError{Code: MaxAccountsDataAllocationsExceededCode}
	ErrInvalidRealloc                         = &ProgramError{Code: InvalidReallocCode}
	ErrMaxInstructionTraceLengthExceeded      = &ProgramError{Code: MaxInstructionTraceLengthExceededCode}
	ErrBuiltinProgramsMustConsumeComputeUnits = &ProgramError{Code: BuiltinProgramsMustConsumeComputeUnitsCode}
	ErrInvalidAccountOwner                    = &ProgramError{Code: InvalidAccountOwnerCode}
	ErrArithmeticOverflow                     = &ProgramError{Code: ArithmeticOverflowCode}
	ErrImmutable                              = &ProgramError{Code: ImmutableCode}
	ErrIncorrectAuthority                     = &ProgramError{Code: IncorrectAuthorityCode}
)

// NewCustomError builds the guest error for a program-defined code.
// Custom(0) collides with success on the wire, so it is carried as
// CustomZeroCode.
func NewCustomError(code uint32) *ProgramError {
	if code == 0 {
		return &ProgramError{Code: CustomZeroCode}
	}
	return &ProgramError{Code: uint64(code)}
}

// NewBorshIoError builds the guest error for a serialization failure.
func NewBorshIoError(msg string) *ProgramError {
	return &ProgramError{Code: BorshIoErrorCode, Msg: msg}
}

// ProgramErrorFromCode rebuilds a ProgramError from its u64 wire value.
// 0 means success and yields nil. The BorshIo message cannot be recovered
// from the numeric form.
func ProgramErrorFromCode(code uint64) *ProgramError {
	if code == 0 {
		return nil
	}
	return &ProgramError{Code: code}
}

// instrErrMappings is the complete translation table between host
// instruction errors and guest program error codes. Host kinds absent
// from this table have no guest-side image.
var instrErrMappings = []struct {
	instr error
	code  uint64
	text  string
}{
	{InstrErrInvalidArgument, InvalidArgumentCode, "the arguments provided to a program instruction were invalid"},
	{InstrErrInvalidInstructionData, InvalidInstructionDataCode, "an instruction's data contents was invalid"},
	{InstrErrInvalidAccountData, InvalidAccountDataCode, "an account's data contents was invalid"},
	{InstrErrAccountDataTooSmall, AccountDataTooSmallCode, "an account's data was too small"},
	{InstrErrInsufficientFunds, InsufficientFundsCode, "an account's balance was too small to complete the instruction"},
	{InstrErrIncorrectProgramID, IncorrectProgramIDCode, "the account did not have the expected program id"},
	{InstrErrMissingRequiredSignature, MissingRequiredSignaturesCode, "a signature was required but not found"},
	{InstrErrAccountAlreadyInitialized, AccountAlreadyInitializedCode, "an initialize instruction was sent to an account that has already been initialized"},
	{InstrErrUninitializedAccount, UninitializedAccountCode, "an attempt to operate on an account that hasn't been initialized"},
	{InstrErrNotEnoughAccountKeys, NotEnoughAccountKeysCode, "the instruction expected additional account keys"},
	{InstrErrAccountBorrowFailed, AccountBorrowFailedCode, "failed to borrow a reference to account data, already borrowed"},
	{InstrErrMaxSeedLengthExceeded, MaxSeedLengthExceededCode, "length of the seed is too long for address generation"},
	{InstrErrInvalidSeeds, InvalidSeedsCode, "provided seeds do not result in a valid address"},
	{InstrErrAccountNotRentExempt, AccountNotRentExemptCode, "an account does not have enough lamports to be rent-exempt"},
	{InstrErrUnsupportedSysvar, UnsupportedSysvarCode, "unsupported sysvar"},
	{InstrErrIllegalOwner, IllegalOwnerCode, "provided owner is not allowed"},
	{InstrErrMaxAccountsDataAllocationsExceeded, MaxAccountsDataAllocationsExceededCode, "accounts data allocations exceeded the maximum allowed per transaction"},
	{InstrErrInvalidRealloc, InvalidReallocCode, "account data reallocation was invalid"},
	{InstrErrMaxInstructionTraceLengthExceeded, MaxInstructionTraceLengthExceededCode, "instruction trace length exceeded the maximum allowed per transaction"},
	{InstrErrBuiltinProgramsMustConsumeComputeUnits, BuiltinProgramsMustConsumeComputeUnitsCode, "builtin programs must consume compute units"},
	{InstrErrInvalidAccountOwner, InvalidAccountOwnerCode, "invalid account owner"},
	{InstrErrArithmeticOverflow, ArithmeticOverflowCode, "program arithmetic overflowed"},
	{InstrErrImmutable, ImmutableCode, "account is immutable"},
	{InstrErrIncorrectAuthority, IncorrectAuthorityCode, "incorrect authority provided"},
}

// ToProgramError translates a host instruction error into the error the
// guest observes.
//
// If the host kind carries a payload (custom code, serialization message)
// the payload is preserved exactly. If the host kind has no guest-side
// image, **return nil** — the caller decides whether that is fatal. This
// never invents a fallback translation.
func ToProgramError(err error) *ProgramError {
	if isNil(err) {
		return nil
	}

	var custom InstrErrCustom
	if errors.As(err, &custom) {
		return NewCustomError(uint32(custom))
	}
	var borsh InstrErrBorshIo
	if errors.As(err, &borsh) {
		return NewBorshIoError(string(borsh))
	}

	for _, m := range instrErrMappings {
		if errors.Is(err, m.instr) {
			return &ProgramError{Code: m.code}
		}
	}
	return nil
}

// ToInstrErr maps a guest failure back into the host taxonomy, the
// direction the host walks when an in-process program returns an error.
// Guest errors that are not ProgramError values collapse to
// InstrErrProgramFailedToComplete; unknown builtin codes collapse to
// InstrErrInvalidError.
func ToInstrErr(err error) error {
	if isNil(err) {
		return nil
	}

	var pe *ProgramError
	if !errors.As(err, &pe) || pe == nil {
		return InstrErrProgramFailedToComplete
	}
	switch {
	case pe.Code == BorshIoErrorCode:
		return InstrErrBorshIo(pe.Msg)
	case pe.Code == CustomZeroCode:
		return InstrErrCustom(0)
	case pe.Code>>32 == 0:
		return InstrErrCustom(uint32(pe.Code))
	}
	for _, m := range instrErrMappings {
		if m.code == pe.Code {
			return m.instr
		}
	}
	return InstrErrInvalidError
}

// check if an interface is nil (even if it has type info).
func isNil(i any) bool {
	if i == nil {
		return true
	}
	if reflect.TypeOf(i).Kind() == reflect.Ptr {
		// IsNil panics if you try it on a struct (not a pointer)
		return reflect.ValueOf(i).IsNil()
	}
	// if we aren't a pointer, can't be nil, can we?
	return false
}
