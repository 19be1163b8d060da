package types

import (
	"errors"
	"fmt"
)

// Instruction errors raised by the host runtime while staging or executing
// an instruction. Payload-free kinds are sentinel values so call sites can
// compare with errors.Is; the two payload-carrying kinds are typed below.
var (
	InstrErrGenericError                           = errors.New("generic instruction error")
	InstrErrInvalidArgument                        = errors.New("invalid program argument")
	InstrErrInvalidInstructionData                 = errors.New("invalid instruction data")
	InstrErrInvalidAccountData                     = errors.New("invalid account data for instruction")
	InstrErrAccountDataTooSmall                    = errors.New("account data too small for instruction")
	InstrErrInsufficientFunds                      = errors.New("insufficient funds for instruction")
	InstrErrIncorrectProgramID                     = errors.New("incorrect program id for instruction")
	InstrErrMissingRequiredSignature               = errors.New("missing required signature for instruction")
	InstrErrAccountAlreadyInitialized              = errors.New("instruction requires an uninitialized account")
	InstrErrUninitializedAccount                   = errors.New("instruction requires an initialized account")
	InstrErrUnbalancedInstruction                  = errors.New("sum of account balances before and after instruction do not match")
	InstrErrModifiedProgramID                      = errors.New("instruction illegally modified the program id of an account")
	InstrErrExternalAccountLamportSpend            = errors.New("instruction spent from the balance of an account it does not own")
	InstrErrExternalAccountDataModified            = errors.New("instruction modified data of an account it does not own")
	InstrErrReadonlyLamportChange                  = errors.New("instruction changed the balance of a read-only account")
	InstrErrReadonlyDataModified                   = errors.New("instruction modified data of a read-only account")
	InstrErrDuplicateAccountIndex                  = errors.New("instruction contains duplicate accounts")
	InstrErrExecutableModified                     = errors.New("instruction changed executable bit of an account")
	InstrErrRentEpochModified                      = errors.New("instruction modified rent epoch of an account")
	InstrErrNotEnoughAccountKeys                   = errors.New("insufficient account keys for instruction")
	InstrErrAccountDataSizeChanged                 = errors.New("program other than the account's owner changed the size of the account data")
	InstrErrAccountNotExecutable                   = errors.New("instruction expected an executable account")
	InstrErrAccountBorrowFailed                    = errors.New("instruction tries to borrow reference for an account which is already borrowed")
	InstrErrAccountBorrowOutstanding               = errors.New("instruction left account with an outstanding borrowed reference")
	InstrErrDuplicateAccountOutOfSync              = errors.New("instruction modifications of multiply-passed account differ")
	InstrErrInvalidError                           = errors.New("program returned invalid error code")
	InstrErrExecutableDataModified                 = errors.New("instruction changed executable accounts data")
	InstrErrExecutableLamportChange                = errors.New("instruction changed the balance of an executable account")
	InstrErrExecutableAccountNotRentExempt         = errors.New("executable accounts must be rent exempt")
	InstrErrUnsupportedProgramID                   = errors.New("unsupported program id")
	InstrErrCallDepth                              = errors.New("cross-program invocation call depth too deep")
	InstrErrMissingAccount                         = errors.New("an account required by the instruction is missing")
	InstrErrReentrancyNotAllowed                   = errors.New("cross-program invocation reentrancy not allowed for this instruction")
	InstrErrMaxSeedLengthExceeded                  = errors.New("length of the seed is too long for address generation")
	InstrErrInvalidSeeds                           = errors.New("provided seeds do not result in a valid address")
	InstrErrInvalidRealloc                         = errors.New("failed to reallocate account data")
	InstrErrComputationalBudgetExceeded            = errors.New("computational budget exceeded")
	InstrErrPrivilegeEscalation                    = errors.New("cross-program invocation with unauthorized signer or writable account")
	InstrErrProgramEnvironmentSetupFailure         = errors.New("failed to create program execution environment")
	InstrErrProgramFailedToComplete                = errors.New("program failed to complete")
	InstrErrProgramFailedToCompile                 = errors.New("program failed to compile")
	InstrErrImmutable                              = errors.New("account is immutable")
	InstrErrIncorrectAuthority                     = errors.New("incorrect authority provided")
	InstrErrAccountNotRentExempt                   = errors.New("an account does not have enough lamports to be rent-exempt")
	InstrErrInvalidAccountOwner                    = errors.New("invalid account owner")
	InstrErrArithmeticOverflow                     = errors.New("program arithmetic overflowed")
	InstrErrUnsupportedSysvar                      = errors.New("unsupported sysvar")
	InstrErrIllegalOwner                           = errors.New("provided owner is not allowed")
	InstrErrMaxAccountsDataAllocationsExceeded     = errors.New("accounts data allocations exceeded the maximum allowed per transaction")
	InstrErrMaxAccountsExceeded                    = errors.New("max accounts exceeded")
	InstrErrMaxInstructionTraceLengthExceeded      = errors.New("max instruction trace length exceeded")
	InstrErrBuiltinProgramsMustConsumeComputeUnits = errors.New("builtin programs must consume compute units")
)

var (
	_ error = InstrErrCustom(0)
	_ error = InstrErrBorshIo("")
)

// InstrErrCustom is a program-defined error code surfaced by the host.
type InstrErrCustom uint32

func (e InstrErrCustom) Error() string {
	return fmt.Sprintf("custom program error: %#x", uint32(e))
}

// InstrErrBorshIo is a host-side serialization failure carrying the
// underlying codec message.
type InstrErrBorshIo string

func (e InstrErrBorshIo) Error() string {
	return "failed to serialize or deserialize account data: " + string(e)
}
