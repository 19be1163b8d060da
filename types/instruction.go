package types

import (
	"github.com/gagliardetto/solana-go"
)

// AccountMeta is re-exported so callers can build account lists with the
// solana-go Meta chain directly.
type AccountMeta = solana.AccountMeta

// Instruction addresses a program with an ordered account list and an
// opaque data payload.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []*solana.AccountMeta
	Data      []byte
}

func NewInstruction(programID solana.PublicKey, data []byte, accounts ...*solana.AccountMeta) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts:  accounts,
		Data:      data,
	}
}
