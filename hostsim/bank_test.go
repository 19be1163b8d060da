package hostsim

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bankKey(tag byte) solana.PublicKey {
	var raw [32]byte
	for i := range raw {
		raw[i] = tag
	}
	return solana.PublicKeyFromBytes(raw[:])
}

func TestBankRoundTrip(t *testing.T) {
	bank := NewBank()
	key := bankKey(1)

	_, ok := bank.GetAccount(key)
	require.False(t, ok)

	stored := Account{
		Lamports:   12345,
		Owner:      bankKey(2),
		Executable: true,
		RentEpoch:  9,
		Data:       []byte{0xAA, 0xBB, 0xCC},
	}
	bank.SetAccount(key, stored)

	loaded, ok := bank.GetAccount(key)
	require.True(t, ok)
	assert.Equal(t, stored, loaded)
}

func TestBankEmptyDataAccount(t *testing.T) {
	bank := NewBank()
	key := bankKey(1)
	bank.SetAccount(key, Account{Lamports: 1, Owner: solana.SystemProgramID})

	loaded, ok := bank.GetAccount(key)
	require.True(t, ok)
	assert.Equal(t, uint64(1), loaded.Lamports)
	assert.Empty(t, loaded.Data)
}

func TestBankDelete(t *testing.T) {
	bank := NewBank()
	key := bankKey(1)
	bank.SetAccount(key, Account{Lamports: 1})
	bank.DeleteAccount(key)

	_, ok := bank.GetAccount(key)
	assert.False(t, ok)
}

func TestAccountCloneDoesNotAliasData(t *testing.T) {
	original := Account{Lamports: 5, Data: []byte{1, 2, 3}}
	clone := original.Clone()
	clone.Data[0] = 9

	assert.Equal(t, byte(1), original.Data[0])
}
