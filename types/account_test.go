package types

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountViewResize(t *testing.T) {
	view := &AccountView{Data: []byte{1, 2, 3, 4}}

	view.Resize(6)
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0}, view.Data)

	view.Resize(2)
	assert.Equal(t, []byte{1, 2}, view.Data)

	// Growing back into retained capacity must not resurrect old bytes.
	view.Resize(4)
	assert.Equal(t, []byte{1, 2, 0, 0}, view.Data)

	view.Resize(0)
	assert.Empty(t, view.Data)
}

func TestAccountViewClone(t *testing.T) {
	original := &AccountView{
		Key:        solana.SystemProgramID,
		Lamports:   100,
		Data:       []byte{0xAA, 0xBB},
		Owner:      solana.SystemProgramID,
		IsWritable: true,
	}
	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.Data[0] = 0xCC
	clone.Lamports = 1
	assert.Equal(t, byte(0xAA), original.Data[0])
	assert.Equal(t, uint64(100), original.Lamports)
}
