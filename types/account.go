package types

import (
	"github.com/gagliardetto/solana-go"
)

// AccountView is the guest program's view of an account. The bridge and
// the guest share the same value, so mutations made by either side are
// visible to the other without copying.
type AccountView struct {
	Key        solana.PublicKey
	Lamports   uint64
	Data       []byte
	Owner      solana.PublicKey
	RentEpoch  uint64
	IsSigner   bool
	IsWritable bool
	Executable bool
}

// Resize grows the data zero-filled or truncates it in place.
func (a *AccountView) Resize(n int) {
	if n <= cap(a.Data) {
		oldLen := len(a.Data)
		a.Data = a.Data[:n]
		for i := oldLen; i < n; i++ {
			a.Data[i] = 0
		}
		return
	}
	grown := make([]byte, n)
	copy(grown, a.Data)
	a.Data = grown
}

// Clone returns a deep copy, handy for before/after comparisons.
func (a *AccountView) Clone() *AccountView {
	dup := *a
	dup.Data = append([]byte(nil), a.Data...)
	return &dup
}
