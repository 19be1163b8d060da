package hostsim

import (
	"bytes"
	"fmt"

	dbm "github.com/cometbft/cometbft-db"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Account is the bank's value for one address.
type Account struct {
	Lamports   uint64
	Owner      solana.PublicKey
	Executable bool
	RentEpoch  uint64
	Data       []byte
}

// Clone returns a copy whose data does not alias the receiver's.
func (a Account) Clone() Account {
	a.Data = append([]byte(nil), a.Data...)
	return a
}

// Bank persists accounts across transactions, keyed by address.
type Bank struct {
	db dbm.DB
}

func NewBank() *Bank {
	return &Bank{db: dbm.NewMemDB()}
}

func (b *Bank) GetAccount(key solana.PublicKey) (Account, bool) {
	raw, err := b.db.Get(key.Bytes())
	if err != nil {
		panic(fmt.Sprintf("load account %s: %v", key, err))
	}
	if raw == nil {
		return Account{}, false
	}
	account, err := decodeAccount(raw)
	if err != nil {
		panic(fmt.Sprintf("decode account %s: %v", key, err))
	}
	return account, true
}

func (b *Bank) SetAccount(key solana.PublicKey, account Account) {
	raw, err := encodeAccount(account)
	if err != nil {
		panic(fmt.Sprintf("encode account %s: %v", key, err))
	}
	if err := b.db.Set(key.Bytes(), raw); err != nil {
		panic(fmt.Sprintf("store account %s: %v", key, err))
	}
}

func (b *Bank) DeleteAccount(key solana.PublicKey) {
	if err := b.db.Delete(key.Bytes()); err != nil {
		panic(fmt.Sprintf("delete account %s: %v", key, err))
	}
}

func encodeAccount(account Account) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint64(account.Lamports, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(account.Owner.Bytes(), false); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(account.Executable); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(account.RentEpoch, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(uint64(len(account.Data)), bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(account.Data, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeAccount(raw []byte) (Account, error) {
	var account Account
	dec := bin.NewBinDecoder(raw)
	var err error
	if account.Lamports, err = dec.ReadUint64(bin.LE); err != nil {
		return account, err
	}
	owner, err := dec.ReadNBytes(32)
	if err != nil {
		return account, err
	}
	copy(account.Owner[:], owner)
	if account.Executable, err = dec.ReadBool(); err != nil {
		return account, err
	}
	if account.RentEpoch, err = dec.ReadUint64(bin.LE); err != nil {
		return account, err
	}
	dataLen, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return account, err
	}
	if dataLen == 0 {
		return account, nil
	}
	if account.Data, err = dec.ReadNBytes(int(dataLen)); err != nil {
		return account, err
	}
	return account, nil
}
