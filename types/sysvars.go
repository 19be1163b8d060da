package types

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Addresses of the sysvar accounts served by the accessors.
var (
	SysvarClockID           = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
	SysvarEpochScheduleID   = solana.MustPublicKeyFromBase58("SysvarEpochSchedu1e111111111111111111111111")
	SysvarEpochRewardsID    = solana.MustPublicKeyFromBase58("SysvarEpochRewards1111111111111111111111111")
	SysvarFeesID            = solana.MustPublicKeyFromBase58("SysvarFees111111111111111111111111111111111")
	SysvarLastRestartSlotID = solana.MustPublicKeyFromBase58("SysvarLastRestartS1ot1111111111111111111111")
	SysvarRentID            = solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
)

// Exact sizes of the canonical little-endian encodings. The accessors
// copy exactly this many bytes into caller buffers.
const (
	ClockSize           = 40
	EpochScheduleSize   = 33
	EpochRewardsSize    = 81
	FeesSize            = 8
	LastRestartSlotSize = 8
	RentSize            = 17
)

// Clock carries the network time information for the current slot.
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

func (c Clock) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint64(c.Slot, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteInt64(c.EpochStartTimestamp, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(c.Epoch, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(c.LeaderScheduleEpoch, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteInt64(c.UnixTimestamp, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Clock) Decode(data []byte) (err error) {
	dec := bin.NewBinDecoder(data)
	if c.Slot, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if c.EpochStartTimestamp, err = dec.ReadInt64(bin.LE); err != nil {
		return err
	}
	if c.Epoch, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if c.LeaderScheduleEpoch, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if c.UnixTimestamp, err = dec.ReadInt64(bin.LE); err != nil {
		return err
	}
	return nil
}

// EpochSchedule describes how slots are laid out into epochs, including
// the warmup period of doubling epoch lengths.
type EpochSchedule struct {
	SlotsPerEpoch            uint64
	LeaderScheduleSlotOffset uint64
	Warmup                   bool
	FirstNormalEpoch         uint64
	FirstNormalSlot          uint64
}

func (es EpochSchedule) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint64(es.SlotsPerEpoch, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(es.LeaderScheduleSlotOffset, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(es.Warmup); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(es.FirstNormalEpoch, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(es.FirstNormalSlot, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (es *EpochSchedule) Decode(data []byte) (err error) {
	dec := bin.NewBinDecoder(data)
	if es.SlotsPerEpoch, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if es.LeaderScheduleSlotOffset, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if es.Warmup, err = dec.ReadBool(); err != nil {
		return err
	}
	if es.FirstNormalEpoch, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if es.FirstNormalSlot, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	return nil
}

// EpochRewards tracks the progress of the current epoch's partitioned
// rewards distribution.
type EpochRewards struct {
	DistributionStartingBlockHeight uint64
	NumPartitions                   uint64
	ParentBlockhash                 solana.Hash
	TotalPoints                     bin.Uint128
	TotalRewards                    uint64
	DistributedRewards              uint64
	Active                          bool
}

func (er EpochRewards) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint64(er.DistributionStartingBlockHeight, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(er.NumPartitions, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(er.ParentBlockhash[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint128(er.TotalPoints, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(er.TotalRewards, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(er.DistributedRewards, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(er.Active); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (er *EpochRewards) Decode(data []byte) (err error) {
	dec := bin.NewBinDecoder(data)
	if er.DistributionStartingBlockHeight, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if er.NumPartitions, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	hash, err := dec.ReadNBytes(32)
	if err != nil {
		return err
	}
	copy(er.ParentBlockhash[:], hash)
	if er.TotalPoints, err = dec.ReadUint128(bin.LE); err != nil {
		return err
	}
	if er.TotalRewards, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if er.DistributedRewards, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if er.Active, err = dec.ReadBool(); err != nil {
		return err
	}
	return nil
}

// Fees is deprecated on-chain but still served to guests that ask.
type Fees struct {
	LamportsPerSignature uint64
}

func (f Fees) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint64(f.LamportsPerSignature, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *Fees) Decode(data []byte) (err error) {
	dec := bin.NewBinDecoder(data)
	f.LamportsPerSignature, err = dec.ReadUint64(bin.LE)
	return err
}

// LastRestartSlot reports the slot of the last cluster restart, 0 if the
// cluster never restarted.
type LastRestartSlot struct {
	LastRestartSlot uint64
}

func (l LastRestartSlot) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint64(l.LastRestartSlot, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l *LastRestartSlot) Decode(data []byte) (err error) {
	dec := bin.NewBinDecoder(data)
	l.LastRestartSlot, err = dec.ReadUint64(bin.LE)
	return err
}

// Rent holds the rental rate configuration.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	BurnPercent         uint8
}

// DefaultRent returns the cluster default rent parameters.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
		BurnPercent:         50,
	}
}

// MinimumBalance returns the smallest balance exempt from rent collection
// for an account with dataLen bytes of data.
func (r Rent) MinimumBalance(dataLen uint64) uint64 {
	const accountStorageOverhead = 128
	return uint64(float64((accountStorageOverhead+dataLen)*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

func (r Rent) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint64(r.LamportsPerByteYear, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteFloat64(r.ExemptionThreshold, bin.LE); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(r.BurnPercent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Rent) Decode(data []byte) (err error) {
	dec := bin.NewBinDecoder(data)
	if r.LamportsPerByteYear, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if r.ExemptionThreshold, err = dec.ReadFloat64(bin.LE); err != nil {
		return err
	}
	if r.BurnPercent, err = dec.ReadUint8(); err != nil {
		return err
	}
	return nil
}
