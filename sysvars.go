package trident

import (
	"github.com/Ackee-Blockchain/trident-syscall-stubs/host"
	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// copySysvar writes one canonical encoding into the caller's buffer.
// A miss, an encoding failure, or an undersized buffer all leave the
// buffer untouched and report the unsupported-sysvar code.
func copySysvar(out []byte, ok bool, encode func() ([]byte, error)) uint64 {
	if !ok {
		return types.UnsupportedSysvarCode
	}
	encoded, err := encode()
	if err != nil || len(out) < len(encoded) {
		return types.UnsupportedSysvarCode
	}
	copy(out, encoded)
	return 0
}

func (contextStubs) GetClockSysvar(out []byte) uint64 {
	clock, ok := host.GetInvokeContext().SysvarCache().Clock()
	return copySysvar(out, ok, clock.Encode)
}

func (contextStubs) GetEpochScheduleSysvar(out []byte) uint64 {
	schedule, ok := host.GetInvokeContext().SysvarCache().EpochSchedule()
	return copySysvar(out, ok, schedule.Encode)
}

func (contextStubs) GetEpochRewardsSysvar(out []byte) uint64 {
	rewards, ok := host.GetInvokeContext().SysvarCache().EpochRewards()
	return copySysvar(out, ok, rewards.Encode)
}

func (contextStubs) GetFeesSysvar(out []byte) uint64 {
	fees, ok := host.GetInvokeContext().SysvarCache().Fees()
	return copySysvar(out, ok, fees.Encode)
}

func (contextStubs) GetRentSysvar(out []byte) uint64 {
	rent, ok := host.GetInvokeContext().SysvarCache().Rent()
	return copySysvar(out, ok, rent.Encode)
}

func (contextStubs) GetLastRestartSlotSysvar(out []byte) uint64 {
	slot, ok := host.GetInvokeContext().SysvarCache().LastRestartSlot()
	return copySysvar(out, ok, slot.Encode)
}

// GetClock fetches and decodes the clock sysvar through the active
// stubs.
func GetClock() (types.Clock, error) {
	var c types.Clock
	buf := make([]byte, types.ClockSize)
	if code := GetClockSysvar(buf); code != 0 {
		return c, types.ProgramErrorFromCode(code)
	}
	if err := c.Decode(buf); err != nil {
		return c, types.NewBorshIoError(err.Error())
	}
	return c, nil
}

// GetEpochSchedule fetches and decodes the epoch schedule sysvar.
func GetEpochSchedule() (types.EpochSchedule, error) {
	var es types.EpochSchedule
	buf := make([]byte, types.EpochScheduleSize)
	if code := GetEpochScheduleSysvar(buf); code != 0 {
		return es, types.ProgramErrorFromCode(code)
	}
	if err := es.Decode(buf); err != nil {
		return es, types.NewBorshIoError(err.Error())
	}
	return es, nil
}

// GetEpochRewards fetches and decodes the epoch rewards sysvar.
func GetEpochRewards() (types.EpochRewards, error) {
	var er types.EpochRewards
	buf := make([]byte, types.EpochRewardsSize)
	if code := GetEpochRewardsSysvar(buf); code != 0 {
		return er, types.ProgramErrorFromCode(code)
	}
	if err := er.Decode(buf); err != nil {
		return er, types.NewBorshIoError(err.Error())
	}
	return er, nil
}

// GetFees fetches and decodes the deprecated fees sysvar.
func GetFees() (types.Fees, error) {
	var f types.Fees
	buf := make([]byte, types.FeesSize)
	if code := GetFeesSysvar(buf); code != 0 {
		return f, types.ProgramErrorFromCode(code)
	}
	if err := f.Decode(buf); err != nil {
		return f, types.NewBorshIoError(err.Error())
	}
	return f, nil
}

// GetRent fetches and decodes the rent sysvar.
func GetRent() (types.Rent, error) {
	var r types.Rent
	buf := make([]byte, types.RentSize)
	if code := GetRentSysvar(buf); code != 0 {
		return r, types.ProgramErrorFromCode(code)
	}
	if err := r.Decode(buf); err != nil {
		return r, types.NewBorshIoError(err.Error())
	}
	return r, nil
}

// GetLastRestartSlot fetches and decodes the last restart slot sysvar.
func GetLastRestartSlot() (types.LastRestartSlot, error) {
	var l types.LastRestartSlot
	buf := make([]byte, types.LastRestartSlotSize)
	if code := GetLastRestartSlotSysvar(buf); code != 0 {
		return l, types.ProgramErrorFromCode(code)
	}
	if err := l.Decode(buf); err != nil {
		return l, types.NewBorshIoError(err.Error())
	}
	return l, nil
}
