package hostsim

import (
	"github.com/Ackee-Blockchain/trident-syscall-stubs/host"
	"github.com/Ackee-Blockchain/trident-syscall-stubs/types"
)

// SysvarCache holds the sysvars the simulator serves. Slots are set
// individually; an unset slot is a miss, which the stubs report to the
// guest as a status code.
type SysvarCache struct {
	clock           *types.Clock
	epochSchedule   *types.EpochSchedule
	epochRewards    *types.EpochRewards
	fees            *types.Fees
	lastRestartSlot *types.LastRestartSlot
	rent            *types.Rent
}

var _ host.SysvarCache = (*SysvarCache)(nil)

func (c *SysvarCache) SetClock(clock types.Clock) { c.clock = &clock }

func (c *SysvarCache) SetEpochSchedule(es types.EpochSchedule) { c.epochSchedule = &es }

func (c *SysvarCache) SetEpochRewards(er types.EpochRewards) { c.epochRewards = &er }

func (c *SysvarCache) SetFees(fees types.Fees) { c.fees = &fees }
func (c *SysvarCache) SetLastRestartSlot(l types.LastRestartSlot) {
	c.lastRestartSlot = &l
}

func (c *SysvarCache) SetRent(rent types.Rent) { c.rent = &rent }

func (c *SysvarCache) Clock() (types.Clock, bool) {
	if c.clock == nil {
		return types.Clock{}, false
	}
	return *c.clock, true
}

func (c *SysvarCache) EpochSchedule() (types.EpochSchedule, bool) {
	if c.epochSchedule == nil {
		return types.EpochSchedule{}, false
	}
	return *c.epochSchedule, true
}

func (c *SysvarCache) EpochRewards() (types.EpochRewards, bool) {
	if c.epochRewards == nil {
		return types.EpochRewards{}, false
	}
	return *c.epochRewards, true
}

func (c *SysvarCache) Fees() (types.Fees, bool) {
	if c.fees == nil {
		return types.Fees{}, false
	}
	return *c.fees, true
}

func (c *SysvarCache) LastRestartSlot() (types.LastRestartSlot, bool) {
	if c.lastRestartSlot == nil {
		return types.LastRestartSlot{}, false
	}
	return *c.lastRestartSlot, true
}

func (c *SysvarCache) Rent() (types.Rent, bool) {
	if c.rent == nil {
		return types.Rent{}, false
	}
	return *c.rent, true
}
