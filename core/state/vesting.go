package state

import (
	"math/big"

	"stakevest/crypto"
	"stakevest/native/vesting"
)

type scheduleRecord struct {
	CliffOffset      uint64
	CliffFraction    uint64
	LinearPeriodDays uint64
}

func (tx *Tx) VestingTgeTime() (uint64, error) { return tx.getUint64(vestingTgeKey) }

func (tx *Tx) PutVestingTgeTime(ts uint64) error { return tx.putRLP(vestingTgeKey, ts) }

func (tx *Tx) VestingLastCategory() (uint64, error) { return tx.getUint64(vestingLastCategoryKey) }

func (tx *Tx) PutVestingLastCategory(category uint64) error {
	return tx.putRLP(vestingLastCategoryKey, category)
}

// VestingSchedule returns nil for categories without a schedule.
func (tx *Tx) VestingSchedule(category uint64) (*vesting.Schedule, error) {
	var rec scheduleRecord
	ok, err := tx.getRLP(vestingScheduleKey(category), &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &vesting.Schedule{
		CliffOffset:      rec.CliffOffset,
		CliffFraction:    rec.CliffFraction,
		LinearPeriodDays: rec.LinearPeriodDays,
	}, nil
}

func (tx *Tx) PutVestingSchedule(category uint64, schedule *vesting.Schedule) error {
	if schedule == nil {
		return tx.del(vestingScheduleKey(category))
	}
	return tx.putRLP(vestingScheduleKey(category), scheduleRecord{
		CliffOffset:      schedule.CliffOffset,
		CliffFraction:    schedule.CliffFraction,
		LinearPeriodDays: schedule.LinearPeriodDays,
	})
}

func (tx *Tx) VestingAllocation(category uint64, user crypto.Address) (*big.Int, error) {
	return tx.getBig(vestingAllocationKey(category, user.Bytes()))
}

func (tx *Tx) PutVestingAllocation(category uint64, user crypto.Address, amount *big.Int) error {
	return tx.putBig(vestingAllocationKey(category, user.Bytes()), amount)
}

func (tx *Tx) VestingClaimed(category uint64, user crypto.Address) (*big.Int, error) {
	return tx.getBig(vestingClaimedKey(category, user.Bytes()))
}

func (tx *Tx) PutVestingClaimed(category uint64, user crypto.Address, amount *big.Int) error {
	return tx.putBig(vestingClaimedKey(category, user.Bytes()), amount)
}
