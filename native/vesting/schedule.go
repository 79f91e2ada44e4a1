package vesting

import (
	"math"
	"math/big"
)

// vestedAt evaluates the unlock curve of schedule for total at now. The cliff
// share is available from TGE; the remainder steps up once per whole day
// elapsed after the cliff time. A zero tge means vesting has not started.
// A cliff time beyond the uint64 range is treated as never reached.
func vestedAt(total *big.Int, schedule Schedule, tge, now uint64) *big.Int {
	if total == nil || total.Sign() <= 0 || tge == 0 || now < tge {
		return big.NewInt(0)
	}
	cliffTime := tge + schedule.CliffOffset
	if cliffTime < tge {
		// Saturate: an offset past the end of time never reaches the cliff.
		cliffTime = math.MaxUint64
	}
	cliffAmount := new(big.Int).Mul(total, new(big.Int).SetUint64(schedule.CliffFraction))
	cliffAmount.Quo(cliffAmount, new(big.Int).SetUint64(Denominator))
	if now < cliffTime {
		return cliffAmount
	}
	if schedule.CliffFraction == Denominator {
		return new(big.Int).Set(total)
	}
	if schedule.LinearPeriodDays == 0 {
		return big.NewInt(0)
	}
	elapsed := (now - cliffTime) / SecondsPerDay
	if elapsed > schedule.LinearPeriodDays {
		elapsed = schedule.LinearPeriodDays
	}
	linear := new(big.Int).Sub(total, cliffAmount)
	linear.Mul(linear, new(big.Int).SetUint64(elapsed))
	linear.Quo(linear, new(big.Int).SetUint64(schedule.LinearPeriodDays))
	vested := linear.Add(linear, cliffAmount)
	if vested.Cmp(total) > 0 {
		return new(big.Int).Set(total)
	}
	return vested
}
