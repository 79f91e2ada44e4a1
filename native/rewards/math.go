package rewards

import "math/big"

// AccScale is the fixed-point scale of AccRewardPerShare.
var AccScale = big.NewInt(1_000_000_000_000)

// emission returns the reward minted for the blocks elapsed since the last
// accrual.
func emission(pool *Pool, height uint64) *big.Int {
	if height <= pool.LastAccrualHeight {
		return big.NewInt(0)
	}
	blocks := new(big.Int).SetUint64(height - pool.LastAccrualHeight)
	return blocks.Mul(blocks, pool.RewardRate)
}

// accIncrement converts a minted amount into the per-share accumulator delta.
// Division truncates; the remainder stays undistributed.
func accIncrement(minted, totalStaked *big.Int) *big.Int {
	if minted.Sign() == 0 || totalStaked.Sign() == 0 {
		return big.NewInt(0)
	}
	delta := new(big.Int).Mul(minted, AccScale)
	return delta.Quo(delta, totalStaked)
}

// projectedAcc returns the accumulator as it would read after accruing up to
// height, without mutating the pool.
func projectedAcc(pool *Pool, height uint64) *big.Int {
	acc := cloneBigInt(pool.AccRewardPerShare)
	if height <= pool.LastAccrualHeight || pool.TotalStaked.Sign() == 0 {
		return acc
	}
	return acc.Add(acc, accIncrement(emission(pool, height), pool.TotalStaked))
}

// accumulated returns staked * acc / AccScale.
func accumulated(staked, acc *big.Int) *big.Int {
	out := new(big.Int).Mul(staked, acc)
	return out.Quo(out, AccScale)
}

func minBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
