package rewards

import (
	"math/big"

	"stakevest/crypto"
)

// Pool captures the accounting state for a single stake token. Amounts are
// denominated in the smallest token unit and expressed as big integers to
// match ledger precision.
type Pool struct {
	// Token is the stake-token identity the pool is keyed by.
	Token crypto.Address
	// ID is the 1-based sequence number assigned at registration. Zero means
	// the pool does not exist.
	ID uint64
	// LastAccrualHeight records the block height when rewards were last
	// accrued into the accumulator.
	LastAccrualHeight uint64
	// CooldownPeriod is the number of seconds a withdrawal waits before it can
	// be paid out. Zero pays withdrawals immediately.
	CooldownPeriod uint64
	// TotalStaked is the sum of every position's staked amount.
	TotalStaked *big.Int
	// RewardRate is the number of reward token units emitted per block.
	RewardRate *big.Int
	// AccRewardPerShare is the cumulative reward per unit of stake scaled by
	// AccScale.
	AccRewardPerShare *big.Int
}

// Clone returns a deep copy of the pool.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	clone := *p
	clone.TotalStaked = cloneBigInt(p.TotalStaked)
	clone.RewardRate = cloneBigInt(p.RewardRate)
	clone.AccRewardPerShare = cloneBigInt(p.AccRewardPerShare)
	return &clone
}

// Position maintains a participant's stake and reward bookkeeping in a pool.
type Position struct {
	// StakedAmount is the stake currently earning rewards.
	StakedAmount *big.Int
	// RewardDebt is StakedAmount * AccRewardPerShare / AccScale at the last
	// sync, the baseline already accounted for.
	RewardDebt *big.Int
	// PendingReward holds realised rewards that have not been claimed.
	PendingReward *big.Int
	// CooldownAmount is stake withdrawn but still waiting for its cooldown.
	CooldownAmount *big.Int
	// CooldownExpiry is the unix time the cooldown amount becomes payable.
	// Zero means no cooldown is active.
	CooldownExpiry uint64
}

// NewPosition returns a zero-valued position.
func NewPosition() *Position {
	return &Position{
		StakedAmount:   big.NewInt(0),
		RewardDebt:     big.NewInt(0),
		PendingReward:  big.NewInt(0),
		CooldownAmount: big.NewInt(0),
	}
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	return &Position{
		StakedAmount:   cloneBigInt(p.StakedAmount),
		RewardDebt:     cloneBigInt(p.RewardDebt),
		PendingReward:  cloneBigInt(p.PendingReward),
		CooldownAmount: cloneBigInt(p.CooldownAmount),
		CooldownExpiry: p.CooldownExpiry,
	}
}

func (p *Position) ensureDefaults() {
	if p.StakedAmount == nil {
		p.StakedAmount = big.NewInt(0)
	}
	if p.RewardDebt == nil {
		p.RewardDebt = big.NewInt(0)
	}
	if p.PendingReward == nil {
		p.PendingReward = big.NewInt(0)
	}
	if p.CooldownAmount == nil {
		p.CooldownAmount = big.NewInt(0)
	}
}

func (p *Pool) ensureDefaults() {
	if p.TotalStaked == nil {
		p.TotalStaked = big.NewInt(0)
	}
	if p.RewardRate == nil {
		p.RewardRate = big.NewInt(0)
	}
	if p.AccRewardPerShare == nil {
		p.AccRewardPerShare = big.NewInt(0)
	}
}

// PoolConfig carries the admin-controlled pool parameters.
type PoolConfig struct {
	Token          crypto.Address
	RewardRate     *big.Int
	CooldownPeriod uint64
	// StartHeight defers the first accrual. Zero means the current height.
	StartHeight uint64
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
