package events

import (
	"math/big"
	"strconv"

	"stakevest/core/types"
	"stakevest/crypto"
)

const (
	// TypeRewardsDeposited is emitted when stake enters a pool.
	TypeRewardsDeposited = "rewards.deposited"
	// TypeRewardsWithdrawn is emitted when stake leaves pool custody.
	TypeRewardsWithdrawn = "rewards.withdrawn"
	// TypeRewardsCooldownStarted is emitted when a withdrawal enters cooldown.
	TypeRewardsCooldownStarted = "rewards.cooldownStarted"
	// TypeRewardsClaimed is emitted when pending rewards are paid out.
	TypeRewardsClaimed = "rewards.claimed"
	// TypeRewardsCompounded is emitted when pending rewards are restaked into
	// the base pool.
	TypeRewardsCompounded = "rewards.compounded"
	// TypeRewardsPoolUpdated is emitted when a pool is registered or updated.
	TypeRewardsPoolUpdated = "rewards.poolUpdated"
)

// RewardsDeposited captures a deposit into a pool.
type RewardsDeposited struct {
	User         crypto.Address
	Pool         crypto.Address
	Amount       *big.Int
	FromCooldown bool
}

// EventType satisfies the Event interface.
func (RewardsDeposited) EventType() string { return TypeRewardsDeposited }

// Event converts the structured payload into a broadcastable event.
func (e RewardsDeposited) Event() *types.Event {
	return &types.Event{Type: TypeRewardsDeposited, Attributes: map[string]string{
		"user":         formatAddress(e.User),
		"pool":         formatAddress(e.Pool),
		"amount":       formatAmount(e.Amount),
		"fromCooldown": strconv.FormatBool(e.FromCooldown),
	}}
}

// RewardsWithdrawn captures stake paid out of pool custody.
type RewardsWithdrawn struct {
	User   crypto.Address
	Pool   crypto.Address
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (RewardsWithdrawn) EventType() string { return TypeRewardsWithdrawn }

// Event converts the structured payload into a broadcastable event.
func (e RewardsWithdrawn) Event() *types.Event {
	return &types.Event{Type: TypeRewardsWithdrawn, Attributes: map[string]string{
		"user":   formatAddress(e.User),
		"pool":   formatAddress(e.Pool),
		"amount": formatAmount(e.Amount),
	}}
}

// RewardsCooldownStarted captures a withdrawal parked behind the pool cooldown.
type RewardsCooldownStarted struct {
	User   crypto.Address
	Pool   crypto.Address
	Amount *big.Int
	Expiry uint64
}

// EventType satisfies the Event interface.
func (RewardsCooldownStarted) EventType() string { return TypeRewardsCooldownStarted }

// Event converts the structured payload into a broadcastable event.
func (e RewardsCooldownStarted) Event() *types.Event {
	return &types.Event{Type: TypeRewardsCooldownStarted, Attributes: map[string]string{
		"user":   formatAddress(e.User),
		"pool":   formatAddress(e.Pool),
		"amount": formatAmount(e.Amount),
		"expiry": formatUint(e.Expiry),
	}}
}

// RewardsClaimed captures a reward payout.
type RewardsClaimed struct {
	User   crypto.Address
	Pool   crypto.Address
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (RewardsClaimed) EventType() string { return TypeRewardsClaimed }

// Event converts the structured payload into a broadcastable event.
func (e RewardsClaimed) Event() *types.Event {
	return &types.Event{Type: TypeRewardsClaimed, Attributes: map[string]string{
		"user":   formatAddress(e.User),
		"pool":   formatAddress(e.Pool),
		"amount": formatAmount(e.Amount),
	}}
}

// RewardsCompounded captures pending rewards moved into base pool stake. Pool
// is the source pool the rewards were taken from.
type RewardsCompounded struct {
	User   crypto.Address
	Pool   crypto.Address
	Amount *big.Int
}

// EventType satisfies the Event interface.
func (RewardsCompounded) EventType() string { return TypeRewardsCompounded }

// Event converts the structured payload into a broadcastable event.
func (e RewardsCompounded) Event() *types.Event {
	return &types.Event{Type: TypeRewardsCompounded, Attributes: map[string]string{
		"user":   formatAddress(e.User),
		"pool":   formatAddress(e.Pool),
		"amount": formatAmount(e.Amount),
	}}
}

// RewardsPoolUpdated captures the configuration of a pool after an admin write.
type RewardsPoolUpdated struct {
	Token             crypto.Address
	ID                uint64
	RewardRate        *big.Int
	CooldownPeriod    uint64
	LastAccrualHeight uint64
}

// EventType satisfies the Event interface.
func (RewardsPoolUpdated) EventType() string { return TypeRewardsPoolUpdated }

// Event converts the structured payload into a broadcastable event.
func (e RewardsPoolUpdated) Event() *types.Event {
	return &types.Event{Type: TypeRewardsPoolUpdated, Attributes: map[string]string{
		"token":             formatAddress(e.Token),
		"id":                formatUint(e.ID),
		"rewardRate":        formatAmount(e.RewardRate),
		"cooldownPeriod":    formatUint(e.CooldownPeriod),
		"lastAccrualHeight": formatUint(e.LastAccrualHeight),
	}}
}
