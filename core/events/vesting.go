package events

import (
	"math/big"

	"stakevest/core/types"
	"stakevest/crypto"
)

const (
	// TypeVestingClaimed is emitted when vested tokens are minted to a user.
	TypeVestingClaimed = "vesting.claimed"
	// TypeVestingScheduleSet is emitted when a category schedule is written.
	TypeVestingScheduleSet = "vesting.scheduleSet"
	// TypeVestingAllocationSet is emitted when a user allocation is written.
	TypeVestingAllocationSet = "vesting.allocationSet"
	// TypeVestingTgeTimeSet is emitted when the TGE timestamp changes.
	TypeVestingTgeTimeSet = "vesting.tgeTimeSet"
	// TypeVestingLastCategorySet is emitted when the category bound changes.
	TypeVestingLastCategorySet = "vesting.lastCategorySet"
)

// VestingClaimed captures a vesting payout.
type VestingClaimed struct {
	Category uint64
	User     crypto.Address
	Amount   *big.Int
}

// EventType satisfies the Event interface.
func (VestingClaimed) EventType() string { return TypeVestingClaimed }

// Event converts the structured payload into a broadcastable event.
func (e VestingClaimed) Event() *types.Event {
	return &types.Event{Type: TypeVestingClaimed, Attributes: map[string]string{
		"category": formatUint(e.Category),
		"user":     formatAddress(e.User),
		"amount":   formatAmount(e.Amount),
	}}
}

// VestingScheduleSet captures a schedule write.
type VestingScheduleSet struct {
	Category         uint64
	CliffOffset      uint64
	CliffFraction    uint64
	LinearPeriodDays uint64
}

// EventType satisfies the Event interface.
func (VestingScheduleSet) EventType() string { return TypeVestingScheduleSet }

// Event converts the structured payload into a broadcastable event.
func (e VestingScheduleSet) Event() *types.Event {
	return &types.Event{Type: TypeVestingScheduleSet, Attributes: map[string]string{
		"category":         formatUint(e.Category),
		"cliffOffset":      formatUint(e.CliffOffset),
		"cliffFraction":    formatUint(e.CliffFraction),
		"linearPeriodDays": formatUint(e.LinearPeriodDays),
	}}
}

// VestingAllocationSet captures an allocation write.
type VestingAllocationSet struct {
	Category uint64
	User     crypto.Address
	Amount   *big.Int
}

// EventType satisfies the Event interface.
func (VestingAllocationSet) EventType() string { return TypeVestingAllocationSet }

// Event converts the structured payload into a broadcastable event.
func (e VestingAllocationSet) Event() *types.Event {
	return &types.Event{Type: TypeVestingAllocationSet, Attributes: map[string]string{
		"category": formatUint(e.Category),
		"user":     formatAddress(e.User),
		"amount":   formatAmount(e.Amount),
	}}
}

// VestingTgeTimeSet captures a TGE timestamp write.
type VestingTgeTimeSet struct {
	Time uint64
}

// EventType satisfies the Event interface.
func (VestingTgeTimeSet) EventType() string { return TypeVestingTgeTimeSet }

// Event converts the structured payload into a broadcastable event.
func (e VestingTgeTimeSet) Event() *types.Event {
	return &types.Event{Type: TypeVestingTgeTimeSet, Attributes: map[string]string{
		"time": formatUint(e.Time),
	}}
}

// VestingLastCategorySet captures a change of the category bound.
type VestingLastCategorySet struct {
	LastCategory uint64
}

// EventType satisfies the Event interface.
func (VestingLastCategorySet) EventType() string { return TypeVestingLastCategorySet }

// Event converts the structured payload into a broadcastable event.
func (e VestingLastCategorySet) Event() *types.Event {
	return &types.Event{Type: TypeVestingLastCategorySet, Attributes: map[string]string{
		"lastCategory": formatUint(e.LastCategory),
	}}
}
