package errors

import stderrors "errors"

// Failure reasons shared by the reward and vesting engines. Every one of them
// aborts the operation that produced it.
var (
	ErrZeroAddress                 = stderrors.New("engine: zero address")
	ErrZeroAmount                  = stderrors.New("engine: zero amount")
	ErrPoolNotFound                = stderrors.New("rewards: pool not found")
	ErrInsufficientStake           = stderrors.New("rewards: insufficient stake")
	ErrInsufficientCooldownBalance = stderrors.New("rewards: insufficient cooldown balance")
	ErrNoPendingReward             = stderrors.New("rewards: no pending reward")
	ErrInvalidCategory             = stderrors.New("vesting: invalid category")
	ErrInvalidPercentage           = stderrors.New("vesting: invalid percentage")
	ErrInvalidVestingInfo          = stderrors.New("vesting: invalid vesting info")
	ErrInvalidArrayLength          = stderrors.New("engine: invalid array length")
	ErrNothingToClaim              = stderrors.New("vesting: nothing to claim")
	ErrUnauthorized                = stderrors.New("engine: unauthorized")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrZeroAddress, "ZeroAddress"},
	{ErrZeroAmount, "ZeroAmount"},
	{ErrPoolNotFound, "PoolNotFound"},
	{ErrInsufficientStake, "InsufficientStake"},
	{ErrInsufficientCooldownBalance, "InsufficientCooldownBalance"},
	{ErrNoPendingReward, "NoPendingReward"},
	{ErrInvalidCategory, "InvalidCategory"},
	{ErrInvalidPercentage, "InvalidPercentage"},
	{ErrInvalidVestingInfo, "InvalidVestingInfo"},
	{ErrInvalidArrayLength, "InvalidArrayLength"},
	{ErrNothingToClaim, "NothingToClaim"},
	{ErrUnauthorized, "Unauthorized"},
}

// Code returns the stable taxonomy name for err, or an empty string when err
// does not wrap one of the engine failures.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, entry := range codes {
		if stderrors.Is(err, entry.err) {
			return entry.code
		}
	}
	return ""
}
