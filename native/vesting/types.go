package vesting

import (
	"math/big"

	coreerrors "stakevest/core/errors"
	"stakevest/crypto"
)

const (
	// Denominator is the parts-per scale of Schedule.CliffFraction.
	Denominator uint64 = 100_000
	// SecondsPerDay is the granularity of the linear unlock.
	SecondsPerDay uint64 = 86_400
	// MaxLastCategory bounds the category range walked by ClaimAll and
	// Summary.
	MaxLastCategory uint64 = 1_023
)

// Categories whose allocations are reported by the allocation oracle instead
// of local state.
const (
	CategoryPrimarySale uint64 = 0
	CategoryReferral    uint64 = 1
)

// Schedule describes how a category unlocks relative to the TGE time.
type Schedule struct {
	// CliffOffset is the number of seconds after TGE the cliff unlocks.
	CliffOffset uint64
	// CliffFraction is the share unlocked at the cliff in parts per
	// Denominator.
	CliffFraction uint64
	// LinearPeriodDays spreads the remainder over whole days after the cliff.
	LinearPeriodDays uint64
}

// Validate checks the schedule invariants.
func (s Schedule) Validate() error {
	if s.CliffFraction > Denominator {
		return coreerrors.ErrInvalidPercentage
	}
	if s.CliffFraction != Denominator && s.LinearPeriodDays == 0 {
		return coreerrors.ErrInvalidVestingInfo
	}
	return nil
}

// AllocationOracle reports externally sourced allocations.
type AllocationOracle interface {
	PrimaryAllocation(user crypto.Address) (*big.Int, error)
	ReferralAllocation(user crypto.Address) (*big.Int, error)
}

// CategorySummary is a per-category snapshot of a user's vesting position.
type CategorySummary struct {
	Category  uint64
	Schedule  Schedule
	Total     *big.Int
	Vested    *big.Int
	Claimed   *big.Int
	Claimable *big.Int
}

func isOracleCategory(category uint64) bool {
	return category == CategoryPrimarySale || category == CategoryReferral
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
