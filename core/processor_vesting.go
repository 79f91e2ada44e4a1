package core

import (
	"context"
	"math/big"

	"stakevest/crypto"
	"stakevest/native/vesting"
)

func (p *Processor) ClaimVested(ctx context.Context, caller crypto.Address, category uint64, revertIfZero bool) (*big.Int, error) {
	var paid *big.Int
	err := p.execute(ctx, "vesting_claim", caller, func(s *session) error {
		var err error
		paid, err = s.vesting.Claim(caller, category, revertIfZero)
		return err
	})
	return paid, err
}

func (p *Processor) ClaimAllVested(ctx context.Context, caller crypto.Address) (*big.Int, error) {
	var paid *big.Int
	err := p.execute(ctx, "vesting_claimAll", caller, func(s *session) error {
		var err error
		paid, err = s.vesting.ClaimAll(caller)
		return err
	})
	return paid, err
}

func (p *Processor) SetTgeTime(ctx context.Context, caller crypto.Address, ts uint64) error {
	return p.execute(ctx, "vesting_setTgeTime", caller, func(s *session) error {
		return s.vesting.SetTgeTime(caller, ts)
	})
}

func (p *Processor) SetLastCategory(ctx context.Context, caller crypto.Address, last uint64) error {
	return p.execute(ctx, "vesting_setLastCategory", caller, func(s *session) error {
		return s.vesting.SetLastCategory(caller, last)
	})
}

func (p *Processor) SetVestingInfo(ctx context.Context, caller crypto.Address, category uint64, schedule vesting.Schedule) error {
	return p.execute(ctx, "vesting_setVestingInfo", caller, func(s *session) error {
		return s.vesting.SetVestingInfo(caller, category, schedule)
	})
}

func (p *Processor) SetVestingInfoInBatch(ctx context.Context, caller crypto.Address, categories []uint64, schedules []vesting.Schedule) error {
	return p.execute(ctx, "vesting_setVestingInfoInBatch", caller, func(s *session) error {
		return s.vesting.SetVestingInfoInBatch(caller, categories, schedules)
	})
}

func (p *Processor) SetAmount(ctx context.Context, caller crypto.Address, category uint64, user crypto.Address, amount *big.Int) error {
	return p.execute(ctx, "vesting_setAmount", caller, func(s *session) error {
		return s.vesting.SetAmount(caller, category, user, amount)
	})
}

func (p *Processor) SetAmountInBatch(ctx context.Context, caller crypto.Address, category uint64, users []crypto.Address, amounts []*big.Int) error {
	return p.execute(ctx, "vesting_setAmountInBatch", caller, func(s *session) error {
		return s.vesting.SetAmountInBatch(caller, category, users, amounts)
	})
}

func (p *Processor) VestedAmount(category uint64, user crypto.Address) (*big.Int, error) {
	var out *big.Int
	err := p.query(func(s *session) error {
		var err error
		out, err = s.vesting.VestedAmount(category, user)
		return err
	})
	return out, err
}

func (p *Processor) Allocation(category uint64, user crypto.Address) (*big.Int, error) {
	var out *big.Int
	err := p.query(func(s *session) error {
		var err error
		out, err = s.vesting.Allocation(category, user)
		return err
	})
	return out, err
}

func (p *Processor) VestingSummary(user crypto.Address) ([]vesting.CategorySummary, error) {
	var out []vesting.CategorySummary
	err := p.query(func(s *session) error {
		var err error
		out, err = s.vesting.Summary(user)
		return err
	})
	return out, err
}
