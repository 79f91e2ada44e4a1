package core

import (
	"context"
	"math/big"

	"stakevest/crypto"
	"stakevest/native/rewards"
)

func (p *Processor) SetPool(ctx context.Context, caller crypto.Address, cfg rewards.PoolConfig) (*rewards.Pool, error) {
	var pool *rewards.Pool
	err := p.execute(ctx, "rewards_setPool", caller, func(s *session) error {
		var err error
		pool, err = s.rewards.SetPool(caller, cfg)
		return err
	})
	return pool, err
}

func (p *Processor) Deposit(ctx context.Context, caller, token crypto.Address, amount *big.Int, fromCooldown bool) error {
	return p.execute(ctx, "rewards_deposit", caller, func(s *session) error {
		return s.rewards.Deposit(caller, token, amount, fromCooldown)
	})
}

func (p *Processor) Withdraw(ctx context.Context, caller, token crypto.Address, amount *big.Int) error {
	return p.execute(ctx, "rewards_withdraw", caller, func(s *session) error {
		return s.rewards.Withdraw(caller, token, amount)
	})
}

func (p *Processor) ClaimReward(ctx context.Context, caller, token crypto.Address, amount *big.Int) (*big.Int, error) {
	var paid *big.Int
	err := p.execute(ctx, "rewards_claim", caller, func(s *session) error {
		var err error
		paid, err = s.rewards.Claim(caller, token, amount)
		return err
	})
	return paid, err
}

// Compound restakes pending rewards of the source pool into the reward token
// pool. Both pool updates commit together or not at all.
func (p *Processor) Compound(ctx context.Context, caller, source crypto.Address, amount *big.Int) (*big.Int, error) {
	var moved *big.Int
	err := p.execute(ctx, "rewards_compound", caller, func(s *session) error {
		var err error
		moved, err = s.rewards.Compound(caller, source, amount)
		return err
	})
	return moved, err
}

func (p *Processor) PendingReward(token, user crypto.Address) (*big.Int, error) {
	var out *big.Int
	err := p.query(func(s *session) error {
		var err error
		out, err = s.rewards.PendingReward(token, user)
		return err
	})
	return out, err
}

func (p *Processor) Pool(token crypto.Address) (*rewards.Pool, error) {
	var out *rewards.Pool
	err := p.query(func(s *session) error {
		var err error
		out, err = s.rewards.Pool(token)
		return err
	})
	return out, err
}

func (p *Processor) Pools() ([]*rewards.Pool, error) {
	var out []*rewards.Pool
	err := p.query(func(s *session) error {
		var err error
		out, err = s.rewards.Pools()
		return err
	})
	return out, err
}

func (p *Processor) Position(token, user crypto.Address) (*rewards.Position, error) {
	var out *rewards.Position
	err := p.query(func(s *session) error {
		var err error
		out, err = s.rewards.Position(token, user)
		return err
	})
	return out, err
}
