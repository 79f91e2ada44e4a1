package rpc

import (
	"context"

	"stakevest/crypto"
	"stakevest/native/rewards"
)

type rewardsAmountParams struct {
	Token  crypto.Address `json:"token"`
	Amount string         `json:"amount"`
}

type rewardsDepositParams struct {
	Token        crypto.Address `json:"token"`
	Amount       string         `json:"amount"`
	FromCooldown bool           `json:"fromCooldown,omitempty"`
}

type rewardsSetPoolParams struct {
	Token          crypto.Address `json:"token"`
	RewardRate     string         `json:"rewardRate"`
	CooldownPeriod uint64         `json:"cooldownPeriod"`
	StartHeight    uint64         `json:"startHeight,omitempty"`
}

type rewardsUserParams struct {
	Token crypto.Address `json:"token"`
	User  crypto.Address `json:"user"`
}

type rewardsTokenParams struct {
	Token crypto.Address `json:"token"`
}

// PoolResult is the JSON view of a reward pool.
type PoolResult struct {
	Token             string `json:"token"`
	ID                uint64 `json:"id"`
	LastAccrualHeight uint64 `json:"lastAccrualHeight"`
	CooldownPeriod    uint64 `json:"cooldownPeriod"`
	TotalStaked       string `json:"totalStaked"`
	RewardRate        string `json:"rewardRate"`
	AccRewardPerShare string `json:"accRewardPerShare"`
}

// PositionResult is the JSON view of a participant's position.
type PositionResult struct {
	StakedAmount   string `json:"stakedAmount"`
	RewardDebt     string `json:"rewardDebt"`
	PendingReward  string `json:"pendingReward"`
	CooldownAmount string `json:"cooldownAmount"`
	CooldownExpiry uint64 `json:"cooldownExpiry"`
}

type amountResult struct {
	Amount string `json:"amount"`
}

type okResult struct {
	OK bool `json:"ok"`
}

func poolResult(pool *rewards.Pool) PoolResult {
	return PoolResult{
		Token:             pool.Token.String(),
		ID:                pool.ID,
		LastAccrualHeight: pool.LastAccrualHeight,
		CooldownPeriod:    pool.CooldownPeriod,
		TotalStaked:       formatAmount(pool.TotalStaked),
		RewardRate:        formatAmount(pool.RewardRate),
		AccRewardPerShare: formatAmount(pool.AccRewardPerShare),
	}
}

func (s *Server) handleRewardsDeposit(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params rewardsDepositParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.proc.Deposit(ctx, caller, params.Token, amount, params.FromCooldown); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleRewardsWithdraw(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params rewardsAmountParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.proc.Withdraw(ctx, caller, params.Token, amount); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleRewardsClaim(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params rewardsAmountParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		return nil, err
	}
	paid, err := s.proc.ClaimReward(ctx, caller, params.Token, amount)
	if err != nil {
		return nil, err
	}
	return amountResult{Amount: formatAmount(paid)}, nil
}

func (s *Server) handleRewardsCompound(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params rewardsAmountParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		return nil, err
	}
	moved, err := s.proc.Compound(ctx, caller, params.Token, amount)
	if err != nil {
		return nil, err
	}
	return amountResult{Amount: formatAmount(moved)}, nil
}

func (s *Server) handleRewardsSetPool(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params rewardsSetPoolParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	rate, err := parseAmount(params.RewardRate)
	if err != nil {
		return nil, err
	}
	pool, err := s.proc.SetPool(ctx, caller, rewards.PoolConfig{
		Token:          params.Token,
		RewardRate:     rate,
		CooldownPeriod: params.CooldownPeriod,
		StartHeight:    params.StartHeight,
	})
	if err != nil {
		return nil, err
	}
	return poolResult(pool), nil
}

func (s *Server) handleRewardsPending(_ context.Context, _ crypto.Address, req *RPCRequest) (interface{}, error) {
	var params rewardsUserParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	pending, err := s.proc.PendingReward(params.Token, params.User)
	if err != nil {
		return nil, err
	}
	return amountResult{Amount: formatAmount(pending)}, nil
}

func (s *Server) handleRewardsPool(_ context.Context, _ crypto.Address, req *RPCRequest) (interface{}, error) {
	var params rewardsTokenParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	pool, err := s.proc.Pool(params.Token)
	if err != nil {
		return nil, err
	}
	return poolResult(pool), nil
}

func (s *Server) handleRewardsPools(_ context.Context, _ crypto.Address, _ *RPCRequest) (interface{}, error) {
	pools, err := s.proc.Pools()
	if err != nil {
		return nil, err
	}
	out := make([]PoolResult, 0, len(pools))
	for _, pool := range pools {
		out = append(out, poolResult(pool))
	}
	return out, nil
}

func (s *Server) handleRewardsPosition(_ context.Context, _ crypto.Address, req *RPCRequest) (interface{}, error) {
	var params rewardsUserParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	pos, err := s.proc.Position(params.Token, params.User)
	if err != nil {
		return nil, err
	}
	return PositionResult{
		StakedAmount:   formatAmount(pos.StakedAmount),
		RewardDebt:     formatAmount(pos.RewardDebt),
		PendingReward:  formatAmount(pos.PendingReward),
		CooldownAmount: formatAmount(pos.CooldownAmount),
		CooldownExpiry: pos.CooldownExpiry,
	}, nil
}
