package rpc

import (
	"context"

	"stakevest/crypto"
	"stakevest/native/vesting"
)

type vestingClaimParams struct {
	Category     uint64 `json:"category"`
	RevertIfZero bool   `json:"revertIfZero,omitempty"`
}

type vestingUserParams struct {
	Category uint64         `json:"category"`
	User     crypto.Address `json:"user"`
}

type vestingSummaryParams struct {
	User crypto.Address `json:"user"`
}

type vestingTgeParams struct {
	TgeTime uint64 `json:"tgeTime"`
}

type vestingLastCategoryParams struct {
	Category uint64 `json:"category"`
}

// ScheduleParams is the JSON form of a vesting schedule.
type ScheduleParams struct {
	CliffOffset      uint64 `json:"cliffOffset"`
	CliffFraction    uint64 `json:"cliffFraction"`
	LinearPeriodDays uint64 `json:"linearPeriodDays"`
}

func (p ScheduleParams) schedule() vesting.Schedule {
	return vesting.Schedule{
		CliffOffset:      p.CliffOffset,
		CliffFraction:    p.CliffFraction,
		LinearPeriodDays: p.LinearPeriodDays,
	}
}

type vestingInfoParams struct {
	Category uint64 `json:"category"`
	ScheduleParams
}

type vestingInfoBatchParams struct {
	Categories []uint64         `json:"categories"`
	Schedules  []ScheduleParams `json:"schedules"`
}

type vestingAmountParams struct {
	Category uint64         `json:"category"`
	User     crypto.Address `json:"user"`
	Amount   string         `json:"amount"`
}

type vestingAmountBatchParams struct {
	Category uint64           `json:"category"`
	Users    []crypto.Address `json:"users"`
	Amounts  []string         `json:"amounts"`
}

// CategorySummaryResult is one row of vesting_summary.
type CategorySummaryResult struct {
	Category  uint64         `json:"category"`
	Schedule  ScheduleParams `json:"schedule"`
	Total     string         `json:"total"`
	Vested    string         `json:"vested"`
	Claimed   string         `json:"claimed"`
	Claimable string         `json:"claimable"`
}

func (s *Server) handleVestingClaim(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params vestingClaimParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	claimed, err := s.proc.ClaimVested(ctx, caller, params.Category, params.RevertIfZero)
	if err != nil {
		return nil, err
	}
	return amountResult{Amount: formatAmount(claimed)}, nil
}

func (s *Server) handleVestingClaimAll(ctx context.Context, caller crypto.Address, _ *RPCRequest) (interface{}, error) {
	claimed, err := s.proc.ClaimAllVested(ctx, caller)
	if err != nil {
		return nil, err
	}
	return amountResult{Amount: formatAmount(claimed)}, nil
}

func (s *Server) handleVestingSetTgeTime(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params vestingTgeParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	if err := s.proc.SetTgeTime(ctx, caller, params.TgeTime); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleVestingSetLastCategory(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params vestingLastCategoryParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	if err := s.proc.SetLastCategory(ctx, caller, params.Category); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleVestingSetVestingInfo(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params vestingInfoParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	if err := s.proc.SetVestingInfo(ctx, caller, params.Category, params.schedule()); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleVestingSetVestingInfoInBatch(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params vestingInfoBatchParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	schedules := make([]vesting.Schedule, len(params.Schedules))
	for i, sp := range params.Schedules {
		schedules[i] = sp.schedule()
	}
	if err := s.proc.SetVestingInfoInBatch(ctx, caller, params.Categories, schedules); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleVestingSetAmount(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params vestingAmountParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.proc.SetAmount(ctx, caller, params.Category, params.User, amount); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleVestingSetAmountInBatch(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params vestingAmountBatchParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	amounts, err := parseAmounts(params.Amounts)
	if err != nil {
		return nil, err
	}
	if err := s.proc.SetAmountInBatch(ctx, caller, params.Category, params.Users, amounts); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleVestingVested(_ context.Context, _ crypto.Address, req *RPCRequest) (interface{}, error) {
	var params vestingUserParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	vested, err := s.proc.VestedAmount(params.Category, params.User)
	if err != nil {
		return nil, err
	}
	return amountResult{Amount: formatAmount(vested)}, nil
}

func (s *Server) handleVestingAllocation(_ context.Context, _ crypto.Address, req *RPCRequest) (interface{}, error) {
	var params vestingUserParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	total, err := s.proc.Allocation(params.Category, params.User)
	if err != nil {
		return nil, err
	}
	return amountResult{Amount: formatAmount(total)}, nil
}

func (s *Server) handleVestingSummary(_ context.Context, _ crypto.Address, req *RPCRequest) (interface{}, error) {
	var params vestingSummaryParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	rows, err := s.proc.VestingSummary(params.User)
	if err != nil {
		return nil, err
	}
	out := make([]CategorySummaryResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategorySummaryResult{
			Category: row.Category,
			Schedule: ScheduleParams{
				CliffOffset:      row.Schedule.CliffOffset,
				CliffFraction:    row.Schedule.CliffFraction,
				LinearPeriodDays: row.Schedule.LinearPeriodDays,
			},
			Total:     formatAmount(row.Total),
			Vested:    formatAmount(row.Vested),
			Claimed:   formatAmount(row.Claimed),
			Claimable: formatAmount(row.Claimable),
		})
	}
	return out, nil
}
