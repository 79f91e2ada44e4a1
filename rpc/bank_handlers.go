package rpc

import (
	"context"
	"errors"

	"stakevest/crypto"
	"stakevest/indexer"
)

type bankBalanceParams struct {
	Token   crypto.Address `json:"token"`
	Address crypto.Address `json:"address"`
}

type bankApproveParams struct {
	Token   crypto.Address `json:"token"`
	Spender crypto.Address `json:"spender"`
	Amount  string         `json:"amount"`
}

type bankGrantMinterParams struct {
	Token   crypto.Address `json:"token"`
	Minter  crypto.Address `json:"minter"`
	Allowed bool           `json:"allowed"`
}

// bankMoveParams carries the recipient and amount of bank_mint and
// bank_transfer.
type bankMoveParams struct {
	Token  crypto.Address `json:"token"`
	To     crypto.Address `json:"to"`
	Amount string         `json:"amount"`
}

type eventsListParams struct {
	Type    string `json:"type,omitempty"`
	Address string `json:"address,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

var errEventsDisabled = errors.New("event history is disabled on this node")

func (s *Server) handleBankBalance(_ context.Context, _ crypto.Address, req *RPCRequest) (interface{}, error) {
	var params bankBalanceParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	balance, err := s.proc.Balance(params.Token, params.Address)
	if err != nil {
		return nil, err
	}
	return amountResult{Amount: formatAmount(balance)}, nil
}

func (s *Server) handleBankApprove(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params bankApproveParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.proc.Approve(ctx, caller, params.Token, params.Spender, amount); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleBankGrantMinter(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params bankGrantMinterParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	if err := s.proc.GrantMinter(ctx, caller, params.Token, params.Minter, params.Allowed); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleBankMint(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params bankMoveParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.proc.Mint(ctx, caller, params.Token, params.To, amount); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleBankTransfer(ctx context.Context, caller crypto.Address, req *RPCRequest) (interface{}, error) {
	var params bankMoveParams
	if err := decodeParams(req, &params, false); err != nil {
		return nil, err
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.proc.Transfer(ctx, caller, params.Token, params.To, amount); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (s *Server) handleEventsList(ctx context.Context, _ crypto.Address, req *RPCRequest) (interface{}, error) {
	if s.events == nil {
		return nil, errEventsDisabled
	}
	var params eventsListParams
	if err := decodeParams(req, &params, true); err != nil {
		return nil, err
	}
	if params.Limit < 0 {
		return nil, &paramError{message: "limit must not be negative"}
	}
	records, err := s.events.List(ctx, indexer.Filter{Type: params.Type, Address: params.Address, Limit: params.Limit})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []indexer.Record{}
	}
	return records, nil
}
