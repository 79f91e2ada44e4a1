package events

import (
	"math/big"

	"stakevest/core/types"
	"stakevest/crypto"
)

const (
	// TypeBankTransfer is emitted for every ledger balance movement.
	TypeBankTransfer = "bank.transfer"
	// TypeBankMint is emitted when new supply is minted.
	TypeBankMint = "bank.mint"
	// TypeBankApproval is emitted when an allowance is written.
	TypeBankApproval = "bank.approval"
)

// BankTransfer captures a token movement between two accounts.
type BankTransfer struct {
	Token  crypto.Address
	From   crypto.Address
	To     crypto.Address
	Amount *big.Int
}

func (BankTransfer) EventType() string { return TypeBankTransfer }

func (e BankTransfer) Event() *types.Event {
	return &types.Event{Type: TypeBankTransfer, Attributes: map[string]string{
		"token":  formatAddress(e.Token),
		"from":   formatAddress(e.From),
		"to":     formatAddress(e.To),
		"amount": formatAmount(e.Amount),
	}}
}

// BankMint captures newly minted supply.
type BankMint struct {
	Token  crypto.Address
	Minter crypto.Address
	To     crypto.Address
	Amount *big.Int
}

func (BankMint) EventType() string { return TypeBankMint }

func (e BankMint) Event() *types.Event {
	return &types.Event{Type: TypeBankMint, Attributes: map[string]string{
		"token":  formatAddress(e.Token),
		"minter": formatAddress(e.Minter),
		"to":     formatAddress(e.To),
		"amount": formatAmount(e.Amount),
	}}
}

// BankApproval captures an allowance write.
type BankApproval struct {
	Token   crypto.Address
	Owner   crypto.Address
	Spender crypto.Address
	Amount  *big.Int
}

func (BankApproval) EventType() string { return TypeBankApproval }

func (e BankApproval) Event() *types.Event {
	return &types.Event{Type: TypeBankApproval, Attributes: map[string]string{
		"token":   formatAddress(e.Token),
		"owner":   formatAddress(e.Owner),
		"spender": formatAddress(e.Spender),
		"amount":  formatAmount(e.Amount),
	}}
}
