package bank

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	coreerrors "stakevest/core/errors"
	"stakevest/core/events"
	"stakevest/crypto"
)

var (
	errNilState              = errors.New("bank: state not configured")
	errInsufficientBalance   = errors.New("bank: insufficient balance")
	errInsufficientAllowance = errors.New("bank: insufficient allowance")
	errSupplyOverflow        = errors.New("bank: amount exceeds 256 bits")
)

// ErrInsufficientBalance is returned when a debit exceeds the account balance.
var ErrInsufficientBalance = errInsufficientBalance

// ErrInsufficientAllowance is returned when TransferFrom exceeds the approved
// spending limit.
var ErrInsufficientAllowance = errInsufficientAllowance

type engineState interface {
	BankBalance(token, addr crypto.Address) (*big.Int, error)
	PutBankBalance(token, addr crypto.Address, amount *big.Int) error
	BankAllowance(token, owner, spender crypto.Address) (*big.Int, error)
	PutBankAllowance(token, owner, spender crypto.Address, amount *big.Int) error
	BankSupply(token crypto.Address) (*big.Int, error)
	PutBankSupply(token crypto.Address, amount *big.Int) error
	BankIsMinter(token, addr crypto.Address) (bool, error)
	PutBankMinter(token, addr crypto.Address, allowed bool) error
}

// Ledger is the fungible token ledger consumed by the reward and vesting
// engines. Balances are bounded to 2^256-1 like their on-chain counterparts.
type Ledger struct {
	state   engineState
	emitter events.Emitter
}

// NewLedger creates a ledger with a no-op emitter.
func NewLedger() *Ledger {
	return &Ledger{emitter: events.NoopEmitter{}}
}

// SetState wires the ledger to the external persistence layer.
func (l *Ledger) SetState(state engineState) { l.state = state }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

func (l *Ledger) emit(evt events.Event) {
	if l == nil || l.emitter == nil {
		return
	}
	l.emitter.Emit(evt)
}

// BalanceOf returns the balance of addr for token.
func (l *Ledger) BalanceOf(token, addr crypto.Address) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	return l.state.BankBalance(token, addr)
}

// TotalSupply returns the minted supply of token.
func (l *Ledger) TotalSupply(token crypto.Address) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	return l.state.BankSupply(token)
}

// Allowance returns the amount spender may move out of owner's balance.
func (l *Ledger) Allowance(token, owner, spender crypto.Address) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	return l.state.BankAllowance(token, owner, spender)
}

// IsMinter reports whether addr holds the mint role for token.
func (l *Ledger) IsMinter(token, addr crypto.Address) (bool, error) {
	if l == nil || l.state == nil {
		return false, errNilState
	}
	return l.state.BankIsMinter(token, addr)
}

// SetMinter grants or revokes the mint role. Authorisation of the caller is
// the responsibility of the layer invoking the ledger.
func (l *Ledger) SetMinter(token, addr crypto.Address, allowed bool) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if token.IsZero() || addr.IsZero() {
		return coreerrors.ErrZeroAddress
	}
	return l.state.PutBankMinter(token, addr, allowed)
}

// Mint creates amount new units of token for to. The minter must hold the
// token's mint role.
func (l *Ledger) Mint(token, minter, to crypto.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if token.IsZero() || to.IsZero() {
		return coreerrors.ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return coreerrors.ErrZeroAmount
	}
	allowed, err := l.state.BankIsMinter(token, minter)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("bank: %s cannot mint %s: %w", minter, token, coreerrors.ErrUnauthorized)
	}
	supply, err := l.state.BankSupply(token)
	if err != nil {
		return err
	}
	newSupply, err := checkedAdd(supply, amount)
	if err != nil {
		return err
	}
	balance, err := l.state.BankBalance(token, to)
	if err != nil {
		return err
	}
	newBalance, err := checkedAdd(balance, amount)
	if err != nil {
		return err
	}
	if err := l.state.PutBankSupply(token, newSupply); err != nil {
		return err
	}
	if err := l.state.PutBankBalance(token, to, newBalance); err != nil {
		return err
	}
	l.emit(events.BankMint{Token: token, Minter: minter, To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

// Transfer moves amount of token from one account to another.
func (l *Ledger) Transfer(token, from, to crypto.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if token.IsZero() || from.IsZero() || to.IsZero() {
		return coreerrors.ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return coreerrors.ErrZeroAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	fromBal, err := l.state.BankBalance(token, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return errInsufficientBalance
	}
	if from.Equal(to) {
		return nil
	}
	toBal, err := l.state.BankBalance(token, to)
	if err != nil {
		return err
	}
	newTo, err := checkedAdd(toBal, amount)
	if err != nil {
		return err
	}
	if err := l.state.PutBankBalance(token, from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	if err := l.state.PutBankBalance(token, to, newTo); err != nil {
		return err
	}
	l.emit(events.BankTransfer{Token: token, From: from, To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

// TransferFrom moves amount of token out of from's balance on behalf of
// spender, consuming the allowance from has granted spender.
func (l *Ledger) TransferFrom(token, spender, from, to crypto.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() < 0 {
		return coreerrors.ErrZeroAmount
	}
	allowance, err := l.state.BankAllowance(token, from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return errInsufficientAllowance
	}
	if err := l.Transfer(token, from, to, amount); err != nil {
		return err
	}
	return l.state.PutBankAllowance(token, from, spender, new(big.Int).Sub(allowance, amount))
}

// Approve sets the amount spender may move out of owner's balance.
func (l *Ledger) Approve(token, owner, spender crypto.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if token.IsZero() || owner.IsZero() || spender.IsZero() {
		return coreerrors.ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return coreerrors.ErrZeroAmount
	}
	if _, overflow := uint256.FromBig(amount); overflow {
		return errSupplyOverflow
	}
	if err := l.state.PutBankAllowance(token, owner, spender, new(big.Int).Set(amount)); err != nil {
		return err
	}
	l.emit(events.BankApproval{Token: token, Owner: owner, Spender: spender, Amount: new(big.Int).Set(amount)})
	return nil
}

func checkedAdd(a, b *big.Int) (*big.Int, error) {
	if a == nil {
		a = new(big.Int)
	}
	if b == nil {
		b = new(big.Int)
	}
	x, overflow := uint256.FromBig(a)
	if overflow {
		return nil, errSupplyOverflow
	}
	y, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errSupplyOverflow
	}
	sum, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, errSupplyOverflow
	}
	return sum.ToBig(), nil
}
