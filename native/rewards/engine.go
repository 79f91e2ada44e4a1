package rewards

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	coreerrors "stakevest/core/errors"
	"stakevest/core/events"
	"stakevest/crypto"
	nativecommon "stakevest/native/common"
)

var (
	errNilState  = errors.New("rewards engine: state not configured")
	errNilLedger = errors.New("rewards engine: token ledger not configured")
)

const moduleName = "rewards"

// ModuleName is the pause key of the rewards module.
const ModuleName = moduleName

type engineState interface {
	GetPool(token crypto.Address) (*Pool, error)
	PutPool(pool *Pool) error
	PoolTokens() ([]crypto.Address, error)
	GetPosition(token, user crypto.Address) (*Position, error)
	PutPosition(token, user crypto.Address, pos *Position) error
}

// TokenLedger is the subset of the token ledger the engine moves value with.
type TokenLedger interface {
	Mint(token, minter, to crypto.Address, amount *big.Int) error
	Transfer(token, from, to crypto.Address, amount *big.Int) error
	TransferFrom(token, spender, from, to crypto.Address, amount *big.Int) error
}

// Engine orchestrates the reward accounting state transitions. Rewards accrue
// lazily: every mutating operation first brings the touched pool up to the
// current block height.
type Engine struct {
	state       engineState
	ledger      TokenLedger
	emitter     events.Emitter
	pauses      nativecommon.PauseView
	custody     crypto.Address
	rewardToken crypto.Address
	owner       crypto.Address
	blockHeight uint64
	nowFn       func() int64
}

// NewEngine constructs a reward engine. custody is the account holding staked
// tokens and minted rewards; rewardToken identifies both the emitted token and
// the base pool compounding deposits into.
func NewEngine(custody, rewardToken, owner crypto.Address) *Engine {
	return &Engine{
		custody:     custody,
		rewardToken: rewardToken,
		owner:       owner,
		emitter:     events.NoopEmitter{},
		nowFn:       func() int64 { return time.Now().Unix() },
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger wires the token ledger used for mints and transfers.
func (e *Engine) SetLedger(ledger TokenLedger) { e.ledger = ledger }

func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetEmitter configures the event emitter used by the engine. Passing nil resets
// the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetBlockHeight records the block height used when computing accrual deltas.
func (e *Engine) SetBlockHeight(height uint64) {
	if e == nil {
		return
	}
	e.blockHeight = height
}

// SetNowFunc overrides the wall clock used for cooldowns.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// RewardToken returns the emitted token, which is also the base pool key.
func (e *Engine) RewardToken() crypto.Address { return e.rewardToken }

// Custody returns the account holding pool funds.
func (e *Engine) Custody() crypto.Address { return e.custody }

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	ts := e.nowFn()
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.ledger == nil {
		return errNilLedger
	}
	return nil
}

func (e *Engine) guard() error {
	if err := e.ready(); err != nil {
		return err
	}
	return nativecommon.Guard(e.pauses, moduleName)
}

func (e *Engine) loadPool(token crypto.Address) (*Pool, error) {
	pool, err := e.state.GetPool(token)
	if err != nil {
		return nil, err
	}
	if pool == nil || pool.ID == 0 {
		return nil, coreerrors.ErrPoolNotFound
	}
	pool.ensureDefaults()
	return pool, nil
}

func (e *Engine) loadPosition(token, user crypto.Address) (*Position, error) {
	pos, err := e.state.GetPosition(token, user)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return NewPosition(), nil
	}
	pos.ensureDefaults()
	return pos, nil
}

// accrue brings the pool accumulator up to the engine's block height, minting
// the emitted rewards into custody. An empty pool keeps its accrual height.
func (e *Engine) accrue(pool *Pool) error {
	if e.blockHeight <= pool.LastAccrualHeight {
		return nil
	}
	if pool.TotalStaked.Sign() == 0 {
		return nil
	}
	minted := emission(pool, e.blockHeight)
	if minted.Sign() > 0 {
		if err := e.ledger.Mint(e.rewardToken, e.custody, e.custody, minted); err != nil {
			return fmt.Errorf("rewards engine: mint emission: %w", err)
		}
	}
	pool.AccRewardPerShare = new(big.Int).Add(pool.AccRewardPerShare, accIncrement(minted, pool.TotalStaked))
	pool.LastAccrualHeight = e.blockHeight
	return nil
}

// syncPosition realises rewards accrued since the last sync into PendingReward.
func syncPosition(pos *Position, pool *Pool) {
	owed := accumulated(pos.StakedAmount, pool.AccRewardPerShare)
	owed.Sub(owed, pos.RewardDebt)
	if owed.Sign() > 0 {
		pos.PendingReward = new(big.Int).Add(pos.PendingReward, owed)
	}
}

// resetDebt re-baselines the position against the current accumulator.
func resetDebt(pos *Position, pool *Pool) {
	pos.RewardDebt = accumulated(pos.StakedAmount, pool.AccRewardPerShare)
}

func (e *Engine) persist(pool *Pool, user crypto.Address, pos *Position) error {
	if err := e.state.PutPool(pool); err != nil {
		return err
	}
	return e.state.PutPosition(pool.Token, user, pos)
}

// SetPool registers a new pool or updates an existing one. Updating first
// accrues the pool under its old rate. While the accumulator has never moved
// the accrual start can still be deferred to cfg.StartHeight.
func (e *Engine) SetPool(caller crypto.Address, cfg PoolConfig) (*Pool, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !caller.Equal(e.owner) {
		return nil, coreerrors.ErrUnauthorized
	}
	if cfg.Token.IsZero() {
		return nil, coreerrors.ErrZeroAddress
	}
	start := cfg.StartHeight
	if start == 0 {
		start = e.blockHeight
	}

	pool, err := e.state.GetPool(cfg.Token)
	if err != nil {
		return nil, err
	}
	if pool == nil || pool.ID == 0 {
		if cfg.RewardRate == nil || cfg.RewardRate.Sign() <= 0 {
			return nil, coreerrors.ErrZeroAmount
		}
		tokens, err := e.state.PoolTokens()
		if err != nil {
			return nil, err
		}
		pool = &Pool{
			Token:             cfg.Token,
			ID:                uint64(len(tokens)) + 1,
			LastAccrualHeight: start,
			CooldownPeriod:    cfg.CooldownPeriod,
			TotalStaked:       big.NewInt(0),
			RewardRate:        new(big.Int).Set(cfg.RewardRate),
			AccRewardPerShare: big.NewInt(0),
		}
	} else {
		pool.ensureDefaults()
		if err := e.accrue(pool); err != nil {
			return nil, err
		}
		pool.RewardRate = cloneBigInt(cfg.RewardRate)
		pool.CooldownPeriod = cfg.CooldownPeriod
		if pool.AccRewardPerShare.Sign() == 0 {
			pool.LastAccrualHeight = start
		}
	}
	if err := e.state.PutPool(pool); err != nil {
		return nil, err
	}
	e.emit(events.RewardsPoolUpdated{
		Token:             pool.Token,
		ID:                pool.ID,
		RewardRate:        cloneBigInt(pool.RewardRate),
		CooldownPeriod:    pool.CooldownPeriod,
		LastAccrualHeight: pool.LastAccrualHeight,
	})
	return pool.Clone(), nil
}

// Deposit stakes amount into the pool keyed by token. With fromCooldown set
// the amount is taken from the caller's pending cooldown instead of their
// wallet, so no tokens move.
func (e *Engine) Deposit(user, token crypto.Address, amount *big.Int, fromCooldown bool) error {
	if err := e.guard(); err != nil {
		return err
	}
	if user.IsZero() {
		return coreerrors.ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return coreerrors.ErrZeroAmount
	}
	pool, err := e.loadPool(token)
	if err != nil {
		return err
	}
	if err := e.accrue(pool); err != nil {
		return err
	}
	pos, err := e.loadPosition(token, user)
	if err != nil {
		return err
	}
	syncPosition(pos, pool)

	if fromCooldown {
		if pos.CooldownAmount.Cmp(amount) < 0 {
			return coreerrors.ErrInsufficientCooldownBalance
		}
		pos.CooldownAmount = new(big.Int).Sub(pos.CooldownAmount, amount)
		if pos.CooldownAmount.Sign() == 0 {
			pos.CooldownExpiry = 0
		}
	}

	pos.StakedAmount = new(big.Int).Add(pos.StakedAmount, amount)
	pool.TotalStaked = new(big.Int).Add(pool.TotalStaked, amount)
	resetDebt(pos, pool)

	if err := e.persist(pool, user, pos); err != nil {
		return err
	}
	if !fromCooldown {
		if err := e.ledger.TransferFrom(token, e.custody, user, e.custody, amount); err != nil {
			return fmt.Errorf("rewards engine: collect stake: %w", err)
		}
	}
	e.emit(events.RewardsDeposited{User: user, Pool: token, Amount: new(big.Int).Set(amount), FromCooldown: fromCooldown})
	return nil
}

// Withdraw unstakes amount. A matured cooldown balance is always paid out
// first, so withdrawing zero finalises a pending cooldown. With a non-zero pool
// cooldown the unstaked amount joins the cooldown balance and restarts its
// clock.
func (e *Engine) Withdraw(user, token crypto.Address, amount *big.Int) error {
	if err := e.guard(); err != nil {
		return err
	}
	if user.IsZero() {
		return coreerrors.ErrZeroAddress
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return coreerrors.ErrZeroAmount
	}
	pool, err := e.loadPool(token)
	if err != nil {
		return err
	}
	if err := e.accrue(pool); err != nil {
		return err
	}
	pos, err := e.loadPosition(token, user)
	if err != nil {
		return err
	}

	now := e.now()
	matured := big.NewInt(0)
	if pos.CooldownAmount.Sign() > 0 && pos.CooldownExpiry <= now {
		matured = pos.CooldownAmount
		pos.CooldownAmount = big.NewInt(0)
		pos.CooldownExpiry = 0
	}

	syncPosition(pos, pool)
	if pos.StakedAmount.Cmp(amount) < 0 {
		return coreerrors.ErrInsufficientStake
	}
	pos.StakedAmount = new(big.Int).Sub(pos.StakedAmount, amount)
	pool.TotalStaked = new(big.Int).Sub(pool.TotalStaked, amount)
	resetDebt(pos, pool)

	immediate := big.NewInt(0)
	if amount.Sign() > 0 {
		if pool.CooldownPeriod == 0 {
			immediate = amount
		} else {
			pos.CooldownAmount = new(big.Int).Add(pos.CooldownAmount, amount)
			pos.CooldownExpiry = now + pool.CooldownPeriod
		}
	}

	if err := e.persist(pool, user, pos); err != nil {
		return err
	}

	if matured.Sign() > 0 {
		if err := e.payout(token, user, matured); err != nil {
			return err
		}
	}
	if amount.Sign() == 0 {
		return nil
	}
	if immediate.Sign() > 0 {
		return e.payout(token, user, immediate)
	}
	e.emit(events.RewardsCooldownStarted{User: user, Pool: token, Amount: new(big.Int).Set(amount), Expiry: pos.CooldownExpiry})
	return nil
}

func (e *Engine) payout(token, user crypto.Address, amount *big.Int) error {
	if err := e.ledger.Transfer(token, e.custody, user, amount); err != nil {
		return fmt.Errorf("rewards engine: pay out stake: %w", err)
	}
	e.emit(events.RewardsWithdrawn{User: user, Pool: token, Amount: new(big.Int).Set(amount)})
	return nil
}

// Claim pays out up to amount of the caller's pending reward and returns the
// amount actually paid.
func (e *Engine) Claim(user, token crypto.Address, amount *big.Int) (*big.Int, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if user.IsZero() {
		return nil, coreerrors.ErrZeroAddress
	}
	pool, err := e.loadPool(token)
	if err != nil {
		return nil, err
	}
	if err := e.accrue(pool); err != nil {
		return nil, err
	}
	pos, err := e.loadPosition(token, user)
	if err != nil {
		return nil, err
	}
	syncPosition(pos, pool)
	resetDebt(pos, pool)

	if amount == nil || amount.Sign() < 0 {
		amount = big.NewInt(0)
	}
	paid := minBig(amount, pos.PendingReward)
	if paid.Sign() == 0 {
		return nil, coreerrors.ErrZeroAmount
	}
	pos.PendingReward = new(big.Int).Sub(pos.PendingReward, paid)

	if err := e.persist(pool, user, pos); err != nil {
		return nil, err
	}
	if err := e.ledger.Transfer(e.rewardToken, e.custody, user, paid); err != nil {
		return nil, fmt.Errorf("rewards engine: pay out reward: %w", err)
	}
	e.emit(events.RewardsClaimed{User: user, Pool: token, Amount: new(big.Int).Set(paid)})
	return paid, nil
}

// Compound moves up to amount of the caller's pending reward in the source
// pool into stake in the base (reward token) pool. The reward tokens already
// sit in custody, so no transfer happens. Returns the amount compounded.
func (e *Engine) Compound(user, source crypto.Address, amount *big.Int) (*big.Int, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if user.IsZero() {
		return nil, coreerrors.ErrZeroAddress
	}
	srcPool, err := e.loadPool(source)
	if err != nil {
		return nil, err
	}
	if err := e.accrue(srcPool); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, coreerrors.ErrZeroAmount
	}
	srcPos, err := e.loadPosition(source, user)
	if err != nil {
		return nil, err
	}
	syncPosition(srcPos, srcPool)
	resetDebt(srcPos, srcPool)
	if srcPos.PendingReward.Sign() == 0 {
		return nil, coreerrors.ErrNoPendingReward
	}

	basePool, basePos := srcPool, srcPos
	if !source.Equal(e.rewardToken) {
		basePool, err = e.loadPool(e.rewardToken)
		if err != nil {
			return nil, err
		}
		if err := e.accrue(basePool); err != nil {
			return nil, err
		}
		basePos, err = e.loadPosition(e.rewardToken, user)
		if err != nil {
			return nil, err
		}
		syncPosition(basePos, basePool)
	}

	moved := minBig(amount, srcPos.PendingReward)
	srcPos.PendingReward = new(big.Int).Sub(srcPos.PendingReward, moved)

	basePos.StakedAmount = new(big.Int).Add(basePos.StakedAmount, moved)
	basePool.TotalStaked = new(big.Int).Add(basePool.TotalStaked, moved)
	resetDebt(basePos, basePool)

	if basePool != srcPool {
		if err := e.persist(srcPool, user, srcPos); err != nil {
			return nil, err
		}
	}
	if err := e.persist(basePool, user, basePos); err != nil {
		return nil, err
	}
	e.emit(events.RewardsDeposited{User: user, Pool: basePool.Token, Amount: new(big.Int).Set(moved)})
	e.emit(events.RewardsCompounded{User: user, Pool: source, Amount: new(big.Int).Set(moved)})
	return moved, nil
}

// PendingReward projects the caller's claimable reward at the engine's block
// height without mutating state.
func (e *Engine) PendingReward(token, user crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	pool, err := e.loadPool(token)
	if err != nil {
		return nil, err
	}
	pos, err := e.loadPosition(token, user)
	if err != nil {
		return nil, err
	}
	acc := projectedAcc(pool, e.blockHeight)
	pending := accumulated(pos.StakedAmount, acc)
	pending.Sub(pending, pos.RewardDebt)
	if pending.Sign() < 0 {
		pending.SetInt64(0)
	}
	return pending.Add(pending, pos.PendingReward), nil
}

// Pool returns a copy of the pool registered for token.
func (e *Engine) Pool(token crypto.Address) (*Pool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	pool, err := e.loadPool(token)
	if err != nil {
		return nil, err
	}
	return pool.Clone(), nil
}

// Pools lists every registered pool in registration order.
func (e *Engine) Pools() ([]*Pool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	tokens, err := e.state.PoolTokens()
	if err != nil {
		return nil, err
	}
	out := make([]*Pool, 0, len(tokens))
	for _, token := range tokens {
		pool, err := e.loadPool(token)
		if err != nil {
			return nil, err
		}
		out = append(out, pool)
	}
	return out, nil
}

// PoolCount returns the number of registered pools.
func (e *Engine) PoolCount() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	tokens, err := e.state.PoolTokens()
	if err != nil {
		return 0, err
	}
	return uint64(len(tokens)), nil
}

// Position returns the caller's stored position in the pool. Unknown users get
// a zero-valued position.
func (e *Engine) Position(token, user crypto.Address) (*Position, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if _, err := e.loadPool(token); err != nil {
		return nil, err
	}
	return e.loadPosition(token, user)
}
