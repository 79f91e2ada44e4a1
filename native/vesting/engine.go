package vesting

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
	errNilState  = errors.New("vesting engine: state not configured")
	errNilMinter = errors.New("vesting engine: token minter not configured")
)

// ModuleName is the pause key of the vesting module.
const ModuleName = "vesting"

type engineState interface {
	VestingTgeTime() (uint64, error)
	PutVestingTgeTime(ts uint64) error
	VestingLastCategory() (uint64, error)
	PutVestingLastCategory(category uint64) error
	VestingSchedule(category uint64) (*Schedule, error)
	PutVestingSchedule(category uint64, schedule *Schedule) error
	VestingAllocation(category uint64, user crypto.Address) (*big.Int, error)
	PutVestingAllocation(category uint64, user crypto.Address, amount *big.Int) error
	VestingClaimed(category uint64, user crypto.Address) (*big.Int, error)
	PutVestingClaimed(category uint64, user crypto.Address, amount *big.Int) error
}

// TokenMinter mints newly unlocked tokens to claimants.
type TokenMinter interface {
	Mint(token, minter, to crypto.Address, amount *big.Int) error
}

// Engine tracks per-category vesting schedules and allocations and mints the
// unlocked delta on claim.
type Engine struct {
	state   engineState
	minter  TokenMinter
	oracle  AllocationOracle
	emitter events.Emitter
	pauses  nativecommon.PauseView
	custody crypto.Address
	token   crypto.Address
	owner   crypto.Address
	nowFn   func() int64
}

// NewEngine constructs a vesting engine minting token through custody, which
// must hold the token's mint role.
func NewEngine(custody, token, owner crypto.Address) *Engine {
	return &Engine{
		custody: custody,
		token:   token,
		owner:   owner,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

func (e *Engine) SetState(state engineState)        { e.state = state }
func (e *Engine) SetMinter(minter TokenMinter)      { e.minter = minter }
func (e *Engine) SetOracle(oracle AllocationOracle) { e.oracle = oracle }

func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetEmitter configures the event emitter. Passing nil installs a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the wall clock used for unlock computations.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// Token returns the vested token.
func (e *Engine) Token() crypto.Address { return e.token }

func (e *Engine) now() uint64 {
	if e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	ts := e.nowFn()
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func (e *Engine) emit(evt events.Event) {
	if e.emitter != nil {
		e.emitter.Emit(evt)
	}
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return nil
}

func (e *Engine) authorize(caller crypto.Address) error {
	if err := e.ready(); err != nil {
		return err
	}
	if !caller.Equal(e.owner) {
		return coreerrors.ErrUnauthorized
	}
	return nil
}

// Allocation returns the user's total allocation in category. The primary
// sale and referral categories are answered by the allocation oracle.
func (e *Engine) Allocation(category uint64, user crypto.Address) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	switch category {
	case CategoryPrimarySale, CategoryReferral:
		if e.oracle == nil {
			return big.NewInt(0), nil
		}
		var (
			amount *big.Int
			err    error
		)
		if category == CategoryPrimarySale {
			amount, err = e.oracle.PrimaryAllocation(user)
		} else {
			amount, err = e.oracle.ReferralAllocation(user)
		}
		if err != nil {
			return nil, fmt.Errorf("vesting engine: allocation oracle: %w", err)
		}
		return cloneBigInt(amount), nil
	}
	amount, err := e.state.VestingAllocation(category, user)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(amount), nil
}

// Schedule returns the schedule of category. Unconfigured categories return
// the zero schedule.
func (e *Engine) Schedule(category uint64) (Schedule, error) {
	if err := e.ready(); err != nil {
		return Schedule{}, err
	}
	schedule, err := e.state.VestingSchedule(category)
	if err != nil {
		return Schedule{}, err
	}
	if schedule == nil {
		return Schedule{}, nil
	}
	return *schedule, nil
}

// Claimed returns the cumulative amount the user has claimed in category.
func (e *Engine) Claimed(category uint64, user crypto.Address) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	claimed, err := e.state.VestingClaimed(category, user)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(claimed), nil
}

// TgeTime returns the configured TGE timestamp, zero when unset.
func (e *Engine) TgeTime() (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	return e.state.VestingTgeTime()
}

// LastCategory returns the upper bound of the category range.
func (e *Engine) LastCategory() (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	return e.state.VestingLastCategory()
}

// VestedAmount returns how much of the user's category allocation has
// unlocked at the current time.
func (e *Engine) VestedAmount(category uint64, user crypto.Address) (*big.Int, error) {
	total, err := e.Allocation(category, user)
	if err != nil {
		return nil, err
	}
	return e.vested(category, total)
}

func (e *Engine) vested(category uint64, total *big.Int) (*big.Int, error) {
	if total.Sign() == 0 {
		return big.NewInt(0), nil
	}
	tge, err := e.state.VestingTgeTime()
	if err != nil {
		return nil, err
	}
	schedule, err := e.Schedule(category)
	if err != nil {
		return nil, err
	}
	return vestedAt(total, schedule, tge, e.now()), nil
}

// Claim mints the unclaimed vested amount of category to user. With
// revertIfZero set an empty claim fails with ErrNothingToClaim, otherwise it
// returns zero.
func (e *Engine) Claim(user crypto.Address, category uint64, revertIfZero bool) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return nil, err
	}
	if user.IsZero() {
		return nil, coreerrors.ErrZeroAddress
	}
	return e.claim(user, category, revertIfZero)
}

func (e *Engine) claim(user crypto.Address, category uint64, revertIfZero bool) (*big.Int, error) {
	vested, err := e.VestedAmount(category, user)
	if err != nil {
		return nil, err
	}
	claimed, err := e.state.VestingClaimed(category, user)
	if err != nil {
		return nil, err
	}
	available := new(big.Int).Sub(vested, cloneBigInt(claimed))
	if available.Sign() <= 0 {
		if revertIfZero {
			return nil, coreerrors.ErrNothingToClaim
		}
		return big.NewInt(0), nil
	}
	if e.minter == nil {
		return nil, errNilMinter
	}
	if err := e.state.PutVestingClaimed(category, user, vested); err != nil {
		return nil, err
	}
	if err := e.minter.Mint(e.token, e.custody, user, available); err != nil {
		return nil, fmt.Errorf("vesting engine: mint claim: %w", err)
	}
	e.emit(events.VestingClaimed{Category: category, User: user, Amount: new(big.Int).Set(available)})
	return available, nil
}

// ClaimAll claims every category from 0 through the last category and returns
// the total minted. Categories with nothing available are skipped.
func (e *Engine) ClaimAll(user crypto.Address) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return nil, err
	}
	if user.IsZero() {
		return nil, coreerrors.ErrZeroAddress
	}
	last, err := e.state.VestingLastCategory()
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	for category := uint64(0); ; category++ {
		paid, err := e.claim(user, category, false)
		if err != nil {
			return nil, err
		}
		total.Add(total, paid)
		if category == last {
			break
		}
	}
	return total, nil
}

// Summary reports total, vested, claimed and claimable amounts for every
// category in range.
func (e *Engine) Summary(user crypto.Address) ([]CategorySummary, error) {
	last, err := e.LastCategory()
	if err != nil {
		return nil, err
	}
	out := make([]CategorySummary, 0, last+1)
	for category := uint64(0); ; category++ {
		entry, err := e.summarise(category, user)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
		if category == last {
			break
		}
	}
	return out, nil
}

func (e *Engine) summarise(category uint64, user crypto.Address) (CategorySummary, error) {
	schedule, err := e.Schedule(category)
	if err != nil {
		return CategorySummary{}, err
	}
	total, err := e.Allocation(category, user)
	if err != nil {
		return CategorySummary{}, err
	}
	vested, err := e.vested(category, total)
	if err != nil {
		return CategorySummary{}, err
	}
	claimed, err := e.Claimed(category, user)
	if err != nil {
		return CategorySummary{}, err
	}
	claimable := new(big.Int).Sub(vested, claimed)
	if claimable.Sign() < 0 {
		claimable.SetInt64(0)
	}
	return CategorySummary{
		Category:  category,
		Schedule:  schedule,
		Total:     total,
		Vested:    vested,
		Claimed:   claimed,
		Claimable: claimable,
	}, nil
}

// SetTgeTime configures the vesting reference timestamp.
func (e *Engine) SetTgeTime(caller crypto.Address, ts uint64) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	if ts == 0 {
		return coreerrors.ErrZeroAmount
	}
	if err := e.state.PutVestingTgeTime(ts); err != nil {
		return err
	}
	e.emit(events.VestingTgeTimeSet{Time: ts})
	return nil
}

// SetLastCategory moves the category bound. Lowering it below configured
// categories hides them from ClaimAll but leaves direct claims working. The
// bound may not exceed MaxLastCategory.
func (e *Engine) SetLastCategory(caller crypto.Address, last uint64) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	if last > MaxLastCategory {
		return coreerrors.ErrInvalidCategory
	}
	if err := e.state.PutVestingLastCategory(last); err != nil {
		return err
	}
	e.emit(events.VestingLastCategorySet{LastCategory: last})
	return nil
}

// SetVestingInfo stores the schedule of category.
func (e *Engine) SetVestingInfo(caller crypto.Address, category uint64, schedule Schedule) error {
	return e.SetVestingInfoInBatch(caller, []uint64{category}, []Schedule{schedule})
}

// SetVestingInfoInBatch validates every entry before writing any of them.
func (e *Engine) SetVestingInfoInBatch(caller crypto.Address, categories []uint64, schedules []Schedule) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	if len(categories) != len(schedules) {
		return coreerrors.ErrInvalidArrayLength
	}
	last, err := e.state.VestingLastCategory()
	if err != nil {
		return err
	}
	for i, category := range categories {
		if category > last {
			return coreerrors.ErrInvalidCategory
		}
		if err := schedules[i].Validate(); err != nil {
			return err
		}
	}
	for i, category := range categories {
		schedule := schedules[i]
		if err := e.state.PutVestingSchedule(category, &schedule); err != nil {
			return err
		}
		e.emit(events.VestingScheduleSet{
			Category:         category,
			CliffOffset:      schedule.CliffOffset,
			CliffFraction:    schedule.CliffFraction,
			LinearPeriodDays: schedule.LinearPeriodDays,
		})
	}
	return nil
}

// SetAmount overwrites the user's allocation in a locally managed category.
func (e *Engine) SetAmount(caller crypto.Address, category uint64, user crypto.Address, amount *big.Int) error {
	return e.SetAmountInBatch(caller, category, []crypto.Address{user}, []*big.Int{amount})
}

// SetAmountInBatch validates every entry before writing any of them.
func (e *Engine) SetAmountInBatch(caller crypto.Address, category uint64, users []crypto.Address, amounts []*big.Int) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	if len(users) != len(amounts) {
		return coreerrors.ErrInvalidArrayLength
	}
	last, err := e.state.VestingLastCategory()
	if err != nil {
		return err
	}
	if category > last || isOracleCategory(category) {
		return coreerrors.ErrInvalidCategory
	}
	for i, user := range users {
		if amounts[i] == nil || amounts[i].Sign() <= 0 {
			return coreerrors.ErrZeroAmount
		}
		if user.IsZero() {
			return coreerrors.ErrZeroAddress
		}
	}
	for i, user := range users {
		amount := new(big.Int).Set(amounts[i])
		if err := e.state.PutVestingAllocation(category, user, amount); err != nil {
			return err
		}
		e.emit(events.VestingAllocationSet{Category: category, User: user, Amount: new(big.Int).Set(amount)})
	}
	return nil
}
