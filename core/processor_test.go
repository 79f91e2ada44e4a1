package core

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	coreerrors "stakevest/core/errors"
	"stakevest/core/events"
	"stakevest/core/state"
	"stakevest/crypto"
	nativecommon "stakevest/native/common"
	"stakevest/native/rewards"
	"stakevest/native/vesting"
	"stakevest/storage"
)

type recordingSubscriber struct {
	mu      sync.Mutex
	commits []Commit
}

func (r *recordingSubscriber) Committed(_ context.Context, commit Commit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, commit)
	return nil
}

func (r *recordingSubscriber) last() Commit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits[len(r.commits)-1]
}

func (r *recordingSubscriber) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commits)
}

func makeAddress(prefix crypto.AddressPrefix, suffix byte) crypto.Address {
	raw := make([]byte, 20)
	raw[19] = suffix
	return crypto.MustNewAddress(prefix, raw)
}

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

type harness struct {
	proc   *Processor
	clock  *ManualClock
	sub    *recordingSubscriber
	owner  crypto.Address
	user   crypto.Address
	reward crypto.Address
	stake  crypto.Address
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:  NewManualClock(100, 1_700_000_000),
		sub:    &recordingSubscriber{},
		owner:  makeAddress(crypto.AccountPrefix, 0x01),
		user:   makeAddress(crypto.AccountPrefix, 0x02),
		reward: makeAddress(crypto.TokenPrefix, 0x10),
		stake:  makeAddress(crypto.TokenPrefix, 0x20),
	}
	proc, err := NewProcessor(state.NewManager(storage.NewMemDB()), h.clock, Params{Owner: h.owner, RewardToken: h.reward})
	require.NoError(t, err)
	proc.Subscribe(h.sub)
	h.proc = proc

	ctx := context.Background()
	require.NoError(t, proc.Init(ctx))
	require.NoError(t, proc.Init(ctx), "init is idempotent")
	require.NoError(t, proc.GrantMinter(ctx, h.owner, h.stake, h.owner, true))
	require.NoError(t, proc.Mint(ctx, h.owner, h.stake, h.user, e18(10)))
	require.NoError(t, proc.Approve(ctx, h.user, h.stake, proc.Params().RewardsCustody, e18(10)))
	return h
}

func (h *harness) addPool(t *testing.T, token crypto.Address, rate *big.Int) {
	t.Helper()
	_, err := h.proc.SetPool(context.Background(), h.owner, rewards.PoolConfig{Token: token, RewardRate: rate, StartHeight: h.clock.Height()})
	require.NoError(t, err)
}

func TestProcessorDepositAccrueClaim(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addPool(t, h.stake, e18(1))

	require.NoError(t, h.proc.Deposit(ctx, h.user, h.stake, e18(1), false))
	bal, err := h.proc.Balance(h.stake, h.user)
	require.NoError(t, err)
	require.Equal(t, e18(9).String(), bal.String())

	h.clock.Advance(10, 60)
	pending, err := h.proc.PendingReward(h.stake, h.user)
	require.NoError(t, err)
	require.Equal(t, e18(10).String(), pending.String())

	paid, err := h.proc.ClaimReward(ctx, h.user, h.stake, e18(4))
	require.NoError(t, err)
	require.Equal(t, e18(4).String(), paid.String())

	rewardBal, err := h.proc.Balance(h.reward, h.user)
	require.NoError(t, err)
	require.Equal(t, e18(4).String(), rewardBal.String())
	supply, err := h.proc.TotalSupply(h.reward)
	require.NoError(t, err)
	require.Equal(t, e18(10).String(), supply.String())

	commit := h.sub.last()
	require.Equal(t, "rewards_claim", commit.Op)
	require.Equal(t, uint64(110), commit.Height)
	kinds := make([]string, 0, len(commit.Events))
	for _, evt := range commit.Events {
		kinds = append(kinds, evt.Type)
	}
	require.Equal(t, []string{events.TypeBankMint, events.TypeBankTransfer, events.TypeRewardsClaimed}, kinds)
}

func TestProcessorFailedCompoundRollsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addPool(t, h.stake, e18(1))
	require.NoError(t, h.proc.Deposit(ctx, h.user, h.stake, e18(1), false))
	h.clock.Advance(5, 30)

	before := h.sub.count()
	_, err := h.proc.Compound(ctx, h.user, h.stake, e18(100))
	require.ErrorIs(t, err, coreerrors.ErrPoolNotFound)
	require.Equal(t, before, h.sub.count(), "reverted operations publish nothing")

	pool, err := h.proc.Pool(h.stake)
	require.NoError(t, err)
	require.Equal(t, uint64(100), pool.LastAccrualHeight, "accrual must be rolled back")
	supply, err := h.proc.TotalSupply(h.reward)
	require.NoError(t, err)
	require.Zero(t, supply.Sign())
}

func TestProcessorCompoundIntoBasePool(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addPool(t, h.reward, e18(1))
	h.addPool(t, h.stake, e18(1))
	require.NoError(t, h.proc.Deposit(ctx, h.user, h.stake, e18(1), false))
	h.clock.Advance(5, 30)

	moved, err := h.proc.Compound(ctx, h.user, h.stake, e18(100))
	require.NoError(t, err)
	require.Equal(t, e18(5).String(), moved.String())

	base, err := h.proc.Position(h.reward, h.user)
	require.NoError(t, err)
	require.Equal(t, e18(5).String(), base.StakedAmount.String())
	src, err := h.proc.Position(h.stake, h.user)
	require.NoError(t, err)
	require.Zero(t, src.PendingReward.Sign())

	custody, err := h.proc.Balance(h.reward, h.proc.Params().RewardsCustody)
	require.NoError(t, err)
	require.Equal(t, e18(5).String(), custody.String(), "compounded rewards stay in custody")

	pools, err := h.proc.Pools()
	require.NoError(t, err)
	require.Len(t, pools, 2)
	require.Equal(t, uint64(1), pools[0].ID)
}

func TestProcessorVestingClaim(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tge := uint64(h.clock.Now())

	require.NoError(t, h.proc.SetTgeTime(ctx, h.owner, tge))
	require.NoError(t, h.proc.SetLastCategory(ctx, h.owner, 2))
	require.NoError(t, h.proc.SetVestingInfoInBatch(ctx, h.owner, []uint64{2}, []vesting.Schedule{{CliffOffset: 1_000, CliffFraction: 50_000, LinearPeriodDays: 18}}))
	require.NoError(t, h.proc.SetAmountInBatch(ctx, h.owner, 2, []crypto.Address{h.user}, []*big.Int{e18(100)}))

	h.clock.Set(h.clock.Height(), int64(tge)+1_000+9*86_400)
	vested, err := h.proc.VestedAmount(2, h.user)
	require.NoError(t, err)
	require.Equal(t, e18(75).String(), vested.String())

	paid, err := h.proc.ClaimAllVested(ctx, h.user)
	require.NoError(t, err)
	require.Equal(t, e18(75).String(), paid.String())

	_, err = h.proc.ClaimVested(ctx, h.user, 2, true)
	require.ErrorIs(t, err, coreerrors.ErrNothingToClaim)

	summary, err := h.proc.VestingSummary(h.user)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	require.Equal(t, e18(75).String(), summary[2].Claimed.String())
	require.Zero(t, summary[2].Claimable.Sign())

	bal, err := h.proc.Balance(h.reward, h.user)
	require.NoError(t, err)
	require.Equal(t, e18(75).String(), bal.String())
}

func TestProcessorAdminAndPauses(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.proc.SetPool(ctx, h.user, rewards.PoolConfig{Token: h.stake, RewardRate: big.NewInt(1)})
	require.ErrorIs(t, err, coreerrors.ErrUnauthorized)
	require.ErrorIs(t, h.proc.GrantMinter(ctx, h.user, h.stake, h.user, true), coreerrors.ErrUnauthorized)
	require.ErrorIs(t, h.proc.Mint(ctx, h.user, h.stake, h.user, big.NewInt(1)), coreerrors.ErrUnauthorized)

	h.addPool(t, h.stake, big.NewInt(1))
	h.proc.SetPauses(nativecommon.StaticPauses{rewards.ModuleName: true})
	require.ErrorIs(t, h.proc.Deposit(ctx, h.user, h.stake, big.NewInt(1), false), nativecommon.ErrModulePaused)
}

func TestNewProcessorValidation(t *testing.T) {
	_, err := NewProcessor(nil, NewManualClock(0, 0), Params{})
	require.Error(t, err)
	_, err = NewProcessor(state.NewManager(storage.NewMemDB()), NewManualClock(0, 0), Params{})
	require.Error(t, err)
}

func TestChainClockHeight(t *testing.T) {
	genesis := time.Unix(1_700_000_000, 0)
	clock := NewChainClock(genesis, 2*time.Second)
	clock.nowFn = func() time.Time { return genesis.Add(9 * time.Second) }
	require.Equal(t, uint64(4), clock.Height())
	require.Equal(t, int64(1_700_000_009), clock.Now())

	clock.nowFn = func() time.Time { return genesis.Add(-time.Second) }
	require.Zero(t, clock.Height())
}

func TestManualClockNeverRewindsHeight(t *testing.T) {
	clock := NewManualClock(10, 5)
	clock.Set(3, 7)
	require.Equal(t, uint64(10), clock.Height())
	require.Equal(t, int64(7), clock.Now())
	clock.Advance(2, 1)
	require.Equal(t, uint64(12), clock.Height())
	require.Equal(t, int64(8), clock.Now())
}
