package rewards

import (
	"errors"
	"math/big"
	"testing"

	coreerrors "stakevest/core/errors"
	"stakevest/core/events"
	"stakevest/crypto"
	nativecommon "stakevest/native/common"
)

type mockEngineState struct {
	pools     map[string]*Pool
	order     []crypto.Address
	positions map[string]*Position
}

func newMockEngineState() *mockEngineState {
	return &mockEngineState{
		pools:     make(map[string]*Pool),
		positions: make(map[string]*Position),
	}
}

func (m *mockEngineState) GetPool(token crypto.Address) (*Pool, error) {
	if pool, ok := m.pools[string(token.Bytes())]; ok {
		return pool.Clone(), nil
	}
	return nil, nil
}

func (m *mockEngineState) PutPool(pool *Pool) error {
	k := string(pool.Token.Bytes())
	if _, ok := m.pools[k]; !ok {
		m.order = append(m.order, pool.Token)
	}
	m.pools[k] = pool.Clone()
	return nil
}

func (m *mockEngineState) PoolTokens() ([]crypto.Address, error) {
	return append([]crypto.Address(nil), m.order...), nil
}

func (m *mockEngineState) GetPosition(token, user crypto.Address) (*Position, error) {
	if pos, ok := m.positions[string(token.Bytes())+string(user.Bytes())]; ok {
		return pos.Clone(), nil
	}
	return nil, nil
}

func (m *mockEngineState) PutPosition(token, user crypto.Address, pos *Position) error {
	m.positions[string(token.Bytes())+string(user.Bytes())] = pos.Clone()
	return nil
}

type mockLedger struct {
	balances map[string]*big.Int
	minted   *big.Int
}

func newMockLedger() *mockLedger {
	return &mockLedger{balances: make(map[string]*big.Int), minted: big.NewInt(0)}
}

func (l *mockLedger) balance(token, addr crypto.Address) *big.Int {
	if v, ok := l.balances[string(token.Bytes())+string(addr.Bytes())]; ok {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

func (l *mockLedger) set(token, addr crypto.Address, v *big.Int) {
	l.balances[string(token.Bytes())+string(addr.Bytes())] = new(big.Int).Set(v)
}

func (l *mockLedger) Mint(token, _ crypto.Address, to crypto.Address, amount *big.Int) error {
	l.set(token, to, new(big.Int).Add(l.balance(token, to), amount))
	l.minted.Add(l.minted, amount)
	return nil
}

func (l *mockLedger) Transfer(token, from, to crypto.Address, amount *big.Int) error {
	bal := l.balance(token, from)
	if bal.Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	l.set(token, from, bal.Sub(bal, amount))
	l.set(token, to, new(big.Int).Add(l.balance(token, to), amount))
	return nil
}

func (l *mockLedger) TransferFrom(token, _ crypto.Address, from, to crypto.Address, amount *big.Int) error {
	return l.Transfer(token, from, to, amount)
}

func makeAddress(prefix crypto.AddressPrefix, suffix byte) crypto.Address {
	raw := make([]byte, 20)
	raw[19] = suffix
	return crypto.MustNewAddress(prefix, raw)
}

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

type fixture struct {
	engine  *Engine
	state   *mockEngineState
	ledger  *mockLedger
	buffer  *events.Buffer
	owner   crypto.Address
	custody crypto.Address
	reward  crypto.Address
	stake   crypto.Address
	now     int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		state:   newMockEngineState(),
		ledger:  newMockLedger(),
		buffer:  &events.Buffer{},
		owner:   makeAddress(crypto.AccountPrefix, 0x01),
		custody: makeAddress(crypto.AccountPrefix, 0xEE),
		reward:  makeAddress(crypto.TokenPrefix, 0x10),
		stake:   makeAddress(crypto.TokenPrefix, 0x20),
		now:     1_000,
	}
	f.engine = NewEngine(f.custody, f.reward, f.owner)
	f.engine.SetState(f.state)
	f.engine.SetLedger(f.ledger)
	f.engine.SetEmitter(f.buffer)
	f.engine.SetNowFunc(func() int64 { return f.now })
	return f
}

func (f *fixture) addPool(t *testing.T, token crypto.Address, rate *big.Int, cooldown, start uint64) {
	t.Helper()
	if _, err := f.engine.SetPool(f.owner, PoolConfig{Token: token, RewardRate: rate, CooldownPeriod: cooldown, StartHeight: start}); err != nil {
		t.Fatalf("set pool: %v", err)
	}
}

func (f *fixture) fund(user crypto.Address, token crypto.Address, amount *big.Int) {
	f.ledger.set(token, user, amount)
}

func TestPendingRewardAfterTenBlocks(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	f.addPool(t, f.stake, e18(1), 0, 100)
	f.fund(user, f.stake, e18(1))

	f.engine.SetBlockHeight(100)
	if err := f.engine.Deposit(user, f.stake, e18(1), false); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	f.engine.SetBlockHeight(110)
	pending, err := f.engine.PendingReward(f.stake, user)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending.Cmp(e18(10)) != 0 {
		t.Fatalf("expected pending 10e18, got %s", pending)
	}

	again, err := f.engine.PendingReward(f.stake, user)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if again.Cmp(pending) != 0 {
		t.Fatalf("projection not idempotent: %s vs %s", again, pending)
	}

	paid, err := f.engine.Claim(user, f.stake, e18(100))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if paid.Cmp(e18(10)) != 0 {
		t.Fatalf("expected claim of 10e18, got %s", paid)
	}
	if got := f.ledger.balance(f.reward, user); got.Cmp(e18(10)) != 0 {
		t.Fatalf("unexpected reward balance %s", got)
	}
	if f.ledger.minted.Cmp(e18(10)) != 0 {
		t.Fatalf("expected 10e18 minted, got %s", f.ledger.minted)
	}
}

func TestAccrueWithoutStakeKeepsAccrualHeight(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	f.addPool(t, f.stake, big.NewInt(5), 0, 100)
	f.fund(user, f.stake, big.NewInt(10))

	f.engine.SetBlockHeight(150)
	if err := f.engine.Deposit(user, f.stake, big.NewInt(10), false); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	pool, err := f.engine.Pool(f.stake)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if pool.LastAccrualHeight != 100 {
		t.Fatalf("empty pool must keep accrual height, got %d", pool.LastAccrualHeight)
	}
	if f.ledger.minted.Sign() != 0 {
		t.Fatalf("nothing should be minted for an empty pool")
	}

	f.engine.SetBlockHeight(160)
	pending, err := f.engine.PendingReward(f.stake, user)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	// The first staker picks up the emission since the unchanged accrual height.
	if pending.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("expected 300, got %s", pending)
	}
}

func TestTotalStakedMatchesPositions(t *testing.T) {
	f := newFixture(t)
	f.addPool(t, f.stake, big.NewInt(7), 0, 1)
	users := []crypto.Address{
		makeAddress(crypto.AccountPrefix, 0x02),
		makeAddress(crypto.AccountPrefix, 0x03),
		makeAddress(crypto.AccountPrefix, 0x04),
	}
	for _, u := range users {
		f.fund(u, f.stake, big.NewInt(1_000))
	}
	steps := []struct {
		user    int
		deposit bool
		amount  int64
		height  uint64
	}{
		{0, true, 300, 2},
		{1, true, 500, 3},
		{0, false, 100, 5},
		{2, true, 250, 8},
		{1, false, 500, 9},
		{2, false, 50, 12},
		{0, true, 7, 13},
	}
	for i, step := range steps {
		f.engine.SetBlockHeight(step.height)
		var err error
		if step.deposit {
			err = f.engine.Deposit(users[step.user], f.stake, big.NewInt(step.amount), false)
		} else {
			err = f.engine.Withdraw(users[step.user], f.stake, big.NewInt(step.amount))
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		pool, err := f.engine.Pool(f.stake)
		if err != nil {
			t.Fatalf("pool: %v", err)
		}
		sum := big.NewInt(0)
		for _, u := range users {
			pos, err := f.engine.Position(f.stake, u)
			if err != nil {
				t.Fatalf("position: %v", err)
			}
			sum.Add(sum, pos.StakedAmount)
			expectedDebt := accumulated(pos.StakedAmount, pool.AccRewardPerShare)
			if pos.StakedAmount.Sign() > 0 && u.Equal(users[step.user]) && pos.RewardDebt.Cmp(expectedDebt) != 0 {
				t.Fatalf("step %d: reward debt %s, expected %s", i, pos.RewardDebt, expectedDebt)
			}
		}
		if sum.Cmp(pool.TotalStaked) != 0 {
			t.Fatalf("step %d: total staked %s != sum %s", i, pool.TotalStaked, sum)
		}
	}
}

func TestAccrualMintsExactEmission(t *testing.T) {
	f := newFixture(t)
	a := makeAddress(crypto.AccountPrefix, 0x02)
	b := makeAddress(crypto.AccountPrefix, 0x03)
	f.addPool(t, f.stake, big.NewInt(1_000), 0, 10)
	f.fund(a, f.stake, big.NewInt(3))
	f.fund(b, f.stake, big.NewInt(4))

	f.engine.SetBlockHeight(10)
	if err := f.engine.Deposit(a, f.stake, big.NewInt(3), false); err != nil {
		t.Fatalf("deposit a: %v", err)
	}
	f.engine.SetBlockHeight(15)
	if err := f.engine.Deposit(b, f.stake, big.NewInt(4), false); err != nil {
		t.Fatalf("deposit b: %v", err)
	}
	f.engine.SetBlockHeight(22)
	if err := f.engine.Withdraw(a, f.stake, big.NewInt(0)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if f.ledger.minted.Cmp(big.NewInt(12*1_000)) != 0 {
		t.Fatalf("expected 12000 minted, got %s", f.ledger.minted)
	}
	pa, _ := f.engine.PendingReward(f.stake, a)
	pb, _ := f.engine.PendingReward(f.stake, b)
	total := new(big.Int).Add(pa, pb)
	if total.Cmp(f.ledger.minted) > 0 {
		t.Fatalf("pending %s exceeds minted %s", total, f.ledger.minted)
	}
	dust := new(big.Int).Sub(f.ledger.minted, total)
	if dust.Cmp(big.NewInt(2)) > 0 {
		t.Fatalf("unexpected truncation loss %s", dust)
	}
}

func TestWithdrawCooldown(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	f.addPool(t, f.stake, big.NewInt(1), 100, 1)
	f.fund(user, f.stake, big.NewInt(500))
	f.engine.SetBlockHeight(1)
	if err := f.engine.Deposit(user, f.stake, big.NewInt(500), false); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	f.now = 1_000
	f.engine.SetBlockHeight(2)
	if err := f.engine.Withdraw(user, f.stake, big.NewInt(200)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	pos, _ := f.engine.Position(f.stake, user)
	if pos.CooldownAmount.Cmp(big.NewInt(200)) != 0 || pos.CooldownExpiry != 1_100 {
		t.Fatalf("unexpected cooldown %s until %d", pos.CooldownAmount, pos.CooldownExpiry)
	}
	if bal := f.ledger.balance(f.stake, user); bal.Sign() != 0 {
		t.Fatalf("funds released early: %s", bal)
	}

	f.now = 1_099
	if err := f.engine.Withdraw(user, f.stake, big.NewInt(0)); err != nil {
		t.Fatalf("withdraw before maturity: %v", err)
	}
	if bal := f.ledger.balance(f.stake, user); bal.Sign() != 0 {
		t.Fatalf("funds released before expiry: %s", bal)
	}

	f.now = 1_100
	f.buffer.Reset()
	if err := f.engine.Withdraw(user, f.stake, big.NewInt(0)); err != nil {
		t.Fatalf("finalise cooldown: %v", err)
	}
	if bal := f.ledger.balance(f.stake, user); bal.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("expected 200 released, got %s", bal)
	}
	pos, _ = f.engine.Position(f.stake, user)
	if pos.CooldownAmount.Sign() != 0 || pos.CooldownExpiry != 0 {
		t.Fatalf("cooldown not cleared")
	}
	evts := f.buffer.Events()
	if len(evts) != 1 || evts[0].EventType() != events.TypeRewardsWithdrawn {
		t.Fatalf("expected a single withdrawn event, got %d", len(evts))
	}
}

func TestWithdrawResetsCooldownClock(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	f.addPool(t, f.stake, big.NewInt(1), 100, 1)
	f.fund(user, f.stake, big.NewInt(500))
	f.engine.SetBlockHeight(1)
	if err := f.engine.Deposit(user, f.stake, big.NewInt(500), false); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	f.now = 1_000
	if err := f.engine.Withdraw(user, f.stake, big.NewInt(100)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	f.now = 1_050
	if err := f.engine.Withdraw(user, f.stake, big.NewInt(100)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	pos, _ := f.engine.Position(f.stake, user)
	if pos.CooldownAmount.Cmp(big.NewInt(200)) != 0 || pos.CooldownExpiry != 1_150 {
		t.Fatalf("unexpected cooldown %s until %d", pos.CooldownAmount, pos.CooldownExpiry)
	}
}

func TestWithdrawInstantWithoutCooldown(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	f.addPool(t, f.stake, big.NewInt(1), 0, 1)
	f.fund(user, f.stake, big.NewInt(50))
	f.engine.SetBlockHeight(1)
	if err := f.engine.Deposit(user, f.stake, big.NewInt(50), false); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := f.engine.Withdraw(user, f.stake, big.NewInt(51)); !errors.Is(err, coreerrors.ErrInsufficientStake) {
		t.Fatalf("expected insufficient stake, got %v", err)
	}
	if err := f.engine.Withdraw(user, f.stake, big.NewInt(20)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if bal := f.ledger.balance(f.stake, user); bal.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("expected 20 returned, got %s", bal)
	}
}

func TestDepositFromCooldown(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	f.addPool(t, f.stake, big.NewInt(1), 100, 1)
	f.fund(user, f.stake, big.NewInt(300))
	f.engine.SetBlockHeight(1)
	if err := f.engine.Deposit(user, f.stake, big.NewInt(300), false); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := f.engine.Withdraw(user, f.stake, big.NewInt(120)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if err := f.engine.Deposit(user, f.stake, big.NewInt(121), true); !errors.Is(err, coreerrors.ErrInsufficientCooldownBalance) {
		t.Fatalf("expected insufficient cooldown balance, got %v", err)
	}
	custodyBefore := f.ledger.balance(f.stake, f.custody)
	if err := f.engine.Deposit(user, f.stake, big.NewInt(120), true); err != nil {
		t.Fatalf("restake: %v", err)
	}
	pos, _ := f.engine.Position(f.stake, user)
	if pos.CooldownAmount.Sign() != 0 || pos.CooldownExpiry != 0 {
		t.Fatalf("cooldown should be cleared")
	}
	if pos.StakedAmount.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("expected 300 staked, got %s", pos.StakedAmount)
	}
	if f.ledger.balance(f.stake, f.custody).Cmp(custodyBefore) != 0 {
		t.Fatalf("restaking from cooldown must not move tokens")
	}
}

func TestDepositValidation(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	if err := f.engine.Deposit(user, f.stake, big.NewInt(1), false); !errors.Is(err, coreerrors.ErrPoolNotFound) {
		t.Fatalf("expected pool not found, got %v", err)
	}
	f.addPool(t, f.stake, big.NewInt(1), 0, 1)
	if err := f.engine.Deposit(user, f.stake, big.NewInt(0), false); !errors.Is(err, coreerrors.ErrZeroAmount) {
		t.Fatalf("expected zero amount, got %v", err)
	}
	if err := f.engine.Deposit(crypto.Address{}, f.stake, big.NewInt(1), false); !errors.Is(err, coreerrors.ErrZeroAddress) {
		t.Fatalf("expected zero address, got %v", err)
	}
	if _, err := f.engine.PendingReward(f.reward, user); !errors.Is(err, coreerrors.ErrPoolNotFound) {
		t.Fatalf("expected pool not found, got %v", err)
	}
}

func TestClaimNothingPending(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	f.addPool(t, f.stake, big.NewInt(1), 0, 1)
	f.engine.SetBlockHeight(5)
	if _, err := f.engine.Claim(user, f.stake, big.NewInt(10)); !errors.Is(err, coreerrors.ErrZeroAmount) {
		t.Fatalf("expected zero amount, got %v", err)
	}
}

func TestCompoundClampsToPending(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	f.addPool(t, f.reward, e18(1), 0, 100)
	f.addPool(t, f.stake, e18(1), 0, 100)
	f.fund(user, f.stake, e18(1))

	f.engine.SetBlockHeight(100)
	if err := f.engine.Deposit(user, f.stake, e18(1), false); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	f.engine.SetBlockHeight(105)
	f.buffer.Reset()
	custodyBefore := f.ledger.balance(f.reward, f.custody)

	moved, err := f.engine.Compound(user, f.stake, e18(100))
	if err != nil {
		t.Fatalf("compound: %v", err)
	}
	if moved.Cmp(e18(5)) != 0 {
		t.Fatalf("expected 5e18 compounded, got %s", moved)
	}
	src, _ := f.engine.Position(f.stake, user)
	if src.PendingReward.Sign() != 0 {
		t.Fatalf("source pending should be drained, got %s", src.PendingReward)
	}
	base, _ := f.engine.Position(f.reward, user)
	if base.StakedAmount.Cmp(e18(5)) != 0 {
		t.Fatalf("expected 5e18 base stake, got %s", base.StakedAmount)
	}
	basePool, _ := f.engine.Pool(f.reward)
	if basePool.TotalStaked.Cmp(e18(5)) != 0 {
		t.Fatalf("expected base total 5e18, got %s", basePool.TotalStaked)
	}
	minted := e18(5)
	if got := f.ledger.balance(f.reward, f.custody); got.Cmp(new(big.Int).Add(custodyBefore, minted)) != 0 {
		t.Fatalf("compound should only mint the accrual, custody %s", got)
	}
	evts := f.buffer.Events()
	if len(evts) != 2 || evts[0].EventType() != events.TypeRewardsDeposited || evts[1].EventType() != events.TypeRewardsCompounded {
		t.Fatalf("unexpected events %v", evts)
	}
}

func TestCompoundWithinBasePool(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	f.addPool(t, f.reward, big.NewInt(10), 0, 1)
	f.fund(user, f.reward, big.NewInt(100))
	f.engine.SetBlockHeight(1)
	if err := f.engine.Deposit(user, f.reward, big.NewInt(100), false); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	f.engine.SetBlockHeight(4)
	moved, err := f.engine.Compound(user, f.reward, big.NewInt(10))
	if err != nil {
		t.Fatalf("compound: %v", err)
	}
	if moved.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected 10, got %s", moved)
	}
	pos, _ := f.engine.Position(f.reward, user)
	if pos.StakedAmount.Cmp(big.NewInt(110)) != 0 || pos.PendingReward.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("unexpected position stake=%s pending=%s", pos.StakedAmount, pos.PendingReward)
	}
}

func TestCompoundErrors(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	if _, err := f.engine.Compound(user, f.stake, big.NewInt(0)); !errors.Is(err, coreerrors.ErrPoolNotFound) {
		t.Fatalf("expected missing source pool before amount check, got %v", err)
	}
	f.addPool(t, f.stake, big.NewInt(1), 0, 1)
	if _, err := f.engine.Compound(user, f.stake, big.NewInt(0)); !errors.Is(err, coreerrors.ErrZeroAmount) {
		t.Fatalf("expected zero amount, got %v", err)
	}
	if _, err := f.engine.Compound(user, f.stake, big.NewInt(5)); !errors.Is(err, coreerrors.ErrNoPendingReward) {
		t.Fatalf("expected no pending reward, got %v", err)
	}

	f.fund(user, f.stake, big.NewInt(10))
	f.engine.SetBlockHeight(1)
	if err := f.engine.Deposit(user, f.stake, big.NewInt(10), false); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	f.engine.SetBlockHeight(3)
	if _, err := f.engine.Compound(user, f.stake, big.NewInt(5)); !errors.Is(err, coreerrors.ErrPoolNotFound) {
		t.Fatalf("expected missing base pool, got %v", err)
	}
}

func TestSetPoolAdmin(t *testing.T) {
	f := newFixture(t)
	stranger := makeAddress(crypto.AccountPrefix, 0x09)
	if _, err := f.engine.SetPool(stranger, PoolConfig{Token: f.stake, RewardRate: big.NewInt(1)}); !errors.Is(err, coreerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := f.engine.SetPool(f.owner, PoolConfig{RewardRate: big.NewInt(1)}); !errors.Is(err, coreerrors.ErrZeroAddress) {
		t.Fatalf("expected zero address, got %v", err)
	}
	if _, err := f.engine.SetPool(f.owner, PoolConfig{Token: f.stake, RewardRate: big.NewInt(0)}); !errors.Is(err, coreerrors.ErrZeroAmount) {
		t.Fatalf("expected zero amount, got %v", err)
	}

	f.engine.SetBlockHeight(20)
	pool, err := f.engine.SetPool(f.owner, PoolConfig{Token: f.stake, RewardRate: big.NewInt(3)})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if pool.ID != 1 || pool.LastAccrualHeight != 20 {
		t.Fatalf("unexpected pool id=%d last=%d", pool.ID, pool.LastAccrualHeight)
	}
	second, err := f.engine.SetPool(f.owner, PoolConfig{Token: f.reward, RewardRate: big.NewInt(3)})
	if err != nil {
		t.Fatalf("register second: %v", err)
	}
	if second.ID != 2 {
		t.Fatalf("expected id 2, got %d", second.ID)
	}

	updated, err := f.engine.SetPool(f.owner, PoolConfig{Token: f.stake, RewardRate: big.NewInt(9), CooldownPeriod: 60, StartHeight: 50})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != 1 || updated.LastAccrualHeight != 50 || updated.CooldownPeriod != 60 || updated.RewardRate.Cmp(big.NewInt(9)) != 0 {
		t.Fatalf("unexpected update %+v", updated)
	}
	count, _ := f.engine.PoolCount()
	if count != 2 {
		t.Fatalf("expected 2 pools, got %d", count)
	}
	pools, _ := f.engine.Pools()
	if len(pools) != 2 || !pools[0].Token.Equal(f.stake) || !pools[1].Token.Equal(f.reward) {
		t.Fatalf("pools out of registration order")
	}
}

func TestSetPoolUpdateAccruesFirst(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	f.addPool(t, f.stake, big.NewInt(10), 0, 1)
	f.fund(user, f.stake, big.NewInt(1))
	f.engine.SetBlockHeight(1)
	if err := f.engine.Deposit(user, f.stake, big.NewInt(1), false); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	f.engine.SetBlockHeight(6)
	updated, err := f.engine.SetPool(f.owner, PoolConfig{Token: f.stake, RewardRate: big.NewInt(1), StartHeight: 100})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.LastAccrualHeight != 6 {
		t.Fatalf("accrued pool must not move its start, got %d", updated.LastAccrualHeight)
	}
	f.engine.SetBlockHeight(8)
	pending, _ := f.engine.PendingReward(f.stake, user)
	if pending.Cmp(big.NewInt(52)) != 0 {
		t.Fatalf("expected 52 pending, got %s", pending)
	}
}

func TestPausedModuleRejectsMutations(t *testing.T) {
	f := newFixture(t)
	user := makeAddress(crypto.AccountPrefix, 0x02)
	f.addPool(t, f.stake, big.NewInt(1), 0, 1)
	f.engine.SetPauses(nativecommon.StaticPauses{ModuleName: true})
	if err := f.engine.Deposit(user, f.stake, big.NewInt(1), false); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected paused, got %v", err)
	}
	if _, err := f.engine.PendingReward(f.stake, user); err != nil {
		t.Fatalf("queries stay available while paused: %v", err)
	}
}
