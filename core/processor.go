package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	coreerrors "stakevest/core/errors"
	"stakevest/core/events"
	"stakevest/core/state"
	"stakevest/core/types"
	"stakevest/crypto"
	"stakevest/native/bank"
	nativecommon "stakevest/native/common"
	"stakevest/native/rewards"
	"stakevest/native/vesting"
	"stakevest/observability/metrics"
)

// Params fixes the identities the engines operate with.
type Params struct {
	// Owner is the administrator allowed to configure pools and schedules.
	Owner crypto.Address
	// RewardToken is minted by reward accrual. Its pool is the compounding
	// target.
	RewardToken crypto.Address
	// VestingToken is minted on vesting claims.
	VestingToken crypto.Address
	// RewardsCustody holds staked tokens and accrued rewards.
	RewardsCustody crypto.Address
	// VestingCustody mints vesting claims.
	VestingCustody crypto.Address
}

// withDefaults derives module custody accounts when none are given.
func (p Params) withDefaults() Params {
	if p.RewardsCustody.IsZero() {
		p.RewardsCustody = crypto.ModuleAddress(rewards.ModuleName)
	}
	if p.VestingCustody.IsZero() {
		p.VestingCustody = crypto.ModuleAddress(vesting.ModuleName)
	}
	if p.VestingToken.IsZero() {
		p.VestingToken = p.RewardToken
	}
	return p
}

// Commit describes one successfully applied operation.
type Commit struct {
	Op     string
	Caller crypto.Address
	Height uint64
	Time   int64
	Events []*types.Event
}

// Subscriber observes committed operations, e.g. to index events. Errors are
// logged; the commit has already happened.
type Subscriber interface {
	Committed(ctx context.Context, commit Commit) error
}

var (
	errNilProcessor = errors.New("core: processor not configured")
	errInvalidParam = errors.New("core: owner and reward token required")
)

// Processor serialises every operation of both engines. Each mutating call runs
// inside a state transaction that is committed in full or discarded in full,
// together with the events it emitted.
type Processor struct {
	mu          sync.Mutex
	state       *state.Manager
	clock       Clock
	params      Params
	pauses      nativecommon.PauseView
	oracle      vesting.AllocationOracle
	subscribers []Subscriber
	logger      *slog.Logger
	metrics     *metrics.EngineMetrics
	tracer      trace.Tracer
}

// NewProcessor binds the engines to the state manager and clock.
func NewProcessor(mgr *state.Manager, clock Clock, params Params) (*Processor, error) {
	if mgr == nil || clock == nil {
		return nil, errNilProcessor
	}
	if params.Owner.IsZero() || params.RewardToken.IsZero() {
		return nil, errInvalidParam
	}
	return &Processor{
		state:   mgr,
		clock:   clock,
		params:  params.withDefaults(),
		logger:  slog.Default(),
		metrics: metrics.Engine(),
		tracer:  otel.Tracer("stakevest/core"),
	}, nil
}

func (p *Processor) SetPauses(pauses nativecommon.PauseView) { p.pauses = pauses }

func (p *Processor) SetOracle(oracle vesting.AllocationOracle) { p.oracle = oracle }

func (p *Processor) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	p.logger = logger
}

// Subscribe registers a commit observer.
func (p *Processor) Subscribe(sub Subscriber) {
	if sub == nil {
		return
	}
	p.mu.Lock()
	p.subscribers = append(p.subscribers, sub)
	p.mu.Unlock()
}

// Params returns the effective engine identities.
func (p *Processor) Params() Params { return p.params }

// Clock returns the processor's time source.
func (p *Processor) Clock() Clock { return p.clock }

type session struct {
	tx      *state.Tx
	buffer  *events.Buffer
	ledger  *bank.Ledger
	rewards *rewards.Engine
	vesting *vesting.Engine
	height  uint64
	now     int64
}

func (p *Processor) open() *session {
	s := &session{
		tx:     p.state.Begin(),
		buffer: &events.Buffer{},
		height: p.clock.Height(),
		now:    p.clock.Now(),
	}
	now := func() int64 { return s.now }

	s.ledger = bank.NewLedger()
	s.ledger.SetState(s.tx)
	s.ledger.SetEmitter(s.buffer)

	s.rewards = rewards.NewEngine(p.params.RewardsCustody, p.params.RewardToken, p.params.Owner)
	s.rewards.SetState(s.tx)
	s.rewards.SetLedger(s.ledger)
	s.rewards.SetEmitter(s.buffer)
	s.rewards.SetPauses(p.pauses)
	s.rewards.SetBlockHeight(s.height)
	s.rewards.SetNowFunc(now)

	s.vesting = vesting.NewEngine(p.params.VestingCustody, p.params.VestingToken, p.params.Owner)
	s.vesting.SetState(s.tx)
	s.vesting.SetMinter(s.ledger)
	s.vesting.SetOracle(p.oracle)
	s.vesting.SetEmitter(s.buffer)
	s.vesting.SetPauses(p.pauses)
	s.vesting.SetNowFunc(now)
	return s
}

// execute runs fn inside a fresh transaction and commits it when fn succeeds.
func (p *Processor) execute(ctx context.Context, op string, caller crypto.Address, fn func(*session) error) error {
	if p == nil || p.state == nil {
		return errNilProcessor
	}
	if ctx == nil {
		ctx = context.Background()
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, span := p.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("caller", caller.String()),
	))
	defer span.End()
	started := time.Now()

	s := p.open()
	span.SetAttributes(attribute.Int64("height", int64(s.height)))
	if err := fn(s); err != nil {
		s.tx.Discard()
		p.fail(span, op, caller, started, err)
		return err
	}
	if err := s.tx.Commit(); err != nil {
		err = fmt.Errorf("core: commit %s: %w", op, err)
		p.fail(span, op, caller, started, err)
		return err
	}

	buffered := s.buffer.Events()
	commit := Commit{Op: op, Caller: caller, Height: s.height, Time: s.now, Events: make([]*types.Event, 0, len(buffered))}
	for _, evt := range buffered {
		commit.Events = append(commit.Events, evt.Event())
		p.metrics.ObserveEvent(evt.EventType())
	}
	p.metrics.ObserveOperation(op, "ok", time.Since(started))
	p.metrics.SetHeight(s.height)
	p.logger.Debug("operation committed",
		slog.String("op", op),
		slog.String("caller", caller.String()),
		slog.Uint64("height", s.height),
		slog.Int("events", len(commit.Events)))

	for _, sub := range p.subscribers {
		if err := sub.Committed(ctx, commit); err != nil {
			p.logger.Warn("commit subscriber failed", slog.String("op", op), slog.Any("error", err))
		}
	}
	return nil
}

func (p *Processor) fail(span trace.Span, op string, caller crypto.Address, started time.Time, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	code := coreerrors.Code(err)
	if code == "" && errors.Is(err, nativecommon.ErrModulePaused) {
		code = "ModulePaused"
	}
	p.metrics.ObserveOperation(op, code, time.Since(started))
	p.logger.Info("operation reverted",
		slog.String("op", op),
		slog.String("caller", caller.String()),
		slog.String("code", code),
		slog.Any("error", err))
}

// query runs fn against a throw-away transaction.
func (p *Processor) query(fn func(*session) error) error {
	if p == nil || p.state == nil {
		return errNilProcessor
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.open()
	defer s.tx.Discard()
	return fn(s)
}

// Init grants the module custody accounts the mint roles they need. It is
// idempotent.
func (p *Processor) Init(ctx context.Context) error {
	return p.execute(ctx, "init", p.params.Owner, func(s *session) error {
		if err := s.ledger.SetMinter(p.params.RewardToken, p.params.RewardsCustody, true); err != nil {
			return err
		}
		return s.ledger.SetMinter(p.params.VestingToken, p.params.VestingCustody, true)
	})
}

func (p *Processor) requireOwner(caller crypto.Address) error {
	if !caller.Equal(p.params.Owner) {
		return coreerrors.ErrUnauthorized
	}
	return nil
}

// GrantMinter grants or revokes a mint role. Owner only.
func (p *Processor) GrantMinter(ctx context.Context, caller, token, addr crypto.Address, allowed bool) error {
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	return p.execute(ctx, "bank_grantMinter", caller, func(s *session) error {
		return s.ledger.SetMinter(token, addr, allowed)
	})
}

// Mint mints token to the recipient. The caller must hold the mint role.
func (p *Processor) Mint(ctx context.Context, caller, token, to crypto.Address, amount *big.Int) error {
	return p.execute(ctx, "bank_mint", caller, func(s *session) error {
		return s.ledger.Mint(token, caller, to, amount)
	})
}

// Transfer moves the caller's tokens.
func (p *Processor) Transfer(ctx context.Context, caller, token, to crypto.Address, amount *big.Int) error {
	return p.execute(ctx, "bank_transfer", caller, func(s *session) error {
		return s.ledger.Transfer(token, caller, to, amount)
	})
}

// Approve sets the spender's allowance over the caller's tokens. Deposits
// require approving the rewards custody account.
func (p *Processor) Approve(ctx context.Context, caller, token, spender crypto.Address, amount *big.Int) error {
	return p.execute(ctx, "bank_approve", caller, func(s *session) error {
		return s.ledger.Approve(token, caller, spender, amount)
	})
}

func (p *Processor) Balance(token, addr crypto.Address) (*big.Int, error) {
	var out *big.Int
	err := p.query(func(s *session) error {
		var err error
		out, err = s.ledger.BalanceOf(token, addr)
		return err
	})
	return out, err
}

func (p *Processor) TotalSupply(token crypto.Address) (*big.Int, error) {
	var out *big.Int
	err := p.query(func(s *session) error {
		var err error
		out, err = s.ledger.TotalSupply(token)
		return err
	})
	return out, err
}
