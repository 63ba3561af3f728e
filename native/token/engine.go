package token

import (
	"fmt"
	"math/big"
	"time"

	"guardtoken/core/events"
	"guardtoken/core/types"
)

// Engine orchestrates balance mutation together with the same-block
// manipulation guard. Every operation stages its writes and commits only on
// success, so failures leave no trace in state and emit no events.
type Engine struct {
	store   Storage
	trust   TrustSource
	emitter events.Emitter
	blockFn func() uint64
	nowFn   func() int64

	name    string
	chainID uint64

	domain        [32]byte
	domainChainID uint64
	domainSet     bool
}

// NewEngine constructs a transfer engine bound to the provided storage backend
// and trust source. Name and chainID feed the permit signing domain.
func NewEngine(store Storage, trust TrustSource, name string, chainID uint64) *Engine {
	return &Engine{
		store:   store,
		trust:   trust,
		emitter: events.NoopEmitter{},
		blockFn: func() uint64 { return 1 },
		nowFn:   func() int64 { return time.Now().Unix() },
		name:    name,
		chainID: chainID,
	}
}

// SetEmitter wires an event emitter. Passing nil restores the no-op emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetBlockSource overrides the current-block supplier. Blocks are numbered
// from 1; block 0 is reserved for never-touched records.
func (e *Engine) SetBlockSource(fn func() uint64) {
	if fn == nil {
		e.blockFn = func() uint64 { return 1 }
		return
	}
	e.blockFn = fn
}

// SetNowFunc overrides the wall clock used for permit deadlines. Primarily
// leveraged in tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// finish commits the staged writes and, only once they are durable, emits the
// buffered events in order.
func (e *Engine) finish(staged *stagedState, evts []events.Event) error {
	if err := staged.Commit(); err != nil {
		return err
	}
	for _, evt := range evts {
		e.emitter.Emit(evt)
	}
	return nil
}

// BalanceOf returns the current balance record for addr.
func (e *Engine) BalanceOf(addr [20]byte) (*types.BalanceRecord, error) {
	return NewBalances(e.store).Get(addr)
}

// TotalSupply returns the current total supply.
func (e *Engine) TotalSupply() (*big.Int, error) {
	return NewSupply(e.store).Total()
}

// Allowance returns the allowance granted by owner to spender.
func (e *Engine) Allowance(owner, spender [20]byte) (*big.Int, error) {
	return NewAllowances(e.store).Get(owner, spender)
}

// Transfer moves amount from one holder to another, enforcing the same-block
// opposite-direction guard on both parties.
func (e *Engine) Transfer(from, to [20]byte, amount *big.Int) error {
	staged := newStagedState(e.store)
	evts, err := e.transferStaged(staged, from, to, amount)
	if err != nil {
		return err
	}
	return e.finish(staged, evts)
}

// transferStaged runs the transfer state machine against the supplied staged
// store without committing. Both manipulation checks run against balance
// snapshots taken before either mutation.
func (e *Engine) transferStaged(staged *stagedState, from, to [20]byte, amount *big.Int) ([]events.Event, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	block := e.blockFn()
	balances := NewBalances(staged)

	prevFrom, err := balances.Get(from)
	if err != nil {
		return nil, err
	}
	prevTo, err := balances.Get(to)
	if err != nil {
		return nil, err
	}

	if err := balances.Debit(from, amount, block); err != nil {
		return nil, err
	}
	if err := balances.Credit(to, amount, block); err != nil {
		return nil, err
	}

	// The sender received funds earlier in this block and is now sending
	// them out again. Allowed only when the counterparty receiving the
	// funds is a recognised pool.
	if prevFrom.LastTouchedBlock == block && prevFrom.IncreasedLastTouch {
		trusted, err := e.trust.IsTrusted(to)
		if err != nil {
			return nil, fmt.Errorf("token: trust lookup: %w", err)
		}
		if !trusted {
			return nil, ErrSameBlockManipulation
		}
	}
	// Symmetric check: the receiver sent funds earlier in this block and is
	// now taking them back in. Allowed only when the counterparty supplying
	// the funds is a recognised pool.
	if prevTo.LastTouchedBlock == block && !prevTo.IncreasedLastTouch {
		trusted, err := e.trust.IsTrusted(from)
		if err != nil {
			return nil, fmt.Errorf("token: trust lookup: %w", err)
		}
		if !trusted {
			return nil, ErrSameBlockManipulation
		}
	}

	return []events.Event{
		events.Transfer{From: from, To: to, Amount: new(big.Int).Set(amount)},
	}, nil
}

// Mint credits amount to the recipient and grows the total supply. Minting is
// a privileged operation; access control is owned by the caller and no
// manipulation check applies.
func (e *Engine) Mint(to [20]byte, amount *big.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	block := e.blockFn()
	staged := newStagedState(e.store)

	if err := NewBalances(staged).Credit(to, amount, block); err != nil {
		return err
	}
	total, err := NewSupply(staged).Increase(amount)
	if err != nil {
		return err
	}

	return e.finish(staged, []events.Event{
		events.Transfer{To: to, Amount: new(big.Int).Set(amount)},
		events.TokenSupply{Total: total, Delta: new(big.Int).Set(amount), Reason: events.SupplyReasonMint},
	})
}

// Burn debits amount from the holder and shrinks the total supply. No
// manipulation check applies.
func (e *Engine) Burn(from [20]byte, amount *big.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	block := e.blockFn()
	staged := newStagedState(e.store)

	if err := NewBalances(staged).Debit(from, amount, block); err != nil {
		return err
	}
	total, err := NewSupply(staged).Decrease(amount)
	if err != nil {
		return err
	}

	return e.finish(staged, []events.Event{
		events.Transfer{From: from, Amount: new(big.Int).Set(amount)},
		events.TokenSupply{Total: total, Delta: new(big.Int).Neg(amount), Reason: events.SupplyReasonBurn},
	})
}

// Approve sets the allowance granted by owner to spender.
func (e *Engine) Approve(owner, spender [20]byte, amount *big.Int) error {
	staged := newStagedState(e.store)
	evts, err := e.approveStaged(staged, owner, spender, amount)
	if err != nil {
		return err
	}
	return e.finish(staged, evts)
}

func (e *Engine) approveStaged(staged *stagedState, owner, spender [20]byte, amount *big.Int) ([]events.Event, error) {
	if err := NewAllowances(staged).Set(owner, spender, amount); err != nil {
		return nil, err
	}
	return []events.Event{
		events.Approval{Owner: owner, Spender: spender, Amount: new(big.Int).Set(amount)},
	}, nil
}

// TransferFrom moves amount from one holder to another on behalf of spender,
// consuming allowance. An allowance of exactly the maximum 256-bit value is a
// perpetual approval and is not decremented.
func (e *Engine) TransferFrom(spender, from, to [20]byte, amount *big.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	staged := newStagedState(e.store)
	allowances := NewAllowances(staged)
	var evts []events.Event

	allowance, err := allowances.Get(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(maxUint256) != 0 {
		if amount.Cmp(allowance) > 0 {
			return ErrInsufficientAllowance
		}
		remaining := new(big.Int).Sub(allowance, amount)
		if err := allowances.Set(from, spender, remaining); err != nil {
			return err
		}
		evts = append(evts, events.Approval{Owner: from, Spender: spender, Amount: remaining})
	}

	transferEvts, err := e.transferStaged(staged, from, to, amount)
	if err != nil {
		return err
	}
	return e.finish(staged, append(evts, transferEvts...))
}
