package core

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"guardtoken/core/events"
	"guardtoken/core/state"
	"guardtoken/core/types"
	"guardtoken/native/registry"
	"guardtoken/native/token"
	"guardtoken/native/trust"
	"guardtoken/observability"
	"guardtoken/storage"
)

var (
	// ErrInvalidBlock marks BeginBlock calls with block number zero.
	ErrInvalidBlock = errors.New("ledger: block number must be positive")
	// ErrBlockRegression marks BeginBlock calls that would move the block
	// counter backwards.
	ErrBlockRegression = errors.New("ledger: block number regression")
	// ErrResolverNotManaged is returned when fingerprint bindings are
	// requested while a custom code resolver is injected.
	ErrResolverNotManaged = errors.New("ledger: code resolver not managed by ledger")
)

var blockKey = []byte("ledger/block")

// Config carries the construction parameters for a ledger instance.
type Config struct {
	TokenName  string
	ChainID    uint64
	Governance [20]byte
	// Resolver optionally overrides the identity-resolution callback used by
	// the trust cache. When nil the ledger manages a static binding table.
	Resolver trust.CodeResolver
}

// Ledger owns the token state, the engines operating on it, and the current
// block counter. All operations execute as atomic, serialized units under a
// single mutex; concurrent callers observe no intermediate state.
type Ledger struct {
	mu sync.Mutex

	manager  *state.Manager
	engine   *token.Engine
	registry *registry.Registry
	cache    *trust.Cache
	resolver *trust.StaticResolver
	recorder *events.Recorder

	eventLog []types.Event
	block    uint64
}

// NewLedger constructs a ledger over the provided database.
func NewLedger(db storage.Database, cfg Config) (*Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("ledger: database required")
	}
	if cfg.Governance == ([20]byte{}) {
		return nil, fmt.Errorf("ledger: governance principal required")
	}

	manager := state.NewManager(db)
	recorder := &events.Recorder{}

	reg := registry.New(manager, cfg.Governance)
	reg.SetEmitter(recorder)

	var staticResolver *trust.StaticResolver
	resolver := cfg.Resolver
	if resolver == nil {
		staticResolver = trust.NewStaticResolver(manager)
		resolver = staticResolver
	}
	cache := trust.NewCache(manager, resolver, reg)
	cache.SetEmitter(recorder)

	engine := token.NewEngine(manager, cache, cfg.TokenName, cfg.ChainID)
	engine.SetEmitter(recorder)

	l := &Ledger{
		manager:  manager,
		engine:   engine,
		registry: reg,
		cache:    cache,
		resolver: staticResolver,
		recorder: recorder,
		block:    1,
	}
	engine.SetBlockSource(func() uint64 { return l.block })

	var persisted uint64
	ok, err := manager.KVGet(blockKey, &persisted)
	if err != nil {
		return nil, fmt.Errorf("ledger: load block counter: %w", err)
	}
	if ok && persisted > l.block {
		l.block = persisted
	}
	return l, nil
}

// run executes fn as one serialized unit of work, records metrics, and folds
// emitted events into the ledger's ordered event log on success.
func (l *Ledger) run(op string, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := fn()
	metrics := observability.LedgerMetrics()
	metrics.ObserveOperation(op, err)
	if errors.Is(err, token.ErrSameBlockManipulation) {
		metrics.ObserveManipulationRejection()
	}
	drained := l.recorder.Drain()
	if err == nil {
		l.eventLog = append(l.eventLog, drained...)
	}
	return err
}

// BeginBlock advances the block counter. Block numbers start at 1 and only
// move forward.
func (l *Ledger) BeginBlock(n uint64) error {
	return l.run("beginBlock", func() error {
		if n == 0 {
			return ErrInvalidBlock
		}
		if n < l.block {
			return ErrBlockRegression
		}
		// Persist before mutating so a write failure cannot leave the
		// in-memory counter ahead of storage.
		if err := l.manager.KVPut(blockKey, n); err != nil {
			return err
		}
		l.block = n
		return nil
	})
}

// CurrentBlock returns the block number all operations currently execute in.
func (l *Ledger) CurrentBlock() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.block
}

// Transfer moves amount between two holders.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) error {
	return l.run("transfer", func() error {
		return l.engine.Transfer(from, to, amount)
	})
}

// Mint issues amount to the recipient.
func (l *Ledger) Mint(to [20]byte, amount *big.Int) error {
	return l.run("mint", func() error {
		return l.engine.Mint(to, amount)
	})
}

// Burn destroys amount held by the holder.
func (l *Ledger) Burn(from [20]byte, amount *big.Int) error {
	return l.run("burn", func() error {
		return l.engine.Burn(from, amount)
	})
}

// Approve sets the allowance granted by owner to spender.
func (l *Ledger) Approve(owner, spender [20]byte, amount *big.Int) error {
	return l.run("approve", func() error {
		return l.engine.Approve(owner, spender, amount)
	})
}

// TransferFrom moves amount on behalf of spender, consuming allowance.
func (l *Ledger) TransferFrom(spender, from, to [20]byte, amount *big.Int) error {
	return l.run("transferFrom", func() error {
		return l.engine.TransferFrom(spender, from, to, amount)
	})
}

// Permit applies an approval authorised by an off-chain owner signature.
func (l *Ledger) Permit(owner, spender [20]byte, value *big.Int, deadline int64, sig []byte) error {
	return l.run("permit", func() error {
		return l.engine.Permit(owner, spender, value, deadline, sig)
	})
}

// SetCodeHash mutates the registry allow-list on behalf of caller.
func (l *Ledger) SetCodeHash(caller [20]byte, hash [32]byte, approved bool) error {
	return l.run("setCodeHash", func() error {
		if err := l.registry.SetCodeHash(caller, hash, approved); err != nil {
			return err
		}
		observability.LedgerMetrics().ObserveRegistryUpdate()
		return nil
	})
}

// IsValidCodeHash reports whether the fingerprint is allow-listed.
func (l *Ledger) IsValidCodeHash(hash [32]byte) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.registry.IsValidCodeHash(hash)
}

// IsTrusted reports whether the address resolves to a trusted pool.
func (l *Ledger) IsTrusted(addr [20]byte) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache.IsTrusted(addr)
}

// RefreshTrust re-queries the registry for every supplied address.
func (l *Ledger) RefreshTrust(addrs [][20]byte) error {
	return l.run("refreshTrust", func() error {
		return l.cache.RefreshTrust(addrs)
	})
}

// BindFingerprint associates an address with a code fingerprint in the static
// resolver. Available only when the ledger manages the resolver.
func (l *Ledger) BindFingerprint(addr [20]byte, hash [32]byte) error {
	return l.run("bindFingerprint", func() error {
		if l.resolver == nil {
			return ErrResolverNotManaged
		}
		return l.resolver.Bind(addr, hash)
	})
}

// BalanceOf returns the balance record for addr.
func (l *Ledger) BalanceOf(addr [20]byte) (*types.BalanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.BalanceOf(addr)
}

// TotalSupply returns the current total supply.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.TotalSupply()
}

// Allowance returns the allowance granted by owner to spender.
func (l *Ledger) Allowance(owner, spender [20]byte) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Allowance(owner, spender)
}

// Nonce returns the next unused permit nonce for owner.
func (l *Ledger) Nonce(owner [20]byte) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Nonce(owner)
}

// PermitDigest computes the digest an owner must sign for a permit.
func (l *Ledger) PermitDigest(owner, spender [20]byte, value *big.Int, nonce uint64, deadline int64) ([32]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.PermitDigest(owner, spender, value, nonce, deadline)
}

// Governance returns the configured governance principal.
func (l *Ledger) Governance() [20]byte {
	return l.registry.Governance()
}

// Events returns a copy of the ordered event log accumulated since start-up.
func (l *Ledger) Events() []types.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.Event, len(l.eventLog))
	copy(out, l.eventLog)
	return out
}
