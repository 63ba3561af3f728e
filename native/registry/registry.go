package registry

import (
	"errors"
	"fmt"

	"guardtoken/core/events"
)

var (
	// ErrNotAuthorized marks registry mutations attempted by anyone other
	// than the governance principal.
	ErrNotAuthorized = errors.New("registry: not authorized")
)

// Storage abstracts the subset of state manager functionality required by the
// registry.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var codeHashPrefix = []byte("registry/codehash/")

func codeHashKey(hash [32]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", codeHashPrefix, hash))
}

// Registry is the governance-owned allow-list of trusted code fingerprints.
// It is the root of trust the same-block manipulation guard syncs from.
type Registry struct {
	store      Storage
	governance [20]byte
	emitter    events.Emitter
}

// New constructs a registry bound to the provided storage backend. The
// governance principal is injected at construction time and cannot be rotated
// by the registry itself.
func New(store Storage, governance [20]byte) *Registry {
	return &Registry{
		store:      store,
		governance: governance,
		emitter:    events.NoopEmitter{},
	}
}

// SetEmitter wires an event emitter. Passing nil restores the no-op emitter.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// Governance returns the configured governance principal.
func (r *Registry) Governance() [20]byte {
	return r.governance
}

// IsValidCodeHash reports whether the fingerprint is allow-listed. Absent
// entries read as false.
func (r *Registry) IsValidCodeHash(hash [32]byte) (bool, error) {
	var approved bool
	ok, err := r.store.KVGet(codeHashKey(hash), &approved)
	if err != nil {
		return false, fmt.Errorf("registry: load code hash: %w", err)
	}
	if !ok {
		return false, nil
	}
	return approved, nil
}

// SetCodeHash records whether the fingerprint identifies a trusted liquidity
// pool. Only the governance principal may call it.
func (r *Registry) SetCodeHash(caller [20]byte, hash [32]byte, approved bool) error {
	if caller != r.governance {
		return ErrNotAuthorized
	}
	if err := r.store.KVPut(codeHashKey(hash), approved); err != nil {
		return fmt.Errorf("registry: store code hash: %w", err)
	}
	r.emitter.Emit(events.CodeHashUpdated{CodeHash: hash, Approved: approved, Caller: caller})
	return nil
}
