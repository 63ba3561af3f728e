package trust

import (
	"fmt"

	"guardtoken/core/events"
)

// CodeResolver maps an account address to the fingerprint of its deployed
// code. The second return value is false when the address has no deployed
// code, which short-circuits trust lookups to untrusted without touching the
// registry.
type CodeResolver interface {
	CodeFingerprint(addr [20]byte) ([32]byte, bool, error)
}

// Registry is the allow-list oracle the cache syncs from.
type Registry interface {
	IsValidCodeHash(hash [32]byte) (bool, error)
}

// Storage abstracts the subset of state manager functionality required by the
// trust cache.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var cachePrefix = []byte("trust/code/")

func cacheKey(hash [32]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", cachePrefix, hash))
}

// Cache memoizes registry verdicts per code fingerprint so repeated transfers
// against the same counterparty avoid re-querying the registry.
//
// The lazy lookup path caches positive verdicts only: a pool added to the
// registry after first being checked becomes trusted on the next lookup,
// whereas a cached positive verdict survives a registry revocation until an
// explicit refresh. The latter is a known limitation carried over from the
// original design.
type Cache struct {
	store    Storage
	resolver CodeResolver
	registry Registry
	emitter  events.Emitter
}

// NewCache constructs a trust cache bound to the provided storage backend,
// code resolver and registry.
func NewCache(store Storage, resolver CodeResolver, registry Registry) *Cache {
	return &Cache{
		store:    store,
		resolver: resolver,
		registry: registry,
		emitter:  events.NoopEmitter{},
	}
}

// SetEmitter wires an event emitter. Passing nil restores the no-op emitter.
func (c *Cache) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		c.emitter = events.NoopEmitter{}
		return
	}
	c.emitter = emitter
}

// IsTrusted reports whether the address is a recognised liquidity pool.
func (c *Cache) IsTrusted(addr [20]byte) (bool, error) {
	hash, deployed, err := c.resolver.CodeFingerprint(addr)
	if err != nil {
		return false, fmt.Errorf("trust: resolve code: %w", err)
	}
	if !deployed {
		return false, nil
	}

	var cached bool
	found, err := c.store.KVGet(cacheKey(hash), &cached)
	if err != nil {
		return false, fmt.Errorf("trust: load cache: %w", err)
	}
	if found {
		return cached, nil
	}

	valid, err := c.registry.IsValidCodeHash(hash)
	if err != nil {
		return false, fmt.Errorf("trust: query registry: %w", err)
	}
	if valid {
		if err := c.store.KVPut(cacheKey(hash), true); err != nil {
			return false, fmt.Errorf("trust: store cache: %w", err)
		}
	}
	return valid, nil
}

// RefreshTrust unconditionally re-queries the registry for every supplied
// address and overwrites the cached verdict, negative answers included. It is
// the only way to evict a stale positive verdict.
func (c *Cache) RefreshTrust(addrs [][20]byte) error {
	for _, addr := range addrs {
		hash, deployed, err := c.resolver.CodeFingerprint(addr)
		if err != nil {
			return fmt.Errorf("trust: resolve code: %w", err)
		}
		if !deployed {
			c.emitter.Emit(events.TrustRefreshed{Address: addr})
			continue
		}
		valid, err := c.registry.IsValidCodeHash(hash)
		if err != nil {
			return fmt.Errorf("trust: query registry: %w", err)
		}
		if err := c.store.KVPut(cacheKey(hash), valid); err != nil {
			return fmt.Errorf("trust: store cache: %w", err)
		}
		c.emitter.Emit(events.TrustRefreshed{Address: addr, CodeHash: hash, Trusted: valid})
	}
	return nil
}
