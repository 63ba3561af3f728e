package trust

import (
	"fmt"
	"testing"

	"guardtoken/core/events"
	"guardtoken/core/state"
	"guardtoken/storage"
)

type stubRegistry struct {
	valid   map[[32]byte]bool
	queries int
}

func (s *stubRegistry) IsValidCodeHash(hash [32]byte) (bool, error) {
	s.queries++
	return s.valid[hash], nil
}

func testAddr(b byte) [20]byte {
	var addr [20]byte
	addr[19] = b
	return addr
}

func testHash(b byte) [32]byte {
	var hash [32]byte
	hash[31] = b
	return hash
}

type cacheHarness struct {
	cache    *Cache
	resolver *StaticResolver
	registry *stubRegistry
	recorder *events.Recorder
}

func newCacheHarness(t *testing.T) *cacheHarness {
	t.Helper()
	manager := state.NewManager(storage.NewMemDB())
	h := &cacheHarness{
		resolver: NewStaticResolver(manager),
		registry: &stubRegistry{valid: make(map[[32]byte]bool)},
		recorder: &events.Recorder{},
	}
	h.cache = NewCache(manager, h.resolver, h.registry)
	h.cache.SetEmitter(h.recorder)
	return h
}

func (h *cacheHarness) mustTrusted(t *testing.T, addr [20]byte, want bool) {
	t.Helper()
	got, err := h.cache.IsTrusted(addr)
	if err != nil {
		t.Fatalf("is trusted: %v", err)
	}
	if got != want {
		t.Fatalf("expected trusted=%v for %x, got %v", want, addr, got)
	}
}

func TestIsTrustedNoDeployedCode(t *testing.T) {
	h := newCacheHarness(t)
	h.mustTrusted(t, testAddr(1), false)
	if h.registry.queries != 0 {
		t.Fatalf("no-code lookup must not query the registry, got %d queries", h.registry.queries)
	}
}

func TestIsTrustedCachesPositiveVerdict(t *testing.T) {
	h := newCacheHarness(t)
	addr, hash := testAddr(1), testHash(0xaa)
	if err := h.resolver.Bind(addr, hash); err != nil {
		t.Fatalf("bind: %v", err)
	}
	h.registry.valid[hash] = true

	h.mustTrusted(t, addr, true)
	h.mustTrusted(t, addr, true)
	if h.registry.queries != 1 {
		t.Fatalf("positive verdict must be cached, got %d registry queries", h.registry.queries)
	}
}

func TestIsTrustedDoesNotCacheNegativeVerdict(t *testing.T) {
	h := newCacheHarness(t)
	addr, hash := testAddr(1), testHash(0xaa)
	if err := h.resolver.Bind(addr, hash); err != nil {
		t.Fatalf("bind: %v", err)
	}

	h.mustTrusted(t, addr, false)
	h.mustTrusted(t, addr, false)
	if h.registry.queries != 2 {
		t.Fatalf("negative verdicts must not be cached, got %d registry queries", h.registry.queries)
	}

	// A later registry addition takes effect on the next lookup.
	h.registry.valid[hash] = true
	h.mustTrusted(t, addr, true)
}

func TestCachedPositiveSurvivesRevocationUntilRefresh(t *testing.T) {
	h := newCacheHarness(t)
	addr, hash := testAddr(1), testHash(0xaa)
	if err := h.resolver.Bind(addr, hash); err != nil {
		t.Fatalf("bind: %v", err)
	}
	h.registry.valid[hash] = true
	h.mustTrusted(t, addr, true)

	// Revoked in the registry, but the stale cached verdict still answers.
	delete(h.registry.valid, hash)
	h.mustTrusted(t, addr, true)

	if err := h.cache.RefreshTrust([][20]byte{addr}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	h.mustTrusted(t, addr, false)
}

func TestRefreshTrustCachesNegativeVerdict(t *testing.T) {
	h := newCacheHarness(t)
	addr, hash := testAddr(1), testHash(0xaa)
	if err := h.resolver.Bind(addr, hash); err != nil {
		t.Fatalf("bind: %v", err)
	}

	if err := h.cache.RefreshTrust([][20]byte{addr}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	queries := h.registry.queries
	h.mustTrusted(t, addr, false)
	if h.registry.queries != queries {
		t.Fatalf("refreshed negative verdict must be cached, got %d extra queries", h.registry.queries-queries)
	}

	evts := h.recorder.Drain()
	if len(evts) != 1 {
		t.Fatalf("expected one refresh event, got %d", len(evts))
	}
	attrs := evts[0].Attributes
	if evts[0].Type != events.TypeTrustRefreshed || attrs["trusted"] != "false" {
		t.Fatalf("unexpected refresh event: %+v", evts[0])
	}
}

func TestRefreshTrustNoCodeEmitsZeroHash(t *testing.T) {
	h := newCacheHarness(t)
	addr := testAddr(7)

	if err := h.cache.RefreshTrust([][20]byte{addr}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if h.registry.queries != 0 {
		t.Fatalf("no-code refresh must not query the registry, got %d queries", h.registry.queries)
	}
	evts := h.recorder.Drain()
	if len(evts) != 1 {
		t.Fatalf("expected one refresh event, got %d", len(evts))
	}
	zero := testHash(0)
	if evts[0].Attributes["codeHash"] != fmt.Sprintf("0x%x", zero[:]) {
		t.Fatalf("expected zero code hash attribute, got %q", evts[0].Attributes["codeHash"])
	}
}
