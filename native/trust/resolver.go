package trust

import "fmt"

var fingerprintPrefix = []byte("trust/fingerprint/")

func fingerprintKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", fingerprintPrefix, addr))
}

// StaticResolver resolves code fingerprints from an explicit binding table.
// Deployments without access to on-chain bytecode register the identity tag of
// each counterparty through Bind; unbound addresses read as having no deployed
// code.
type StaticResolver struct {
	store Storage
}

// NewStaticResolver constructs a resolver backed by the provided storage
// backend.
func NewStaticResolver(store Storage) *StaticResolver {
	return &StaticResolver{store: store}
}

// Bind associates addr with the supplied code fingerprint, replacing any
// previous binding.
func (r *StaticResolver) Bind(addr [20]byte, hash [32]byte) error {
	if err := r.store.KVPut(fingerprintKey(addr), hash[:]); err != nil {
		return fmt.Errorf("trust: store fingerprint: %w", err)
	}
	return nil
}

// CodeFingerprint implements the CodeResolver interface.
func (r *StaticResolver) CodeFingerprint(addr [20]byte) ([32]byte, bool, error) {
	var hash [32]byte
	var raw []byte
	ok, err := r.store.KVGet(fingerprintKey(addr), &raw)
	if err != nil {
		return hash, false, fmt.Errorf("trust: load fingerprint: %w", err)
	}
	if !ok || len(raw) != len(hash) {
		return hash, false, nil
	}
	copy(hash[:], raw)
	return hash, true, nil
}
