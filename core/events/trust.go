package events

import "guardtoken/core/types"

const (
	// TypeTrustRefreshed is emitted for every address covered by an explicit
	// trust cache refresh.
	TypeTrustRefreshed = "trust.refresh"
)

// TrustRefreshed captures the outcome of a bulk trust re-query for a single
// address.
type TrustRefreshed struct {
	Address  [20]byte
	CodeHash [32]byte
	Trusted  bool
}

func (TrustRefreshed) EventType() string { return TypeTrustRefreshed }

func (e TrustRefreshed) Event() *types.Event {
	attrs := map[string]string{
		"address":  formatAddress(e.Address),
		"codeHash": formatHash(e.CodeHash),
		"trusted":  formatBool(e.Trusted),
	}
	return &types.Event{Type: TypeTrustRefreshed, Attributes: attrs}
}
