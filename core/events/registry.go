package events

import "guardtoken/core/types"

const (
	// TypeCodeHashUpdated is emitted when governance mutates the registry
	// allow-list.
	TypeCodeHashUpdated = "registry.codehash"
)

// CodeHashUpdated captures a governance update to the trusted code hash
// allow-list.
type CodeHashUpdated struct {
	CodeHash [32]byte
	Approved bool
	Caller   [20]byte
}

func (CodeHashUpdated) EventType() string { return TypeCodeHashUpdated }

func (e CodeHashUpdated) Event() *types.Event {
	attrs := map[string]string{
		"codeHash": formatHash(e.CodeHash),
		"approved": formatBool(e.Approved),
		"caller":   formatAddress(e.Caller),
	}
	return &types.Event{Type: TypeCodeHashUpdated, Attributes: attrs}
}
