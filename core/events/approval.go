package events

import (
	"math/big"

	"guardtoken/core/types"
)

const (
	// TypeApproval is emitted whenever an allowance is set or adjusted.
	TypeApproval = "token.approval"
)

// Approval captures an allowance change for an (owner, spender) pair. Amount
// is the new absolute allowance, not a delta.
type Approval struct {
	Owner   [20]byte
	Spender [20]byte
	Amount  *big.Int
}

func (Approval) EventType() string { return TypeApproval }

func (e Approval) Event() *types.Event {
	attrs := map[string]string{
		"owner":   formatAddress(e.Owner),
		"spender": formatAddress(e.Spender),
		"amount":  formatAmount(e.Amount),
	}
	return &types.Event{Type: TypeApproval, Attributes: attrs}
}
