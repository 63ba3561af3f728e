package events

import (
	"math/big"

	"guardtoken/core/types"
)

const (
	// TypeTransfer is emitted for every successful balance movement. Mints
	// carry the zero address as sender, burns the zero address as receiver.
	TypeTransfer = "token.transfer"
)

// Transfer captures a balance movement between two holders.
type Transfer struct {
	From   [20]byte
	To     [20]byte
	Amount *big.Int
}

func (Transfer) EventType() string { return TypeTransfer }

// Event renders the transfer for downstream consumers. Attribute presence and
// naming is a compatibility contract with external indexers.
func (e Transfer) Event() *types.Event {
	attrs := map[string]string{
		"from":   formatAddress(e.From),
		"to":     formatAddress(e.To),
		"amount": formatAmount(e.Amount),
	}
	return &types.Event{Type: TypeTransfer, Attributes: attrs}
}
