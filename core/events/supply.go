package events

import (
	"math/big"

	"guardtoken/core/types"
)

const (
	// TypeTokenSupply is emitted whenever the token supply changes.
	TypeTokenSupply = "token.supply"

	// SupplyReasonMint identifies mint driven supply increases.
	SupplyReasonMint = "mint"
	// SupplyReasonBurn identifies burn driven supply decreases.
	SupplyReasonBurn = "burn"
)

// TokenSupply captures a supply delta.
type TokenSupply struct {
	Total  *big.Int
	Delta  *big.Int
	Reason string
}

func (TokenSupply) EventType() string { return TypeTokenSupply }

// Event renders the structured supply change event for downstream consumers.
func (e TokenSupply) Event() *types.Event {
	attrs := map[string]string{
		"total": formatAmount(e.Total),
	}
	if e.Delta != nil {
		attrs["delta"] = new(big.Int).Set(e.Delta).String()
	}
	if e.Reason != "" {
		attrs["reason"] = e.Reason
	}
	return &types.Event{Type: TypeTokenSupply, Attributes: attrs}
}
