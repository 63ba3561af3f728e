package token

import (
	"fmt"
	"math/big"
)

// Allowances persists (owner, spender) spending limits. An allowance equal to
// the maximum 256-bit value is a perpetual approval and is never decremented.
type Allowances struct {
	store Storage
}

// NewAllowances constructs an allowance store bound to the provided storage
// backend.
func NewAllowances(store Storage) *Allowances {
	return &Allowances{store: store}
}

// Get returns the allowance granted by owner to spender. Absent entries read
// as zero.
func (a *Allowances) Get(owner, spender [20]byte) (*big.Int, error) {
	var allowance big.Int
	ok, err := a.store.KVGet(allowanceKey(owner, spender), &allowance)
	if err != nil {
		return nil, fmt.Errorf("token: load allowance: %w", err)
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return &allowance, nil
}

// Set overwrites the allowance granted by owner to spender.
func (a *Allowances) Set(owner, spender [20]byte, amount *big.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if err := a.store.KVPut(allowanceKey(owner, spender), amount); err != nil {
		return fmt.Errorf("token: store allowance: %w", err)
	}
	return nil
}
