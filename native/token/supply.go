package token

import (
	"fmt"
	"math/big"
)

// Supply tracks the total issued token supply. It is mutated only by mint and
// burn; transfers never touch it.
type Supply struct {
	store Storage
}

// NewSupply constructs a supply ledger bound to the provided storage backend.
func NewSupply(store Storage) *Supply {
	return &Supply{store: store}
}

// Total returns the current total supply.
func (s *Supply) Total() (*big.Int, error) {
	var total big.Int
	ok, err := s.store.KVGet(supplyKey, &total)
	if err != nil {
		return nil, fmt.Errorf("token: load supply: %w", err)
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return &total, nil
}

func (s *Supply) put(total *big.Int) error {
	if err := s.store.KVPut(supplyKey, total); err != nil {
		return fmt.Errorf("token: store supply: %w", err)
	}
	return nil
}

// Increase grows the total supply by amount and returns the new total.
func (s *Supply) Increase(amount *big.Int) (*big.Int, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	total, err := s.Total()
	if err != nil {
		return nil, err
	}
	total = new(big.Int).Add(total, amount)
	if err := s.put(total); err != nil {
		return nil, err
	}
	return total, nil
}

// Decrease shrinks the total supply by amount and returns the new total.
// Amount must not exceed the recorded supply.
func (s *Supply) Decrease(amount *big.Int) (*big.Int, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	total, err := s.Total()
	if err != nil {
		return nil, err
	}
	if amount.Cmp(total) > 0 {
		return nil, ErrInsufficientBalance
	}
	total = new(big.Int).Sub(total, amount)
	if err := s.put(total); err != nil {
		return nil, err
	}
	return total, nil
}
