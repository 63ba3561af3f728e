package token

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"guardtoken/core/types"
)

// Balances is the holder balance store. Credit and Debit are pure mutations:
// they bound-check the amount, update the balance and stamp the record with
// the mutating block and direction. The same-block manipulation policy lives
// in the engine, which inspects pre-mutation snapshots.
type Balances struct {
	store Storage
}

// NewBalances constructs a balance store bound to the provided storage
// backend.
func NewBalances(store Storage) *Balances {
	return &Balances{store: store}
}

// Get returns the balance record for addr. Addresses that were never credited
// yield an implicit zero record.
func (b *Balances) Get(addr [20]byte) (*types.BalanceRecord, error) {
	record := types.NewBalanceRecord()
	ok, err := b.store.KVGet(balanceKey(addr), record)
	if err != nil {
		return nil, fmt.Errorf("token: load balance: %w", err)
	}
	if !ok {
		return types.NewBalanceRecord(), nil
	}
	return record.Normalize(), nil
}

func (b *Balances) put(addr [20]byte, record *types.BalanceRecord) error {
	if err := b.store.KVPut(balanceKey(addr), record); err != nil {
		return fmt.Errorf("token: store balance: %w", err)
	}
	return nil
}

// Credit increases addr's balance by amount and marks the record as increased
// in block. It fails with ErrBalanceOverflow when the result would exceed the
// maximum representable balance.
func (b *Balances) Credit(addr [20]byte, amount *big.Int, block uint64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	record, err := b.Get(addr)
	if err != nil {
		return err
	}
	updated := new(big.Int).Add(record.Balance, amount)
	word, overflow := uint256.FromBig(updated)
	if overflow || word.Cmp(maxBalance) > 0 {
		return ErrBalanceOverflow
	}
	record.Balance = updated
	record.LastTouchedBlock = block
	record.IncreasedLastTouch = true
	return b.put(addr, record)
}

// Debit decreases addr's balance by amount and marks the record as decreased
// in block. It fails with ErrInsufficientBalance when amount exceeds the
// balance.
func (b *Balances) Debit(addr [20]byte, amount *big.Int, block uint64) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	record, err := b.Get(addr)
	if err != nil {
		return err
	}
	if amount.Cmp(record.Balance) > 0 {
		return ErrInsufficientBalance
	}
	record.Balance = new(big.Int).Sub(record.Balance, amount)
	record.LastTouchedBlock = block
	record.IncreasedLastTouch = false
	return b.put(addr, record)
}
