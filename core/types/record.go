package types

import "math/big"

// BalanceRecord is the per-holder accounting entry. Alongside the balance it
// carries the block at which the record was last mutated and the direction of
// that mutation. The direction flag is only meaningful while the ledger is
// still inside LastTouchedBlock; once the block advances it is stale and must
// be ignored.
type BalanceRecord struct {
	Balance            *big.Int
	LastTouchedBlock   uint64
	IncreasedLastTouch bool
}

// NewBalanceRecord returns an empty record, the implicit state of every
// address that has never been credited.
func NewBalanceRecord() *BalanceRecord {
	return &BalanceRecord{Balance: big.NewInt(0)}
}

// Clone returns a deep copy of the record.
func (r *BalanceRecord) Clone() *BalanceRecord {
	if r == nil {
		return NewBalanceRecord()
	}
	clone := &BalanceRecord{
		LastTouchedBlock:   r.LastTouchedBlock,
		IncreasedLastTouch: r.IncreasedLastTouch,
		Balance:            big.NewInt(0),
	}
	if r.Balance != nil {
		clone.Balance = new(big.Int).Set(r.Balance)
	}
	return clone
}

// Normalize backfills nil amounts so decoded records are always safe to use.
func (r *BalanceRecord) Normalize() *BalanceRecord {
	if r == nil {
		return NewBalanceRecord()
	}
	if r.Balance == nil {
		r.Balance = big.NewInt(0)
	}
	return r
}
