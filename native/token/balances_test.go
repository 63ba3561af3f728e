package token

import (
	"math/big"
	"testing"

	"guardtoken/core/state"
	"guardtoken/storage"
)

func newTestStore(t *testing.T) *state.Manager {
	t.Helper()
	return state.NewManager(storage.NewMemDB())
}

func testAddr(b byte) [20]byte {
	var addr [20]byte
	addr[19] = b
	return addr
}

func TestBalancesImplicitZeroRecord(t *testing.T) {
	balances := NewBalances(newTestStore(t))
	record, err := balances.Get(testAddr(1))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.Balance.Sign() != 0 {
		t.Fatalf("expected zero balance, got %s", record.Balance)
	}
	if record.LastTouchedBlock != 0 || record.IncreasedLastTouch {
		t.Fatalf("expected untouched record, got %+v", record)
	}
}

func TestBalancesCreditMarksIncrease(t *testing.T) {
	balances := NewBalances(newTestStore(t))
	addr := testAddr(1)
	if err := balances.Credit(addr, big.NewInt(100), 7); err != nil {
		t.Fatalf("credit: %v", err)
	}
	record, err := balances.Get(addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.Balance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected balance 100, got %s", record.Balance)
	}
	if record.LastTouchedBlock != 7 || !record.IncreasedLastTouch {
		t.Fatalf("expected increase mark at block 7, got %+v", record)
	}
}

func TestBalancesDebitMarksDecrease(t *testing.T) {
	balances := NewBalances(newTestStore(t))
	addr := testAddr(1)
	if err := balances.Credit(addr, big.NewInt(100), 7); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := balances.Debit(addr, big.NewInt(40), 8); err != nil {
		t.Fatalf("debit: %v", err)
	}
	record, err := balances.Get(addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.Balance.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("expected balance 60, got %s", record.Balance)
	}
	if record.LastTouchedBlock != 8 || record.IncreasedLastTouch {
		t.Fatalf("expected decrease mark at block 8, got %+v", record)
	}
}

func TestBalancesDebitInsufficient(t *testing.T) {
	balances := NewBalances(newTestStore(t))
	addr := testAddr(1)
	if err := balances.Credit(addr, big.NewInt(10), 1); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := balances.Debit(addr, big.NewInt(11), 1); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	record, err := balances.Get(addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.Balance.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("failed debit must not change balance, got %s", record.Balance)
	}
}

func TestBalancesCreditOverflow(t *testing.T) {
	balances := NewBalances(newTestStore(t))
	addr := testAddr(1)
	if err := balances.Credit(addr, MaxBalance(), 1); err != nil {
		t.Fatalf("credit to max: %v", err)
	}
	if err := balances.Credit(addr, big.NewInt(1), 1); err != ErrBalanceOverflow {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
	record, err := balances.Get(addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.Balance.Cmp(MaxBalance()) != 0 {
		t.Fatalf("failed credit must not change balance, got %s", record.Balance)
	}
}

func TestBalancesRecordRoundTrip(t *testing.T) {
	store := newTestStore(t)
	balances := NewBalances(store)
	addr := testAddr(9)
	if err := balances.Credit(addr, big.NewInt(12345), 42); err != nil {
		t.Fatalf("credit: %v", err)
	}
	// A fresh store view must decode the same record.
	reread, err := NewBalances(store).Get(addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reread.Balance.Cmp(big.NewInt(12345)) != 0 || reread.LastTouchedBlock != 42 || !reread.IncreasedLastTouch {
		t.Fatalf("unexpected record after round trip: %+v", reread)
	}
}
