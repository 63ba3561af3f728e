package core

import (
	"errors"
	"math/big"
	"testing"

	"guardtoken/core/events"
	"guardtoken/native/registry"
	"guardtoken/native/token"
	"guardtoken/storage"
)

func testAddr(b byte) [20]byte {
	var addr [20]byte
	addr[19] = b
	return addr
}

func testHash(b byte) [32]byte {
	var hash [32]byte
	hash[31] = b
	return hash
}

func newTestLedger(t *testing.T, db storage.Database) *Ledger {
	t.Helper()
	ledger, err := NewLedger(db, Config{
		TokenName:  "GuardToken",
		ChainID:    1,
		Governance: testAddr(0xff),
	})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return ledger
}

func TestNewLedgerRequiresGovernance(t *testing.T) {
	if _, err := NewLedger(storage.NewMemDB(), Config{TokenName: "GuardToken", ChainID: 1}); err == nil {
		t.Fatal("expected error for zero governance principal")
	}
	if _, err := NewLedger(nil, Config{Governance: testAddr(1)}); err == nil {
		t.Fatal("expected error for nil database")
	}
}

func TestMintThenImmediateSpendBlockedUntilReceiverTrusted(t *testing.T) {
	ledger := newTestLedger(t, storage.NewMemDB())
	governance := ledger.Governance()
	holder, pool := testAddr(1), testAddr(2)

	if err := ledger.Mint(holder, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	// The holder was credited this block, so sending out again is rejected
	// while the receiver is not a recognised pool.
	err := ledger.Transfer(holder, pool, big.NewInt(50))
	if !errors.Is(err, token.ErrSameBlockManipulation) {
		t.Fatalf("expected ErrSameBlockManipulation, got %v", err)
	}

	poolHash := testHash(0xaa)
	if err := ledger.BindFingerprint(pool, poolHash); err != nil {
		t.Fatalf("bind fingerprint: %v", err)
	}
	if err := ledger.SetCodeHash(governance, poolHash, true); err != nil {
		t.Fatalf("set code hash: %v", err)
	}
	if err := ledger.Transfer(holder, pool, big.NewInt(50)); err != nil {
		t.Fatalf("transfer to trusted pool: %v", err)
	}

	record, err := ledger.BalanceOf(holder)
	if err != nil {
		t.Fatalf("balance of: %v", err)
	}
	if record.Balance.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("expected holder balance 50, got %s", record.Balance)
	}
	record, err = ledger.BalanceOf(pool)
	if err != nil {
		t.Fatalf("balance of: %v", err)
	}
	if record.Balance.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("expected pool balance 50, got %s", record.Balance)
	}
}

func TestTransferAllowedAfterBlockAdvance(t *testing.T) {
	ledger := newTestLedger(t, storage.NewMemDB())
	a, b := testAddr(1), testAddr(2)

	if err := ledger.Mint(a, big.NewInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.BeginBlock(2); err != nil {
		t.Fatalf("begin block: %v", err)
	}
	if err := ledger.Transfer(a, b, big.NewInt(100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
}

func TestBeginBlockRules(t *testing.T) {
	ledger := newTestLedger(t, storage.NewMemDB())

	if err := ledger.BeginBlock(0); !errors.Is(err, ErrInvalidBlock) {
		t.Fatalf("expected ErrInvalidBlock, got %v", err)
	}
	if err := ledger.BeginBlock(5); err != nil {
		t.Fatalf("begin block: %v", err)
	}
	if err := ledger.BeginBlock(3); !errors.Is(err, ErrBlockRegression) {
		t.Fatalf("expected ErrBlockRegression, got %v", err)
	}
	// Re-announcing the current block is allowed.
	if err := ledger.BeginBlock(5); err != nil {
		t.Fatalf("begin current block: %v", err)
	}
	if got := ledger.CurrentBlock(); got != 5 {
		t.Fatalf("expected block 5, got %d", got)
	}
}

type failingPutDB struct {
	storage.Database
	failPut bool
}

func (db *failingPutDB) Put(key, value []byte) error {
	if db.failPut {
		return errors.New("disk full")
	}
	return db.Database.Put(key, value)
}

func TestBeginBlockPersistFailureKeepsCounter(t *testing.T) {
	db := &failingPutDB{Database: storage.NewMemDB()}
	ledger := newTestLedger(t, db)

	if err := ledger.BeginBlock(2); err != nil {
		t.Fatalf("begin block: %v", err)
	}
	db.failPut = true
	if err := ledger.BeginBlock(3); err == nil {
		t.Fatal("expected persistence failure to surface")
	}
	// The in-memory counter must not run ahead of storage.
	if got := ledger.CurrentBlock(); got != 2 {
		t.Fatalf("expected block 2 after failed advance, got %d", got)
	}
}

func TestBlockCounterSurvivesRestart(t *testing.T) {
	db := storage.NewMemDB()
	ledger := newTestLedger(t, db)
	if err := ledger.BeginBlock(9); err != nil {
		t.Fatalf("begin block: %v", err)
	}

	reopened := newTestLedger(t, db)
	if got := reopened.CurrentBlock(); got != 9 {
		t.Fatalf("expected block 9 after restart, got %d", got)
	}
}

func TestEventLogOrderedAndFailureSilent(t *testing.T) {
	ledger := newTestLedger(t, storage.NewMemDB())
	a, b := testAddr(1), testAddr(2)

	if err := ledger.Mint(a, big.NewInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.BeginBlock(2); err != nil {
		t.Fatalf("begin block: %v", err)
	}
	if err := ledger.Transfer(a, b, big.NewInt(100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	before := len(ledger.Events())

	if err := ledger.Transfer(a, b, big.NewInt(10_000)); !errors.Is(err, token.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	evts := ledger.Events()
	if len(evts) != before {
		t.Fatalf("failed operation must not append events, got %d -> %d", before, len(evts))
	}

	if evts[0].Type != events.TypeTransfer || evts[0].Attributes["from"] != "0x0000000000000000000000000000000000000000" {
		t.Fatalf("expected zero-sender mint transfer first, got %+v", evts[0])
	}
	last := evts[len(evts)-1]
	if last.Type != events.TypeTransfer || last.Attributes["amount"] != "100" {
		t.Fatalf("expected the user transfer last, got %+v", last)
	}
}

type fixedResolver struct{}

func (fixedResolver) CodeFingerprint([20]byte) ([32]byte, bool, error) {
	return [32]byte{}, false, nil
}

func TestBindFingerprintRequiresManagedResolver(t *testing.T) {
	ledger, err := NewLedger(storage.NewMemDB(), Config{
		TokenName:  "GuardToken",
		ChainID:    1,
		Governance: testAddr(0xff),
		Resolver:   fixedResolver{},
	})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	if err := ledger.BindFingerprint(testAddr(1), testHash(1)); !errors.Is(err, ErrResolverNotManaged) {
		t.Fatalf("expected ErrResolverNotManaged, got %v", err)
	}
}

func TestSetCodeHashGovernanceGate(t *testing.T) {
	ledger := newTestLedger(t, storage.NewMemDB())
	err := ledger.SetCodeHash(testAddr(1), testHash(1), true)
	if !errors.Is(err, registry.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}
