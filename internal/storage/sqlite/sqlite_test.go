package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "ledgers.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadUnknownUser(t *testing.T) {
	s := newTestStore(t)
	snap, err := s.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.NextID != 1 || len(snap.Transactions) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestSaveLoadReplacesRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mk := func(desc string, id int64) core.Transaction {
		tx, err := core.NewTransaction(core.TransactionParams{
			Amount:      decimal.NewFromInt(10),
			Description: desc,
			Category:    "misc",
			Currency:    "USD",
			Room:        "personal",
		})
		if err != nil {
			t.Fatalf("NewTransaction: %v", err)
		}
		return tx.WithID(id)
	}

	first := core.Snapshot{NextID: 3, Transactions: []core.Transaction{mk("a", 1), mk("b", 2)}}
	if err := s.Save(ctx, "alice", first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A later save fully replaces the previous rows.
	second := core.Snapshot{NextID: 4, Transactions: []core.Transaction{mk("c", 3)}}
	if err := s.Save(ctx, "alice", second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := s.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.NextID != 4 {
		t.Errorf("next id = %d, want 4", snap.NextID)
	}
	if len(snap.Transactions) != 1 || snap.Transactions[0].Description != "c" {
		t.Fatalf("unexpected transactions: %+v", snap.Transactions)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, err := core.NewTransaction(core.TransactionParams{
		Amount: decimal.NewFromInt(5), Description: "x", Category: "y",
	})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	if err := s.Save(ctx, "alice", core.Snapshot{NextID: 2, Transactions: []core.Transaction{tx.WithID(1)}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := s.Load(ctx, "bob")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Transactions) != 0 {
		t.Fatalf("bob should have no transactions: %+v", snap.Transactions)
	}
}

func TestRejectsUnsafeUsername(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load(context.Background(), "no spaces"); err == nil {
		t.Fatal("expected username validation error")
	}
}
