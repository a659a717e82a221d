package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/storage/jsonfile"
)

type fakeAppender struct {
	appended []core.Transaction
	err      error
}

func (f *fakeAppender) AppendTransaction(_ context.Context, _ string, tx core.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, tx)
	return nil
}

func seedStore(t *testing.T) (*jsonfile.Store, core.Transaction) {
	t.Helper()
	store, err := jsonfile.New(t.TempDir())
	if err != nil {
		t.Fatalf("jsonfile.New() error = %v", err)
	}

	l, err := ledger.NewService(store).Open(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	tx, err := core.NewTransaction(core.TransactionParams{
		Amount:      decimal.NewFromInt(30),
		Description: "Groceries",
		Category:    "food",
	})
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	return store, l.Add(context.Background(), tx)
}

func TestMirrorAppendsCreatedTransaction(t *testing.T) {
	store, tx := seedStore(t)
	appender := &fakeAppender{}
	m := NewMirror(store, appender)

	event := &amqp.TransactionEvent{Username: "alice", ID: tx.ID, Action: "created"}
	if err := m.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if len(appender.appended) != 1 {
		t.Fatalf("appended %d rows, want 1", len(appender.appended))
	}
	if appender.appended[0].Description != "Groceries" {
		t.Errorf("appended wrong transaction: %+v", appender.appended[0])
	}
}

func TestMirrorSkipsUpdateAndDelete(t *testing.T) {
	store, tx := seedStore(t)
	appender := &fakeAppender{}
	m := NewMirror(store, appender)

	for _, action := range []string{"updated", "deleted"} {
		event := &amqp.TransactionEvent{Username: "alice", ID: tx.ID, Action: action}
		if err := m.HandleEvent(context.Background(), event); err != nil {
			t.Fatalf("HandleEvent(%s) error = %v", action, err)
		}
	}
	if len(appender.appended) != 0 {
		t.Errorf("appended %d rows for non-created events, want 0", len(appender.appended))
	}
}

func TestMirrorIgnoresMissingTransaction(t *testing.T) {
	store, _ := seedStore(t)
	appender := &fakeAppender{}
	m := NewMirror(store, appender)

	event := &amqp.TransactionEvent{Username: "alice", ID: 999, Action: "created"}
	if err := m.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(appender.appended) != 0 {
		t.Error("appended a row for a missing transaction")
	}
}

func TestMirrorPropagatesAppendError(t *testing.T) {
	store, tx := seedStore(t)
	appender := &fakeAppender{err: errors.New("quota exceeded")}
	m := NewMirror(store, appender)

	event := &amqp.TransactionEvent{Username: "alice", ID: tx.ID, Action: "created"}
	if err := m.HandleEvent(context.Background(), event); err == nil {
		t.Error("HandleEvent() should fail when the append fails")
	}
}
