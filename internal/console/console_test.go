package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/storage/jsonfile"
)

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	store, err := jsonfile.New(t.TempDir())
	if err != nil {
		t.Fatalf("jsonfile.New() error = %v", err)
	}
	l, err := ledger.NewService(store).Open(context.Background(), "local")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return l
}

func run(t *testing.T, l *ledger.Ledger, script string) string {
	t.Helper()
	var out bytes.Buffer
	New(l, strings.NewReader(script), &out).Run(context.Background())
	return out.String()
}

func TestAddTransactionThroughMenu(t *testing.T) {
	l := newTestLedger(t)

	// Menu 1: amount, description, category, income?, currency, room.
	script := strings.Join([]string{
		"1",
		"42.50",
		"Groceries",
		"food",
		"n",
		"USD",
		"",
		"5",
	}, "\n") + "\n"

	output := run(t, l, script)

	if !strings.Contains(output, "Expense of $42.50 added successfully!") {
		t.Errorf("missing confirmation, got:\n%s", output)
	}
	if l.Len() != 1 {
		t.Fatalf("ledger has %d transactions, want 1", l.Len())
	}
	tx, _ := l.Get(1)
	if tx.Category != "Food" || tx.Room != "Personal" {
		t.Errorf("stored tx = %+v, want normalized category Food and default room", tx)
	}
}

func TestAddReasksUntilInputValid(t *testing.T) {
	l := newTestLedger(t)

	script := strings.Join([]string{
		"1",
		"abc",     // not a number
		"0",       // below minimum
		"10",      // accepted
		"",        // empty description rejected
		"Taxi",    // accepted
		"travel",  // category
		"maybe",   // not y/n
		"y",       // accepted
		"XXX",     // bad currency
		"inr",     // accepted, case-insensitive
		"Travel",  // room
		"5",
	}, "\n") + "\n"

	output := run(t, l, script)

	for _, want := range []string{
		"Please enter a valid number.",
		"Please enter a value >= 0.01",
		"Please enter at least 1 character(s).",
		"Please enter 'y' for yes or 'n' for no.",
		"Please enter USD or INR.",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("missing re-ask message %q", want)
		}
	}

	tx, found := l.Get(1)
	if !found {
		t.Fatal("transaction was not added")
	}
	if !tx.IsIncome || string(tx.Currency) != "INR" || tx.Room != "Travel" {
		t.Errorf("stored tx = %+v, want INR income in Travel", tx)
	}
}

func TestViewListsNewestFirst(t *testing.T) {
	l := newTestLedger(t)

	for _, seed := range []struct {
		description string
		date        string
	}{
		{"First", "2024-01-01T10:00:00Z"},
		{"Second", "2024-06-01T10:00:00Z"},
	} {
		tx, err := core.NewTransaction(core.TransactionParams{
			Amount:      decimal.NewFromInt(10),
			Description: seed.description,
			Category:    "misc",
			Date:        seed.date,
		})
		if err != nil {
			t.Fatalf("NewTransaction() error = %v", err)
		}
		l.Add(context.Background(), tx)
	}

	output := run(t, l, "2\n5\n")

	if !strings.Contains(output, "Transaction History (2 transactions)") {
		t.Errorf("missing history header, got:\n%s", output)
	}
	first := strings.Index(output, "First")
	second := strings.Index(output, "Second")
	if first < 0 || second < 0 {
		t.Fatal("listing missing transactions")
	}
	if second > first {
		t.Error("listing is not newest first")
	}
}

func TestSummaryAndReport(t *testing.T) {
	l := newTestLedger(t)

	script := strings.Join([]string{
		"1", "100", "Salary", "salary", "y", "USD", "",
		"1", "30", "Groceries", "food", "n", "USD", "",
		"1", "10", "Snacks", "food", "n", "USD", "",
		"3",
		"4",
		"5",
	}, "\n") + "\n"

	output := run(t, l, script)

	if !strings.Contains(output, "USD  Income: $100.00  Expenses: $40.00  Balance: $60.00") {
		t.Errorf("summary totals wrong, got:\n%s", output)
	}
	if !strings.Contains(output, "Total Transactions: 3") {
		t.Error("report missing transaction count")
	}
	if !strings.Contains(output, "Income Transactions: 1") {
		t.Error("report missing income count")
	}
	if !strings.Contains(output, "USD  Savings Rate: 60.0%") {
		t.Errorf("report missing savings rate, got:\n%s", output)
	}
	if !strings.Contains(output, "1. Food: 40.00 (100.0%)") {
		t.Errorf("report missing top category, got:\n%s", output)
	}
}

func TestInvalidMenuChoice(t *testing.T) {
	l := newTestLedger(t)
	output := run(t, l, "9\n5\n")
	if !strings.Contains(output, "Invalid choice. Please enter 1-5.") {
		t.Error("invalid choice not reported")
	}
}

func TestEmptyLedgerMessages(t *testing.T) {
	l := newTestLedger(t)
	output := run(t, l, "2\n4\n5\n")
	if !strings.Contains(output, "No transactions found.") {
		t.Error("empty view message missing")
	}
	if !strings.Contains(output, "No data available for report.") {
		t.Error("empty report message missing")
	}
}
