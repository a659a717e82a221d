package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewTransactionValidation(t *testing.T) {
	cases := []struct {
		name string
		p    TransactionParams
		err  error
	}{
		{"valid", TransactionParams{Amount: dec("10"), Description: "coffee", Category: "food"}, nil},
		{"zero amount", TransactionParams{Amount: dec("0"), Description: "x", Category: "y"}, ErrInvalidAmount},
		{"negative amount", TransactionParams{Amount: dec("-5"), Description: "x", Category: "y"}, ErrInvalidAmount},
		{"empty description", TransactionParams{Amount: dec("1"), Description: "   ", Category: "y"}, ErrEmptyDescription},
		{"empty category", TransactionParams{Amount: dec("1"), Description: "x", Category: ""}, ErrEmptyCategory},
		{"blank room", TransactionParams{Amount: dec("1"), Description: "x", Category: "y", Room: "  "}, ErrEmptyRoom},
		{"bad currency", TransactionParams{Amount: dec("1"), Description: "x", Category: "y", Currency: "EUR"}, ErrInvalidCurrency},
		{"bad date", TransactionParams{Amount: dec("1"), Description: "x", Category: "y", Date: "not-a-date"}, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTransaction(tc.p)
			if tc.err == nil && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if tc.err != nil && !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestNewTransactionDefaults(t *testing.T) {
	tx, err := NewTransaction(TransactionParams{Amount: dec("12.50"), Description: " lunch ", Category: "food"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Description != "lunch" {
		t.Errorf("description not trimmed: %q", tx.Description)
	}
	if tx.Category != "Food" {
		t.Errorf("category not title-cased: %q", tx.Category)
	}
	if tx.Currency != USD {
		t.Errorf("currency not defaulted: %q", tx.Currency)
	}
	if tx.Room != DefaultRoom {
		t.Errorf("room not defaulted: %q", tx.Room)
	}
	if tx.ID != 0 {
		t.Errorf("id assigned at construction: %d", tx.ID)
	}
	if _, err := ParseDate(tx.Date); err != nil {
		t.Errorf("defaulted date does not parse: %q", tx.Date)
	}
}

func TestNewTransactionNormalization(t *testing.T) {
	tx, err := NewTransaction(TransactionParams{
		Amount:      dec("1"),
		Description: "rent",
		Category:    "monthly bills",
		Currency:    "inr",
		Room:        "shared flat",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Category != "Monthly Bills" {
		t.Errorf("category = %q", tx.Category)
	}
	if tx.Room != "Shared Flat" {
		t.Errorf("room = %q", tx.Room)
	}
	if tx.Currency != INR {
		t.Errorf("currency = %q", tx.Currency)
	}
}

func TestParseCurrency(t *testing.T) {
	for _, s := range []string{"usd", "USD", " inr "} {
		if _, err := ParseCurrency(s); err != nil {
			t.Errorf("ParseCurrency(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"", "EUR", "GBP", "US"} {
		if _, err := ParseCurrency(s); err == nil {
			t.Errorf("ParseCurrency(%q) expected error", s)
		}
	}
}

func TestParseDateLayouts(t *testing.T) {
	inputs := []string{
		"2025-03-01T10:30:00Z",
		"2025-03-01T10:30:00+05:30",
		"2025-03-01T10:30:00.123456",
		"2025-03-01T10:30:00",
		"2025-03-01",
	}
	for _, s := range inputs {
		if _, err := ParseDate(s); err != nil {
			t.Errorf("ParseDate(%q) = %v", s, err)
		}
	}
}

func TestTransactionJSONRoundTrip(t *testing.T) {
	tx, err := NewTransaction(TransactionParams{
		Amount:      dec("99.99"),
		Description: "train ticket",
		Category:    "transport",
		IsIncome:    false,
		Date:        time.Now().Format(time.RFC3339),
		Currency:    "INR",
		Room:        "travel",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tx = tx.WithID(7)

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Amounts must serialize as JSON numbers, not quoted strings.
	if strings.Contains(string(data), `"99.99"`) {
		t.Fatalf("amount serialized as string: %s", data)
	}

	var got Transaction
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 7 {
		t.Errorf("id not preserved: %d", got.ID)
	}
	if !got.Amount.Equal(tx.Amount) {
		t.Errorf("amount = %s, want %s", got.Amount, tx.Amount)
	}
	if got.Description != tx.Description || got.Category != tx.Category ||
		got.IsIncome != tx.IsIncome || got.Date != tx.Date ||
		got.Currency != tx.Currency || got.Room != tx.Room {
		t.Errorf("round trip mismatch: %+v != %+v", got, tx)
	}
}

func TestTransactionJSONUnassignedID(t *testing.T) {
	tx, err := NewTransaction(TransactionParams{Amount: dec("5"), Description: "x", Category: "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"id":null`) {
		t.Fatalf("unassigned id should serialize as null: %s", data)
	}
	var got Transaction
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 0 {
		t.Errorf("id = %d, want unassigned", got.ID)
	}
}

func TestTransactionJSONLegacyDefaults(t *testing.T) {
	// Records written before currency and room existed must still load.
	legacy := `{"id": 3, "amount": 40, "description": "groceries", "category": "Food", "is_income": false, "date": "2024-05-01T12:00:00"}`
	var got Transaction
	if err := json.Unmarshal([]byte(legacy), &got); err != nil {
		t.Fatalf("unmarshal legacy record: %v", err)
	}
	if got.Currency != USD {
		t.Errorf("currency = %q, want USD default", got.Currency)
	}
	if got.Room != DefaultRoom {
		t.Errorf("room = %q, want %q", got.Room, DefaultRoom)
	}
	if got.ID != 3 {
		t.Errorf("id = %d", got.ID)
	}
}

func TestValidateUsername(t *testing.T) {
	for _, u := range []string{"alice", "bob_42", "a-b-c"} {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v", u, err)
		}
	}
	for _, u := range []string{"", "ab", "../etc", "a b", "user/name", strings.Repeat("x", 33)} {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("ValidateUsername(%q) expected error", u)
		}
	}
}
