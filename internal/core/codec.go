package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// transactionRecord is the flat on-disk shape of a transaction. Only id may
// be null. Currency and room are defaulted on load so files written before
// those fields existed still parse.
type transactionRecord struct {
	ID          *int64          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	IsIncome    bool            `json:"is_income"`
	Date        string          `json:"date"`
	Currency    string          `json:"currency"`
	Room        string          `json:"room"`
}

// MarshalJSON writes the flat record form. An unassigned id serializes as
// null, matching ledgers written before insertion assigned one.
func (t Transaction) MarshalJSON() ([]byte, error) {
	rec := transactionRecord{
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		IsIncome:    t.IsIncome,
		Date:        t.Date,
		Currency:    string(t.Currency),
		Room:        t.Room,
	}
	if t.ID != 0 {
		id := t.ID
		rec.ID = &id
	}
	return json.Marshal(rec)
}

// UnmarshalJSON reconstructs the transaction through NewTransaction so every
// loaded record passes the same validation and normalization as a fresh one,
// then reattaches the stored id if present.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var rec transactionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	tx, err := NewTransaction(TransactionParams{
		Amount:      rec.Amount,
		Description: rec.Description,
		Category:    rec.Category,
		IsIncome:    rec.IsIncome,
		Date:        rec.Date,
		Currency:    rec.Currency,
		Room:        rec.Room,
	})
	if err != nil {
		return err
	}
	if rec.ID != nil && *rec.ID != 0 {
		tx.ID = *rec.ID
	}
	*t = tx
	return nil
}

// Snapshot is the full persisted state of one user's ledger: the strictly
// monotonic id counter and the ordered transaction sequence.
type Snapshot struct {
	NextID       int64         `json:"next_id"`
	Transactions []Transaction `json:"transactions"`
}
