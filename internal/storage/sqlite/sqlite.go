// Package sqlite persists ledger snapshots in a SQLite database. It keeps
// the same whole-snapshot semantics as the jsonfile backend: a save replaces
// every row for the user inside one database transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"
	applog "fintrack/internal/log"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (creating if needed) the database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, logger: applog.ForComponent(applog.ComponentStorage)}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the user's rows in insertion order. Rows that no longer pass
// validation make the whole ledger fall back to empty, same as an
// unparseable JSON file.
func (s *Store) Load(ctx context.Context, username string) (core.Snapshot, error) {
	empty := core.Snapshot{NextID: 1}

	if err := core.ValidateUsername(username); err != nil {
		return core.Snapshot{}, err
	}

	var nextID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT next_id FROM ledger_counters WHERE username = ?`, username).Scan(&nextID)
	switch {
	case err == sql.ErrNoRows:
		return empty, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed reading ledger counter, starting empty",
			applog.FieldUsername, username, applog.FieldError, err)
		return empty, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, description, category, is_income, date, currency, room
		FROM transactions WHERE username = ? ORDER BY pos`, username)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed reading ledger rows, starting empty",
			applog.FieldUsername, username, applog.FieldError, err)
		return empty, nil
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			id       int64
			amount   string
			desc     string
			category string
			isIncome bool
			date     string
			currency string
			room     string
		)
		if err := rows.Scan(&id, &amount, &desc, &category, &isIncome, &date, &currency, &room); err != nil {
			s.logger.ErrorContext(ctx, "Failed scanning ledger row, starting empty",
				applog.FieldUsername, username, applog.FieldError, err)
			return empty, nil
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			s.logger.ErrorContext(ctx, "Malformed amount in ledger row, starting empty",
				applog.FieldUsername, username, applog.FieldTxID, id, applog.FieldError, err)
			return empty, nil
		}
		tx, err := core.NewTransaction(core.TransactionParams{
			Amount:      amt,
			Description: desc,
			Category:    category,
			IsIncome:    isIncome,
			Date:        date,
			Currency:    currency,
			Room:        room,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "Invalid ledger row, starting empty",
				applog.FieldUsername, username, applog.FieldTxID, id, applog.FieldError, err)
			return empty, nil
		}
		txs = append(txs, tx.WithID(id))
	}
	if err := rows.Err(); err != nil {
		s.logger.ErrorContext(ctx, "Failed iterating ledger rows, starting empty",
			applog.FieldUsername, username, applog.FieldError, err)
		return empty, nil
	}

	return core.Snapshot{NextID: nextID, Transactions: txs}, nil
}

// Save replaces the user's rows and counter atomically.
func (s *Store) Save(ctx context.Context, username string, snap core.Snapshot) error {
	if err := core.ValidateUsername(username); err != nil {
		return err
	}

	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer dbtx.Rollback()

	if _, err := dbtx.ExecContext(ctx,
		`DELETE FROM transactions WHERE username = ?`, username); err != nil {
		return fmt.Errorf("clear ledger rows: %w", err)
	}

	for pos, tx := range snap.Transactions {
		if _, err := dbtx.ExecContext(ctx, `
			INSERT INTO transactions
				(username, id, pos, amount, description, category, is_income, date, currency, room)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			username, tx.ID, pos, tx.Amount.String(), tx.Description, tx.Category,
			tx.IsIncome, tx.Date, string(tx.Currency), tx.Room); err != nil {
			return fmt.Errorf("insert ledger row %d: %w", tx.ID, err)
		}
	}

	if _, err := dbtx.ExecContext(ctx, `
		INSERT INTO ledger_counters (username, next_id) VALUES (?, ?)
		ON CONFLICT (username) DO UPDATE SET next_id = excluded.next_id`,
		username, snap.NextID); err != nil {
		return fmt.Errorf("update ledger counter: %w", err)
	}

	return dbtx.Commit()
}
