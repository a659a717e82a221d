// Package jsonfile persists ledgers as one JSON file per user in a data
// directory. This is the primary backend: a few thousand records per user at
// most, loaded whole into memory and rewritten whole on every mutation.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// Store reads and writes <username>_transactions.json files.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates the data directory if needed and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir, logger: applog.ForComponent(applog.ComponentStorage)}, nil
}

// path derives the per-user file name. Usernames are validated before they
// reach the store, but the check is repeated here because the name is
// embedded into a filesystem path.
func (s *Store) path(username string) (string, error) {
	if err := core.ValidateUsername(username); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, username+"_transactions.json"), nil
}

// Load reads the user's ledger file. A missing file yields an empty
// snapshot. A file that cannot be read or parsed also yields an empty
// snapshot: the error is logged, not returned, and whatever was on disk is
// lost at the next save.
func (s *Store) Load(ctx context.Context, username string) (core.Snapshot, error) {
	empty := core.Snapshot{NextID: 1}

	p, err := s.path(username)
	if err != nil {
		return core.Snapshot{}, err
	}

	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return empty, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed reading ledger file, starting empty",
			"path", p, "error", err)
		return empty, nil
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed parsing ledger file, starting empty",
			"path", p, "error", err)
		return empty, nil
	}
	return snap, nil
}

// Save overwrites the user's ledger file with the full snapshot.
func (s *Store) Save(ctx context.Context, username string, snap core.Snapshot) error {
	p, err := s.path(username)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write ledger file: %w", err)
	}
	s.logger.DebugContext(ctx, "Ledger saved",
		"path", p, "transactions", len(snap.Transactions), "next_id", snap.NextID)
	return nil
}

// decodeSnapshot accepts the current object form and, for files written by
// older versions, a bare JSON array of transactions. For the legacy form the
// id counter is recovered as max(id)+1.
func decodeSnapshot(data []byte) (core.Snapshot, error) {
	var snap core.Snapshot
	objErr := json.Unmarshal(data, &snap)
	if objErr == nil {
		if snap.NextID <= 0 {
			snap.NextID = recoverNextID(snap.Transactions)
		}
		return snap, nil
	}

	var txs []core.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return core.Snapshot{}, objErr
	}
	return core.Snapshot{NextID: recoverNextID(txs), Transactions: txs}, nil
}

func recoverNextID(txs []core.Transaction) int64 {
	next := int64(1)
	for _, tx := range txs {
		if tx.ID >= next {
			next = tx.ID + 1
		}
	}
	return next
}
