// Package backend selects and constructs the ledger storage backend from
// configuration.
package backend

import (
	"fmt"
	"log/slog"

	"fintrack/internal/config"
	"fintrack/internal/storage"
	"fintrack/internal/storage/jsonfile"
	"fintrack/internal/storage/sqlite"
)

// CleanupFunc releases backend resources. Open never returns a nil cleanup,
// so callers can defer it unconditionally.
type CleanupFunc func() error

// Open constructs the Store named by cfg.DataBackend.
func Open(cfg *config.Config, logger *slog.Logger) (storage.Store, CleanupFunc, error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		store, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return store, store.Close, nil

	case config.BackendJSON:
		store, err := jsonfile.New(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize json backend: %w", err)
		}
		logger.Info("Initialized json backend", "data_dir", cfg.DataDir)
		return store, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported data backend %q", cfg.DataBackend)
	}
}
