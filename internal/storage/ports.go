// Package storage defines the persistence port shared by every ledger
// backend. Ledgers are persisted as whole snapshots: every mutation writes
// the full transaction sequence plus the id counter, and the last successful
// write wins.
package storage

import (
	"context"

	"fintrack/internal/core"
)

// Store persists one snapshot per username.
//
// Load must return an empty snapshot (NextID 1) when no data exists for the
// user, and must also fall back to an empty snapshot when the stored data is
// unreadable or malformed, logging the problem instead of returning it. That
// fail-open policy trades durability for availability: whatever was on disk
// is discarded and overwritten by the next save.
type Store interface {
	Load(ctx context.Context, username string) (core.Snapshot, error)
	Save(ctx context.Context, username string, snap core.Snapshot) error
}
