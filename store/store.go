// Package store names the full persistence contract the service is wired
// against. Implementations live in store/memory and store/sqlite.
package store

import (
	"context"

	"github.com/dexim234/apevaultteams/attendance"
	"github.com/dexim234/apevaultteams/compensation"
	"github.com/dexim234/apevaultteams/generic"
	"github.com/dexim234/apevaultteams/rating"
)

// Store is every record store plus lifecycle hooks.
type Store interface {
	generic.MemberStore
	compensation.Store
	attendance.StatusStore
	attendance.SlotStore
	rating.SnapshotStore

	// WithTx runs fn atomically. A returned error rolls every write back.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Reset clears all data (for tests and demo scenarios).
	Reset(ctx context.Context) error
	Close() error
}
