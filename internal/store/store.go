// Package store defines the persistence contract shared by every record
// backend. The four implementations (memory, file, sqlite, remote) are
// mutually exclusive deployment choices selected by the backend factory,
// not replicas of one another.
package store

import (
	"context"
	"errors"

	"dairyledger/internal/core"
)

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("record not found")

	// ErrUnsupported is returned for operations a backend cannot perform,
	// such as whole-collection replacement through the remote delegate.
	ErrUnsupported = errors.New("operation not supported by this backend")

	// ErrInvalidBackup is returned when a restore request names a file that
	// is not one of the store's own backups.
	ErrInvalidBackup = errors.New("invalid backup reference")
)

// Store is the CRUD contract implemented identically by all backends.
type Store interface {
	// GetAll returns every record ordered by date descending. Records
	// sharing a date keep a stable relative order.
	GetAll(ctx context.Context) ([]core.Record, error)

	// GetByID returns the record with the given id or ErrNotFound.
	GetByID(ctx context.Context, id string) (core.Record, error)

	// Create stamps the draft with an id and timestamps, persists it, and
	// returns the new record.
	Create(ctx context.Context, d core.Draft) (core.Record, error)

	// Update shallow-merges the patch over the existing record, refreshes
	// updatedAt, persists, and returns the result, or ErrNotFound.
	Update(ctx context.Context, id string, p core.Patch) (core.Record, error)

	// Delete removes the record with the given id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// GetByCategory returns the records matching the category.
	GetByCategory(ctx context.Context, c core.Category) ([]core.Record, error)

	// GetByDateRange returns records with start <= date <= end, compared
	// lexicographically on the YYYY-MM-DD date string.
	GetByDateRange(ctx context.Context, start, end string) ([]core.Record, error)

	// Replace swaps the entire collection for the given records. Used by
	// spreadsheet upload and JSON restore; there is no merge.
	Replace(ctx context.Context, records []core.Record) error
}

// Backupper is implemented by backends that keep timestamped backup copies
// of their collection (the flat-file variant).
type Backupper interface {
	Backup(ctx context.Context) (path string, err error)
	ListBackups(ctx context.Context) ([]string, error)
	Restore(ctx context.Context, path string) error
}
