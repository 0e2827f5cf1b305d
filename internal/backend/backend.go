// Package backend selects and constructs the persistence layer. All four
// variants satisfy the same store interface, so the rest of the service never
// knows which one it is talking to.
package backend

import (
	"context"
	"fmt"

	"dairyledger/internal/store"
)

// Type identifies a persistence backend.
type Type string

const (
	MemoryBackend Type = "memory"
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
	RemoteBackend Type = "remote"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, FileBackend, SQLiteBackend, RemoteBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{MemoryBackend, FileBackend, SQLiteBackend, RemoteBackend}
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the per-kind stores and an optional cleanup function.
type Result struct {
	Expenses store.Store
	Income   store.Store
	Cleanup  CleanupFunc
}

// Config holds what each backend variant needs to start.
type Config struct {
	Type Type

	// File backend
	DataDirectory string

	// SQLite backend
	SQLiteDBPath string

	// Remote backend
	RemoteBaseURL   string
	RemoteAccessKey string
}

// Validate checks that the selected backend has the settings it needs.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case FileBackend:
		if c.DataDirectory == "" {
			return fmt.Errorf("data directory is required for file backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("database path is required for sqlite backend")
		}
	case RemoteBackend:
		if c.RemoteBaseURL == "" {
			return fmt.Errorf("remote base URL is required for remote backend")
		}
	}

	return nil
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}
