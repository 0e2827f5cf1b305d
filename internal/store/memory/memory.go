// Package memory implements the record store over a process-local slice.
// Contents are lost on restart. The store is constructor-injected rather
// than a process-wide singleton, and a mutex serializes the read-mutate
// sequence so interleaved requests cannot lose updates.
package memory

import (
	"context"
	"sync"
	"time"

	"dairyledger/internal/core"
	"dairyledger/internal/store"
)

type Store struct {
	mu    sync.Mutex
	items []core.Record
	now   func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates a store holding a copy of the seed records.
func New(seed []core.Record) *Store {
	return &Store{items: core.Clone(seed), now: time.Now}
}

func (s *Store) GetAll(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := core.Clone(s.items)
	core.SortByDateDesc(out)
	return out, nil
}

func (s *Store) GetByID(_ context.Context, id string) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := core.IndexByID(s.items, id); i >= 0 {
		return s.items[i], nil
	}
	return core.Record{}, store.ErrNotFound
}

func (s *Store) Create(_ context.Context, d core.Draft) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := core.NewRecord(d, s.now())
	s.items = append(s.items, r)
	return r, nil
}

func (s *Store) Update(_ context.Context, id string, p core.Patch) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := core.IndexByID(s.items, id)
	if i < 0 {
		return core.Record{}, store.ErrNotFound
	}
	p.Apply(&s.items[i], s.now())
	return s.items[i], nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := core.IndexByID(s.items, id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) GetByCategory(_ context.Context, c core.Category) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := core.FilterByCategory(s.items, c)
	core.SortByDateDesc(out)
	return out, nil
}

func (s *Store) GetByDateRange(_ context.Context, start, end string) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := core.FilterByDateRange(s.items, start, end)
	core.SortByDateDesc(out)
	return out, nil
}

func (s *Store) Replace(_ context.Context, records []core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = core.Clone(records)
	return nil
}
