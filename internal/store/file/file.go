// Package file implements the record store over a whole-collection JSON
// file. Every mutation reads the file, changes the slice in memory, and
// rewrites the file, so each write is O(n) in collection size. A mutex
// serializes that sequence within the process; nothing guards against a
// second process writing the same file.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"dairyledger/internal/core"
	"dairyledger/internal/store"
)

type Store struct {
	mu   sync.Mutex
	path string
	seed []core.Record
	now  func() time.Time
}

var (
	_ store.Store     = (*Store)(nil)
	_ store.Backupper = (*Store)(nil)
)

// New creates a store over <dir>/<resource>.json, creating the directory and
// seeding the file when absent. The expense ledger seeds with sample data,
// income starts empty.
func New(dir string, kind core.Kind) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	var seed []core.Record
	if kind == core.KindExpense {
		seed = core.SeedExpenses()
	}
	s := &Store{
		path: filepath.Join(dir, kind.Resource()+".json"),
		seed: seed,
		now:  time.Now,
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.save(s.seed); err != nil {
			return nil, fmt.Errorf("seed %s: %w", s.path, err)
		}
	}
	return s, nil
}

// load reads the whole collection. Read and parse failures fall back to the
// seed list and are only logged; the caller cannot distinguish a corrupt
// file from a fresh one.
func (s *Store) load() []core.Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed reading record file, falling back to seed data",
				"path", s.path, "error", err)
		}
		return core.Clone(s.seed)
	}
	var records []core.Record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("Failed parsing record file, falling back to seed data",
			"path", s.path, "error", err)
		return core.Clone(s.seed)
	}
	return records
}

func (s *Store) save(records []core.Record) error {
	if records == nil {
		records = []core.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) GetAll(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.load()
	core.SortByDateDesc(records)
	return records, nil
}

func (s *Store) GetByID(_ context.Context, id string) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.load()
	if i := core.IndexByID(records, id); i >= 0 {
		return records[i], nil
	}
	return core.Record{}, store.ErrNotFound
}

func (s *Store) Create(_ context.Context, d core.Draft) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.load()
	r := core.NewRecord(d, s.now())
	records = append(records, r)
	if err := s.save(records); err != nil {
		return core.Record{}, err
	}
	return r, nil
}

func (s *Store) Update(_ context.Context, id string, p core.Patch) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.load()
	i := core.IndexByID(records, id)
	if i < 0 {
		return core.Record{}, store.ErrNotFound
	}
	p.Apply(&records[i], s.now())
	if err := s.save(records); err != nil {
		return core.Record{}, err
	}
	return records[i], nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.load()
	i := core.IndexByID(records, id)
	if i < 0 {
		return store.ErrNotFound
	}
	records = append(records[:i], records[i+1:]...)
	return s.save(records)
}

func (s *Store) GetByCategory(_ context.Context, c core.Category) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := core.FilterByCategory(s.load(), c)
	core.SortByDateDesc(out)
	return out, nil
}

func (s *Store) GetByDateRange(_ context.Context, start, end string) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := core.FilterByDateRange(s.load(), start, end)
	core.SortByDateDesc(out)
	return out, nil
}

func (s *Store) Replace(_ context.Context, records []core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(core.Clone(records))
}

// backupPrefix and extension for timestamped copies alongside the data file.
const backupExt = ".json"

func (s *Store) backupPrefix() string {
	base := strings.TrimSuffix(filepath.Base(s.path), backupExt)
	return base + "-backup-"
}

// Backup copies the current collection file to a timestamped sibling and
// returns its path.
func (s *Store) Backup(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := strings.NewReplacer(":", "-", ".", "-").Replace(s.now().UTC().Format(time.RFC3339))
	dst := filepath.Join(filepath.Dir(s.path), s.backupPrefix()+ts+backupExt)
	if err := copyFile(s.path, dst); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	return dst, nil
}

// ListBackups returns backup file paths, newest first.
func (s *Store) ListBackups(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(filepath.Dir(s.path))
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, s.backupPrefix()) && strings.HasSuffix(name, backupExt) {
			out = append(out, filepath.Join(filepath.Dir(s.path), name))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

// Restore overwrites the collection file with one of the store's own
// backups. The argument may be a full path as returned by ListBackups or a
// bare file name; anything resolving outside the data directory is rejected
// with ErrInvalidBackup, since the request value comes from API clients.
func (s *Store) Restore(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	resolved, err := s.backupPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(resolved); err != nil {
		return fmt.Errorf("backup file: %w", err)
	}
	if err := copyFile(resolved, s.path); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	return nil
}

// backupPath resolves a restore request against the data directory, accepting
// only file names that Backup produces for this collection.
func (s *Store) backupPath(requested string) (string, error) {
	name := filepath.Base(requested)
	if !strings.HasPrefix(name, s.backupPrefix()) || !strings.HasSuffix(name, backupExt) {
		return "", fmt.Errorf("%q: %w", requested, store.ErrInvalidBackup)
	}
	resolved := filepath.Join(filepath.Dir(s.path), name)
	if requested != name && filepath.Clean(requested) != resolved {
		return "", fmt.Errorf("%q: %w", requested, store.ErrInvalidBackup)
	}
	return resolved, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
