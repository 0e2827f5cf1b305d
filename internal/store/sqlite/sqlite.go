// Package sqlite implements the record store over a SQLite database. Unlike
// the file variant, mutations are per-record statements rather than a full
// collection rewrite, and backend errors are surfaced to the caller instead
// of swallowed.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dairyledger/internal/core"
	"dairyledger/internal/store"

	_ "modernc.org/sqlite"
)

// Repository owns the database handle shared by the per-kind stores.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the database at dbPath and runs
// the embedded migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Records returns the store view over one ledger kind.
func (r *Repository) Records(kind core.Kind) *Store {
	return &Store{db: r.db, kind: kind, now: time.Now}
}

type Store struct {
	db   *sql.DB
	kind core.Kind
	now  func() time.Time
}

var _ store.Store = (*Store)(nil)

const recordColumns = `id, date, category, description, amount, quantity,
	unit, supplier, customer, payment_method, notes, created_at, updated_at`

func scanRecord(row interface{ Scan(dest ...any) error }) (core.Record, error) {
	var r core.Record
	err := row.Scan(&r.ID, &r.Date, &r.Category, &r.Description, &r.Amount,
		&r.Quantity, &r.Unit, &r.Supplier, &r.Customer, &r.PaymentMethod,
		&r.Notes, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *Store) queryRecords(ctx context.Context, where string, args ...any) ([]core.Record, error) {
	q := `SELECT ` + recordColumns + ` FROM records WHERE kind = ?` + where +
		` ORDER BY date DESC, created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, append([]any{string(s.kind)}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make([]core.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (s *Store) GetAll(ctx context.Context) ([]core.Record, error) {
	return s.queryRecords(ctx, "")
}

func (s *Store) GetByID(ctx context.Context, id string) (core.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE kind = ? AND id = ?`,
		string(s.kind), id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, store.ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return r, nil
}

// upsert writes one record keyed by (kind, id).
func (s *Store) upsert(ctx context.Context, r core.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (kind, `+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET
			date = excluded.date,
			category = excluded.category,
			description = excluded.description,
			amount = excluded.amount,
			quantity = excluded.quantity,
			unit = excluded.unit,
			supplier = excluded.supplier,
			customer = excluded.customer,
			payment_method = excluded.payment_method,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		string(s.kind), r.ID, r.Date, string(r.Category), r.Description,
		r.Amount, r.Quantity, r.Unit, r.Supplier, r.Customer,
		string(r.PaymentMethod), r.Notes, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, d core.Draft) (core.Record, error) {
	r := core.NewRecord(d, s.now())
	if err := s.upsert(ctx, r); err != nil {
		return core.Record{}, err
	}
	return r, nil
}

func (s *Store) Update(ctx context.Context, id string, p core.Patch) (core.Record, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return core.Record{}, err
	}
	p.Apply(&r, s.now())
	if err := s.upsert(ctx, r); err != nil {
		return core.Record{}, err
	}
	return r, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE kind = ? AND id = ?`, string(s.kind), id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetByCategory(ctx context.Context, c core.Category) ([]core.Record, error) {
	return s.queryRecords(ctx, ` AND category = ?`, string(c))
}

func (s *Store) GetByDateRange(ctx context.Context, start, end string) ([]core.Record, error) {
	return s.queryRecords(ctx, ` AND date >= ? AND date <= ?`, start, end)
}

func (s *Store) Replace(ctx context.Context, records []core.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE kind = ?`, string(s.kind)); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	for _, r := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO records (kind, `+recordColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(s.kind), r.ID, r.Date, string(r.Category), r.Description,
			r.Amount, r.Quantity, r.Unit, r.Supplier, r.Customer,
			string(r.PaymentMethod), r.Notes, r.CreatedAt, r.UpdatedAt); err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
