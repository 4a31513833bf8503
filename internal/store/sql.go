package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQL is an EntityStore over one table. Columns are the codec's wire names.
type SQL[T any] struct {
	kind Kind[T]
	db   *sql.DB
	d    Dialect
	now  func() time.Time
}

// NewSQL creates a table-backed store for kind.
func NewSQL[T any](db *DB, kind Kind[T]) *SQL[T] {
	return &SQL[T]{kind: kind, db: db.Client, d: db.Dialect, now: time.Now}
}

// Migrate creates the four entity tables when missing.
func Migrate(ctx context.Context, db *DB) error {
	stmts := []string{
		createTable(db.Dialect, StudentKind),
		createTable(db.Dialect, ClassKind),
		createTable(db.Dialect, GradeKind),
		createTable(db.Dialect, AttendanceKind),
	}
	for _, stmt := range stmts {
		if _, err := db.Client.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func createTable[T any](d Dialect, k Kind[T]) string {
	cols := make([]string, 0, len(k.Codec.Fields))
	for _, f := range k.Codec.Fields {
		def := f.Wire + " " + d.Types[f.Type]
		if f.Wire == "Id" {
			def += " PRIMARY KEY"
		} else {
			def += " NOT NULL DEFAULT " + defaultFor(f.Type)
		}
		cols = append(cols, def)
	}
	return "CREATE TABLE IF NOT EXISTS " + k.Table + " (\n\t" + strings.Join(cols, ",\n\t") + "\n)"
}

func defaultFor(t columnType) string {
	if t == textColumn {
		return "''"
	}
	return "0"
}

func (s *SQL[T]) selectQuery() string {
	return "SELECT " + strings.Join(s.kind.Codec.Columns(), ", ") + " FROM " + s.kind.Table
}

func (s *SQL[T]) placeholders(n, offset int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s.d.Placeholder(offset + i + 1)
	}
	return out
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQL[T]) scan(row scanner) (T, error) {
	cols := s.kind.Codec.Columns()
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := row.Scan(ptrs...); err != nil {
		var zero T
		return zero, err
	}
	rec := make(Record, len(cols))
	for i, c := range cols {
		rec[c] = vals[i]
	}
	return s.kind.Codec.Decode(rec)
}

// List returns all rows ordered by id.
func (s *SQL[T]) List(ctx context.Context) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, s.selectQuery()+" ORDER BY Id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Get returns the row with id.
func (s *SQL[T]) Get(ctx context.Context, id int) (T, error) {
	return s.get(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQL[T]) get(ctx context.Context, q querier, id int) (T, error) {
	row := q.QueryRowContext(ctx, s.selectQuery()+" WHERE Id = "+s.d.Placeholder(1), id)
	v, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return v, s.kind.notFound(id)
	}
	return v, err
}

// Create inserts draft with id = MAX(id)+1 inside a transaction.
func (s *SQL[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	out, err := s.kind.prepare(draft, nil, s.now())
	if err != nil {
		return zero, err
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(Id), 0) + 1 FROM "+s.kind.Table).Scan(&next); err != nil {
			return err
		}
		s.kind.SetID(&out, next)
		cols, args := s.values(out)
		stmt := "INSERT INTO " + s.kind.Table + " (" + strings.Join(cols, ", ") + ") VALUES (" +
			strings.Join(s.placeholders(len(cols), 0), ", ") + ")"
		_, err := tx.ExecContext(ctx, stmt, args...)
		return err
	})
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", s.kind.Name, err)
	}
	return out, nil
}

// Update rewrites every column of id.
func (s *SQL[T]) Update(ctx context.Context, id int, draft T) (T, error) {
	var out T
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		prev, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		out, err = s.kind.prepare(draft, &prev, s.now())
		if err != nil {
			return err
		}
		s.kind.SetID(&out, id)
		cols, args := s.values(out)
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = c + " = " + s.d.Placeholder(i+1)
		}
		args = append(args, id)
		stmt := "UPDATE " + s.kind.Table + " SET " + strings.Join(sets, ", ") + " WHERE Id = " + s.d.Placeholder(len(args))
		_, err = tx.ExecContext(ctx, stmt, args...)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Delete removes the row with id.
func (s *SQL[T]) Delete(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+s.kind.Table+" WHERE Id = "+s.d.Placeholder(1), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, s.kind.notFound(id)
	}
	return true, nil
}

// CreateBatch inserts drafts one by one and reports per-item outcomes.
func (s *SQL[T]) CreateBatch(ctx context.Context, drafts []T) (BatchResult[T], error) {
	return runBatch(ctx, s.kind, drafts, s.Create)
}

// UpdateBatch updates items one by one by their own id.
func (s *SQL[T]) UpdateBatch(ctx context.Context, items []T) (BatchResult[T], error) {
	return runBatch(ctx, s.kind, items, func(ctx context.Context, it T) (T, error) {
		return s.Update(ctx, s.kind.ID(it), it)
	})
}

// values encodes v in column order. Id comes first.
func (s *SQL[T]) values(v T) ([]string, []any) {
	rec := s.kind.Codec.Encode(v)
	cols := s.kind.Codec.Columns()
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = rec[c]
	}
	return cols, args
}

func (s *SQL[T]) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
