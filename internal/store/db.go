package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect captures the driver differences the SQL store cares about.
type Dialect struct {
	Name   string
	Driver string
	Types  map[columnType]string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
}

var (
	// Postgres talks to Postgres through pgx's database/sql driver.
	Postgres = Dialect{
		Name:        "postgres",
		Driver:      "pgx",
		Types:       map[columnType]string{intColumn: "BIGINT", floatColumn: "DOUBLE PRECISION", textColumn: "TEXT"},
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}
	// SQLite uses mattn/go-sqlite3.
	SQLite = Dialect{
		Name:        "sqlite",
		Driver:      "sqlite3",
		Types:       map[columnType]string{intColumn: "INTEGER", floatColumn: "REAL", textColumn: "TEXT"},
		Placeholder: func(int) string { return "?" },
	}
)

// DB wraps sql.DB together with the dialect it was opened with.
type DB struct {
	Client  *sql.DB
	Dialect Dialect
}

// NewDB opens a Postgres connection pool with sane defaults.
func NewDB(connString string) (*DB, error) {
	return open(Postgres, connString)
}

// NewSQLiteDB opens (and creates if needed) a SQLite file.
func NewSQLiteDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return open(SQLite, path+"?_journal_mode=WAL&_busy_timeout=5000")
}

func open(d Dialect, dsn string) (*DB, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if d.Name == SQLite.Name {
		db.SetMaxOpenConns(1)
	}
	return &DB{Client: db, Dialect: d}, db.PingContext(context.Background())
}

// Healthy pings the database.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
