package store

import (
	"context"
	"fmt"
)

// Backends the binaries can run on.
const (
	BackendMemory   = "memory"
	BackendRemote   = "remote"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DatabaseURL string
	SQLitePath  string
	Remote      RemoteConfig
}

// Open builds the four entity stores for opts.Backend, instrumented with m
// when it is non-nil. SQL backends are migrated before use; the returned DB
// is nil for the other backends and must be closed by the caller otherwise.
func Open(ctx context.Context, opts Options, m *Metrics) (Stores, *DB, error) {
	var (
		s  Stores
		db *DB
	)
	switch opts.Backend {
	case BackendMemory, "":
		s = Stores{
			Students:   NewMemory(StudentKind),
			Classes:    NewMemory(ClassKind),
			Grades:     NewMemory(GradeKind),
			Attendance: NewMemory(AttendanceKind),
		}
	case BackendRemote:
		s = Stores{
			Students:   NewRemote(StudentKind, opts.Remote),
			Classes:    NewRemote(ClassKind, opts.Remote),
			Grades:     NewRemote(GradeKind, opts.Remote),
			Attendance: NewRemote(AttendanceKind, opts.Remote),
		}
	case BackendPostgres, BackendSQLite:
		var err error
		if opts.Backend == BackendPostgres {
			db, err = NewDB(opts.DatabaseURL)
		} else {
			db, err = NewSQLiteDB(opts.SQLitePath)
		}
		if err != nil {
			_ = db.Close()
			return Stores{}, nil, err
		}
		if err := Migrate(ctx, db); err != nil {
			_ = db.Close()
			return Stores{}, nil, err
		}
		s = Stores{
			Students:   NewSQL(db, StudentKind),
			Classes:    NewSQL(db, ClassKind),
			Grades:     NewSQL(db, GradeKind),
			Attendance: NewSQL(db, AttendanceKind),
		}
	default:
		return Stores{}, nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	return Stores{
		Students:   Instrument(StudentKind.Name, s.Students, m),
		Classes:    Instrument(ClassKind.Name, s.Classes, m),
		Grades:     Instrument(GradeKind.Name, s.Grades, m),
		Attendance: Instrument(AttendanceKind.Name, s.Attendance, m),
	}, db, nil
}
