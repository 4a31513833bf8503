package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestOpenMemoryIsInstrumented(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	s, db, err := Open(context.Background(), Options{Backend: BackendMemory}, m)
	require.NoError(t, err)
	require.Nil(t, db)

	_, err = s.Grades.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("grade", "list", "ok")))
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, _, err := Open(context.Background(), Options{Backend: "mongo"}, nil)
	require.ErrorContains(t, err, "mongo")
}

func TestOpenSQLiteMigratesAndSeeds(t *testing.T) {
	ctx := context.Background()
	s, db, err := Open(ctx, Options{Backend: BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "school.db")}, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = Seed(ctx, s)
	require.NoError(t, err)
	classes, err := s.Classes.List(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 5)
	require.Equal(t, []string{"Mon", "Wed", "Fri"}, classes[0].Schedule.Days)
}
