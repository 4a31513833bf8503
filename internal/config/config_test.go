package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"STORE_BACKEND", "QUEUE_BACKEND", "SEED_FIXTURES", "REMOTE_TIMEOUT", "HTTP_PORT"} {
		t.Setenv(k, "")
	}
	cfg := fromEnv()
	require.Equal(t, "memory", cfg.StoreBackend)
	require.Equal(t, "memory", cfg.QueueBackend)
	require.True(t, cfg.SeedFixtures)
	require.Equal(t, 15*time.Second, cfg.RemoteTimeout)
	require.Equal(t, "8081", cfg.HTTPPort)
	require.NoError(t, cfg.Validate())
}

func TestOverridesAndFallbacks(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SEED_FIXTURES", "0")
	t.Setenv("REMOTE_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	cfg := fromEnv()
	require.Equal(t, "sqlite", cfg.StoreBackend)
	require.False(t, cfg.SeedFixtures)
	require.Equal(t, 15*time.Second, cfg.RemoteTimeout)
	require.Equal(t, 30, cfg.RateLimitPerMin)
}

func TestCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "")
	require.Equal(t, []string{"*"}, fromEnv().CORSOrigins)
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	require.Equal(t, []string{"https://a.example", "https://b.example"}, fromEnv().CORSOrigins)
}

func TestValidateRejectsUnknownBackends(t *testing.T) {
	cfg := App{StoreBackend: "mongo", QueueBackend: "memory"}
	require.Error(t, cfg.Validate())
	cfg = App{StoreBackend: "memory", QueueBackend: "kafka"}
	require.Error(t, cfg.Validate())
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AUDIT_SCHEDULE=@hourly\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("AUDIT_SCHEDULE")
	})
	t.Setenv("AUDIT_SCHEDULE", "")
	require.NoError(t, os.Unsetenv("AUDIT_SCHEDULE"))

	require.Equal(t, "@hourly", Load().AuditSchedule)
}
