package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "hiring.db", c.DBPath)
	assert.Equal(t, "development", c.LogMode)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, c.CORSOrigins)
	assert.Equal(t, 2021, c.DefaultYear)
	assert.Equal(t, int64(32<<20), c.MaxUploadBytes)
	assert.Equal(t, 30*time.Second, c.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, c.ReadTimeout)
	assert.Equal(t, 15*time.Second, c.WriteTimeout)
	assert.Equal(t, ":8080", c.Addr())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HIRING_PORT", "9090")
	t.Setenv("HIRING_DB_PATH", ":memory:")
	t.Setenv("HIRING_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("HIRING_SHUTDOWN_TIMEOUT", "5s")

	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, 9090, c.Port)
	assert.Equal(t, ":memory:", c.DBPath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.Equal(t, 5*time.Second, c.ShutdownTimeout)
}

func TestLoad_EnvFile(t *testing.T) {
	// t.Setenv registers the restore; the variable itself must start unset.
	t.Setenv("HIRING_LOG_MODE", "")
	require.NoError(t, os.Unsetenv("HIRING_LOG_MODE"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HIRING_LOG_MODE=production\n"), 0o644))

	n, err := LoadEnv([]string{path, filepath.Join(t.TempDir(), "absent")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", c.LogMode)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("HIRING_PORT", "70000")
	t.Setenv("HIRING_DEFAULT_YEAR", "0")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HIRING_PORT")
	assert.Contains(t, err.Error(), "HIRING_DEFAULT_YEAR")
}

func TestLoad_Unparseable(t *testing.T) {
	t.Setenv("HIRING_READ_TIMEOUT", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse environment")
}
