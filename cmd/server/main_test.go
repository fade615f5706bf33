package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/hiring-engine/config"
	"github.com/warp/hiring-engine/hiring"
	"github.com/warp/hiring-engine/logging"
	"github.com/warp/hiring-engine/store/sqlite"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hiring.db")
	csvPath := filepath.Join(dir, "departments.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("1,Supply Chain\n2,Maintenance\n"), 0o644))

	out, err := runCLI(t, "load", "departments", csvPath, "--db", dbPath)

	require.NoError(t, err)
	assert.Contains(t, out, "2 rows inserted into departments")

	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer store.Close()
	rows, err := store.ListDepartments(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestLoadCommand_InvalidTable(t *testing.T) {
	_, err := runCLI(t, "load", "invalid", "whatever.csv", "--db", filepath.Join(t.TempDir(), "hiring.db"))

	require.Error(t, err)
	assert.Equal(t, hiring.KindInvalidTableName, hiring.KindOf(err))
}

func TestLoadCommand_MissingFile(t *testing.T) {
	_, err := runCLI(t, "load", "jobs", filepath.Join(t.TempDir(), "absent.csv"), "--db", ":memory:")

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestServe_StopsWhenContextIsDone(t *testing.T) {
	cfg := &config.Config{
		Port:            0,
		DBPath:          filepath.Join(t.TempDir(), "hiring.db"),
		DefaultYear:     hiring.DefaultYear,
		ShutdownTimeout: time.Second,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, logging.Nop()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}
