package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/bissquit/incident-tracker/internal/config"
	"github.com/bissquit/incident-tracker/internal/pkg/sqlite"
	"github.com/bissquit/incident-tracker/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "incident-tracker "+version.Version)

	out, err = execute(t, "version", "-o", "json")
	require.NoError(t, err)

	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info.Version)
}

func TestMigrateAndSeed_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "incidents.db")
	storage := []string{"--storage.driver", config.DriverSQLite, "--storage.sqlite_path", path, "--log.level", "error"}

	out, err := execute(t, append([]string{"migrate"}, storage...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema at version 1")

	out, err = execute(t, append([]string{"seed", "--count", "12", "--seed", "3"}, storage...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "inserted 12 incidents")

	// A populated store is left alone without --force.
	out, err = execute(t, append([]string{"seed", "--count", "5"}, storage...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "inserted 0 incidents")

	out, err = execute(t, append([]string{"seed", "--count", "5", "--force"}, storage...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "inserted 5 incidents")

	db, err := sqlite.Connect(context.Background(), sqlite.Config{Path: path})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM incidents").Scan(&count))
	assert.Equal(t, 17, count)
}

func TestInvalidConfig(t *testing.T) {
	_, err := execute(t, "migrate", "--storage.driver", "mongo")
	assert.ErrorContains(t, err, "storage.driver")
}
