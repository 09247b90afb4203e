package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(ctx, Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestLowerFunc(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(ctx, Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	defer db.Close()

	var got string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT "+LowerFunc+"(?)", "ÄRGER Über DB").Scan(&got))
	assert.Equal(t, "ärger über db", got)

	var null *string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT "+LowerFunc+"(NULL)").Scan(&null))
	assert.Nil(t, null)
}
