package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/bissquit/incident-tracker/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresImageEnv overrides the image used for test databases.
const PostgresImageEnv = "INCIDENTS_TEST_POSTGRES_IMAGE"

const defaultPostgresImage = "postgres:16-alpine"

// PostgresContainer is a throwaway incidents database.
type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnectionString string
}

// NewPostgresContainer starts an empty incidents database. The connection
// string disables TLS and is accepted by both pgx and golang-migrate.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	image := os.Getenv(PostgresImageEnv)
	if image == "" {
		image = defaultPostgresImage
	}

	container, err := postgres.Run(ctx,
		image,
		postgres.WithDatabase("incidents"),
		postgres.WithUsername("incidents"),
		postgres.WithPassword("incidents"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container %s: %w", image, err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{
		PostgresContainer: container,
		ConnectionString:  connStr,
	}, nil
}

// Migrate applies the embedded incidents schema.
func (c *PostgresContainer) Migrate() (uint, error) {
	return migrations.UpPostgres(c.ConnectionString)
}

// StartPostgres starts a migrated incidents database that is terminated when
// the test finishes.
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	c, err := NewPostgresContainer(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	_, err = c.Migrate()
	require.NoError(t, err)

	return c
}
