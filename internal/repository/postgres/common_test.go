package postgres

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/llmtrace/llmtrace/internal/config"
	"github.com/llmtrace/llmtrace/internal/pkg/database"
)

// getTestDB returns a migrated database connection for integration tests.
// Skips the test if the database is not available.
func getTestDB(t *testing.T) *database.PostgresDB {
	t.Helper()

	if os.Getenv("POSTGRES_TEST_HOST") == "" {
		t.Skip("Skipping integration test: POSTGRES_TEST_HOST not set")
		return nil
	}

	cfg := config.PostgresConfig{
		Host:     os.Getenv("POSTGRES_TEST_HOST"),
		Port:     5432,
		User:     os.Getenv("POSTGRES_TEST_USER"),
		Password: os.Getenv("POSTGRES_TEST_PASS"),
		Database: os.Getenv("POSTGRES_TEST_DB"),
		SSLMode:  "disable",
		MaxConns: 5,
		MinConns: 1,
	}

	if port, err := strconv.Atoi(os.Getenv("POSTGRES_TEST_PORT")); err == nil {
		cfg.Port = port
	}
	if cfg.Database == "" {
		cfg.Database = "test_llmtrace"
	}
	if cfg.User == "" {
		cfg.User = "postgres"
	}

	db, err := database.NewPostgres(context.Background(), cfg)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to PostgreSQL: %v", err)
		return nil
	}

	require.NoError(t, Migrate(context.Background(), db.SQL))
	t.Cleanup(db.Close)
	return db
}

// cleanupProject removes every row owned by projectID
func cleanupProject(t *testing.T, db *database.PostgresDB, projectID string) {
	t.Helper()
	ctx := context.Background()
	for _, table := range []string{"scores", "observations", "traces"} {
		_, _ = db.SQL.ExecContext(ctx, "DELETE FROM "+table+" WHERE project_id = $1", projectID)
	}
}
