//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestTrendlineWithMySQL tests the trendline CLI with a MySQL backend.
func TestTrendlineWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "trendline",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/trendline?parseTime=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestTrendlineWithPostgres tests the trendline CLI with a PostgreSQL backend.
func TestTrendlineWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario exercises the cache and the run history against one database.
// Both stores share the database since their tables never overlap.
func runBackendScenario(t *testing.T, backend, connStr string) {
	t.Setenv("TRENDLINE_CACHE_BACKEND", backend)
	t.Setenv("TRENDLINE_CACHE_DB_CONNECT", connStr)
	t.Setenv("TRENDLINE_HISTORY_BACKEND", backend)
	t.Setenv("TRENDLINE_HISTORY_DB_CONNECT", connStr)

	// Start from an empty database
	_, err := runTrendline(t, "cache", "clear")
	require.NoError(t, err)
	_, err = runTrendline(t, "history", "clear")
	require.NoError(t, err)

	// Create the history schema through migrations
	output, err := runTrendline(t, "history", "migrate")
	require.NoError(t, err)
	assert.Contains(t, output, "to 3")

	// The second report is served from the cache
	for range 2 {
		_, err = runTrendline(t, "report", "--output", "json")
		require.NoError(t, err)
	}
	_, err = runTrendline(t, "report", "--marker", "Jan '99", "--output", "json")
	require.NoError(t, err)

	output, err = runTrendline(t, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Total Entries: 1")

	output, err = runTrendline(t, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Total Runs: 3")
	assert.Contains(t, output, "Schema Version: 3")

	exportBase := filepath.Join(t.TempDir(), "history")
	_, err = runTrendline(t, "history", "export", "--output-file", exportBase)
	require.NoError(t, err)
	for _, suffix := range []string{".runs.parquet", ".summaries.parquet"} {
		info, err := os.Stat(exportBase + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
