package iocache

import (
	"path/filepath"
	"testing"

	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateHistory_NoneBackend(t *testing.T) {
	_, err := MigrateHistory(schema.NoneBackend, "", -1)
	assert.ErrorContains(t, err, "not supported")
}

func TestMigrateHistory_UnsupportedBackend(t *testing.T) {
	_, err := MigrateHistory("oracle", "", -1)
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestMigrateHistory_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	result, err := MigrateHistory(schema.SQLiteBackend, dbPath, -1)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, uint(0), result.From)
	assert.Equal(t, uint(3), result.To)

	result, err = MigrateHistory(schema.SQLiteBackend, dbPath, -1)
	require.NoError(t, err)
	assert.False(t, result.Changed, "already at latest")
	assert.Equal(t, uint(3), result.To)

	result, err = MigrateHistory(schema.SQLiteBackend, dbPath, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(3), result.From)
	assert.Equal(t, uint(1), result.To)

	result, err = MigrateHistory(schema.SQLiteBackend, dbPath, 0)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, uint(0), result.To)

	_, err = MigrateHistory(schema.SQLiteBackend, dbPath, 3)
	require.NoError(t, err)

	// The store works on top of a migrated schema and reports its version
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.MigrationVersion)
}

func TestMigrateHistory_SQLiteInMemory(t *testing.T) {
	_, err := MigrateHistory(schema.SQLiteBackend, ":memory:", -1)
	require.NoError(t, err)
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, backend := range []string{"sqlite", "mysql", "postgresql"} {
		entries, err := migrationsFS.ReadDir("migrations/" + backend)
		require.NoError(t, err, backend)
		assert.Len(t, entries, 6, backend)
	}
}
