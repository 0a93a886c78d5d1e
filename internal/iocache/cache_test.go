package iocache

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetManager clears the global stores so each test can initialize them again.
func resetManager(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseCaching()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func newSQLiteCache(t *testing.T) *CacheStoreImpl {
	t.Helper()
	store, err := NewCacheStore(summaryTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite backends", func(t *testing.T) {
		resetManager(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		err := InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath)
		require.NoError(t, err)
		assert.NotNil(t, Manager.GetSummaryStore())
		assert.NotNil(t, Manager.GetHistoryStore())

		CloseCaching()
		_, err = os.Stat(cachePath)
		assert.NoError(t, err, "cache file should be created")
		_, err = os.Stat(historyPath)
		assert.NoError(t, err, "history file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetManager(t)
		path := filepath.Join(t.TempDir(), "cache.db")

		assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		assert.NoError(t, InitStores(schema.SQLiteBackend, path, "", ""))
		CloseCaching()
		CloseCaching()
	})

	t.Run("empty backends leave stores unset", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitStores("", "", "", ""))
		assert.Nil(t, Manager.GetSummaryStore())
		assert.Nil(t, Manager.GetHistoryStore())
	})

	t.Run("none backends", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))

		cacheStatus, err := Manager.GetSummaryStore().GetStatus()
		require.NoError(t, err)
		assert.False(t, cacheStatus.Connected)

		historyStatus, err := Manager.GetHistoryStore().GetStatus()
		require.NoError(t, err)
		assert.False(t, historyStatus.Connected)
	})

	t.Run("history failure closes cache", func(t *testing.T) {
		resetManager(t)
		err := InitStores(schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"), "oracle", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize history store")
		assert.Nil(t, Manager.GetSummaryStore())
	})
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"simple name", "summary_cache", false},
		{"with numbers", "cache_123", false},
		{"leading underscore", "_cache", false},
		{"mixed case", "SummaryCache", false},
		{"empty name", "", true},
		{"leading digit", "1cache", true},
		{"hyphen", "summary-cache", true},
		{"injection attempt", "cache; DROP TABLE users", true},
		{"quote", `cache"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`summary_cache`", quoteTableName("summary_cache", schema.MySQLBackend))
	assert.Equal(t, `"summary_cache"`, quoteTableName("summary_cache", schema.PostgreSQLBackend))
	assert.Equal(t, `"summary_cache"`, quoteTableName("summary_cache", schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, "$1, $2, $3, $4", placeholders(schema.PostgreSQLBackend, 4))
	assert.Equal(t, "$7", placeholder(schema.PostgreSQLBackend, 7))
}

func TestUpsertQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains []string
	}{
		{schema.SQLiteBackend, []string{"INSERT OR REPLACE INTO", `"summary_cache"`, "VALUES (?, ?, ?, ?)"}},
		{schema.MySQLBackend, []string{"ON DUPLICATE KEY UPDATE", "`summary_cache`", "AS new"}},
		{schema.PostgreSQLBackend, []string{"ON CONFLICT (cache_key)", "EXCLUDED.cache_value", "VALUES ($1, $2, $3, $4)"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			store := &CacheStoreImpl{tableName: summaryTable, backend: tt.backend}
			query := store.upsertQuery()
			for _, part := range tt.contains {
				assert.Contains(t, query, part)
			}
		})
	}
}

func TestCreateCacheTableQuery(t *testing.T) {
	assert.Contains(t, createCacheTableQuery("t", schema.MySQLBackend), "cache_key VARCHAR(255) PRIMARY KEY")
	assert.Contains(t, createCacheTableQuery("t", schema.PostgreSQLBackend), "cache_value BYTEA NOT NULL")
	assert.Contains(t, createCacheTableQuery("t", schema.PostgreSQLBackend), "cache_timestamp BIGINT NOT NULL")
	assert.Contains(t, createCacheTableQuery("t", schema.SQLiteBackend), "cache_value BLOB NOT NULL")
}

func TestSQLiteCacheOperations(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		store := newSQLiteCache(t)
		require.NoError(t, store.Set("k1", []byte(`{"peak_value":41}`), 1, 1700000000))

		value, version, ts, err := store.Get("k1")
		require.NoError(t, err)
		assert.Equal(t, `{"peak_value":41}`, string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1700000000), ts)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		store := newSQLiteCache(t)
		require.NoError(t, store.Set("k1", []byte("old"), 1, 100))
		require.NoError(t, store.Set("k1", []byte("new"), 2, 200))

		value, version, ts, err := store.Get("k1")
		require.NoError(t, err)
		assert.Equal(t, "new", string(value))
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(200), ts)
	})

	t.Run("missing key", func(t *testing.T) {
		store := newSQLiteCache(t)
		_, _, _, err := store.Get("missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("in memory", func(t *testing.T) {
		store, err := NewCacheStore("memory_cache", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
		require.NoError(t, store.Set("k", []byte("v"), 1, 1))
		value, _, _, err := store.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v", string(value))
	})
}

func TestNoneCacheStore(t *testing.T) {
	store, err := NewCacheStore(summaryTable, schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows, "none backend never stores")
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad-name", schema.SQLiteBackend, "")
	assert.ErrorContains(t, err, "invalid table name")

	_, err = NewCacheStore("", schema.SQLiteBackend, "")
	assert.ErrorContains(t, err, "cannot be empty")

	_, err = NewCacheStore(summaryTable, "oracle", "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestCacheStoreGetStatus(t *testing.T) {
	t.Run("with data", func(t *testing.T) {
		store := newSQLiteCache(t)
		now := time.Now().Unix()
		require.NoError(t, store.Set("a", []byte("1"), 1, now-3600))
		require.NoError(t, store.Set("b", []byte("2"), 1, now))

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, now, status.LastEntryTime.Unix())
		assert.Equal(t, now-3600, status.OldestEntryTime.Unix())
		assert.Positive(t, status.TableSizeBytes)
	})

	t.Run("empty", func(t *testing.T) {
		status, err := newSQLiteCache(t).GetStatus()
		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.Zero(t, status.TotalEntries)
		assert.True(t, status.LastEntryTime.IsZero())
	})
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(summaryTable, schema.SQLiteBackend, path)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "absent.db"), ""))
	})

	t.Run("sqlite empty path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.ErrorContains(t, ClearCache("oracle", "", ""), "unsupported backend")
	})
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	resetManager(t)
	require.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, Manager.GetSummaryStore())
			assert.NotNil(t, Manager.GetHistoryStore())
		}()
	}
	wg.Wait()
}

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalEntries:    1200,
		LastEntryTime:   time.Now(),
		OldestEntryTime: time.Now().Add(-48 * time.Hour),
		TableSizeBytes:  8192,
	})
	out := buf.String()
	assert.Contains(t, out, "Total Entries: 1,200")
	assert.Contains(t, out, "Table Size: 8.2 kB")
	assert.Contains(t, out, "2 days ago")
}
