package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteHistoryExport(t *testing.T) {
	store := newSQLiteHistory(t)
	runID, err := store.BeginRun(time.Now(), map[string]any{"view": "full"})
	require.NoError(t, err)
	require.NoError(t, store.RecordSummary(runID, "meetings", sampleReport()))
	require.NoError(t, store.EndRun(runID, time.Now(), 20))

	output := filepath.Join(t.TempDir(), "history")
	var buf bytes.Buffer
	require.NoError(t, ExecuteHistoryExport(&buf, store, output))

	for _, suffix := range []string{".runs.parquet", ".summaries.parquet"} {
		info, err := os.Stat(output + suffix)
		require.NoError(t, err, suffix)
		assert.Positive(t, info.Size())
	}
	assert.Contains(t, buf.String(), "Exported 1 runs")
	assert.Contains(t, buf.String(), "Exported 1 summaries")
}

func TestExecuteHistoryExportErrors(t *testing.T) {
	var buf bytes.Buffer

	assert.ErrorContains(t, ExecuteHistoryExport(&buf, &MockHistoryStore{}, ""), "--output-file is required")
	assert.ErrorContains(t, ExecuteHistoryExport(&buf, nil, "out"), "not initialized")

	empty := &MockHistoryStore{}
	empty.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)
	assert.ErrorContains(t, ExecuteHistoryExport(&buf, empty, "out"), "no run history")
	empty.AssertExpectations(t)

	broken := &MockHistoryStore{}
	broken.On("GetStatus").Return(schema.HistoryStatus{TotalRuns: 1}, nil)
	broken.On("GetAllRuns").Return(nil, errors.New("boom"))
	assert.ErrorContains(t, ExecuteHistoryExport(&buf, broken, "out"), "failed to retrieve runs")
	broken.AssertNotCalled(t, "GetAllSummaries")
}
