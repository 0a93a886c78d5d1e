package iocache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// Table names for run history.
const (
	runsTable      = "trendline_runs"
	summariesTable = "trendline_run_summaries"
)

// migrationsTable is maintained by golang-migrate.
const migrationsTable = "schema_migrations"

// HistoryStoreImpl records every run and the summaries it derived.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the history tables for the backend, creating them when missing.
// The none backend yields a store that records nothing.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range []struct {
		name  string
		query string
	}{
		{runsTable, createRunsQuery(backend)},
		{summariesTable, createSummariesQuery(backend)},
	} {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

func createRunsQuery(backend schema.DatabaseBackend) string {
	table := quoteTableName(runsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_points INT NOT NULL DEFAULT 0,
				config_params TEXT
			)`, table)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_points INT NOT NULL DEFAULT 0,
				config_params TEXT
			)`, table)
	default:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_points INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			)`, table)
	}
}

func createSummariesQuery(backend schema.DatabaseBackend) string {
	table := quoteTableName(summariesTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				dataset_name VARCHAR(255) NOT NULL,
				pivot_period VARCHAR(32),
				marker_period VARCHAR(32),
				total_before INT,
				total_after INT,
				avg_before DOUBLE,
				avg_after DOUBLE,
				improvement_percent INT,
				peak_value INT NOT NULL,
				peak_period VARCHAR(32) NOT NULL,
				longest_run INT NOT NULL,
				recovery_rate INT,
				quarter_count INT NOT NULL,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, dataset_name)
			)`, table)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				dataset_name TEXT NOT NULL,
				pivot_period TEXT,
				marker_period TEXT,
				total_before INT,
				total_after INT,
				avg_before DOUBLE PRECISION,
				avg_after DOUBLE PRECISION,
				improvement_percent INT,
				peak_value INT NOT NULL,
				peak_period TEXT NOT NULL,
				longest_run INT NOT NULL,
				recovery_rate INT,
				quarter_count INT NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, dataset_name)
			)`, table)
	default:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				dataset_name TEXT NOT NULL,
				pivot_period TEXT,
				marker_period TEXT,
				total_before INTEGER,
				total_after INTEGER,
				avg_before REAL,
				avg_after REAL,
				improvement_percent INTEGER,
				peak_value INTEGER NOT NULL,
				peak_period TEXT NOT NULL,
				longest_run INTEGER NOT NULL,
				recovery_rate INTEGER,
				quarter_count INTEGER NOT NULL,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (run_id, dataset_name)
			)`, table)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	table := quoteTableName(runsTable, hs.backend)
	query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (%s)`, table, placeholders(hs.backend, 2))
	args := []any{formatTime(startTime, hs.backend), string(configJSON)}

	var runID int64
	if hs.backend == schema.PostgreSQLBackend {
		err = hs.db.QueryRow(query+" RETURNING run_id", args...).Scan(&runID)
	} else {
		var result sql.Result
		if result, err = hs.db.Exec(query, args...); err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun stamps the run with its end time, duration and point count.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalPoints int) error {
	if hs.db == nil {
		return nil
	}

	table := quoteTableName(runsTable, hs.backend)
	start := &timeScanner{backend: hs.backend}
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, table, placeholder(hs.backend, 1))
	if err := hs.db.QueryRow(selectQuery, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	if startTime == nil {
		return fmt.Errorf("run %d has no start_time", runID)
	}

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_points = %s WHERE run_id = %s`,
		table,
		placeholder(hs.backend, 1), placeholder(hs.backend, 2), placeholder(hs.backend, 3), placeholder(hs.backend, 4))
	durationMs := endTime.Sub(*startTime).Milliseconds()
	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, totalPoints, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordSummary stores the derived summary of one dataset.
// Fields the report could not compute are stored as NULL.
func (hs *HistoryStoreImpl) RecordSummary(runID int64, datasetName string, report *schema.Report) error {
	if hs.db == nil {
		return nil
	}
	if report == nil || report.Summary == nil {
		return errors.New("cannot record an empty report")
	}

	s := report.Summary
	nullable := func(key schema.FieldKey, v any) any {
		if report.HasError(key) {
			return nil
		}
		return v
	}
	period := func(p string) any {
		if p == "" {
			return nil
		}
		return p
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, dataset_name, pivot_period, marker_period,
		                total_before, total_after, avg_before, avg_after, improvement_percent,
		                peak_value, peak_period, longest_run, recovery_rate, quarter_count, recorded_at)
		VALUES (%s)`, quoteTableName(summariesTable, hs.backend), placeholders(hs.backend, 15))
	args := []any{
		runID, datasetName, period(s.Pivot), period(s.Marker),
		nullable(schema.FieldTotalBefore, s.TotalBefore),
		nullable(schema.FieldTotalAfter, s.TotalAfter),
		nullable(schema.FieldAvgBefore, s.AvgBefore),
		nullable(schema.FieldAvgAfter, s.AvgAfter),
		nullable(schema.FieldImprovementPercent, s.ImprovementPercent),
		s.PeakValue, s.PeakPeriod, s.LongestIncreasingRun,
		nullable(schema.FieldRecoveryRate, s.RecoveryRate),
		len(s.QuarterlyAverages),
		formatTime(time.Now(), hs.backend),
	}
	if _, err := hs.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert summary for %s: %w", datasetName, err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns run counts, run age range and row counts per table.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	runs := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := &timeScanner{backend: hs.backend}
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := &timeScanner{backend: hs.backend}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)
		if err := hs.db.QueryRow(oldestQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}

		pointsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_points), 0) FROM %s", runs)
		if err := hs.db.QueryRow(pointsQuery).Scan(&status.TotalPointsSeen); err != nil {
			return status, fmt.Errorf("failed to get total points: %w", err)
		}
	}

	for _, table := range []string{runsTable, summariesTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalSummaries = int(status.TableSizes[summariesTable])

	// The migrations table only exists once migrate has been run
	versionQuery := fmt.Sprintf("SELECT version FROM %s LIMIT 1", quoteTableName(migrationsTable, hs.backend))
	var version int64
	if err := hs.db.QueryRow(versionQuery).Scan(&version); err == nil {
		status.MigrationVersion = int(version)
	}

	return status, nil
}

// GetAllRuns retrieves every run in ID order.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, total_points, config_params FROM %s ORDER BY run_id",
		quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		start := &timeScanner{backend: hs.backend}
		end := &timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.RunID, start.dest(), end.dest(), &record.RunDurationMs, &record.TotalPoints, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllSummaries retrieves every recorded summary ordered by run and dataset.
func (hs *HistoryStoreImpl) GetAllSummaries() ([]schema.SummaryRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, dataset_name, pivot_period, marker_period,
		total_before, total_after, avg_before, avg_after, improvement_percent,
		peak_value, peak_period, longest_run, recovery_rate, quarter_count, recorded_at
		FROM %s ORDER BY run_id, dataset_name`, quoteTableName(summariesTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SummaryRecord
	for rows.Next() {
		var r schema.SummaryRecord
		recorded := &timeScanner{backend: hs.backend}
		if err := rows.Scan(&r.RunID, &r.DatasetName, &r.PivotPeriod, &r.MarkerPeriod,
			&r.TotalBefore, &r.TotalAfter, &r.AvgBefore, &r.AvgAfter, &r.ImprovementPercent,
			&r.PeakValue, &r.PeakPeriod, &r.LongestRun, &r.RecoveryRate, &r.QuarterCount, recorded.dest()); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		recordedAt, err := recorded.value()
		if err != nil {
			return nil, err
		}
		if recordedAt != nil {
			r.RecordedAt = *recordedAt
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summaries: %w", err)
	}
	return results, nil
}
