package schema

import "time"

// CacheStatus represents the status of the summary cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalRuns        int              `json:"total_runs"`
	LastRunID        int64            `json:"last_run_id"`
	LastRunTime      time.Time        `json:"last_run_time"`
	OldestRunTime    time.Time        `json:"oldest_run_time"`
	TotalSummaries   int              `json:"total_summaries"`
	TotalPointsSeen  int              `json:"total_points_seen"`
	TableSizes       map[string]int64 `json:"table_sizes"`
	MigrationVersion int              `json:"migration_version,omitempty"`
}

// RunRecord represents a row from the trendline_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalPoints   int32
	ConfigParams  *string
}

// SummaryRecord represents a row from the trendline_run_summaries table.
type SummaryRecord struct {
	RunID              int64
	DatasetName        string
	PivotPeriod        *string
	MarkerPeriod       *string
	TotalBefore        *int32
	TotalAfter         *int32
	AvgBefore          *float64
	AvgAfter           *float64
	ImprovementPercent *int32
	PeakValue          int32
	PeakPeriod         string
	LongestRun         int32
	RecoveryRate       *int32
	QuarterCount       int32
	RecordedAt         time.Time
}
