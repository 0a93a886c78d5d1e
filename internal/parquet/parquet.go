// Package parquet provides data structures and functions for reading series and
// exporting trendline data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/trendline/schema"
	"github.com/parquet-go/parquet-go"
)

// SeriesPoint represents one period of a monthly series.
type SeriesPoint struct {
	// Period is the ordinal label such as "Oct '23"
	Period string `parquet:"period,snappy"`

	// Value is the non-negative count for the period
	Value int32 `parquet:"value,snappy"`

	// Event is the optional annotation for the period (nullable)
	Event *string `parquet:"event,optional,snappy"`
}

// ReportField represents one field of a derived report.
type ReportField struct {
	// Dataset is the name of the series the report was derived from
	Dataset string `parquet:"dataset,snappy"`

	// Field is the summary field key
	Field string `parquet:"field,snappy"`

	// Value is the display value of the field (nullable when the field failed)
	Value *string `parquet:"value,optional,snappy"`

	// Numeric is the numeric value of the field (nullable for text fields and failures)
	Numeric *float64 `parquet:"numeric,optional,snappy"`

	// Error is the reason the field could not be computed (nullable)
	Error *string `parquet:"error,optional,snappy"`
}

// QuarterRow represents the average of one calendar quarter.
type QuarterRow struct {
	Dataset string `parquet:"dataset,snappy"`
	Quarter string `parquet:"quarter,snappy"`
	Average int32  `parquet:"average,snappy"`
	Count   int32  `parquet:"count,snappy"`
	Total   int32  `parquet:"total,snappy"`

	// ChangePercent is the change from the previous quarter (nullable for the first quarter)
	ChangePercent *int32 `parquet:"change_percent,optional,snappy"`
}

// Run represents a single trendline run with metadata.
// This struct maps to the trendline_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalPoints is the number of series points derived in this run
	TotalPoints int32 `parquet:"total_points,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RunSummary represents the derived summary of one dataset in a run.
// This struct maps to the trendline_run_summaries database table.
type RunSummary struct {
	RunID              int64     `parquet:"run_id,snappy"`
	DatasetName        string    `parquet:"dataset_name,snappy"`
	PivotPeriod        *string   `parquet:"pivot_period,optional,snappy"`
	MarkerPeriod       *string   `parquet:"marker_period,optional,snappy"`
	TotalBefore        *int32    `parquet:"total_before,optional,snappy"`
	TotalAfter         *int32    `parquet:"total_after,optional,snappy"`
	AvgBefore          *float64  `parquet:"avg_before,optional,snappy"`
	AvgAfter           *float64  `parquet:"avg_after,optional,snappy"`
	ImprovementPercent *int32    `parquet:"improvement_percent,optional,snappy"`
	PeakValue          int32     `parquet:"peak_value,snappy"`
	PeakPeriod         string    `parquet:"peak_period,snappy"`
	LongestRun         int32     `parquet:"longest_run,snappy"`
	RecoveryRate       *int32    `parquet:"recovery_rate,optional,snappy"`
	QuarterCount       int32     `parquet:"quarter_count,snappy"`
	RecordedAt         time.Time `parquet:"recorded_at,snappy"`
}

// writeRows writes a slice of rows to a Parquet file.
// The schema is derived from the struct tags of T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := WriteRows(file, data); err != nil {
		return err
	}
	return nil
}

// WriteRows writes a slice of rows to w as a Parquet stream.
func WriteRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteRunSummariesParquet writes a slice of RunSummary structs to a Parquet file.
func WriteRunSummariesParquet(data []RunSummary, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteSeriesParquet writes a slice of SeriesPoint structs to a Parquet file.
func WriteSeriesParquet(data []SeriesPoint, outputPath string) error {
	return writeRows(data, outputPath)
}

// ReadSeriesParquet reads every SeriesPoint from a Parquet file, in file order.
func ReadSeriesParquet(inputPath string) ([]SeriesPoint, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[SeriesPoint](file)
	defer func() { _ = reader.Close() }()

	rows := make([]SeriesPoint, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}

// ConvertSeries converts a schema.Series to SeriesPoint rows.
func ConvertSeries(series schema.Series) []SeriesPoint {
	result := make([]SeriesPoint, len(series))
	for i, p := range series {
		result[i] = SeriesPoint{Period: p.Period, Value: int32(p.Value)}
		if p.Event != "" {
			event := p.Event
			result[i].Event = &event
		}
	}
	return result
}

// ToSeries converts SeriesPoint rows back to a schema.Series.
func ToSeries(points []SeriesPoint) schema.Series {
	result := make(schema.Series, len(points))
	for i, p := range points {
		result[i] = schema.DataPoint{Period: p.Period, Value: int(p.Value)}
		if p.Event != nil {
			result[i].Event = *p.Event
		}
	}
	return result
}

// ConvertQuarters converts enriched quarters to QuarterRow rows.
func ConvertQuarters(dataset string, quarters []schema.EnrichedQuarter) []QuarterRow {
	result := make([]QuarterRow, len(quarters))
	for i, q := range quarters {
		result[i] = QuarterRow{
			Dataset: dataset,
			Quarter: q.Quarter,
			Average: int32(q.Average),
			Count:   int32(q.Count),
			Total:   int32(q.Total),
		}
		if q.ChangePercent != nil {
			pct := int32(*q.ChangePercent)
			result[i].ChangePercent = &pct
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalPoints:   record.TotalPoints,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertSummaryRecords converts schema.SummaryRecord to RunSummary for Parquet export.
func ConvertSummaryRecords(records []schema.SummaryRecord) []RunSummary {
	result := make([]RunSummary, len(records))
	for i, record := range records {
		result[i] = RunSummary{
			RunID:              record.RunID,
			DatasetName:        record.DatasetName,
			PivotPeriod:        record.PivotPeriod,
			MarkerPeriod:       record.MarkerPeriod,
			TotalBefore:        record.TotalBefore,
			TotalAfter:         record.TotalAfter,
			AvgBefore:          record.AvgBefore,
			AvgAfter:           record.AvgAfter,
			ImprovementPercent: record.ImprovementPercent,
			PeakValue:          record.PeakValue,
			PeakPeriod:         record.PeakPeriod,
			LongestRun:         record.LongestRun,
			RecoveryRate:       record.RecoveryRate,
			QuarterCount:       record.QuarterCount,
			RecordedAt:         record.RecordedAt,
		}
	}
	return result
}
