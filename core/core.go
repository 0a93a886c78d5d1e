// Package core derives metrics from monthly series and orchestrates the commands built on them.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/loader"
	"github.com/huangsam/trendline/internal/outwriter"
	"github.com/huangsam/trendline/schema"
)

// ExecutorFunc defines the function signature for executing a command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteReport derives the summary of the configured series and writes it.
// It serves as the main entry point for the 'report' command.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	report, duration, err := GetReportResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteReport(report, cfg, duration)
}

// ExecuteTrend writes the series with per-point changes and quarters.
func ExecuteTrend(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetTrendResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteTrend(result, cfg, duration)
}

// ExecuteQuarters writes the quarterly averages of the series.
func ExecuteQuarters(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetQuartersResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteQuarters(result, cfg, duration)
}

// ExecuteFields displays the definition of every summary field.
// This is a static display that does not load any series.
func ExecuteFields(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return outwriter.WriteFields(GetFieldsModel(), cfg)
}

// ExecuteSample writes the builtin dataset in the configured input format,
// giving users a template for their own series files.
func ExecuteSample(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	format := cfg.InputFormat
	if format == "" || format == schema.AutoFormat || format == schema.BuiltinFormat {
		format = schema.YAMLFormat
	}
	if format == schema.ParquetFormat && cfg.OutputFile == "" {
		return errors.New("parquet samples require --output-file")
	}
	return outwriter.WriteDataset(loader.Builtin(), format, cfg.OutputFile)
}

// GetReportResults loads the configured series and derives its report.
func GetReportResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.Report, time.Duration, error) {
	start := time.Now()
	dataset, err := loadDataset(cfg)
	if err != nil {
		return nil, 0, err
	}
	report, err := RunReport(ctx, cfg, mgr, dataset)
	if err != nil {
		return nil, 0, err
	}
	return report, time.Since(start), nil
}

// GetTrendResults loads the configured series and enriches each point.
func GetTrendResults(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) (*schema.TrendResult, time.Duration, error) {
	start := time.Now()
	dataset, err := loadDataset(cfg)
	if err != nil {
		return nil, 0, err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogDerivationHeader(cfg, dataset, cfg.ResolvePeriods(dataset))
	}
	return BuildTrend(dataset), time.Since(start), nil
}

// GetQuartersResults loads the configured series and averages it per quarter.
func GetQuartersResults(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) (*schema.QuartersResult, time.Duration, error) {
	start := time.Now()
	dataset, err := loadDataset(cfg)
	if err != nil {
		return nil, 0, err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogDerivationHeader(cfg, dataset, cfg.ResolvePeriods(dataset))
	}
	result, err := BuildQuarters(dataset)
	if err != nil {
		return nil, 0, err
	}
	return result, time.Since(start), nil
}

// GetFieldsModel builds the render model for the field definitions.
func GetFieldsModel() *schema.FieldsRenderModel {
	return &schema.FieldsRenderModel{
		Title:       "Trendline Summary Fields",
		Description: "Every field is derived from the series, the pivot period and the marker period",
		Fields:      FieldDefinitions(),
		Errors: map[string]string{
			KindNotFound:             "pivot or marker period is not in the series",
			KindDivisionByEmptyRange: "an average over zero points (pivot at the first period)",
			KindDivisionByZero:       "a percent change from a zero baseline",
			KindParseError:           "a period label that is not \"<Mon> '<YY>\"",
		},
	}
}

// RunReport derives the report of an already loaded dataset.
// A strict derivation is served from the summary cache when possible; when it
// fails, the report falls back to per-field results so the other fields still render.
// The run is recorded in the history store when one is configured.
func RunReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, dataset *schema.Dataset) (*schema.Report, error) {
	opts := cfg.ResolvePeriods(dataset)
	if !shouldSuppressHeader(ctx) {
		outwriter.LogDerivationHeader(cfg, dataset, opts)
	}

	var history contract.HistoryStore
	if mgr != nil {
		history = mgr.GetHistoryStore()
	}
	runID := beginRun(history, cfg, dataset, opts)

	var report *schema.Report
	summary, err := DeriveCached(ctx, dataset.Points, opts, mgr)
	switch {
	case err == nil:
		report = reportFromSummary(dataset.Points, summary)
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		if report, err = BuildReport(dataset.Points, opts); err != nil {
			return nil, fmt.Errorf("cannot derive %s: %w", dataset.Name, err)
		}
	}
	report.Dataset = dataset.Name
	withFields(report, cfg.View, cfg.Fields)

	if history != nil && runID > 0 {
		if err := history.RecordSummary(runID, dataset.Name, report); err != nil {
			contract.LogWarn("Failed to record summary", err)
		}
		if err := history.EndRun(runID, time.Now(), len(dataset.Points)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}
	return report, nil
}

// beginRun opens a history run, returning 0 when history is off or fails.
func beginRun(history contract.HistoryStore, cfg *contract.Config, dataset *schema.Dataset, opts schema.DeriveOptions) int64 {
	if history == nil {
		return 0
	}
	configParams := map[string]any{
		"dataset": dataset.Name,
		"input":   cfg.InputPath,
		"pivot":   opts.Pivot,
		"marker":  opts.Marker,
		"view":    string(cfg.View),
	}
	runID, err := history.BeginRun(time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return 0
	}
	return runID
}

// BuildTrend enriches every point with its change from the previous point and its quarter.
// Labels that cannot be bucketed leave the quarter empty.
func BuildTrend(dataset *schema.Dataset) *schema.TrendResult {
	points := make([]schema.EnrichedTrendPoint, len(dataset.Points))
	for i, p := range dataset.Points {
		points[i] = schema.EnrichedTrendPoint{Index: i, DataPoint: p}
		if i > 0 {
			points[i].Change = p.Value - dataset.Points[i-1].Value
		}
		if quarter, err := QuarterOf(p.Period); err == nil {
			points[i].Quarter = quarter
		}
	}
	var peak schema.DataPoint
	if len(dataset.Points) > 0 {
		peak = peakOf(dataset.Points)
	}
	return &schema.TrendResult{
		Dataset: dataset.Name,
		Points:  points,
		Events:  eventsOf(dataset.Points),
		Peak:    peak,
	}
}

// BuildQuarters computes the enriched quarterly averages of a dataset.
func BuildQuarters(dataset *schema.Dataset) (*schema.QuartersResult, error) {
	quarters, err := QuarterlyAverages(dataset.Points)
	if err != nil {
		return nil, err
	}
	return &schema.QuartersResult{
		Dataset:  dataset.Name,
		Quarters: schema.EnrichQuarters(quarters),
	}, nil
}

// loadDataset reads the configured series and applies the name override.
func loadDataset(cfg *contract.Config) (*schema.Dataset, error) {
	dataset, err := loader.Load(cfg.InputPath, cfg.InputFormat)
	if err != nil {
		return nil, err
	}
	if cfg.DatasetName != "" {
		dataset.Name = cfg.DatasetName
	}
	return dataset, nil
}
