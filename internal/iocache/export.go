package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/parquet"
)

// ExecuteHistoryExport writes every run and summary to two Parquet files
// named after outputFile.
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %s\n", humanize.Comma(int64(status.TotalRuns)))
	_, _ = fmt.Fprintf(w, "Total summaries: %s\n", humanize.Comma(int64(status.TotalSummaries)))

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	summaries, err := store.GetAllSummaries()
	if err != nil {
		return fmt.Errorf("failed to retrieve summaries: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	summariesFile := outputFile + ".summaries.parquet"
	if err := parquet.WriteRunSummariesParquet(parquet.ConvertSummaryRecords(summaries), summariesFile); err != nil {
		return fmt.Errorf("failed to write summaries: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d summaries to: %s\n", len(summaries), summariesFile)

	return nil
}
