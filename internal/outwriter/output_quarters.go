package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/dashboard"
	"github.com/huangsam/trendline/internal/parquet"
	"github.com/huangsam/trendline/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteQuarters outputs the quarterly averages, dispatching based on the output format configured.
func WriteQuarters(result *schema.QuartersResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON quarters"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"rank", "quarter", "average", "count", "total", "change_percent", "label"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				return writeCSVQuarters(cw, result)
			})
		}, "Wrote CSV quarters"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertQuarters(result.Dataset, result.Quarters))
		}, "Wrote Parquet quarters"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.HTMLOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return dashboard.QuartersPage(result).Render(w)
		}, "Wrote quarters dashboard"); err != nil {
			return fmt.Errorf("error writing HTML output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeQuartersTable(w, result, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

func writeCSVQuarters(w *csv.Writer, result *schema.QuartersResult) error {
	for _, q := range result.Quarters {
		change := ""
		if q.ChangePercent != nil {
			change = strconv.Itoa(*q.ChangePercent)
		}
		rec := []string{
			strconv.Itoa(q.Rank),
			q.Quarter,
			strconv.Itoa(q.Average),
			strconv.Itoa(q.Count),
			strconv.Itoa(q.Total),
			change,
			q.Label,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeQuartersTable prints one row per quarter in order of first appearance.
func writeQuartersTable(w io.Writer, result *schema.QuartersResult, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Quarter", "Average", "Points", "Total", "Change", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, q := range result.Quarters {
		label := ""
		if q.ChangePercent != nil {
			label = labelFor(*q.ChangePercent, cfg)
		}
		data = append(data, []string{
			strconv.Itoa(q.Rank),
			q.Quarter,
			formatCount(q.Average),
			strconv.Itoa(q.Count),
			formatCount(q.Total),
			formatPercent(q.ChangePercent),
			label,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d quarters of %s\n", len(result.Quarters), result.Dataset); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Quarters completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}
