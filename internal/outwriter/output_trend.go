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

// WriteTrend outputs the enriched series, dispatching based on the output format configured.
func WriteTrend(result *schema.TrendResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON trend"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"index", "period", "value", "change", "quarter", "event"}, func(cw *csv.Writer) error {
				return writeCSVTrend(cw, result)
			})
		}, "Wrote CSV trend"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertSeries(trendSeries(result)))
		}, "Wrote Parquet trend"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.HTMLOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return dashboard.TrendPage(result).Render(w)
		}, "Wrote trend dashboard"); err != nil {
			return fmt.Errorf("error writing HTML output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendTable(w, result, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

func trendSeries(result *schema.TrendResult) schema.Series {
	series := make(schema.Series, len(result.Points))
	for i, p := range result.Points {
		series[i] = p.DataPoint
	}
	return series
}

func writeCSVTrend(w *csv.Writer, result *schema.TrendResult) error {
	for _, p := range result.Points {
		rec := []string{
			strconv.Itoa(p.Index),
			p.Period,
			strconv.Itoa(p.Value),
			strconv.Itoa(p.Change),
			p.Quarter,
			p.Event,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeTrendTable prints one row per period with its change from the previous period.
func writeTrendTable(w io.Writer, result *schema.TrendResult, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Period", "Value", "Change", "Quarter", "Event"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	noteWidth := getMaxNoteWidth(cfg)
	var data [][]string
	for _, p := range result.Points {
		change := ""
		if p.Index > 0 {
			change = fmt.Sprintf("%+d", p.Change)
		}
		event := contract.TruncatePath(p.Event, noteWidth)
		if p.Period == result.Peak.Period && p.Value == result.Peak.Value {
			event = joinNote(event, "peak")
		}
		data = append(data, []string{
			strconv.Itoa(p.Index + 1),
			p.Period,
			formatCount(p.Value),
			change,
			p.Quarter,
			event,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d periods with %d events. Peak: %s in %s\n",
		len(result.Points), len(result.Events), formatCount(result.Peak.Value), result.Peak.Period); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Trend completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

func joinNote(note, extra string) string {
	if note == "" {
		return extra
	}
	return note + " (" + extra + ")"
}
