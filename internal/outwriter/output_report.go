package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/dashboard"
	"github.com/huangsam/trendline/internal/parquet"
	"github.com/huangsam/trendline/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteReport outputs a derived report, dispatching based on the output format configured.
func WriteReport(report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := precisionFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, buildReportJSON(report, cfg.Precision))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"field", "value", "numeric", "label", "error"}, func(cw *csv.Writer) error {
				return writeCSVReport(cw, report, cfg.Precision, fmtFloat)
			})
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, buildReportRows(report, cfg.Precision))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.HTMLOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return dashboard.ReportPage(report, cfg.Precision).Render(w)
		}, "Wrote dashboard"); err != nil {
			return fmt.Errorf("error writing HTML output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTable(w, report, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// reportFieldJSON is one field of the JSON report.
type reportFieldJSON struct {
	Key     schema.FieldKey `json:"key"`
	Value   any             `json:"value"`
	Display string          `json:"display"`
	Label   string          `json:"label,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type reportJSON struct {
	Dataset string               `json:"dataset"`
	View    schema.ReportView    `json:"view"`
	Pivot   string               `json:"pivot,omitempty"`
	Marker  string               `json:"marker,omitempty"`
	Fields  []reportFieldJSON    `json:"fields"`
	Events  []schema.EventMarker `json:"events,omitempty"`
}

// buildReportJSON restricts the report to its selected fields. Failed fields have a null value.
func buildReportJSON(report *schema.Report, precision int) reportJSON {
	out := reportJSON{
		Dataset: report.Dataset,
		View:    report.View,
		Fields:  make([]reportFieldJSON, 0, len(report.Fields)),
	}
	s := report.Summary
	if s != nil {
		out.Pivot, out.Marker, out.Events = s.Pivot, s.Marker, s.Events
	}
	for _, key := range report.Fields {
		field := reportFieldJSON{Key: key, Display: report.FormatField(key, precision)}
		if report.HasError(key) || s == nil {
			field.Error = report.Errors[key]
			out.Fields = append(out.Fields, field)
			continue
		}
		switch key {
		case schema.FieldPeakPeriod:
			field.Value = s.PeakPeriod
		case schema.FieldLastPeriod:
			field.Value = s.LastPeriod
		case schema.FieldQuarterlyAverages:
			field.Value = s.QuarterlyAverages
		default:
			v, _ := s.Numeric(key)
			field.Value = v
			if schema.IsPercentField(key) {
				field.Label = schema.GetPlainLabel(int(v))
			}
		}
		out.Fields = append(out.Fields, field)
	}
	return out
}

// writeCSVReport writes one row per selected field.
func writeCSVReport(w *csv.Writer, report *schema.Report, precision int, fmtFloat func(float64) string) error {
	for _, key := range report.Fields {
		numeric, label := "", ""
		if !report.HasError(key) && report.Summary != nil {
			if v, ok := report.Summary.Numeric(key); ok {
				numeric = fmtFloat(v)
				if schema.IsPercentField(key) {
					label = schema.GetPlainLabel(int(v))
				}
			}
		}
		rec := []string{string(key), report.FormatField(key, precision), numeric, label, report.Errors[key]}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// buildReportRows converts the selected fields to Parquet rows.
func buildReportRows(report *schema.Report, precision int) []parquet.ReportField {
	rows := make([]parquet.ReportField, 0, len(report.Fields))
	for _, key := range report.Fields {
		row := parquet.ReportField{Dataset: report.Dataset, Field: string(key)}
		if reason, failed := report.Errors[key]; failed || report.Summary == nil {
			row.Error = &reason
			rows = append(rows, row)
			continue
		}
		display := report.FormatField(key, precision)
		row.Value = &display
		if v, ok := report.Summary.Numeric(key); ok {
			row.Numeric = &v
		}
		rows = append(rows, row)
	}
	return rows
}

// writeReportTable generates and writes the human-readable table.
func writeReportTable(w io.Writer, report *schema.Report, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value", "Label", "Note"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	noteWidth := getMaxNoteWidth(cfg)
	var data [][]string
	for _, key := range report.Fields {
		label, note := "", ""
		if reason, failed := report.Errors[key]; failed {
			note = contract.TruncatePath(reason, noteWidth)
		} else if schema.IsPercentField(key) && report.Summary != nil {
			v, _ := report.Summary.Numeric(key)
			label = labelFor(int(v), cfg)
		}
		data = append(data, []string{fieldName(key), report.FormatField(key, cfg.Precision), label, note})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	points := 0
	if report.Summary != nil {
		points = report.Summary.TotalPoints
	}
	if _, err := fmt.Fprintf(w, "Showing %d fields (%d unavailable) over %s points\n",
		len(report.Fields), countFailed(report), humanize.Comma(int64(points))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Derivation completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// fieldNames are the table labels of each field.
var fieldNames = map[schema.FieldKey]string{
	schema.FieldTotalBefore:        "Total Before",
	schema.FieldTotalAfter:         "Total After",
	schema.FieldAvgBefore:          "Avg Before",
	schema.FieldAvgAfter:           "Avg After",
	schema.FieldImprovementPercent: "Improvement",
	schema.FieldPeakValue:          "Peak",
	schema.FieldPeakPeriod:         "Peak Period",
	schema.FieldAnnualizedPeak:     "Annualized Peak",
	schema.FieldLongestRun:         "Longest Run",
	schema.FieldRecoveryRate:       "Recovery Rate",
	schema.FieldQuarterlyAverages:  "Quarterly Avg",
	schema.FieldTotalPoints:        "Points",
	schema.FieldGrandTotal:         "Grand Total",
	schema.FieldLastValue:          "Last Value",
	schema.FieldLastPeriod:         "Last Period",
}

func fieldName(key schema.FieldKey) string {
	if name, ok := fieldNames[key]; ok {
		return name
	}
	return string(key)
}

func countFailed(report *schema.Report) int {
	n := 0
	for _, key := range report.Fields {
		if report.HasError(key) {
			n++
		}
	}
	return n
}

// formatCount renders an integer with thousands separators.
func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

// formatPercent renders an optional percent change.
func formatPercent(pct *int) string {
	if pct == nil {
		return schema.NotAvailable
	}
	return strconv.Itoa(*pct) + "%"
}
