package core

import (
	"slices"

	"github.com/huangsam/trendline/schema"
)

// BuildReport computes every field independently and records the failures per field,
// so a single bad field renders as N/A while the rest of the report stays intact.
// Only an invalid series fails the whole report.
func BuildReport(series schema.Series, opts schema.DeriveOptions) (*schema.Report, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	d := derive(series, opts)

	report := &schema.Report{
		View:    schema.FullView,
		Fields:  schema.GetViewFields(schema.FullView),
		Summary: d.summary,
		Trend:   slices.Clone(series),
	}
	for _, key := range schema.AllFieldKeys {
		if err := d.errs[key]; err != nil {
			report.SetError(key, err.Error())
		} else if reason, ok := d.skipped[key]; ok {
			report.SetError(key, reason)
		}
	}
	return report, nil
}

// reportFromSummary wraps an already derived summary, marking skipped fields.
func reportFromSummary(series schema.Series, summary *schema.MetricsSummary) *schema.Report {
	report := &schema.Report{
		View:    schema.FullView,
		Fields:  schema.GetViewFields(schema.FullView),
		Summary: summary,
		Trend:   slices.Clone(series),
	}
	if summary.Pivot == "" {
		for _, key := range pivotFields {
			report.SetError(key, "no pivot period")
		}
	}
	if summary.Marker == "" {
		report.SetError(schema.FieldRecoveryRate, "no marker period")
	}
	return report
}

// withFields narrows a report to a view or explicit field list.
func withFields(report *schema.Report, view schema.ReportView, fields []schema.FieldKey) *schema.Report {
	report.View = view
	if len(fields) > 0 {
		report.Fields = slices.Clone(fields)
	} else {
		report.Fields = schema.GetViewFields(view)
	}
	return report
}
