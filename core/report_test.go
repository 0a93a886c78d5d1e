package core

import (
	"testing"

	"github.com/huangsam/trendline/internal/loader"
	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReportBuiltin(t *testing.T) {
	report, err := BuildReport(loader.Builtin().Points, builtinOpts())
	require.NoError(t, err)
	assert.False(t, report.Failed())
	assert.Equal(t, schema.FullView, report.View)
	assert.Equal(t, schema.AllFieldKeys, report.Fields)
	assert.Len(t, report.Trend, 20)

	summary, err := Derive(loader.Builtin().Points, builtinOpts())
	require.NoError(t, err)
	assert.Equal(t, summary, report.Summary)
}

func TestBuildReportIsolatesFailures(t *testing.T) {
	series := loader.Builtin().Points
	report, err := BuildReport(series, schema.DeriveOptions{Pivot: "Dec '22", Marker: "Jul '24"})
	require.NoError(t, err)

	// The pivot is the first period, so only the averages that need "before" fail
	assert.False(t, report.HasError(schema.FieldTotalBefore))
	assert.False(t, report.HasError(schema.FieldAvgAfter))
	assert.True(t, report.HasError(schema.FieldAvgBefore))
	assert.True(t, report.HasError(schema.FieldImprovementPercent))
	assert.Contains(t, report.Errors[schema.FieldRecoveryRate], "Jul '24")

	// Unrelated fields are intact
	assert.Equal(t, 41, report.Summary.PeakValue)
	assert.Equal(t, 297, report.Summary.TotalAfter)
	assert.Len(t, report.Summary.QuarterlyAverages, 9)
}

func TestBuildReportSkippedFields(t *testing.T) {
	report, err := BuildReport(loader.Builtin().Points, schema.DeriveOptions{})
	require.NoError(t, err)
	for _, key := range pivotFields {
		assert.Equal(t, "no pivot period", report.Errors[key])
	}
	assert.Equal(t, "no marker period", report.Errors[schema.FieldRecoveryRate])
	assert.False(t, report.HasError(schema.FieldPeakValue))
}

func TestBuildReportUnparseableQuarter(t *testing.T) {
	report, err := BuildReport(schema.Series{
		{Period: "Jan '23", Value: 2},
		{Period: "week 2", Value: 4},
	}, schema.DeriveOptions{Pivot: "week 2"})
	require.NoError(t, err)
	assert.True(t, report.HasError(schema.FieldQuarterlyAverages))
	assert.Equal(t, 100, report.Summary.ImprovementPercent)
}

func TestBuildReportInvalidSeries(t *testing.T) {
	_, err := BuildReport(schema.Series{{Period: "Jan '23"}, {Period: "Jan '23"}}, schema.DeriveOptions{})
	assert.ErrorIs(t, err, schema.ErrDuplicatePeriod)
}

func TestReportFromSummary(t *testing.T) {
	summary, err := Derive(loader.Builtin().Points, schema.DeriveOptions{Pivot: "Oct '23"})
	require.NoError(t, err)

	report := reportFromSummary(loader.Builtin().Points, summary)
	assert.False(t, report.HasError(schema.FieldTotalBefore))
	assert.True(t, report.HasError(schema.FieldRecoveryRate))
	assert.Same(t, summary, report.Summary)
}

func TestWithFields(t *testing.T) {
	report, err := BuildReport(loader.Builtin().Points, builtinOpts())
	require.NoError(t, err)

	withFields(report, schema.RecoveryView, nil)
	assert.Equal(t, schema.RecoveryView, report.View)
	assert.Equal(t, schema.GetViewFields(schema.RecoveryView), report.Fields)

	explicit := []schema.FieldKey{schema.FieldGrandTotal, schema.FieldPeakValue}
	withFields(report, schema.SummaryView, explicit)
	assert.Equal(t, explicit, report.Fields)
	explicit[0] = schema.FieldLastValue
	assert.Equal(t, schema.FieldGrandTotal, report.Fields[0], "fields are copied")
}
