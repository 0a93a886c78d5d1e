package schema_test

import (
	"testing"

	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
)

func sampleReport() *schema.Report {
	return &schema.Report{
		Summary: &schema.MetricsSummary{
			TotalBefore:        60,
			AvgBefore:          6.6667,
			AvgAfter:           21.5454,
			ImprovementPercent: 223,
			PeakValue:          41,
			PeakPeriod:         "Apr '24",
			RecoveryRate:       -12,
			GrandTotal:         12345,
			LastPeriod:         "Oct '24",
			QuarterlyAverages: []schema.QuarterAverage{
				{Quarter: "Q4 22", Average: 3},
				{Quarter: "Q1 23", Average: 4},
			},
		},
	}
}

func TestFormatField(t *testing.T) {
	report := sampleReport()

	tests := []struct {
		key       schema.FieldKey
		precision int
		want      string
	}{
		{schema.FieldTotalBefore, 1, "60"},
		{schema.FieldAvgBefore, 1, "6.7"},
		{schema.FieldAvgAfter, 2, "21.55"},
		{schema.FieldImprovementPercent, 1, "223%"},
		{schema.FieldRecoveryRate, 1, "-12%"},
		{schema.FieldPeakPeriod, 1, "Apr '24"},
		{schema.FieldLastPeriod, 1, "Oct '24"},
		{schema.FieldGrandTotal, 1, "12345"},
		{schema.FieldQuarterlyAverages, 1, "Q4 22: 3, Q1 23: 4"},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, report.FormatField(tt.key, tt.precision))
		})
	}
}

func TestFormatFieldNotAvailable(t *testing.T) {
	report := sampleReport()
	report.SetError(schema.FieldAvgBefore, "division by empty range")
	assert.Equal(t, schema.NotAvailable, report.FormatField(schema.FieldAvgBefore, 1))
	assert.Equal(t, "223%", report.FormatField(schema.FieldImprovementPercent, 1))
	assert.True(t, report.Failed())

	assert.Equal(t, schema.NotAvailable, (&schema.Report{}).FormatField(schema.FieldPeakValue, 1))
}

func TestNumeric(t *testing.T) {
	summary := sampleReport().Summary
	v, ok := summary.Numeric(schema.FieldPeakValue)
	assert.True(t, ok)
	assert.Equal(t, 41.0, v)

	_, ok = summary.Numeric(schema.FieldPeakPeriod)
	assert.False(t, ok)
	_, ok = summary.Numeric(schema.FieldQuarterlyAverages)
	assert.False(t, ok)
}
