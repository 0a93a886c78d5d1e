package dashboard

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *schema.Report {
	return &schema.Report{
		Dataset: "meetings",
		View:    schema.FullView,
		Fields:  schema.GetViewFields(schema.FullView),
		Summary: &schema.MetricsSummary{
			Pivot:              "Oct '23",
			Marker:             "Aug '24",
			TotalBefore:        60,
			TotalAfter:         237,
			AvgBefore:          6.667,
			AvgAfter:           21.545,
			ImprovementPercent: 223,
			PeakValue:          41,
			PeakPeriod:         "Apr '24",
			AnnualizedPeak:     492,
			RecoveryRate:       -40,
			QuarterlyAverages:  []schema.QuarterAverage{{Quarter: "Q4 23", Average: 15, Count: 2, Total: 30}},
			PeriodComparison:   []schema.PeriodTotal{{Label: "Before Oct '23", Total: 60}, {Label: "After Oct '23", Total: 237}},
			Events:             []schema.EventMarker{{Period: "Oct '23", Label: "Started Role"}},
		},
		Trend: []schema.DataPoint{
			{Period: "Sep '23", Value: 7},
			{Period: "Oct '23", Value: 16, Event: "Started Role"},
		},
	}
}

func render(t *testing.T, page *Page) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))
	return buf.String()
}

func TestReportPage(t *testing.T) {
	page := ReportPage(sampleReport(), 1)
	require.Len(t, page.Sections, 3)
	assert.Equal(t, "Monthly Trend", page.Sections[0].Title)
	assert.Equal(t, "Before and After Oct '23", page.Sections[1].Title)
	assert.Equal(t, "Quarterly Averages", page.Sections[2].Title)

	stats := map[string]Stat{}
	for _, s := range page.Stats {
		stats[s.Label] = s
	}
	assert.Equal(t, "223%", stats["Improvement"].Value)
	assert.Equal(t, ToneGood, stats["Improvement"].Tone)
	assert.Equal(t, ToneBad, stats["Recovery"].Tone)
	assert.Equal(t, "6.7", stats["Avg Before"].Value)
	assert.Equal(t, "Apr '24", stats["Peak"].Note)

	html := render(t, page)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, echartsAsset)
	assert.Contains(t, html, "meetings trend")
	assert.Contains(t, html, "Started Role")
	assert.Equal(t, 1, strings.Count(html, "<html>"), "chart documents are flattened into the page")
}

func TestReportPageFailedFields(t *testing.T) {
	report := sampleReport()
	report.SetError(schema.FieldImprovementPercent, "division by zero")
	report.SetError(schema.FieldQuarterlyAverages, "cannot parse period label")

	page := ReportPage(report, 1)
	for _, s := range page.Stats {
		if s.Label == "Improvement" {
			assert.Equal(t, schema.NotAvailable, s.Value)
			assert.Equal(t, "division by zero", s.Note)
			assert.Equal(t, ToneNeutral, s.Tone)
		}
	}
	for _, section := range page.Sections {
		assert.NotEqual(t, "Quarterly Averages", section.Title)
	}
	assert.Contains(t, render(t, page), schema.NotAvailable)
}

func TestReportPageRespectsView(t *testing.T) {
	report := sampleReport()
	report.View = schema.QuarterlyView
	report.Fields = schema.GetViewFields(schema.QuarterlyView)

	page := ReportPage(report, 1)
	assert.Empty(t, page.Stats)
	require.Len(t, page.Sections, 2)
	assert.Equal(t, "Quarterly Averages", page.Sections[1].Title)
}

func TestTrendAndQuartersPages(t *testing.T) {
	trend := &schema.TrendResult{
		Dataset: "meetings",
		Points: []schema.EnrichedTrendPoint{
			{Index: 0, DataPoint: schema.DataPoint{Period: "Jan '24", Value: 19}},
			{Index: 1, Change: 3, DataPoint: schema.DataPoint{Period: "Feb '24", Value: 22}},
		},
		Peak: schema.DataPoint{Period: "Feb '24", Value: 22},
	}
	assert.Contains(t, render(t, TrendPage(trend)), "Monthly Trend")

	quarters := &schema.QuartersResult{
		Dataset: "meetings",
		Quarters: schema.EnrichQuarters([]schema.QuarterAverage{
			{Quarter: "Q1 24", Average: 21, Count: 3, Total: 63},
			{Quarter: "Q2 24", Average: 27, Count: 3, Total: 82},
		}),
	}
	page := QuartersPage(quarters)
	require.Len(t, page.Stats, 2)
	assert.Equal(t, "Q2 24, +29% vs previous", page.Stats[1].Note)
	assert.Contains(t, render(t, page), "meetings quarters")
}

type failingChart struct{}

func (failingChart) Render(io.Writer) error { return errors.New("boom") }

func TestPageRenderError(t *testing.T) {
	page := NewPage("t", "d")
	page.Add(Section{Title: "bad", Chart: failingChart{}})
	err := page.Render(io.Discard)
	assert.ErrorContains(t, err, "boom")
}

func TestExtractChartContent(t *testing.T) {
	fragment := `<div id="x"></div>`
	assert.Equal(t, fragment, extractChartContent(fragment))

	doc := `<!DOCTYPE html><html><head></head><body><div class="container"><div id="c"></div></div><script>chart()</script><style>.x{}</style></body></html>`
	assert.Equal(t, `<div class="container"><div id="c"></div></div><script>chart()</script>`, extractChartContent(doc))
}
