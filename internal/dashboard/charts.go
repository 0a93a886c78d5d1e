package dashboard

import (
	"fmt"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/trendline/schema"
)

// Chart display constants.
const (
	chartWidth  = "100%"
	chartHeight = "400px"
	lineWidth   = 2
	trendColor  = "#2563eb"
	beforeColor = "#a8a29e"
	afterColor  = "#16a34a"
	eventColor  = "#dc2626"
)

func initOpts() charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight})
}

// trendChart draws the series as a line with one reference line per event.
func trendChart(points []schema.DataPoint, events []schema.EventMarker) *charts.Line {
	labels := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		labels[i] = p.Period
		data[i] = opts.LineData{Value: p.Value, Name: p.Event}
	}

	markers := make([]opts.MarkLineNameXAxisItem, len(events))
	for i, e := range events {
		markers[i] = opts.MarkLineNameXAxisItem{Name: e.Label, XAxis: e.Period}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)
	line.SetXAxis(labels).AddSeries("Value", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: trendColor}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
		charts.WithMarkPointNameTypeItemOpts(opts.MarkPointNameTypeItem{Name: "Peak", Type: "max"}),
		charts.WithMarkLineNameXAxisItemOpts(markers...),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Label: &opts.Label{Show: opts.Bool(true), Formatter: "{b}", Color: eventColor},
		}),
	)
	return line
}

// comparisonChart draws the before and after totals around the pivot.
func comparisonChart(totals []schema.PeriodTotal) *charts.Bar {
	labels := make([]string, len(totals))
	data := make([]opts.BarData, len(totals))
	colors := []string{beforeColor, afterColor}
	for i, t := range totals {
		labels[i] = t.Label
		data[i] = opts.BarData{Value: t.Total, ItemStyle: &opts.ItemStyle{Color: colors[i%len(colors)]}}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)
	bar.SetXAxis(labels).AddSeries("Total", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	return bar
}

// quarterChart draws one bar per quarter average.
func quarterChart(quarters []schema.QuarterAverage) *charts.Bar {
	labels := make([]string, len(quarters))
	data := make([]opts.BarData, len(quarters))
	for i, q := range quarters {
		labels[i] = q.Quarter
		data[i] = opts.BarData{Value: q.Average, Name: fmt.Sprintf("%d points", q.Count)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)
	bar.SetXAxis(labels).AddSeries("Average", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: trendColor}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	return bar
}

// statFields are the report fields shown as stat cards, in display order.
var statFields = []struct {
	key   schema.FieldKey
	label string
}{
	{schema.FieldImprovementPercent, "Improvement"},
	{schema.FieldRecoveryRate, "Recovery"},
	{schema.FieldAvgBefore, "Avg Before"},
	{schema.FieldAvgAfter, "Avg After"},
	{schema.FieldTotalBefore, "Total Before"},
	{schema.FieldTotalAfter, "Total After"},
	{schema.FieldPeakValue, "Peak"},
	{schema.FieldAnnualizedPeak, "Annualized Peak"},
	{schema.FieldLongestRun, "Longest Run"},
	{schema.FieldGrandTotal, "Grand Total"},
	{schema.FieldLastValue, "Latest"},
}

// ReportPage builds the dashboard for a derived report, limited to the report's fields.
// Failed fields show as N/A with the failure reason underneath.
func ReportPage(report *schema.Report, precision int) *Page {
	page := NewPage(fmt.Sprintf("%s trend", report.Dataset), fmt.Sprintf("View: %s", report.View))
	if report.Summary == nil {
		return page
	}
	s := report.Summary

	for _, f := range statFields {
		if !slices.Contains(report.Fields, f.key) {
			continue
		}
		stat := Stat{Label: f.label, Value: report.FormatField(f.key, precision), Tone: ToneNeutral}
		switch {
		case report.HasError(f.key):
			stat.Note = report.Errors[f.key]
		case schema.IsPercentField(f.key):
			v, _ := s.Numeric(f.key)
			stat.Tone = toneOf(int(v))
			stat.Note = schema.GetPlainLabel(int(v))
		case f.key == schema.FieldPeakValue:
			stat.Note = s.PeakPeriod
		case f.key == schema.FieldLastValue:
			stat.Note = s.LastPeriod
		}
		page.AddStats(stat)
	}

	if len(report.Trend) > 0 {
		page.Add(Section{
			Title:    "Monthly Trend",
			Subtitle: fmt.Sprintf("%d periods, dashed lines mark events", len(report.Trend)),
			Chart:    trendChart(report.Trend, s.Events),
		})
	}
	if s.Pivot != "" && len(s.PeriodComparison) > 0 && !report.HasError(schema.FieldTotalBefore) &&
		(slices.Contains(report.Fields, schema.FieldTotalBefore) || slices.Contains(report.Fields, schema.FieldTotalAfter)) {
		page.Add(Section{
			Title:    "Before and After " + s.Pivot,
			Subtitle: "Totals on either side of the pivot period",
			Chart:    comparisonChart(s.PeriodComparison),
		})
	}
	if slices.Contains(report.Fields, schema.FieldQuarterlyAverages) && !report.HasError(schema.FieldQuarterlyAverages) {
		page.Add(Section{
			Title:    "Quarterly Averages",
			Subtitle: "Rounded mean per calendar quarter",
			Chart:    quarterChart(s.QuarterlyAverages),
		})
	}
	return page
}

// TrendPage builds the dashboard for a trend result.
func TrendPage(result *schema.TrendResult) *Page {
	page := NewPage(fmt.Sprintf("%s trend", result.Dataset), "Monthly values with event markers")
	points := make([]schema.DataPoint, len(result.Points))
	for i, p := range result.Points {
		points[i] = p.DataPoint
	}
	page.AddStats(
		Stat{Label: "Periods", Value: fmt.Sprint(len(points)), Tone: ToneNeutral},
		Stat{Label: "Peak", Value: fmt.Sprint(result.Peak.Value), Note: result.Peak.Period, Tone: ToneNeutral},
		Stat{Label: "Events", Value: fmt.Sprint(len(result.Events)), Tone: ToneNeutral},
	)
	page.Add(Section{Title: "Monthly Trend", Chart: trendChart(points, result.Events)})
	return page
}

// QuartersPage builds the dashboard for quarterly averages.
func QuartersPage(result *schema.QuartersResult) *Page {
	page := NewPage(fmt.Sprintf("%s quarters", result.Dataset), "Rounded mean per calendar quarter")
	quarters := make([]schema.QuarterAverage, len(result.Quarters))
	for i, q := range result.Quarters {
		quarters[i] = q.QuarterAverage
	}
	if n := len(result.Quarters); n > 0 {
		last := result.Quarters[n-1]
		stat := Stat{Label: "Latest Quarter", Value: fmt.Sprint(last.Average), Note: last.Quarter, Tone: ToneNeutral}
		if last.ChangePercent != nil {
			stat.Note = fmt.Sprintf("%s, %+d%% vs previous", last.Quarter, *last.ChangePercent)
			stat.Tone = toneOf(*last.ChangePercent)
		}
		page.AddStats(Stat{Label: "Quarters", Value: fmt.Sprint(n), Tone: ToneNeutral}, stat)
	}
	page.Add(Section{Title: "Quarterly Averages", Chart: quarterChart(quarters)})
	return page
}

func toneOf(percent int) Tone {
	switch schema.GetPlainLabel(percent) {
	case schema.SurgeLabel, schema.GrowthLabel:
		return ToneGood
	case schema.FlatLabel:
		return ToneFlat
	default:
		return ToneBad
	}
}
