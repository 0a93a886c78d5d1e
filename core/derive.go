package core

import (
	"fmt"
	"math"

	"github.com/huangsam/trendline/schema"
)

// annualizeFactor turns a monthly peak into a yearly run-rate.
const annualizeFactor = 12

// Derive computes the full metrics summary for a series. It fails fast on the
// first field that cannot be computed; use BuildReport for per-field results.
// An empty pivot skips the before/after fields and an empty marker skips the
// recovery rate.
func Derive(series schema.Series, opts schema.DeriveOptions) (*schema.MetricsSummary, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	d := derive(series, opts)
	for _, key := range schema.AllFieldKeys {
		if err := d.errs[key]; err != nil {
			return nil, err
		}
	}
	return d.summary, nil
}

// derivation holds every field of a summary plus the error of each field that failed.
// Skipped fields (no pivot or no marker) have neither a value nor an error.
type derivation struct {
	summary *schema.MetricsSummary
	errs    map[schema.FieldKey]error
	skipped map[schema.FieldKey]string
}

// pivotFields depend on the pivot period.
var pivotFields = []schema.FieldKey{
	schema.FieldTotalBefore,
	schema.FieldTotalAfter,
	schema.FieldAvgBefore,
	schema.FieldAvgAfter,
	schema.FieldImprovementPercent,
}

// derive runs each computation independently on an already validated series.
func derive(series schema.Series, opts schema.DeriveOptions) *derivation {
	d := &derivation{
		summary: &schema.MetricsSummary{Pivot: opts.Pivot, Marker: opts.Marker},
		errs:    make(map[schema.FieldKey]error),
		skipped: make(map[schema.FieldKey]string),
	}
	s := d.summary

	if opts.Pivot == "" {
		for _, key := range pivotFields {
			d.skipped[key] = "no pivot period"
		}
	} else {
		d.derivePivot(series, opts.Pivot)
	}

	peak := peakOf(series)
	s.PeakValue = peak.Value
	s.PeakPeriod = peak.Period
	s.AnnualizedPeak = peak.Value * annualizeFactor
	s.LongestIncreasingRun = longestIncreasingRun(series)

	if opts.Marker == "" {
		d.skipped[schema.FieldRecoveryRate] = "no marker period"
	} else if rate, err := recoveryRate(series, opts.Marker); err != nil {
		d.errs[schema.FieldRecoveryRate] = err
	} else {
		s.RecoveryRate = rate
	}

	if quarters, err := QuarterlyAverages(series); err != nil {
		d.errs[schema.FieldQuarterlyAverages] = err
	} else {
		s.QuarterlyAverages = quarters
	}

	last := series[len(series)-1]
	s.TotalPoints = len(series)
	s.GrandTotal = series.Sum()
	s.LastValue = last.Value
	s.LastPeriod = last.Period
	s.Events = eventsOf(series)
	return d
}

// derivePivot fills the before/after fields, recording an error per field on failure.
func (d *derivation) derivePivot(series schema.Series, pivot string) {
	s := d.summary
	before, after, err := splitAtPivot(series, pivot)
	if err != nil {
		for _, key := range pivotFields {
			d.errs[key] = err
		}
		return
	}

	s.TotalBefore = before.Sum()
	s.TotalAfter = after.Sum()
	s.PeriodComparison = []schema.PeriodTotal{
		{Label: "Before " + pivot, Total: s.TotalBefore},
		{Label: "After " + pivot, Total: s.TotalAfter},
	}

	// The pivot itself is in after, so after is never empty
	s.AvgAfter, _ = meanOf(after)

	avgBefore, err := meanOf(before)
	if err != nil {
		d.errs[schema.FieldAvgBefore] = fmt.Errorf("%w: nothing precedes pivot %q", err, pivot)
		d.errs[schema.FieldImprovementPercent] = d.errs[schema.FieldAvgBefore]
		return
	}
	s.AvgBefore = avgBefore

	improvement, err := improvementPercent(avgBefore, s.AvgAfter)
	if err != nil {
		d.errs[schema.FieldImprovementPercent] = err
		return
	}
	s.ImprovementPercent = improvement
}

// splitAtPivot returns the points strictly before the pivot and the points from the pivot onward.
func splitAtPivot(series schema.Series, pivot string) (before, after schema.Series, err error) {
	idx := series.IndexOf(pivot)
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: pivot %q", ErrNotFound, pivot)
	}
	return series[:idx], series[idx:], nil
}

// meanOf returns the arithmetic mean of a sub-sequence.
func meanOf(s schema.Series) (float64, error) {
	if len(s) == 0 {
		return 0, ErrDivisionByEmptyRange
	}
	return float64(s.Sum()) / float64(len(s)), nil
}

// improvementPercent is round((after - before) / before * 100).
func improvementPercent(avgBefore, avgAfter float64) (int, error) {
	if avgBefore == 0 {
		return 0, fmt.Errorf("%w: average before pivot is 0", ErrDivisionByZero)
	}
	return roundInt((avgAfter - avgBefore) / avgBefore * 100), nil
}

// peakOf returns the point with the highest value. Ties go to the first occurrence.
func peakOf(series schema.Series) schema.DataPoint {
	peak := series[0]
	for _, p := range series[1:] {
		if p.Value > peak.Value {
			peak = p
		}
	}
	return peak
}

// longestIncreasingRun counts the most consecutive strictly increasing transitions.
// Equal neighbors break the run.
func longestIncreasingRun(series schema.Series) int {
	longest, current := 0, 0
	for i := 1; i < len(series); i++ {
		if series[i].Value > series[i-1].Value {
			current++
			longest = max(longest, current)
		} else {
			current = 0
		}
	}
	return longest
}

// recoveryRate is round((last - marker) / marker * 100).
func recoveryRate(series schema.Series, marker string) (int, error) {
	idx := series.IndexOf(marker)
	if idx < 0 {
		return 0, fmt.Errorf("%w: marker %q", ErrNotFound, marker)
	}
	base := series[idx].Value
	if base == 0 {
		return 0, fmt.Errorf("%w: marker %q has value 0", ErrDivisionByZero, marker)
	}
	last := series[len(series)-1].Value
	return roundInt(float64(last-base) / float64(base) * 100), nil
}

// eventsOf lists the annotated periods in series order.
func eventsOf(series schema.Series) []schema.EventMarker {
	var events []schema.EventMarker
	for _, p := range series {
		if p.Event != "" {
			events = append(events, schema.EventMarker{Period: p.Period, Label: p.Event})
		}
	}
	return events
}

// roundInt rounds half away from zero.
func roundInt(f float64) int {
	return int(math.Round(f))
}
