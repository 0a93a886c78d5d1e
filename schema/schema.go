// Package schema has configs, models and global variables for all parts of trendline.
package schema

import (
	"errors"
	"fmt"
)

// Validation errors for a series.
var (
	ErrEmptySeries     = errors.New("series must contain at least one data point")
	ErrEmptyPeriod     = errors.New("data point period cannot be empty")
	ErrDuplicatePeriod = errors.New("duplicate period in series")
	ErrNegativeValue   = errors.New("data point value cannot be negative")
)

// DataPoint is one observation in a monthly series.
// Insertion order is chronological order; there is no independent timestamp.
type DataPoint struct {
	Period string `json:"period" yaml:"period" parquet:"period"`                                 // Ordinal label such as "Oct '23"
	Value  int    `json:"value" yaml:"value" parquet:"value"`                                    // Non-negative count for the period
	Event  string `json:"event,omitempty" yaml:"event,omitempty" parquet:"event,optional,snappy"` // Optional regime-change annotation
}

// Series is an ordered sequence of data points. It is never re-sorted.
type Series []DataPoint

// Validate checks the invariants every derivation relies on.
func (s Series) Validate() error {
	if len(s) == 0 {
		return ErrEmptySeries
	}
	seen := make(map[string]int, len(s))
	for i, p := range s {
		if p.Period == "" {
			return fmt.Errorf("%w (index %d)", ErrEmptyPeriod, i)
		}
		if p.Value < 0 {
			return fmt.Errorf("%w: %q has %d", ErrNegativeValue, p.Period, p.Value)
		}
		if prev, ok := seen[p.Period]; ok {
			return fmt.Errorf("%w: %q at index %d and %d", ErrDuplicatePeriod, p.Period, prev, i)
		}
		seen[p.Period] = i
	}
	return nil
}

// Sum returns the total of all values in the series.
func (s Series) Sum() int {
	total := 0
	for _, p := range s {
		total += p.Value
	}
	return total
}

// IndexOf returns the position of period in the series, or -1 when absent.
func (s Series) IndexOf(period string) int {
	for i, p := range s {
		if p.Period == period {
			return i
		}
	}
	return -1
}

// Dataset is a named series together with its default pivot and marker periods.
type Dataset struct {
	Name   string `json:"name" yaml:"name"`
	Pivot  string `json:"pivot,omitempty" yaml:"pivot,omitempty"`
	Marker string `json:"marker,omitempty" yaml:"marker,omitempty"`
	Points Series `json:"points" yaml:"points"`
}

// DeriveOptions selects the pivot and marker periods for a derivation.
// An empty period disables the computations that depend on it.
type DeriveOptions struct {
	Pivot  string `json:"pivot"`  // Boundary between the "before" and "after" sub-sequences
	Marker string `json:"marker"` // Baseline period for the recovery rate
}

// QuarterAverage is the rounded mean of all points that fall into one calendar quarter.
type QuarterAverage struct {
	Quarter string `json:"quarter"` // Bucket key such as "Q1 23"
	Average int    `json:"average"` // round(sum / count)
	Count   int    `json:"count"`   // Number of points in the bucket
	Total   int    `json:"total"`   // Sum of values in the bucket
}

// PeriodTotal is one bar of the before/after comparison chart.
type PeriodTotal struct {
	Label string `json:"label"`
	Total int    `json:"total"`
}

// EventMarker is an annotated period, drawn as a reference line on trend charts.
type EventMarker struct {
	Period string `json:"period"`
	Label  string `json:"label"`
}

// MetricsSummary is the full set of statistics derived from a series.
// It is recomputed on every call and carries no identity of its own.
type MetricsSummary struct {
	Pivot  string `json:"pivot,omitempty"`
	Marker string `json:"marker,omitempty"`

	TotalBefore        int     `json:"total_before"`
	TotalAfter         int     `json:"total_after"`
	AvgBefore          float64 `json:"avg_before"`
	AvgAfter           float64 `json:"avg_after"`
	ImprovementPercent int     `json:"improvement_percent"`

	PeakValue      int    `json:"peak_value"`
	PeakPeriod     string `json:"peak_period"`
	AnnualizedPeak int    `json:"annualized_peak"` // PeakValue * 12

	LongestIncreasingRun int `json:"longest_increasing_run"`
	RecoveryRate         int `json:"recovery_rate"`

	QuarterlyAverages []QuarterAverage `json:"quarterly_averages"`

	TotalPoints int    `json:"total_points"`
	GrandTotal  int    `json:"grand_total"`
	LastValue   int    `json:"last_value"`
	LastPeriod  string `json:"last_period"`

	PeriodComparison []PeriodTotal `json:"period_comparison,omitempty"`
	Events           []EventMarker `json:"events,omitempty"`
}
