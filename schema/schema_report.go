package schema

import (
	"strconv"
	"strings"
)

// Report is the per-field rendition of a derivation. Each field is computed
// independently, so a failure in one leaves the others intact.
type Report struct {
	Dataset string          `json:"dataset"`
	View    ReportView      `json:"view"`
	Fields  []FieldKey      `json:"fields"`
	Summary *MetricsSummary `json:"summary"`

	// Errors maps a field to the reason it could not be computed.
	Errors map[FieldKey]string `json:"errors,omitempty"`

	Trend []DataPoint `json:"trend,omitempty"`
}

// SetError records why a field could not be computed.
func (r *Report) SetError(key FieldKey, reason string) {
	if r.Errors == nil {
		r.Errors = make(map[FieldKey]string)
	}
	r.Errors[key] = reason
}

// HasError reports whether the given field failed to compute.
func (r *Report) HasError(key FieldKey) bool {
	_, ok := r.Errors[key]
	return ok
}

// Failed returns true when at least one field failed.
func (r *Report) Failed() bool {
	return len(r.Errors) > 0
}

// TrendResult is the line-chart view of a series.
type TrendResult struct {
	Dataset string               `json:"dataset"`
	Points  []EnrichedTrendPoint `json:"points"`
	Events  []EventMarker        `json:"events,omitempty"`
	Peak    DataPoint            `json:"peak"`
}

// QuartersResult is the bar-chart view of quarter averages.
type QuartersResult struct {
	Dataset  string            `json:"dataset"`
	Quarters []EnrichedQuarter `json:"quarters"`
}

// FieldDefinition documents a summary field for display purposes.
type FieldDefinition struct {
	Key         FieldKey     `json:"key"`
	Name        string       `json:"name"`
	Formula     string       `json:"formula"`
	Description string       `json:"description"`
	Views       []ReportView `json:"views"`
	Requires    string       `json:"requires,omitempty"` // "pivot", "marker" or empty
}

// FieldsRenderModel contains all processed data needed for displaying field definitions.
type FieldsRenderModel struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Fields      []FieldDefinition `json:"fields"`
	Errors      map[string]string `json:"errors"`
}

// NotAvailable is displayed in place of a field that could not be computed.
const NotAvailable = "N/A"

// Numeric returns the value of a numeric field. It returns false for text
// fields and for the quarterly averages.
func (s *MetricsSummary) Numeric(key FieldKey) (float64, bool) {
	switch key {
	case FieldTotalBefore:
		return float64(s.TotalBefore), true
	case FieldTotalAfter:
		return float64(s.TotalAfter), true
	case FieldAvgBefore:
		return s.AvgBefore, true
	case FieldAvgAfter:
		return s.AvgAfter, true
	case FieldImprovementPercent:
		return float64(s.ImprovementPercent), true
	case FieldPeakValue:
		return float64(s.PeakValue), true
	case FieldAnnualizedPeak:
		return float64(s.AnnualizedPeak), true
	case FieldLongestRun:
		return float64(s.LongestIncreasingRun), true
	case FieldRecoveryRate:
		return float64(s.RecoveryRate), true
	case FieldTotalPoints:
		return float64(s.TotalPoints), true
	case FieldGrandTotal:
		return float64(s.GrandTotal), true
	case FieldLastValue:
		return float64(s.LastValue), true
	default:
		return 0, false
	}
}

// IsPercentField reports whether a field is a rounded percent change.
func IsPercentField(key FieldKey) bool {
	return key == FieldImprovementPercent || key == FieldRecoveryRate
}

// FormatField renders one field for display. Failed fields render as NotAvailable,
// averages use the given number of decimals and percent fields carry a "%" suffix.
func (r *Report) FormatField(key FieldKey, precision int) string {
	if r.HasError(key) || r.Summary == nil {
		return NotAvailable
	}
	s := r.Summary
	switch key {
	case FieldAvgBefore, FieldAvgAfter:
		v, _ := s.Numeric(key)
		return strconv.FormatFloat(v, 'f', precision, 64)
	case FieldPeakPeriod:
		return s.PeakPeriod
	case FieldLastPeriod:
		return s.LastPeriod
	case FieldQuarterlyAverages:
		parts := make([]string, len(s.QuarterlyAverages))
		for i, q := range s.QuarterlyAverages {
			parts[i] = q.Quarter + ": " + strconv.Itoa(q.Average)
		}
		return strings.Join(parts, ", ")
	}
	v, ok := s.Numeric(key)
	if !ok {
		return NotAvailable
	}
	if IsPercentField(key) {
		return strconv.Itoa(int(v)) + "%"
	}
	return strconv.Itoa(int(v))
}
