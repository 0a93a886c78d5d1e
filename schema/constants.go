package schema

// Custom string types for type safety.
type (
	// FieldKey represents one field of the metrics summary.
	FieldKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// InputFormat represents the encoding of a series file.
	InputFormat string

	// ReportView represents a display configuration over the summary fields.
	ReportView string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// Field keys of the metrics summary.
const (
	FieldTotalBefore        FieldKey = "total_before"
	FieldTotalAfter         FieldKey = "total_after"
	FieldAvgBefore          FieldKey = "avg_before"
	FieldAvgAfter           FieldKey = "avg_after"
	FieldImprovementPercent FieldKey = "improvement_percent"
	FieldPeakValue          FieldKey = "peak_value"
	FieldPeakPeriod         FieldKey = "peak_period"
	FieldAnnualizedPeak     FieldKey = "annualized_peak"
	FieldLongestRun         FieldKey = "longest_increasing_run"
	FieldRecoveryRate       FieldKey = "recovery_rate"
	FieldQuarterlyAverages  FieldKey = "quarterly_averages"
	FieldTotalPoints        FieldKey = "total_points"
	FieldGrandTotal         FieldKey = "grand_total"
	FieldLastValue          FieldKey = "last_value"
	FieldLastPeriod         FieldKey = "last_period"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	HTMLOut    OutputMode = "html"
)

// All input formats supported.
const (
	AutoFormat    InputFormat = "auto" // default
	JSONFormat    InputFormat = "json"
	YAMLFormat    InputFormat = "yaml"
	CSVFormat     InputFormat = "csv"
	ParquetFormat InputFormat = "parquet"
	BuiltinFormat InputFormat = "builtin"
)

// All report views supported.
const (
	FullView      ReportView = "full" // default
	SummaryView   ReportView = "summary"
	RecoveryView  ReportView = "recovery"
	QuarterlyView ReportView = "quarterly"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllFieldKeys lists every summary field in display order.
var AllFieldKeys = []FieldKey{
	FieldTotalBefore,
	FieldTotalAfter,
	FieldAvgBefore,
	FieldAvgAfter,
	FieldImprovementPercent,
	FieldPeakValue,
	FieldPeakPeriod,
	FieldAnnualizedPeak,
	FieldLongestRun,
	FieldRecoveryRate,
	FieldQuarterlyAverages,
	FieldTotalPoints,
	FieldGrandTotal,
	FieldLastValue,
	FieldLastPeriod,
}

// AllReportViews returns a list of all supported report views.
var AllReportViews = []ReportView{FullView, SummaryView, RecoveryView, QuarterlyView}

// ValidFieldKeys lists all valid field keys.
var ValidFieldKeys = func() map[FieldKey]struct{} {
	m := make(map[FieldKey]struct{}, len(AllFieldKeys))
	for _, k := range AllFieldKeys {
		m[k] = struct{}{}
	}
	return m
}()

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	HTMLOut:    {},
}

// ValidInputFormats lists all valid input formats.
var ValidInputFormats = map[InputFormat]struct{}{
	AutoFormat:    {},
	JSONFormat:    {},
	YAMLFormat:    {},
	CSVFormat:     {},
	ParquetFormat: {},
	BuiltinFormat: {},
}

// ValidReportViews lists all valid report views.
var ValidReportViews = map[ReportView]struct{}{
	FullView:      {},
	SummaryView:   {},
	RecoveryView:  {},
	QuarterlyView: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// GetViewFields returns the ordered field keys shown by a given view.
func GetViewFields(view ReportView) []FieldKey {
	switch view {
	case SummaryView:
		return []FieldKey{
			FieldTotalBefore,
			FieldTotalAfter,
			FieldAvgBefore,
			FieldAvgAfter,
			FieldImprovementPercent,
			FieldPeakValue,
			FieldPeakPeriod,
		}
	case RecoveryView:
		return []FieldKey{
			FieldPeakValue,
			FieldPeakPeriod,
			FieldAnnualizedPeak,
			FieldRecoveryRate,
			FieldLongestRun,
		}
	case QuarterlyView:
		return []FieldKey{FieldQuarterlyAverages}
	default: // FullView
		out := make([]FieldKey, len(AllFieldKeys))
		copy(out, AllFieldKeys)
		return out
	}
}
