package schema

// CheckMetric names a summary field that can be gated by a threshold.
type CheckMetric string

// All metrics that can be checked.
const (
	ImprovementMetric CheckMetric = "improvement"
	RecoveryMetric    CheckMetric = "recovery"
)

// AllCheckMetrics lists the checkable metrics in display order.
var AllCheckMetrics = []CheckMetric{ImprovementMetric, RecoveryMetric}

// ValidCheckMetrics lists all valid check metrics.
var ValidCheckMetrics = map[CheckMetric]struct{}{
	ImprovementMetric: {},
	RecoveryMetric:    {},
}

// CheckResult holds the results of a policy check.
type CheckResult struct {
	Passed     bool
	Dataset    string
	Pivot      string
	Marker     string
	Thresholds map[CheckMetric]int
	Actual     map[CheckMetric]int
	Failures   []CheckFailure
	Skipped    map[CheckMetric]string // Metric to the reason it could not be computed
}

// CheckFailure represents a metric that fell below its minimum.
type CheckFailure struct {
	Metric    CheckMetric
	Value     int
	Threshold int
}
