package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// checkFields maps each checkable metric to the summary field it gates.
var checkFields = map[schema.CheckMetric]schema.FieldKey{
	schema.ImprovementMetric: schema.FieldImprovementPercent,
	schema.RecoveryMetric:    schema.FieldRecoveryRate,
}

// ExecuteCheck runs the check command for CI/CD gating.
// It derives the report and exits non-zero when a metric falls below its minimum.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()

	result, err := GetCheckResult(WithSuppressHeader(ctx), cfg, mgr)
	if err != nil {
		return err
	}
	printCheckResult(result, time.Since(start))

	if !result.Passed {
		fmt.Printf("%d violation(s) found\n", len(result.Failures))
		os.Exit(1)
	}
	return nil
}

// GetCheckResult derives the configured series and evaluates it against the thresholds.
func GetCheckResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.CheckResult, error) {
	dataset, err := loadDataset(cfg)
	if err != nil {
		return nil, err
	}
	report, err := RunReport(ctx, cfg, mgr, dataset)
	if err != nil {
		return nil, err
	}
	return evaluateThresholds(report, cfg.Thresholds), nil
}

// evaluateThresholds compares each gated field against its minimum.
// A value equal to the minimum passes. Fields that could not be computed are
// skipped rather than failed.
func evaluateThresholds(report *schema.Report, thresholds map[schema.CheckMetric]int) *schema.CheckResult {
	result := &schema.CheckResult{
		Dataset:    report.Dataset,
		Pivot:      report.Summary.Pivot,
		Marker:     report.Summary.Marker,
		Thresholds: thresholds,
		Actual:     make(map[schema.CheckMetric]int),
		Skipped:    make(map[schema.CheckMetric]string),
	}

	for _, metric := range schema.AllCheckMetrics {
		threshold, ok := thresholds[metric]
		if !ok {
			continue
		}
		key := checkFields[metric]
		if report.HasError(key) {
			result.Skipped[metric] = report.Errors[key]
			continue
		}

		var value int
		switch metric {
		case schema.ImprovementMetric:
			value = report.Summary.ImprovementPercent
		case schema.RecoveryMetric:
			value = report.Summary.RecoveryRate
		}
		result.Actual[metric] = value
		if value < threshold {
			result.Failures = append(result.Failures, schema.CheckFailure{
				Metric:    metric,
				Value:     value,
				Threshold: threshold,
			})
		}
	}

	result.Passed = len(result.Failures) == 0
	return result
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(result *schema.CheckResult, duration time.Duration) {
	printCheckHeader(result, duration)

	if result.Passed {
		printCheckSuccess(result)
	} else {
		printCheckFailure(result)
	}
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(result *schema.CheckResult, duration time.Duration) {
	fmt.Println("Policy Check Results:")

	labels := []string{"Dataset:", "Pivot:", "Marker:", "Thresholds:"}
	values := []any{
		result.Dataset,
		orNone(result.Pivot),
		orNone(result.Marker),
		fmt.Sprintf("improvement=%d%%, recovery=%d%%",
			result.Thresholds[schema.ImprovementMetric],
			result.Thresholds[schema.RecoveryMetric]),
	}

	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		fmt.Printf("  %-*s %v\n", maxLabelLen+1, label, values[i])
	}
	fmt.Println()

	fmt.Printf("Checked %d metric(s) in %v\n\n", len(result.Actual), duration)
}

// printCheckSuccess prints the success case output.
func printCheckSuccess(result *schema.CheckResult) {
	fmt.Printf("✅ All metrics passed policy checks\n\n")
	fmt.Println("Values observed:")

	for _, metric := range schema.AllCheckMetrics {
		if value, ok := result.Actual[metric]; ok {
			fmt.Printf("  %s: %d%% (min %d%%)\n", metric, value, result.Thresholds[metric])
		}
	}
	printSkipped(result)
}

// printCheckFailure prints the failure case output.
func printCheckFailure(result *schema.CheckResult) {
	fmt.Printf("❌ Policy check failed: %d violation(s) found across %d metric(s)\n\n", len(result.Failures), len(result.Actual))

	for _, failure := range result.Failures {
		fmt.Printf("  %s: %d%% < %d%% (%s)\n",
			failure.Metric, failure.Value, failure.Threshold, schema.GetPlainLabel(failure.Value))
	}
	printSkipped(result)
	fmt.Println()
}

func printSkipped(result *schema.CheckResult) {
	for _, metric := range schema.AllCheckMetrics {
		if reason, ok := result.Skipped[metric]; ok {
			fmt.Printf("  %s: skipped (%s)\n", metric, reason)
		}
	}
}

func orNone(period string) string {
	if period == "" {
		return "none"
	}
	return period
}
