package cmd

import (
	"github.com/huangsam/trendline/core"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd derives the summary metrics of a series.
var reportCmd = &cobra.Command{
	Use:   "report [input]",
	Short: "Derive summary metrics from a monthly series.",
	Long: `Derive every summary field from a monthly count series.

Splits the series at the pivot period and reports:
- Totals and monthly averages before and after the pivot
- Improvement of the average across the pivot
- Peak month, annualized peak and longest increasing run
- Recovery rate from the marker period to the latest period
- Quarterly averages in order of first appearance

A field that cannot be computed shows N/A with the reason, and the
others still render. Without an input file the builtin dataset is used.

Examples:
  # Report on the builtin dataset
  trendline report

  # Report on your own series with a different pivot
  trendline report meetings.csv --pivot "Jan '24"

  # Only the recovery fields, disabling the pivot
  trendline report series.yaml --view recovery --pivot none

  # Export to an HTML dashboard
  trendline report series.json --output html --output-file report.html`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot derive report", err)
		}
	},
}
