package cmd

import (
	"github.com/huangsam/trendline/core"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/spf13/cobra"
)

// quartersCmd shows the quarterly averages of a series.
var quartersCmd = &cobra.Command{
	Use:   "quarters [input]",
	Short: "Average the series per calendar quarter.",
	Long: `Group the series into calendar quarters and show the rounded average of each.

Quarters appear in order of first appearance, with the change from the
previous quarter. Every period label must look like "Oct '23".

Examples:
  # Quarterly averages of the builtin dataset
  trendline quarters

  # Export to CSV
  trendline quarters series.csv --output csv --output-file quarters.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteQuarters(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute quarters", err)
		}
	},
}
