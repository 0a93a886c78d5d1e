package cmd

import (
	"github.com/huangsam/trendline/core"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/spf13/cobra"
)

// trendCmd shows the series point by point.
var trendCmd = &cobra.Command{
	Use:   "trend [input]",
	Short: "Show each period with its change and quarter.",
	Long: `Show the series point by point, as plotted by a trend line chart.

Each period carries its change from the previous period, its calendar
quarter and its event annotation. The peak period is marked.

Examples:
  # Trend of the builtin dataset
  trendline trend

  # Chart a series as HTML
  trendline trend series.csv --output html --output-file trend.html`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTrend(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show trend", err)
		}
	},
}
