package cmd

import (
	"github.com/huangsam/trendline/core"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [input]",
	Short: "Enforce minimum improvement and recovery (fails build on violations)",
	Long: `Derive the series and enforce minimum percent thresholds.

Fails with a non-zero exit code when the improvement or the recovery rate
falls below its minimum. A metric that cannot be computed is skipped.

Default thresholds: 0 for improvement and recovery

Examples:
  # Require any growth at all
  trendline check series.csv

  # Custom thresholds
  trendline check series.csv --thresholds-override "improvement:50,recovery:100"

  # Thresholds from .trendline.yaml
  #   thresholds:
  #     improvement: 50
  trendline check series.csv --config .trendline.yaml`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Violations exit inside ExecuteCheck
		if err := core.ExecuteCheck(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Policy check failed", err)
		}
	},
}
