package cmd

import (
	"github.com/huangsam/trendline/core"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/spf13/cobra"
)

// fieldsCmd displays the formal definitions of all summary fields.
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Display formulas and definitions for all summary fields",
	Long: `Show the formula, description and views of every summary field,
along with the failures that make a field show N/A.

No series is loaded - this is purely informational.

Examples:
  # Show every field
  trendline fields

  # Export the definitions as JSON
  trendline fields --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFields(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot display fields", err)
		}
	},
}
