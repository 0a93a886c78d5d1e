package cmd

import (
	"strings"

	"github.com/huangsam/trendline/core"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sampleSetup loads the few settings the sample command needs.
// The full setup would turn a missing input into the builtin format.
func sampleSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	cfg.InputFormat = schema.InputFormat(strings.ToLower(viper.GetString("format")))
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// sampleCmd writes the builtin dataset as a starting point for new series files.
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write the builtin dataset as a template series file",
	Long: `Write the builtin dataset in one of the input formats.

Use the result as a template for your own series. YAML is written
unless --format selects json, csv or parquet.

Examples:
  # Print the sample as YAML
  trendline sample

  # Start a CSV series
  trendline sample --format csv --output-file series.csv`,
	PreRunE: sampleSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSample(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot write sample", err)
		}
	},
}
