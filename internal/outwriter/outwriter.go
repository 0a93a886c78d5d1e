// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
	"golang.org/x/term"
)

// LogDerivationHeader prints a concise, 2-line header before a derivation.
func LogDerivationHeader(cfg *contract.Config, dataset *schema.Dataset, opts schema.DeriveOptions) {
	datasetIcon, rangeIcon := "🔎 ", "📅 "
	if !cfg.UseEmojis {
		datasetIcon, rangeIcon = "", ""
	}

	// Line 1: The dataset and view
	fmt.Printf("%sDataset: %s (View: %s)\n", datasetIcon, dataset.Name, cfg.View)

	// Line 2: The periods covered and the reference periods in use
	first, last := "", ""
	if n := len(dataset.Points); n > 0 {
		first, last = dataset.Points[0].Period, dataset.Points[n-1].Period
	}
	fmt.Printf("%sRange: %s → %s (%d points, pivot: %s, marker: %s)\n",
		rangeIcon, first, last, len(dataset.Points), orNone(opts.Pivot), orNone(opts.Marker))
}

func orNone(period string) string {
	if period == "" {
		return "none"
	}
	return period
}

// getTerminalWidth returns the width override, the detected terminal width, or 80.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Conservative default for narrow terminals and CI
		return 80
	}
	return detectedWidth
}

// getMaxNoteWidth calculates the maximum width for the free-text column of a table.
func getMaxNoteWidth(cfg *contract.Config) int {
	// Field + Value + Label columns with borders and padding
	available := getTerminalWidth(cfg) - 60
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}

// labelFor returns the change label of a percent, colored when enabled.
func labelFor(percent int, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(percent)
	}
	return schema.GetPlainLabel(percent)
}
