package schema

// Change labels shared by text output and the dashboard.
const (
	SurgeLabel   = "Surge"
	GrowthLabel  = "Growth"
	FlatLabel    = "Flat"
	DeclineLabel = "Decline"
)

// GetPlainLabel returns a plain text label describing the magnitude
// of a percent change such as the improvement or recovery rate.
func GetPlainLabel(percent int) string {
	switch {
	case percent >= 100:
		return SurgeLabel
	case percent >= 10:
		return GrowthLabel
	case percent > -10:
		return FlatLabel
	default:
		return DeclineLabel
	}
}

// EnrichedTrendPoint adds presentation data to a DataPoint.
type EnrichedTrendPoint struct {
	Index  int `json:"index"`
	Change int `json:"change"` // Difference from the previous point
	DataPoint
	Quarter string `json:"quarter,omitempty"`
}

// EnrichedQuarter adds presentation data to a QuarterAverage.
type EnrichedQuarter struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"` // Change label relative to the previous quarter
	QuarterAverage
	ChangePercent *int `json:"change_percent,omitempty"`
}

// EnrichQuarters adds rank and label to a list of quarter averages.
// The first quarter and quarters following a zero average have no change percent.
func EnrichQuarters(quarters []QuarterAverage) []EnrichedQuarter {
	output := make([]EnrichedQuarter, len(quarters))
	for i, q := range quarters {
		output[i] = EnrichedQuarter{Rank: i + 1, QuarterAverage: q}
		if i == 0 || quarters[i-1].Average == 0 {
			continue
		}
		prev := quarters[i-1].Average
		pct := roundHalfAway(float64(q.Average-prev) / float64(prev) * 100)
		output[i].ChangePercent = &pct
		output[i].Label = GetPlainLabel(pct)
	}
	return output
}

func roundHalfAway(f float64) int {
	if f < 0 {
		return -int(-f + 0.5)
	}
	return int(f + 0.5)
}
