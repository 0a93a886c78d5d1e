package core

import (
	"slices"

	"github.com/huangsam/trendline/schema"
)

var fieldDefinitions = []schema.FieldDefinition{
	{
		Key:         schema.FieldTotalBefore,
		Name:        "Total Before",
		Formula:     "sum(series[:index(pivot)])",
		Description: "Sum of every value strictly before the pivot period.",
		Requires:    "pivot",
	},
	{
		Key:         schema.FieldTotalAfter,
		Name:        "Total After",
		Formula:     "sum(series[index(pivot):])",
		Description: "Sum of every value from the pivot period onward.",
		Requires:    "pivot",
	},
	{
		Key:         schema.FieldAvgBefore,
		Name:        "Average Before",
		Formula:     "totalBefore / len(before)",
		Description: "Mean monthly value before the pivot. N/A when the pivot is the first period.",
		Requires:    "pivot",
	},
	{
		Key:         schema.FieldAvgAfter,
		Name:        "Average After",
		Formula:     "totalAfter / len(after)",
		Description: "Mean monthly value from the pivot onward.",
		Requires:    "pivot",
	},
	{
		Key:         schema.FieldImprovementPercent,
		Name:        "Improvement",
		Formula:     "round((avgAfter - avgBefore) / avgBefore * 100)",
		Description: "Percent change of the monthly average across the pivot. N/A when avgBefore is 0.",
		Requires:    "pivot",
	},
	{
		Key:         schema.FieldPeakValue,
		Name:        "Peak",
		Formula:     "max(value)",
		Description: "Highest monthly value; ties go to the earliest period.",
	},
	{
		Key:         schema.FieldPeakPeriod,
		Name:        "Peak Period",
		Formula:     "period of max(value)",
		Description: "Period in which the peak occurred.",
	},
	{
		Key:         schema.FieldAnnualizedPeak,
		Name:        "Annualized Peak",
		Formula:     "peakValue * 12",
		Description: "Yearly run-rate if every month matched the peak.",
	},
	{
		Key:         schema.FieldLongestRun,
		Name:        "Longest Increasing Run",
		Formula:     "max consecutive count of value[i] > value[i-1]",
		Description: "Most consecutive strictly increasing transitions. Equal values break the run.",
	},
	{
		Key:         schema.FieldRecoveryRate,
		Name:        "Recovery Rate",
		Formula:     "round((last - value(marker)) / value(marker) * 100)",
		Description: "Percent change from the marker period to the latest period. N/A when the marker value is 0.",
		Requires:    "marker",
	},
	{
		Key:         schema.FieldQuarterlyAverages,
		Name:        "Quarterly Averages",
		Formula:     "round(sum / count) per \"<Q> <YY>\" bucket",
		Description: "Mean value per calendar quarter in order of first appearance. N/A when a period label cannot be parsed.",
	},
	{
		Key:         schema.FieldTotalPoints,
		Name:        "Total Points",
		Formula:     "len(series)",
		Description: "Number of periods in the series.",
	},
	{
		Key:         schema.FieldGrandTotal,
		Name:        "Grand Total",
		Formula:     "sum(series)",
		Description: "Sum of every value; always equals totalBefore + totalAfter.",
	},
	{
		Key:         schema.FieldLastValue,
		Name:        "Last Value",
		Formula:     "series[len-1].value",
		Description: "Value of the most recent period.",
	},
	{
		Key:         schema.FieldLastPeriod,
		Name:        "Last Period",
		Formula:     "series[len-1].period",
		Description: "Label of the most recent period.",
	},
}

// FieldDefinitions returns the name, formula and description of every summary field,
// along with the views that show it.
func FieldDefinitions() []schema.FieldDefinition {
	defs := make([]schema.FieldDefinition, len(fieldDefinitions))
	for i, def := range fieldDefinitions {
		for _, view := range schema.AllReportViews {
			if slices.Contains(schema.GetViewFields(view), def.Key) {
				def.Views = append(def.Views, view)
			}
		}
		defs[i] = def
	}
	return defs
}

// FieldDefinition looks up the definition of a single field.
func FieldDefinition(key schema.FieldKey) (schema.FieldDefinition, bool) {
	for _, def := range FieldDefinitions() {
		if def.Key == key {
			return def, true
		}
	}
	return schema.FieldDefinition{}, false
}
