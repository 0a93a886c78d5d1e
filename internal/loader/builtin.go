package loader

import (
	"slices"

	"github.com/huangsam/trendline/schema"
)

// BuiltinName is the name of the bundled meetings dataset.
const BuiltinName = "meetings"

var builtinPoints = schema.Series{
	{Period: "Dec '22", Value: 3},
	{Period: "Jan '23", Value: 3},
	{Period: "Feb '23", Value: 4},
	{Period: "Mar '23", Value: 6},
	{Period: "Apr '23", Value: 10},
	{Period: "May '23", Value: 9},
	{Period: "Jun '23", Value: 9},
	{Period: "Aug '23", Value: 9},
	{Period: "Sep '23", Value: 7},
	{Period: "Oct '23", Value: 16, Event: "Started Role"},
	{Period: "Dec '23", Value: 14},
	{Period: "Jan '24", Value: 19},
	{Period: "Feb '24", Value: 22},
	{Period: "Mar '24", Value: 22},
	{Period: "Apr '24", Value: 41},
	{Period: "May '24", Value: 20},
	{Period: "Jun '24", Value: 21},
	{Period: "Aug '24", Value: 10, Event: "Reduced Hours"},
	{Period: "Sep '24", Value: 13, Event: "Reduced Hours Ended"},
	{Period: "Oct '24", Value: 39, Event: "Returned Full Time"},
}

// Builtin returns a fresh copy of the bundled business-development meetings dataset.
func Builtin() *schema.Dataset {
	return &schema.Dataset{
		Name:   BuiltinName,
		Pivot:  "Oct '23",
		Marker: "Aug '24",
		Points: slices.Clone(builtinPoints),
	}
}
