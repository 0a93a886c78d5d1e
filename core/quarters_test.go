package core

import (
	"testing"

	"github.com/huangsam/trendline/internal/loader"
	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterOf(t *testing.T) {
	tests := map[string]string{
		"Oct '23": "Q4 23",
		"Jan '24": "Q1 24",
		"jun '24": "Q2 24",
		"SEP '99": "Q3 99",
		"Dec '22": "Q4 22",
	}
	for label, want := range tests {
		got, err := QuarterOf(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
	}
}

func TestQuarterOfErrors(t *testing.T) {
	for _, label := range []string{"", "Oct", "Oct 23", "Foo '23", "Oct '2x", "Oct '", "Oct '23 extra", "Apr '١٢", "Apr '²³"} {
		_, err := QuarterOf(label)
		assert.ErrorIs(t, err, ErrParse, label)
	}
}

func TestQuarterlyAveragesBuiltin(t *testing.T) {
	quarters, err := QuarterlyAverages(loader.Builtin().Points)
	require.NoError(t, err)

	want := []struct {
		quarter string
		average int
	}{
		{"Q4 22", 3}, {"Q1 23", 4}, {"Q2 23", 9}, {"Q3 23", 8}, {"Q4 23", 15},
		{"Q1 24", 21}, {"Q2 24", 27}, {"Q3 24", 12}, {"Q4 24", 39},
	}
	require.Len(t, quarters, len(want))
	for i, w := range want {
		assert.Equal(t, w.quarter, quarters[i].Quarter)
		assert.Equal(t, w.average, quarters[i].Average, w.quarter)
	}

	// Every point lands in exactly one bucket
	count, total := 0, 0
	for _, q := range quarters {
		count += q.Count
		total += q.Total
	}
	assert.Equal(t, 20, count)
	assert.Equal(t, 297, total)
}

func TestQuarterlyAveragesSkippedMonth(t *testing.T) {
	quarters, err := QuarterlyAverages(schema.Series{
		{Period: "Jan '23", Value: 3},
		{Period: "Feb '23", Value: 5},
		{Period: "Apr '23", Value: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, []schema.QuarterAverage{
		{Quarter: "Q1 23", Average: 4, Count: 2, Total: 8},
		{Quarter: "Q2 23", Average: 10, Count: 1, Total: 10},
	}, quarters)
}

func TestQuarterlyAveragesKeepsFirstAppearanceOrder(t *testing.T) {
	quarters, err := QuarterlyAverages(schema.Series{
		{Period: "Jan '24", Value: 1},
		{Period: "Oct '23", Value: 2},
		{Period: "Feb '24", Value: 3},
	})
	require.NoError(t, err)
	require.Len(t, quarters, 2)
	assert.Equal(t, "Q1 24", quarters[0].Quarter)
	assert.Equal(t, 2, quarters[0].Average)
	assert.Equal(t, "Q4 23", quarters[1].Quarter)
}

// FuzzParsePeriod checks that parsing never panics and that accepted labels bucket consistently.
func FuzzParsePeriod(f *testing.F) {
	for _, seed := range []string{"Oct '23", "jan '00", "", "Foo '23", "Dec '", "  Mar   '24  ", "Apr '١٢", "Apr '²³"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, label string) {
		month, year, err := ParsePeriod(label)
		if err != nil {
			assert.ErrorIs(t, err, ErrParse)
			return
		}
		_, ok := monthQuarters[month]
		assert.True(t, ok, "month %q must be known", month)
		assert.True(t, isYearDigits(year), "year %q must be ASCII digits", year)

		quarter, err := QuarterOf(label)
		require.NoError(t, err)
		assert.Equal(t, monthQuarters[month]+" "+year, quarter)
	})
}
