package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/huangsam/trendline/schema"
)

// monthQuarters maps a normalized month token to its calendar quarter.
var monthQuarters = map[string]string{
	"Jan": "Q1", "Feb": "Q1", "Mar": "Q1",
	"Apr": "Q2", "May": "Q2", "Jun": "Q2",
	"Jul": "Q3", "Aug": "Q3", "Sep": "Q3",
	"Oct": "Q4", "Nov": "Q4", "Dec": "Q4",
}

// ParsePeriod splits a label such as "Oct '23" into its month and year tokens.
// The month token is normalized to title case ("oct" becomes "Oct").
func ParsePeriod(label string) (month string, year string, err error) {
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q is not \"<Mon> '<YY>\"", ErrParse, label)
	}
	month = normalizeMonth(parts[0])
	if _, ok := monthQuarters[month]; !ok {
		return "", "", fmt.Errorf("%w: unknown month %q in %q", ErrParse, parts[0], label)
	}
	year, ok := strings.CutPrefix(parts[1], "'")
	if !ok || !isYearDigits(year) {
		return "", "", fmt.Errorf("%w: bad year %q in %q", ErrParse, parts[1], label)
	}
	return month, year, nil
}

// QuarterOf returns the bucket key for a period label, e.g. "Oct '23" is "Q4 23".
func QuarterOf(label string) (string, error) {
	month, year, err := ParsePeriod(label)
	if err != nil {
		return "", err
	}
	return monthQuarters[month] + " " + year, nil
}

// QuarterlyAverages buckets the series by calendar quarter and averages each bucket.
// Buckets keep the order in which they first appear in the series.
func QuarterlyAverages(series schema.Series) ([]schema.QuarterAverage, error) {
	var order []string
	buckets := make(map[string]*schema.QuarterAverage)
	for _, p := range series {
		key, err := QuarterOf(p.Period)
		if err != nil {
			return nil, err
		}
		b, ok := buckets[key]
		if !ok {
			b = &schema.QuarterAverage{Quarter: key}
			buckets[key] = b
			order = append(order, key)
		}
		b.Count++
		b.Total += p.Value
	}

	result := make([]schema.QuarterAverage, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		b.Average = roundInt(float64(b.Total) / float64(b.Count))
		result = append(result, *b)
	}
	return result, nil
}

// isYearDigits reports whether year is a non-empty run of ASCII digits.
func isYearDigits(year string) bool {
	if year == "" {
		return false
	}
	for i := 0; i < len(year); i++ {
		if year[i] < '0' || year[i] > '9' {
			return false
		}
	}
	return true
}

func normalizeMonth(token string) string {
	runes := []rune(strings.ToLower(token))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
