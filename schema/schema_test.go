package schema_test

import (
	"testing"

	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
)

func TestSeriesValidate(t *testing.T) {
	tests := []struct {
		name    string
		series  schema.Series
		wantErr error
	}{
		{"Valid", schema.Series{{Period: "Jan '23", Value: 3}, {Period: "Feb '23", Value: 0}}, nil},
		{"Empty", schema.Series{}, schema.ErrEmptySeries},
		{"Nil", nil, schema.ErrEmptySeries},
		{"Empty Period", schema.Series{{Period: "", Value: 1}}, schema.ErrEmptyPeriod},
		{"Negative", schema.Series{{Period: "Jan '23", Value: -1}}, schema.ErrNegativeValue},
		{"Duplicate", schema.Series{{Period: "Jan '23", Value: 1}, {Period: "Jan '23", Value: 2}}, schema.ErrDuplicatePeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSeriesHelpers(t *testing.T) {
	s := schema.Series{{Period: "Jan '23", Value: 3}, {Period: "Feb '23", Value: 5}, {Period: "Apr '23", Value: 10}}
	assert.Equal(t, 18, s.Sum())
	assert.Equal(t, 2, s.IndexOf("Apr '23"))
	assert.Equal(t, -1, s.IndexOf("May '23"))
}

func TestGetViewFields(t *testing.T) {
	t.Run("full returns a copy of every field", func(t *testing.T) {
		fields := schema.GetViewFields(schema.FullView)
		assert.Equal(t, schema.AllFieldKeys, fields)
		fields[0] = "mutated"
		assert.Equal(t, schema.FieldTotalBefore, schema.AllFieldKeys[0])
	})

	t.Run("every view field is valid", func(t *testing.T) {
		for _, view := range schema.AllReportViews {
			for _, key := range schema.GetViewFields(view) {
				_, ok := schema.ValidFieldKeys[key]
				assert.True(t, ok, "view %s has unknown field %s", view, key)
			}
		}
	})

	t.Run("quarterly view", func(t *testing.T) {
		assert.Equal(t, []schema.FieldKey{schema.FieldQuarterlyAverages}, schema.GetViewFields(schema.QuarterlyView))
	})
}
