package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseInput returns the raw input that viper would produce with all defaults applied.
func baseInput() *ConfigRawInput {
	return &ConfigRawInput{
		Format:       string(schema.AutoFormat),
		View:         string(schema.FullView),
		Precision:    1,
		Output:       "text",
		CacheBackend: string(schema.SQLiteBackend),
		Emoji:        "no",
		Color:        "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	seriesFile := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(seriesFile, []byte("period,value,event\nJan '23,3,\n"), 0o644))

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
		check       func(*testing.T, *Config)
	}{
		{
			name: "valid minimal config selects builtin",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.BuiltinFormat, cfg.InputFormat)
				assert.Empty(t, cfg.InputPath)
				assert.Equal(t, schema.GetViewFields(schema.FullView), cfg.Fields)
				assert.True(t, cfg.UseColors)
				assert.False(t, cfg.UseEmojis)
			},
		},
		{
			name:   "existing input file",
			mutate: func(in *ConfigRawInput) { in.InputPathStr = seriesFile },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, seriesFile, cfg.InputPath)
				assert.Equal(t, schema.AutoFormat, cfg.InputFormat)
			},
		},
		{
			name:        "missing input file",
			mutate:      func(in *ConfigRawInput) { in.InputPathStr = filepath.Join(t.TempDir(), "nope.csv") },
			expectError: true,
		},
		{
			name:        "input path is a directory",
			mutate:      func(in *ConfigRawInput) { in.InputPathStr = t.TempDir() },
			expectError: true,
		},
		{
			name:        "invalid format",
			mutate:      func(in *ConfigRawInput) { in.Format = "xml" },
			expectError: true,
		},
		{
			name:        "invalid precision",
			mutate:      func(in *ConfigRawInput) { in.Precision = 3 },
			expectError: true,
		},
		{
			name:        "invalid output format",
			mutate:      func(in *ConfigRawInput) { in.Output = "invalid_format" },
			expectError: true,
		},
		{
			name:        "parquet output without file",
			mutate:      func(in *ConfigRawInput) { in.Output = "parquet" },
			expectError: true,
		},
		{
			name:        "invalid emoji",
			mutate:      func(in *ConfigRawInput) { in.Emoji = "sometimes" },
			expectError: true,
		},
		{
			name:        "negative width",
			mutate:      func(in *ConfigRawInput) { in.Width = -1 },
			expectError: true,
		},
		{
			name:   "view selects fields",
			mutate: func(in *ConfigRawInput) { in.View = "RECOVERY" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.RecoveryView, cfg.View)
				assert.Equal(t, schema.GetViewFields(schema.RecoveryView), cfg.Fields)
			},
		},
		{
			name:        "invalid view",
			mutate:      func(in *ConfigRawInput) { in.View = "everything" },
			expectError: true,
		},
		{
			name:   "explicit fields override view",
			mutate: func(in *ConfigRawInput) { in.View = "summary"; in.Fields = "peak_value, recovery_rate,peak_value" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []schema.FieldKey{schema.FieldPeakValue, schema.FieldRecoveryRate}, cfg.Fields)
			},
		},
		{
			name:        "unknown field",
			mutate:      func(in *ConfigRawInput) { in.Fields = "peak_value,velocity" },
			expectError: true,
		},
		{
			name:        "invalid cache backend",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = "invalid_backend" },
			expectError: true,
		},
		{
			name:        "mysql backend without connection string",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = string(schema.MySQLBackend) },
			expectError: true,
		},
		{
			name:        "postgresql backend without connection string",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = string(schema.PostgreSQLBackend) },
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = string(schema.MySQLBackend)
				in.CacheDBConnect = "user:pass@tcp(localhost:3306)/trendline"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.MySQLBackend, cfg.CacheBackend)
			},
		},
		{
			name: "history backend sharing the cache sqlite file",
			mutate: func(in *ConfigRawInput) {
				in.HistoryBackend = string(schema.SQLiteBackend)
				in.CacheDBConnect = "/tmp/shared.db"
				in.HistoryDBConnect = "/tmp/shared.db"
			},
			expectError: true,
		},
		{
			name:   "history backend with default paths",
			mutate: func(in *ConfigRawInput) { in.HistoryBackend = string(schema.SQLiteBackend) },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLiteBackend, cfg.HistoryBackend)
			},
		},
		{
			name:   "none backend",
			mutate: func(in *ConfigRawInput) { in.CacheBackend = string(schema.NoneBackend) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := baseInput()
			if tt.mutate != nil {
				tt.mutate(input)
			}

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)

			if tt.expectError {
				assert.Error(t, err, "contract.ProcessAndValidate should return an error for %s", tt.name)
				return
			}
			require.NoError(t, err, "contract.ProcessAndValidate should not return an error for %s", tt.name)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestProcessThresholds(t *testing.T) {
	improvement := 25
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expected    map[schema.CheckMetric]int
		expectError bool
	}{
		{
			name:     "defaults",
			input:    &ConfigRawInput{},
			expected: map[schema.CheckMetric]int{schema.ImprovementMetric: 0, schema.RecoveryMetric: 0},
		},
		{
			name:     "config file value",
			input:    &ConfigRawInput{Thresholds: ThresholdsRawInput{Improvement: &improvement}},
			expected: map[schema.CheckMetric]int{schema.ImprovementMetric: 25, schema.RecoveryMetric: 0},
		},
		{
			name: "flag overrides config file",
			input: &ConfigRawInput{
				Thresholds:    ThresholdsRawInput{Improvement: &improvement},
				ThresholdsStr: "improvement:50,recovery:100",
			},
			expected: map[schema.CheckMetric]int{schema.ImprovementMetric: 50, schema.RecoveryMetric: 100},
		},
		{
			name:        "unknown metric",
			input:       &ConfigRawInput{ThresholdsStr: "velocity:10"},
			expectError: true,
		},
		{
			name:        "missing value",
			input:       &ConfigRawInput{ThresholdsStr: "improvement"},
			expectError: true,
		},
		{
			name:        "non integer value",
			input:       &ConfigRawInput{ThresholdsStr: "recovery:1.5"},
			expectError: true,
		},
		{
			name:        "below floor",
			input:       &ConfigRawInput{ThresholdsStr: "improvement:-101"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := processThresholds(cfg, tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Thresholds)
		})
	}
}

func TestResolvePeriods(t *testing.T) {
	dataset := &schema.Dataset{Pivot: "Oct '23", Marker: "Aug '24"}

	cfg := &Config{}
	assert.Equal(t, schema.DeriveOptions{Pivot: "Oct '23", Marker: "Aug '24"}, cfg.ResolvePeriods(dataset))

	cfg = &Config{Pivot: "Jan '24", Marker: NoPeriod}
	assert.Equal(t, schema.DeriveOptions{Pivot: "Jan '24"}, cfg.ResolvePeriods(dataset))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Fields:     []schema.FieldKey{schema.FieldPeakValue},
		Thresholds: map[schema.CheckMetric]int{schema.RecoveryMetric: 100},
	}
	clone := cfg.Clone()
	clone.Fields[0] = schema.FieldGrandTotal
	clone.Thresholds[schema.RecoveryMetric] = 5

	assert.Equal(t, schema.FieldPeakValue, cfg.Fields[0])
	assert.Equal(t, 100, cfg.Thresholds[schema.RecoveryMetric])
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@localhost/db"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "dbname=trendline"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=trendline"))
}
