package contract

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/trendline/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 1
	MaxWidth         = 1000
)

// NoPeriod disables a pivot or marker that a dataset file would otherwise supply.
const NoPeriod = "none"

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ThresholdsRawInput holds minimum values from the YAML config file.
type ThresholdsRawInput struct {
	Improvement *int `mapstructure:"improvement"`
	Recovery    *int `mapstructure:"recovery"`
}

// Config holds the runtime configuration for a derivation.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath   string // Absolute path to the series file (empty = builtin dataset)
	InputFormat schema.InputFormat
	DatasetName string // Overrides the dataset name when non-empty

	Pivot  string // Empty = dataset default, NoPeriod = disabled
	Marker string // Empty = dataset default, NoPeriod = disabled

	View   schema.ReportView
	Fields []schema.FieldKey

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	// Thresholds is a mapping of [Metric] = minimum percent
	Thresholds map[schema.CheckMetric]int

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Format           string `mapstructure:"format"`
	Name             string `mapstructure:"name"`
	Pivot            string `mapstructure:"pivot"`
	Marker           string `mapstructure:"marker"`
	View             string `mapstructure:"view"`
	Fields           string `mapstructure:"fields"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	Width            int    `mapstructure:"width"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`

	// --- Fields from checkCmd.Flags() ---
	ThresholdsStr string `mapstructure:"thresholds-override"`

	// --- Minimum thresholds from config file ---
	Thresholds ThresholdsRawInput `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Fields != nil {
		clone.Fields = slices.Clone(c.Fields)
	}
	if c.Thresholds != nil {
		clone.Thresholds = make(map[schema.CheckMetric]int, len(c.Thresholds))
		maps.Copy(clone.Thresholds, c.Thresholds)
	}
	return &clone
}

// ResolvePeriods applies the pivot and marker overrides on top of dataset defaults.
func (c *Config) ResolvePeriods(dataset *schema.Dataset) schema.DeriveOptions {
	resolve := func(override, fallback string) string {
		switch override {
		case "":
			return fallback
		case NoPeriod:
			return ""
		default:
			return override
		}
	}
	return schema.DeriveOptions{
		Pivot:  resolve(c.Pivot, dataset.Pivot),
		Marker: resolve(c.Marker, dataset.Marker),
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processViewAndFields(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	if err := resolveInputPath(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache and history must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.DatasetName = strings.TrimSpace(input.Name)
	cfg.Pivot = strings.TrimSpace(input.Pivot)
	cfg.Marker = strings.TrimSpace(input.Marker)

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Width Validation ---
	if input.Width < 0 || input.Width > MaxWidth {
		return fmt.Errorf("width must be between 0 and %d (received %d)", MaxWidth, input.Width)
	}
	cfg.Width = input.Width

	// --- 2. Format Validation ---
	cfg.InputFormat = schema.InputFormat(strings.ToLower(input.Format))
	if cfg.InputFormat == "" {
		cfg.InputFormat = schema.AutoFormat
	}
	if _, ok := schema.ValidInputFormats[cfg.InputFormat]; !ok {
		return fmt.Errorf("invalid input format '%s'. must be auto, json, yaml, csv, parquet, builtin", input.Format)
	}

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, html", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return nil
}

// processViewAndFields resolves the view and the optional explicit field list.
func processViewAndFields(cfg *Config, input *ConfigRawInput) error {
	cfg.View = schema.ReportView(strings.ToLower(input.View))
	if cfg.View == "" {
		cfg.View = schema.FullView
	}
	if _, ok := schema.ValidReportViews[cfg.View]; !ok {
		return fmt.Errorf("invalid view '%s'. must be full, summary, recovery, quarterly", input.View)
	}

	if strings.TrimSpace(input.Fields) == "" {
		cfg.Fields = schema.GetViewFields(cfg.View)
		return nil
	}

	fields, err := ParseFieldsString(input.Fields)
	if err != nil {
		return fmt.Errorf("invalid --fields value: %w", err)
	}
	cfg.Fields = fields
	return nil
}

// ParseFieldsString parses a comma-separated list of field keys, keeping order and dropping repeats.
func ParseFieldsString(s string) ([]schema.FieldKey, error) {
	var fields []schema.FieldKey
	seen := make(map[schema.FieldKey]bool)
	for part := range strings.SplitSeq(s, ",") {
		key := schema.FieldKey(strings.ToLower(strings.TrimSpace(part)))
		if key == "" || seen[key] {
			continue
		}
		if _, ok := schema.ValidFieldKeys[key]; !ok {
			return nil, fmt.Errorf("unknown field '%s'", key)
		}
		seen[key] = true
		fields = append(fields, key)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields given")
	}
	return fields, nil
}

// processThresholds converts the raw threshold input into the final cfg.Thresholds map.
// Defaults are 0 for every metric. The --thresholds-override flag takes precedence
// over config file settings.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	thresholds := map[schema.CheckMetric]int{
		schema.ImprovementMetric: 0,
		schema.RecoveryMetric:    0,
	}

	// Override with config file values if provided
	if input.Thresholds.Improvement != nil {
		thresholds[schema.ImprovementMetric] = *input.Thresholds.Improvement
	}
	if input.Thresholds.Recovery != nil {
		thresholds[schema.RecoveryMetric] = *input.Thresholds.Recovery
	}

	// Override with command-line flag if provided (takes precedence)
	if input.ThresholdsStr != "" {
		parsed, err := parseThresholdsString(input.ThresholdsStr)
		if err != nil {
			return fmt.Errorf("invalid --thresholds-override format: %w", err)
		}
		maps.Copy(thresholds, parsed)
	}

	// A percent change of non-negative counts never drops below -100
	for metric, threshold := range thresholds {
		if threshold < -100 {
			return fmt.Errorf("threshold for %s must be at least -100 (received %d)", metric, threshold)
		}
	}

	cfg.Thresholds = thresholds
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveInputPath resolves the series file path. An empty path selects the builtin dataset.
func resolveInputPath(cfg *Config, input *ConfigRawInput) error {
	searchPath := strings.TrimSpace(input.InputPathStr)
	if searchPath == "" || cfg.InputFormat == schema.BuiltinFormat {
		cfg.InputPath = ""
		cfg.InputFormat = schema.BuiltinFormat
		return nil
	}

	absPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("input file does not exist: %s", searchPath)
	}
	if info.IsDir() {
		return fmt.Errorf("input path is a directory: %s", searchPath)
	}
	cfg.InputPath = filepath.Clean(absPath)
	return nil
}

// parseThresholdsString parses a string like "improvement:50,recovery:100"
// into a map of CheckMetric to int.
func parseThresholdsString(s string) (map[schema.CheckMetric]int, error) {
	thresholds := make(map[schema.CheckMetric]int)

	if s == "" {
		return thresholds, nil
	}

	parts := strings.SplitSeq(s, ",")
	for part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid threshold format '%s', expected 'metric:value'", part)
		}

		metricStr := strings.TrimSpace(keyValue[0])
		valueStr := strings.TrimSpace(keyValue[1])

		metric := schema.CheckMetric(strings.ToLower(metricStr))
		if _, ok := schema.ValidCheckMetrics[metric]; !ok {
			return nil, fmt.Errorf("invalid metric '%s', must be improvement or recovery", metricStr)
		}

		value, err := strconv.Atoi(valueStr)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold value '%s' for metric %s: %w", valueStr, metric, err)
		}

		thresholds[metric] = value
	}

	return thresholds, nil
}
