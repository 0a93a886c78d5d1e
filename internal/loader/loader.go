// Package loader reads and writes monthly series in the supported file formats.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huangsam/trendline/internal/parquet"
	"github.com/huangsam/trendline/schema"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned when a format cannot be read or written.
var ErrUnsupportedFormat = errors.New("unsupported format")

// csvHeader is the column layout written by Encode.
var csvHeader = []string{"period", "value", "event"}

// Load reads a dataset from path. An empty path or the builtin format
// returns the bundled dataset. The result is always validated.
func Load(path string, format schema.InputFormat) (*schema.Dataset, error) {
	if path == "" || format == schema.BuiltinFormat {
		return Builtin(), nil
	}
	if format == "" || format == schema.AutoFormat {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	var (
		dataset *schema.Dataset
		err     error
	)
	switch format {
	case schema.ParquetFormat:
		dataset, err = loadParquet(path)
	case schema.JSONFormat, schema.YAMLFormat, schema.CSVFormat:
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		dataset, err = Decode(bytes.NewReader(data), format)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if dataset.Name == "" {
		dataset.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := dataset.Points.Validate(); err != nil {
		return nil, fmt.Errorf("invalid series in %s: %w", path, err)
	}
	return dataset, nil
}

// DetectFormat picks an input format from the file extension.
func DetectFormat(path string) (schema.InputFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return schema.JSONFormat, nil
	case ".yaml", ".yml":
		return schema.YAMLFormat, nil
	case ".csv":
		return schema.CSVFormat, nil
	case ".parquet":
		return schema.ParquetFormat, nil
	default:
		return "", fmt.Errorf("%w: cannot detect format of %q, use --format", ErrUnsupportedFormat, path)
	}
}

// Decode reads a dataset from a stream. It does not validate the series.
// JSON and YAML accept either a dataset object or a bare list of points.
func Decode(r io.Reader, format schema.InputFormat) (*schema.Dataset, error) {
	switch format {
	case schema.JSONFormat:
		return decodeJSON(r)
	case schema.YAMLFormat:
		return decodeYAML(r)
	case schema.CSVFormat:
		points, err := decodeCSV(r)
		if err != nil {
			return nil, err
		}
		return &schema.Dataset{Points: points}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Encode writes a dataset to w in the given format.
// CSV and Parquet carry only the points; the name, pivot and marker are dropped.
func Encode(w io.Writer, dataset *schema.Dataset, format schema.InputFormat) error {
	switch format {
	case schema.JSONFormat:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(dataset)
	case schema.YAMLFormat, schema.AutoFormat, schema.BuiltinFormat, "":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(dataset); err != nil {
			return err
		}
		return encoder.Close()
	case schema.CSVFormat:
		return encodeCSV(w, dataset.Points)
	case schema.ParquetFormat:
		return parquet.WriteRows(w, parquet.ConvertSeries(dataset.Points))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func decodeJSON(r io.Reader) (*schema.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var points schema.Series
		if err := json.Unmarshal(trimmed, &points); err != nil {
			return nil, fmt.Errorf("failed to decode JSON points: %w", err)
		}
		return &schema.Dataset{Points: points}, nil
	}
	var dataset schema.Dataset
	if err := json.Unmarshal(trimmed, &dataset); err != nil {
		return nil, fmt.Errorf("failed to decode JSON dataset: %w", err)
	}
	return &dataset, nil
}

func decodeYAML(r io.Reader) (*schema.Dataset, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return &schema.Dataset{}, nil
		}
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == yaml.SequenceNode {
		var points schema.Series
		if err := root.Decode(&points); err != nil {
			return nil, fmt.Errorf("failed to decode YAML points: %w", err)
		}
		return &schema.Dataset{Points: points}, nil
	}
	var dataset schema.Dataset
	if err := root.Decode(&dataset); err != nil {
		return nil, fmt.Errorf("failed to decode YAML dataset: %w", err)
	}
	return &dataset, nil
}

// decodeCSV reads a series with a header row naming at least the period and value columns.
func decodeCSV(r io.Reader) (schema.Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	periodCol, okPeriod := cols["period"]
	valueCol, okValue := cols["value"]
	if !okPeriod || !okValue {
		return nil, fmt.Errorf("CSV header must contain period and value columns (got %v)", header)
	}
	eventCol, hasEvent := cols["event"]

	var points schema.Series
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		if periodCol >= len(record) || valueCol >= len(record) {
			return nil, fmt.Errorf("CSV line %d has %d columns", line, len(record))
		}
		value, err := strconv.Atoi(strings.TrimSpace(record[valueCol]))
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: invalid value %q: %w", line, record[valueCol], err)
		}
		point := schema.DataPoint{Period: strings.TrimSpace(record[periodCol]), Value: value}
		if hasEvent && eventCol < len(record) {
			point.Event = strings.TrimSpace(record[eventCol])
		}
		points = append(points, point)
	}
	return points, nil
}

func encodeCSV(w io.Writer, points schema.Series) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range points {
		if err := writer.Write([]string{p.Period, strconv.Itoa(p.Value), p.Event}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func loadParquet(path string) (*schema.Dataset, error) {
	points, err := parquet.ReadSeriesParquet(path)
	if err != nil {
		return nil, err
	}
	return &schema.Dataset{Points: parquet.ToSeries(points)}, nil
}
