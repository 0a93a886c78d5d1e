package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/trendline/internal/contract"
)

// writeWithFile runs render against the output file, or stdout when outputFile is empty.
// A file that fails to close is reported as a write failure.
func writeWithFile(outputFile string, render func(io.Writer) error, successMsg string) (err error) {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file == os.Stdout {
		return render(file)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", outputFile, closeErr)
		}
		if err == nil {
			fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
		}
	}()
	return render(file)
}

// writeJSON encodes data with two-space indentation.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader writes header followed by the rows from writeRows.
// Buffered rows are flushed before returning, so a short write surfaces here.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	rowsErr := writeRows(csvWriter)

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return errors.Join(rowsErr, fmt.Errorf("failed to flush CSV: %w", err))
	}
	return rowsErr
}

// precisionFormatter renders averages with the configured number of decimals.
func precisionFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
}
