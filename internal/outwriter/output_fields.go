package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// WriteFields displays the definition of every summary field.
func WriteFields(model *schema.FieldsRenderModel, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"key", "name", "formula", "description", "views", "requires"}, func(cw *csv.Writer) error {
				return writeCSVFields(cw, model)
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFieldsText(w, model, cfg)
		}, "Wrote text")
	}
}

func writeCSVFields(w *csv.Writer, model *schema.FieldsRenderModel) error {
	for _, f := range model.Fields {
		rec := []string{
			string(f.Key),
			f.Name,
			f.Formula,
			f.Description,
			joinViews(f.Views, "|"),
			f.Requires,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}

// writeFieldsText displays the field definitions in human-readable text format.
func writeFieldsText(w io.Writer, model *schema.FieldsRenderModel, cfg *contract.Config) error {
	icon, errIcon := "📈 ", "⚠️  "
	if !cfg.UseEmojis {
		icon, errIcon = "", ""
	}
	title := icon + model.Title
	if _, err := fmt.Fprintf(w, "%s\n%s\n\n%s\n\n", title, strings.Repeat("=", len([]rune(title))), model.Description); err != nil {
		return err
	}

	for _, f := range model.Fields {
		if _, err := fmt.Fprintf(w, "%s (%s)\n", f.Name, f.Key); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   Formula: %s\n", f.Formula); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   %s\n", f.Description); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   Views: %s\n", joinViews(f.Views, ", ")); err != nil {
			return err
		}
		if f.Requires != "" {
			if _, err := fmt.Fprintf(w, "   Requires: %s period\n", f.Requires); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%sFields show %s when they fail:\n", errIcon, schema.NotAvailable); err != nil {
		return err
	}
	for _, kind := range slices.Sorted(maps.Keys(model.Errors)) {
		if _, err := fmt.Fprintf(w, "   %s: %s\n", kind, model.Errors[kind]); err != nil {
			return err
		}
	}
	return nil
}

func joinViews(views []schema.ReportView, sep string) string {
	parts := make([]string, len(views))
	for i, v := range views {
		parts[i] = string(v)
	}
	return strings.Join(parts, sep)
}
