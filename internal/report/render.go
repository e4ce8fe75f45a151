package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Format is an output format for a report
type Format string

const (
	// FormatTable renders a human-readable run summary
	FormatTable Format = "table"

	// FormatJSON renders indented JSON
	FormatJSON Format = "json"

	// FormatYAML renders YAML
	FormatYAML Format = "yaml"
)

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format '%s' (expected table, json or yaml)", s)
	}
}

// Render writes the report to w in the given format
func Render(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		return renderTable(w, r)
	default:
		return fmt.Errorf("unsupported output format '%s'", format)
	}
}

func renderTable(w io.Writer, r *Report) error {
	if _, err := fmt.Fprintf(w, "Catalog %s (%s run %s)\n", r.Catalog, r.Mode, r.RunID); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "KIND", "NAME", "OUTCOME", "DETAIL")
	for i, e := range r.Entries {
		if err := table.Append([]string{
			fmt.Sprintf("%d", i+1),
			string(e.Kind),
			e.QualifiedName,
			string(e.Outcome),
			e.Detail,
		}); err != nil {
			return fmt.Errorf("failed to add report row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render report table: %w", err)
	}

	if r.Fatal != "" {
		if _, err := fmt.Fprintf(w, "Fatal: %s\n", r.Fatal); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, r.Summary())
	return err
}
