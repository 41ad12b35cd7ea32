// Package reporting renders processed and engineered tables as CSV.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rainfall-feature-lab/internal/domain"
)

// timeLayout is the timestamp text format of every rendered CSV.
const timeLayout = "2006-01-02T15:04:05Z07:00" // RFC 3339

// RenderWideCSV renders the processed rainfall table as a CSV string:
// a "timestamp" column followed by the cell columns in table order.
// Missing values render as empty fields. Output is byte-identical for
// identical inputs.
func RenderWideCSV(table *domain.WideTable) string {
	var sb strings.Builder

	// Header
	sb.WriteString("timestamp")
	for _, col := range table.Columns {
		sb.WriteString(",")
		sb.WriteString(quoteField(col))
	}
	sb.WriteString("\n")

	// Rows
	for i, ts := range table.Times {
		sb.WriteString(ts.Format(timeLayout))
		for _, col := range table.Columns {
			sb.WriteString(",")
			writeValue(&sb, table.Values[col][i])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderFeatureCSV renders a feature table as a CSV string with columns in
// the table's canonical sorted-name order.
func RenderFeatureCSV(table *domain.FeatureTable) string {
	var sb strings.Builder

	// Header
	sb.WriteString("timestamp")
	for _, name := range table.Names {
		sb.WriteString(",")
		sb.WriteString(name)
	}
	sb.WriteString("\n")

	// Rows
	for i, ts := range table.Times {
		sb.WriteString(ts.Format(timeLayout))
		for _, name := range table.Names {
			sb.WriteString(",")
			writeValue(&sb, table.Columns[name][i])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// WriteFile writes rendered CSV to path, creating parent directories.
func WriteFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeValue renders a nullable value: empty field when missing, shortest
// round-trippable decimal otherwise.
func writeValue(sb *strings.Builder, v *float64) {
	if v == nil {
		return
	}
	sb.WriteString(strconv.FormatFloat(*v, 'g', -1, 64))
}

// quoteField quotes a header field containing the CSV separator. Cell
// labels always contain a comma, so they are always quoted.
func quoteField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}
