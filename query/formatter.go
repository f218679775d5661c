package query

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatCSV   OutputFormat = "csv"
	FormatYAML  OutputFormat = "yaml"
)

// Formatter formats query results
type Formatter struct {
	Format OutputFormat
}

// NewFormatter creates a new result formatter
func NewFormatter(format OutputFormat) *Formatter {
	return &Formatter{
		Format: format,
	}
}

// Write formats results according to the specified format
func (f *Formatter) Write(result *QueryResult, output io.Writer) error {
	switch f.Format {
	case FormatTable:
		return f.formatAsTable(result, output)
	case FormatJSON:
		return f.formatAsJSON(result, output)
	case FormatCSV:
		return f.formatAsCSV(result, output)
	case FormatYAML:
		return f.formatAsYAML(result, output)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOutputFormat, f.Format)
	}
}

func (f *Formatter) formatAsTable(result *QueryResult, output io.Writer) error {
	if len(result.Columns) == 0 {
		_, err := fmt.Fprintf(output, "%d rows affected on %d units (Time: %v)\n", result.RowsAffected, len(result.Units), result.Duration)
		return err
	}

	if len(result.Rows) == 0 {
		_, err := fmt.Fprintln(output, "No results")
		return err
	}

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(result.Columns, "\t"))

	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, val := range row {
			cells[i] = formatValue(val)
		}

		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}

	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(output, "%d rows (Time: %v)\n", result.Count, result.Duration)

	return err
}

func (f *Formatter) formatAsJSON(result *QueryResult, output io.Writer) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")

	return encoder.Encode(resultDocument(result))
}

func (f *Formatter) formatAsCSV(result *QueryResult, output io.Writer) error {
	writer := csv.NewWriter(output)

	if len(result.Columns) == 0 {
		writer.Write([]string{"rows_affected"})
		writer.Write([]string{fmt.Sprintf("%d", result.RowsAffected)})
		writer.Flush()

		return writer.Error()
	}

	if err := writer.Write(result.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range result.Rows {
		strValues := make([]string, len(row))
		for i, val := range row {
			strValues[i] = formatValue(val)
		}

		if err := writer.Write(strValues); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()

	return writer.Error()
}

func (f *Formatter) formatAsYAML(result *QueryResult, output io.Writer) error {
	data, err := yaml.Marshal(resultDocument(result))
	if err != nil {
		return fmt.Errorf("failed to marshal results to YAML: %w", err)
	}

	_, err = output.Write(data)

	return err
}

func resultDocument(result *QueryResult) map[string]any {
	doc := map[string]any{
		"units":    result.Units,
		"duration": result.Duration.String(),
	}

	if len(result.Columns) == 0 {
		doc["rows_affected"] = result.RowsAffected
	} else {
		doc["data"] = rowsToMaps(result.Columns, result.Rows)
		doc["count"] = result.Count
	}

	return doc
}

// rowsToMaps converts rows to maps
func rowsToMaps(columns []string, rows [][]any) []map[string]any {
	result := make([]map[string]any, 0, len(rows))

	for _, row := range rows {
		rowMap := make(map[string]any, len(columns))

		for i, col := range columns {
			if i < len(row) {
				rowMap[col] = row[i]
			}
		}

		result = append(result, rowMap)
	}

	return result
}

// formatValue formats a value as a string
func formatValue(val any) string {
	if val == nil {
		return "NULL"
	}

	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// IsValidOutputFormat checks if the output format is valid
func IsValidOutputFormat(format string) bool {
	f := OutputFormat(strings.ToLower(format))
	return f == FormatTable || f == FormatJSON || f == FormatCSV || f == FormatYAML
}
