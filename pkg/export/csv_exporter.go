package export

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// DateLayout is the calendar format used for exported timestamps.
const DateLayout = "01/02/2006"

// Column maps a row key to the header shown in the export.
type Column struct {
	Key    string
	Header string
}

// Dataset defines tabular export content. Rows are looked up by Column.Key.
type Dataset struct {
	Columns []Column
	Rows    []map[string]interface{}
}

// Headers returns the column headers in order.
func (d Dataset) Headers() []string {
	headers := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		headers[i] = col.Header
	}
	return headers
}

// Record returns the formatted cells of row i in column order.
func (d Dataset) Record(i int) []string {
	record := make([]string, len(d.Columns))
	for j, col := range d.Columns {
		record[j] = FormatValue(d.Rows[i][col.Key])
	}
	return record
}

// ConvertToCSV renders rows as CSV text: a header line followed by one line
// per row, joined with "\n". An empty row set yields only the header line.
func ConvertToCSV(rows []map[string]interface{}, columns []Column) string {
	data := Dataset{Columns: columns, Rows: rows}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinEscaped(data.Headers()))
	for i := range rows {
		lines = append(lines, joinEscaped(data.Record(i)))
	}
	return strings.Join(lines, "\n")
}

// FormatValue converts a cell value to its CSV text before escaping.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return formatDate(v)
	case *time.Time:
		if v == nil {
			return ""
		}
		return formatDate(*v)
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		return FormatValue(rv.Elem().Interface())
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(encoded)
	default:
		return fmt.Sprint(value)
	}
}

// Escape quotes a field containing a comma, quote, CR or LF and doubles any
// embedded quotes. Other fields are returned unchanged.
func Escape(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// GenerateFilename returns "<prefix>-YYYY-MM-DD.csv" for the day of now.
func GenerateFilename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", prefix, now.Format("2006-01-02"))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

func joinEscaped(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = Escape(f)
	}
	return strings.Join(escaped, ",")
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	return []byte(ConvertToCSV(data.Rows, data.Columns)), nil
}
