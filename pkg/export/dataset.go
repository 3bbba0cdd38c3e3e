package export

// Column maps a record field to a rendered header.
type Column struct {
	Field  string
	Header string
}

// Dataset defines tabular export content. Rows are keyed by column field.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

// Headers returns the rendered column headers.
func (d Dataset) Headers() []string {
	headers := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		headers[i] = col.Header
		if headers[i] == "" {
			headers[i] = col.Field
		}
	}
	return headers
}

// Record returns row values in column order.
func (d Dataset) Record(row map[string]string) []string {
	record := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		record[i] = row[col.Field]
	}
	return record
}
