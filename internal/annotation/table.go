package annotation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"swextract/internal/faults"
)

// Table is an annotation spreadsheet held in memory. Cells are kept as text;
// numeric interpretation happens when columns are projected.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
	// Lines holds the 1-based CSV line number of each entry in Rows.
	Lines []int
}

// LoadTable reads a comma-delimited annotation file whose first record is a
// header row.
func LoadTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "load table", path, err)
	}
	defer file.Close()

	table, err := ReadTable(file)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "", "load table", path, err)
	}
	table.Path = path
	return table, nil
}

// ReadTable parses annotation CSV data from r. Byte order marks written by
// spreadsheet exports are honoured, including UTF-16 exports.
func ReadTable(r io.Reader) (*Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	table := &Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		line, _ := reader.FieldPos(0)
		table.Rows = append(table.Rows, record)
		table.Lines = append(table.Lines, line)
	}
	return table, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnName returns the header label for a zero-based column, or an empty
// string when the header is shorter.
func (t *Table) ColumnName(index int) string {
	if t == nil || index < 0 || index >= len(t.Header) {
		return ""
	}
	return t.Header[index]
}

// Column returns the cells of a zero-based column. Rows that are too short to
// hold the column produce an error naming the offending line.
func (t *Table) Column(index int) ([]string, error) {
	values := make([]string, 0, t.Len())
	for i, row := range t.Rows {
		if index >= len(row) {
			return nil, fmt.Errorf("line %d has %d fields, column %d required", t.Lines[i], len(row), index)
		}
		values = append(values, row[index])
	}
	return values, nil
}
