package spreadsheet

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	emptyHeaderNameConstant         = "__EMPTY"
	duplicateHeaderTemplateConstant = "%s_%d"
)

// Cell is a column name and the value a row holds for it.
type Cell struct {
	Column string
	Value  string
}

// Row is one data row. Index is zero-based among data rows.
type Row struct {
	Index  int
	Values map[string]string
}

// Sheet is a normalized header row and the non-blank data rows below it.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []Row
}

// Line returns the one-based sheet line of the row, counting the header.
func (row Row) Line() int {
	return row.Index + 2
}

// Lookup returns the value for column and whether the row carries the cell.
func (row Row) Lookup(column string) (string, bool) {
	value, exists := row.Values[column]
	return value, exists
}

// Cells returns the non-empty cells the row carries, in header order.
func (row Row) Cells(headers []string) []Cell {
	cells := make([]Cell, 0, len(row.Values))
	for _, header := range headers {
		if value, exists := row.Values[header]; exists && len(value) > 0 {
			cells = append(cells, Cell{Column: header, Value: value})
		}
	}
	return cells
}

// HasColumn reports whether the normalized header row contains column.
func (sheet Sheet) HasColumn(column string) bool {
	normalized := NormalizeHeader(column)
	for _, header := range sheet.Headers {
		if header == normalized {
			return true
		}
	}
	return false
}

// NormalizeHeader trims surrounding whitespace and applies Unicode NFC so that
// visually identical column names compare equal.
func NormalizeHeader(header string) string {
	return norm.NFC.String(strings.TrimSpace(header))
}

// buildSheet turns raw records into a Sheet. The first record is the header
// row; fully blank records are skipped; duplicate and empty headers receive
// numbered names.
func buildSheet(name string, rawRecords [][]string) Sheet {
	sheet := Sheet{Name: name, Headers: []string{}, Rows: []Row{}}
	if len(rawRecords) == 0 {
		return sheet
	}

	sheet.Headers = uniqueHeaders(rawRecords[0])

	for _, rawRecord := range rawRecords[1:] {
		if isBlankRecord(rawRecord) {
			continue
		}
		values := make(map[string]string, len(sheet.Headers))
		for columnIndex, header := range sheet.Headers {
			if columnIndex >= len(rawRecord) {
				break
			}
			values[header] = rawRecord[columnIndex]
		}
		sheet.Rows = append(sheet.Rows, Row{Index: len(sheet.Rows), Values: values})
	}

	return sheet
}

func uniqueHeaders(rawHeaders []string) []string {
	headers := make([]string, 0, len(rawHeaders))
	occurrences := make(map[string]int, len(rawHeaders))
	taken := make(map[string]struct{}, len(rawHeaders))
	for _, rawHeader := range rawHeaders {
		baseHeader := NormalizeHeader(rawHeader)
		if len(baseHeader) == 0 {
			baseHeader = emptyHeaderNameConstant
		}
		header := baseHeader
		for suffix := occurrences[baseHeader]; ; suffix++ {
			if suffix > 0 {
				header = fmt.Sprintf(duplicateHeaderTemplateConstant, baseHeader, suffix)
			}
			if _, exists := taken[header]; !exists {
				occurrences[baseHeader] = suffix + 1
				break
			}
		}
		taken[header] = struct{}{}
		headers = append(headers, header)
	}
	return headers
}

func isBlankRecord(rawRecord []string) bool {
	for _, value := range rawRecord {
		if len(value) > 0 {
			return false
		}
	}
	return true
}
