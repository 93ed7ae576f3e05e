// Package tabular turns uploaded CSV and XLSX files into header-keyed records.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for file names without a .csv or .xlsx suffix.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile is returned when a file has no header row.
	ErrEmptyFile = errors.New("empty file: no header row")
)

// ParseError reports a file whose bytes could not be read as its format.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Format identifies a supported file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from the file name suffix, ignoring case.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, fileName)
	}
}

// Record is one data row keyed by header name. Line is the 1-based source
// line (CSV) or sheet row (XLSX). Cells past the end of a short row are
// present as "".
type Record struct {
	Line   int
	Fields map[string]string
}

// Table is a parsed file.
type Table struct {
	Header  []string
	Records []Record
}

// Parse reads a whole file of the given format. The first non-blank row is
// the header; later blank rows are skipped. Header cells and data cells are
// trimmed of surrounding whitespace.
func Parse(format Format, r io.Reader) (*Table, error) {
	switch format {
	case FormatCSV:
		return parseCSV(r)
	case FormatXLSX:
		return parseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func parseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(newSanitizingReader(r))
	cr.FieldsPerRecord = -1

	var b tableBuilder
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Format: FormatCSV, Err: err}
		}
		line, _ := cr.FieldPos(0)
		b.add(line, cells)
	}
	return b.table()
}

func parseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Err: err}
	}
	defer rows.Close()

	var b tableBuilder
	for line := 1; rows.Next(); line++ {
		cells, err := rows.Columns()
		if err != nil {
			return nil, &ParseError{Format: FormatXLSX, Err: fmt.Errorf("row %d: %w", line, err)}
		}
		b.add(line, cells)
	}
	if err := rows.Error(); err != nil {
		return nil, &ParseError{Format: FormatXLSX, Err: err}
	}
	return b.table()
}

// tableBuilder collects rows into a Table, taking the first non-blank row
// as the header.
type tableBuilder struct {
	header  []string
	records []Record
}

func (b *tableBuilder) add(line int, cells []string) {
	if isBlank(cells) {
		return
	}
	if b.header == nil {
		b.header = make([]string, len(cells))
		for i, c := range cells {
			b.header[i] = strings.TrimSpace(c)
		}
		return
	}

	fields := make(map[string]string, len(b.header))
	for i, name := range b.header {
		if name == "" {
			continue
		}
		// Only the cell edges are trimmed. Whitespace inside a cell, such as
		// around the separators of a joined actor list, is kept.
		v := ""
		if i < len(cells) {
			v = strings.TrimSpace(cells[i])
		}
		fields[name] = v
	}
	b.records = append(b.records, Record{Line: line, Fields: fields})
}

func (b *tableBuilder) table() (*Table, error) {
	if b.header == nil {
		return nil, ErrEmptyFile
	}
	return &Table{Header: b.header, Records: b.records}, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
