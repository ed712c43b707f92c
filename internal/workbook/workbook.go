// Package workbook decodes and encodes the tabular files that back the case store.
package workbook

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"expedientes/internal/schema"
)

// Format identifies a tabular file encoding.
type Format string

const (
	XLSX Format = "xlsx"
	XLS  Format = "xls"
	CSV  Format = "csv"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrReadOnlyFormat    = errors.New("spreadsheet format is read-only")
	ErrNoWorksheet       = errors.New("no worksheet found")
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return XLSX, nil
	case ".xls":
		return XLS, nil
	case ".csv":
		return CSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Decode reads the first worksheet of data. The first row is the header row.
func Decode(data []byte, f Format) (*schema.Sheet, error) {
	switch f {
	case XLSX:
		return decodeXLSX(data)
	case XLS:
		return decodeXLS(data)
	case CSV:
		return decodeCSV(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Encode serializes s as a complete file in format f.
func Encode(s *schema.Sheet, f Format) ([]byte, error) {
	switch f {
	case XLSX:
		return encodeXLSX(s)
	case CSV:
		return encodeCSV(s)
	case XLS:
		return nil, fmt.Errorf("%w: %q", ErrReadOnlyFormat, f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Patch applies the cells s reports as changed to original, a file previously decoded into s.
// XLSX files are edited in place so untouched cells keep their type and style; formats without
// cell types are re-encoded whole. A nil original falls back to Encode.
func Patch(original []byte, s *schema.Sheet, f Format) ([]byte, error) {
	if original == nil || f != XLSX {
		return Encode(s, f)
	}
	return patchXLSX(original, s)
}

func fromRows(name string, rows [][]string) *schema.Sheet {
	s := &schema.Sheet{Name: name}
	if len(rows) == 0 {
		return s
	}
	s.Headers = append([]string(nil), rows[0]...)
	s.Rows = make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		s.Rows = append(s.Rows, append([]string(nil), r...))
	}
	s.Pad()
	return s
}
