package workbook

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"expedientes/internal/schema"
)

const defaultSheetName = "Sheet1"

// decodeXLSX reads raw cell values so date cells arrive as Excel serials instead of
// being rendered through a locale-dependent number format.
func decodeXLSX(data []byte) (*schema.Sheet, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = file.Close() }()

	name := file.GetSheetName(0)
	if name == "" {
		return nil, ErrNoWorksheet
	}
	rows, err := file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return fromRows(name, rows), nil
}

func patchXLSX(original []byte, s *schema.Sheet) ([]byte, error) {
	file, err := excelize.OpenReader(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = file.Close() }()

	name := s.Name
	if name == "" {
		name = file.GetSheetName(0)
	}
	for _, ref := range s.Changes() {
		cell, err := excelize.CoordinatesToCellName(ref.Col+1, ref.Row+2)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(name, cell, cellValue(s, ref)); err != nil {
			return nil, fmt.Errorf("write %s: %w", cell, err)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue types the text at ref for excelize: dates as time.Time, day counts as ints,
// blanks as nil and everything else as text.
func cellValue(s *schema.Sheet, ref schema.CellRef) interface{} {
	if ref.Row < 0 {
		return s.Headers[ref.Col]
	}
	v := s.Rows[ref.Row][ref.Col]
	if v == "" {
		return nil
	}
	f, ok := s.FieldAt(ref.Col)
	switch {
	case !ok:
		return v
	case f == schema.FieldDaysRemaining:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	case f.IsDate():
		if t, err := time.Parse(schema.DateLayout, v); err == nil {
			return t
		}
	}
	return v
}

func encodeXLSX(s *schema.Sheet) ([]byte, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	name := s.Name
	if name == "" {
		name = defaultSheetName
	}
	if name != defaultSheetName {
		if err := file.SetSheetName(defaultSheetName, name); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	header := make([]interface{}, len(s.Headers))
	for i, h := range s.Headers {
		header[i] = h
	}
	if err := file.SetSheetRow(name, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	daysCol := s.Column(schema.FieldDaysRemaining)
	for i, row := range s.Rows {
		values := make([]interface{}, len(row))
		for j, cell := range row {
			values[j] = cell
			if j == daysCol {
				if n, err := strconv.Atoi(cell); err == nil {
					values[j] = n
				}
			}
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := file.SetSheetRow(name, ref, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
