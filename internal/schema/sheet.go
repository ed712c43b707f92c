package schema

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the full-timestamp form dates are written back in.
const DateLayout = "2006-01-02 15:04:05"

// DisplayLayout is the day-first form shown to offices and used in exports.
const DisplayLayout = "02/01/2006"

// Sheet is a raw tabular load: one header row followed by data rows of text cells.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string

	changed map[CellRef]struct{}
}

// CellRef addresses a cell by zero-based data row and column. Row -1 is the header row.
type CellRef struct {
	Row, Col int
}

// Changes returns the cells written through SetDate, SetDays or Stamp whose text differs
// from what was loaded, plus any header added for a missing column, in row-major order.
func (s *Sheet) Changes() []CellRef {
	out := make([]CellRef, 0, len(s.changed))
	for ref := range s.changed {
		out = append(out, ref)
	}
	slices.SortFunc(out, func(a, b CellRef) int {
		if a.Row != b.Row {
			return cmp.Compare(a.Row, b.Row)
		}
		return cmp.Compare(a.Col, b.Col)
	})
	return out
}

// FieldAt returns the field whose alias heads column col.
func (s *Sheet) FieldAt(col int) (Field, bool) {
	if col < 0 || col >= len(s.Headers) {
		return 0, false
	}
	for _, f := range Fields {
		if s.Column(f) == col {
			return f, true
		}
	}
	return 0, false
}

// Column returns the index of the first header naming f, or -1.
func (s *Sheet) Column(f Field) int {
	for i, h := range s.Headers {
		if f.Matches(h) {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value at row, col; out-of-range positions read as empty.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 {
		return ""
	}
	r := s.Rows[row]
	if col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Clone returns a deep copy so callers can mutate rows without affecting s.
func (s *Sheet) Clone() *Sheet {
	out := &Sheet{
		Name:    s.Name,
		Headers: append([]string(nil), s.Headers...),
		Rows:    make([][]string, len(s.Rows)),
	}
	for i, r := range s.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	for ref := range s.changed {
		out.markChanged(ref)
	}
	return out
}

// Pad extends every row to the header width.
func (s *Sheet) Pad() {
	for i, r := range s.Rows {
		if len(r) < len(s.Headers) {
			s.Rows[i] = append(r, make([]string, len(s.Headers)-len(r))...)
		}
	}
}

// SetDate writes t as a full timestamp into the f column of row, adding the column if needed.
func (s *Sheet) SetDate(row int, f Field, t time.Time) {
	s.set(row, s.ensureColumn(f), t.Format(DateLayout))
}

// SetDays writes the day count into the days-remaining column of row; nil clears the cell.
func (s *Sheet) SetDays(row int, days *int) {
	v := ""
	if days != nil {
		v = strconv.Itoa(*days)
	}
	s.set(row, s.ensureColumn(FieldDaysRemaining), v)
}

func (s *Sheet) ensureColumn(f Field) int {
	if c := s.Column(f); c >= 0 {
		return c
	}
	s.Headers = append(s.Headers, f.Header())
	s.Pad()
	col := len(s.Headers) - 1
	s.markChanged(CellRef{Row: -1, Col: col})
	return col
}

func (s *Sheet) set(row, col int, v string) {
	if row < 0 || row >= len(s.Rows) {
		return
	}
	if col >= len(s.Rows[row]) {
		s.Rows[row] = append(s.Rows[row], make([]string, col+1-len(s.Rows[row]))...)
	}
	if s.Rows[row][col] == v {
		return
	}
	s.Rows[row][col] = v
	s.markChanged(CellRef{Row: row, Col: col})
}

func (s *Sheet) markChanged(ref CellRef) {
	if s.changed == nil {
		s.changed = make(map[CellRef]struct{})
	}
	s.changed[ref] = struct{}{}
}
