package schema

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"expedientes/internal/deadline"
	"expedientes/internal/model"
)

// ErrMissingColumns is returned when the case id or office column is absent.
// Without them the records cannot be attributed to an office.
var ErrMissingColumns = errors.New("required identity columns missing")

// Options control normalization.
type Options struct {
	Mode Mode
	// Today is the reference date for records that have not been forwarded yet.
	Today time.Time
}

// Normalize maps a raw sheet onto canonical case records.
//
// Headers are matched after trimming; dates are parsed with opts.Mode and become nil when
// unparseable; a missing status column yields empty statuses; fully blank rows are skipped.
// DaysRemaining is always recomputed, never read from the sheet.
func Normalize(s *Sheet, opts Options) ([]model.CaseRecord, error) {
	idCol := s.Column(FieldCaseID)
	officeCol := s.Column(FieldOffice)

	var missing []string
	if idCol < 0 {
		missing = append(missing, FieldCaseID.Header())
	}
	if officeCol < 0 {
		missing = append(missing, FieldOffice.Header())
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	cols := make(map[Field]int, len(Fields))
	for _, f := range Fields {
		cols[f] = s.Column(f)
	}

	records := make([]model.CaseRecord, 0, len(s.Rows))
	for i, row := range s.Rows {
		if blankRow(row) {
			continue
		}
		rec := model.CaseRecord{
			Row:             i,
			CaseID:          s.Cell(i, cols[FieldCaseID]),
			Office:          s.Cell(i, cols[FieldOffice]),
			ProcessType:     s.Cell(i, cols[FieldProcessType]),
			QualityType:     s.Cell(i, cols[FieldQualityType]),
			Status:          s.Cell(i, cols[FieldStatus]),
			OriginationDate: s.date(i, cols[FieldOriginationDate], opts.Mode),
			StageStartDate:  s.date(i, cols[FieldStageStartDate], opts.Mode),
			StageEndDate:    s.date(i, cols[FieldStageEndDate], opts.Mode),
			ForwardedDate:   s.date(i, cols[FieldForwardedDate], opts.Mode),
		}
		rec.DaysRemaining = deadline.DaysRemaining(rec.OriginationDate, rec.ForwardedDate, opts.Today)
		records = append(records, rec)
	}
	return records, nil
}

// Stamp rewrites every parsed date of every record as a full timestamp.
// Cells that did not parse keep their original text.
func (s *Sheet) Stamp(records []model.CaseRecord) {
	for _, rec := range records {
		for _, f := range DateFields {
			col := s.Column(f)
			if col < 0 {
				continue
			}
			if t := dateOf(rec, f); t != nil {
				s.set(rec.Row, col, t.Format(DateLayout))
			}
		}
	}
}

func (s *Sheet) date(row, col int, mode Mode) *time.Time {
	t, ok := ParseDate(s.Cell(row, col), mode)
	if !ok {
		return nil
	}
	return &t
}

func dateOf(rec model.CaseRecord, f Field) *time.Time {
	switch f {
	case FieldOriginationDate:
		return rec.OriginationDate
	case FieldStageStartDate:
		return rec.StageStartDate
	case FieldStageEndDate:
		return rec.StageEndDate
	case FieldForwardedDate:
		return rec.ForwardedDate
	}
	return nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
