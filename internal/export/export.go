// Package export renders a view of case records as a downloadable CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"expedientes/internal/model"
	"expedientes/internal/schema"
)

// CSV renders records with canonical headers. Dates are day-first; absent values are blank.
func CSV(records []model.CaseRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	headers := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		headers[i] = f.Header()
	}
	if err := w.Write(headers); err != nil {
		return nil, err
	}

	for _, rec := range records {
		if err := w.Write(row(rec)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename is the attachment name for an office's export.
func Filename(office string) string {
	return "expedientes_" + strings.ReplaceAll(office, "/", "_") + ".csv"
}

func row(rec model.CaseRecord) []string {
	out := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		switch f {
		case schema.FieldCaseID:
			out[i] = rec.CaseID
		case schema.FieldOffice:
			out[i] = rec.Office
		case schema.FieldOriginationDate:
			out[i] = date(rec.OriginationDate)
		case schema.FieldDaysRemaining:
			if rec.DaysRemaining != nil {
				out[i] = strconv.Itoa(*rec.DaysRemaining)
			}
		case schema.FieldProcessType:
			out[i] = rec.ProcessType
		case schema.FieldQualityType:
			out[i] = rec.QualityType
		case schema.FieldStageStartDate:
			out[i] = date(rec.StageStartDate)
		case schema.FieldStageEndDate:
			out[i] = date(rec.StageEndDate)
		case schema.FieldStatus:
			out[i] = rec.Status
		case schema.FieldForwardedDate:
			out[i] = date(rec.ForwardedDate)
		}
	}
	return out
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(schema.DisplayLayout)
}
