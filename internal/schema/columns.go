package schema

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Field is a canonical case attribute that one or more spreadsheet headers map to.
type Field int

const (
	FieldCaseID Field = iota
	FieldOffice
	FieldOriginationDate
	FieldDaysRemaining
	FieldProcessType
	FieldQualityType
	FieldStageStartDate
	FieldStageEndDate
	FieldStatus
	FieldForwardedDate
)

// Fields lists every canonical field in the column order used for new files and exports.
var Fields = []Field{
	FieldCaseID,
	FieldOffice,
	FieldOriginationDate,
	FieldDaysRemaining,
	FieldProcessType,
	FieldQualityType,
	FieldStageStartDate,
	FieldStageEndDate,
	FieldStatus,
	FieldForwardedDate,
}

// DateFields are the attributes parsed as dates.
var DateFields = []Field{
	FieldOriginationDate,
	FieldStageStartDate,
	FieldStageEndDate,
	FieldForwardedDate,
}

// aliases holds the accepted headers per field; the first one is canonical.
var aliases = map[Field][]string{
	FieldCaseID:          {"Número de Expediente", "N° Expediente"},
	FieldOffice:          {"Dependencia", "Sede"},
	FieldOriginationDate: {"Fecha de Expediente", "Fecha Trámite"},
	FieldDaysRemaining:   {"Días restantes"},
	FieldProcessType:     {"Tipo de Proceso"},
	FieldQualityType:     {"Tipo de Calidad Migratoria"},
	FieldStageStartDate:  {"Fecha Inicio de Etapa de Proceso"},
	FieldStageEndDate:    {"Fecha Fin de Etapa de Proceso"},
	FieldStatus:          {"Estado de Trámite"},
	FieldForwardedDate:   {"Fecha Envío a DRCM", "Fecha Pase DRCM"},
}

// IsDate reports whether f is one of DateFields.
func (f Field) IsDate() bool {
	return slices.Contains(DateFields, f)
}

// Header returns the canonical header for f.
func (f Field) Header() string {
	return aliases[f][0]
}

// Matches reports whether a raw header names f.
func (f Field) Matches(header string) bool {
	h := normalizeHeader(header)
	for _, a := range aliases[f] {
		if h == normalizeHeader(a) {
			return true
		}
	}
	return false
}

// normalizeHeader trims surrounding whitespace and composes accents (NFC) so headers
// written with combining marks match the canonical names.
func normalizeHeader(header string) string {
	return norm.NFC.String(strings.TrimSpace(header))
}
