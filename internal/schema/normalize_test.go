package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC)

func sampleSheet() *Sheet {
	return &Sheet{
		Name: "Hoja1",
		Headers: []string{
			" Número de Expediente ", "Dependencia", "Fecha de Expediente", "Días restantes",
			"Tipo de Proceso", "Tipo de Calidad Migratoria", "Fecha Inicio de Etapa de Proceso",
			"Fecha Fin de Etapa de Proceso", "Estado de Trámite", "Fecha Envío a DRCM", "Observaciones",
		},
		Rows: [][]string{
			{"EXP-001", "LIMA", "01/01/2025", "99", "Calidad", "Residente", "02/01/2025", "", "pendiente", "", "nota 1"},
			{"EXP-002", "CUSCO", "05/01/2025", "", "Prórroga", "Trabajador", "", "", "Pendiente", "08/01/2025", ""},
			{"", "", "", "", "", "", "", "", "", "", ""},
			{"EXP-003", "LIMA", "sin fecha", "", "", "", "", "", "atendido", "", ""},
		},
	}
}

func TestNormalize(t *testing.T) {
	recs, err := Normalize(sampleSheet(), Options{Mode: DayFirst, Today: today})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	first := recs[0]
	assert.Equal(t, "EXP-001", first.CaseID)
	assert.Equal(t, "LIMA", first.Office)
	assert.Equal(t, "pendiente", first.Status)
	assert.Equal(t, "Calidad", first.ProcessType)
	assert.Equal(t, "Residente", first.QualityType)
	assert.Equal(t, 0, first.Row)
	require.NotNil(t, first.OriginationDate)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), *first.OriginationDate)
	require.NotNil(t, first.StageStartDate)
	assert.Nil(t, first.StageEndDate)
	assert.Nil(t, first.ForwardedDate)
	require.NotNil(t, first.DaysRemaining)
	assert.Equal(t, 19, *first.DaysRemaining, "stored 99 is ignored and recomputed against today")

	second := recs[1]
	require.NotNil(t, second.DaysRemaining)
	assert.Equal(t, 3, *second.DaysRemaining)

	third := recs[2]
	assert.Equal(t, 3, third.Row, "blank rows are skipped but row positions are kept")
	assert.Nil(t, third.OriginationDate)
	assert.Nil(t, third.DaysRemaining)
}

func TestNormalize_Aliases(t *testing.T) {
	s := &Sheet{
		Headers: []string{"N° Expediente", "Sede", "Fecha Trámite", "Estado de Trámite", "Fecha Pase DRCM"},
		Rows: [][]string{
			{"A-1", "TACNA", "03/02/2025", "PENDIENTE", "04/02/2025"},
		},
	}

	recs, err := Normalize(s, Options{Mode: DayFirst, Today: today})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "A-1", recs[0].CaseID)
	assert.Equal(t, "TACNA", recs[0].Office)
	require.NotNil(t, recs[0].ForwardedDate)
	require.NotNil(t, recs[0].DaysRemaining)
	assert.Equal(t, 1, *recs[0].DaysRemaining)
}

func TestNormalize_DecomposedHeaders(t *testing.T) {
	s := &Sheet{
		Headers: []string{"Nu\u0301mero de Expediente", "Dependencia", "Fecha Envi\u0301o a DRCM"},
		Rows:    [][]string{{"X", "PIURA", "10/01/2025"}},
	}

	recs, err := Normalize(s, Options{Mode: DayFirst, Today: today})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "X", recs[0].CaseID)
	assert.NotNil(t, recs[0].ForwardedDate)
}

func TestNormalize_MissingStatusColumn(t *testing.T) {
	s := &Sheet{
		Headers: []string{"Número de Expediente", "Dependencia"},
		Rows:    [][]string{{"EXP-1", "LIMA"}, {"EXP-2", "CUSCO"}},
	}

	recs, err := Normalize(s, Options{Mode: DayFirst, Today: today})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, "", r.Status)
	}
}

func TestNormalize_MissingIdentityColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		wantMsg string
	}{
		{name: "no case id", headers: []string{"Dependencia", "Estado de Trámite"}, wantMsg: "Número de Expediente"},
		{name: "no office", headers: []string{"Número de Expediente"}, wantMsg: "Dependencia"},
		{name: "empty sheet", headers: nil, wantMsg: "Número de Expediente, Dependencia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Normalize(&Sheet{Headers: tt.headers}, Options{Mode: DayFirst, Today: today})
			assert.ErrorIs(t, err, ErrMissingColumns)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Nil(t, recs)
		})
	}
}

func TestSheet_SetDateAndDays(t *testing.T) {
	s := &Sheet{
		Headers: []string{"Número de Expediente", "Dependencia"},
		Rows:    [][]string{{"EXP-1", "LIMA"}, {"EXP-2", "LIMA"}},
	}

	s.SetDate(1, FieldForwardedDate, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC))
	days := 9
	s.SetDays(1, &days)

	assert.Equal(t, []string{"Número de Expediente", "Dependencia", "Fecha Envío a DRCM", "Días restantes"}, s.Headers)
	assert.Equal(t, []string{"EXP-1", "LIMA", "", ""}, s.Rows[0])
	assert.Equal(t, []string{"EXP-2", "LIMA", "2025-01-10 00:00:00", "9"}, s.Rows[1])

	s.SetDays(1, nil)
	assert.Equal(t, "", s.Rows[1][3])
}

func TestSheet_Stamp(t *testing.T) {
	s := sampleSheet()
	recs, err := Normalize(s, Options{Mode: DayFirst, Today: today})
	require.NoError(t, err)

	s.Stamp(recs)

	assert.Equal(t, "2025-01-01 00:00:00", s.Rows[0][2])
	assert.Equal(t, "2025-01-02 00:00:00", s.Rows[0][6])
	assert.Equal(t, "", s.Rows[0][7])
	assert.Equal(t, "2025-01-08 00:00:00", s.Rows[1][9])
	assert.Equal(t, "sin fecha", s.Rows[3][2], "unparseable cells keep their text")
	assert.Equal(t, "nota 1", s.Rows[0][10], "unknown columns are untouched")
}

func TestSheet_StampRoundTrip(t *testing.T) {
	s := sampleSheet()
	before, err := Normalize(s, Options{Mode: DayFirst, Today: today})
	require.NoError(t, err)

	s.Stamp(before)
	after, err := Normalize(s, Options{Mode: DayFirst, Today: today})
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestSheet_Clone(t *testing.T) {
	s := sampleSheet()
	c := s.Clone()
	c.Rows[0][0] = "changed"
	c.Headers[0] = "changed"

	assert.Equal(t, "EXP-001", s.Rows[0][0])
	assert.Equal(t, " Número de Expediente ", s.Headers[0])
}

func TestSheet_Changes(t *testing.T) {
	s := &Sheet{
		Headers: []string{"Número de Expediente", "Dependencia", "Días restantes"},
		Rows:    [][]string{{"EXP-1", "LIMA", "3"}, {"EXP-2", "LIMA", "9"}},
	}
	assert.Empty(t, s.Changes())

	nine := 9
	s.SetDays(1, &nine)
	assert.Empty(t, s.Changes(), "writing the value already there is not a change")

	s.SetDate(1, FieldForwardedDate, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC))
	four := 4
	s.SetDays(0, &four)

	assert.Equal(t, []CellRef{{Row: -1, Col: 3}, {Row: 0, Col: 2}, {Row: 1, Col: 3}}, s.Changes())
	assert.Equal(t, s.Changes(), s.Clone().Changes())
}

func TestSheet_FieldAt(t *testing.T) {
	s := &Sheet{Headers: []string{"Sede", "Monto", "Fecha Pase DRCM"}}

	f, ok := s.FieldAt(0)
	assert.True(t, ok)
	assert.Equal(t, FieldOffice, f)

	_, ok = s.FieldAt(1)
	assert.False(t, ok)

	f, ok = s.FieldAt(2)
	assert.True(t, ok)
	assert.True(t, f.IsDate())

	_, ok = s.FieldAt(7)
	assert.False(t, ok)
}
