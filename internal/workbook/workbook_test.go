package workbook

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"expedientes/internal/schema"
)

func sample() *schema.Sheet {
	return &schema.Sheet{
		Name:    "Expedientes",
		Headers: []string{"Número de Expediente", "Dependencia", "Fecha de Expediente", "Días restantes", "Estado de Trámite"},
		Rows: [][]string{
			{"EXP-001", "LIMA", "2025-01-01 00:00:00", "9", "pendiente"},
			{"EXP-002", "CUSCO", "", "", "atendido, con observación"},
		},
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "expedientes.xlsx", want: XLSX},
		{path: "/mnt/share/EXPEDIENTES.XLSX", want: XLSX},
		{path: "legacy.xls", want: XLS},
		{path: "export.csv", want: CSV},
		{path: "notes.txt", wantErr: true},
		{path: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCSVRoundTrip(t *testing.T) {
	data, err := Encode(sample(), CSV)
	require.NoError(t, err)

	got, err := Decode(data, CSV)
	require.NoError(t, err)
	assert.Equal(t, sample().Headers, got.Headers)
	assert.Equal(t, sample().Rows, got.Rows)
}

func TestDecodeCSV_BOMAndRaggedRows(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Número de Expediente,Dependencia,Estado de Trámite\nEXP-1,LIMA\n")...)

	got, err := Decode(data, CSV)
	require.NoError(t, err)
	assert.Equal(t, "Número de Expediente", got.Headers[0])
	assert.Equal(t, []string{"EXP-1", "LIMA", ""}, got.Rows[0])
}

func TestXLSXRoundTrip(t *testing.T) {
	data, err := Encode(sample(), XLSX)
	require.NoError(t, err)

	got, err := Decode(data, XLSX)
	require.NoError(t, err)
	assert.Equal(t, "Expedientes", got.Name)
	assert.Equal(t, sample().Headers, got.Headers)
	assert.Equal(t, sample().Rows, got.Rows)
}

func TestXLSXDaysWrittenAsNumbers(t *testing.T) {
	data, err := Encode(sample(), XLSX)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytesReader(data))
	require.NoError(t, err)
	defer f.Close()

	typ, err := f.GetCellType("Expedientes", "D2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	assert.NotEqual(t, excelize.CellTypeInlineString, typ)
}

func TestDecodeXLSX_DateCells(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Número de Expediente", "Dependencia", "Fecha de Expediente"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"EXP-9", "LIMA", time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s, err := Decode(buf.Bytes(), XLSX)
	require.NoError(t, err)
	require.Len(t, s.Rows, 1)

	got, ok := schema.ParseDate(s.Rows[0][2], schema.DayFirst)
	require.True(t, ok, "raw cell %q", s.Rows[0][2])
	assert.Equal(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestDecodeXLSX_EmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	s, err := Decode(buf.Bytes(), XLSX)
	require.NoError(t, err)
	assert.Empty(t, s.Headers)
	assert.Empty(t, s.Rows)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("not a workbook"), XLSX)
	assert.Error(t, err)

	_, err = Decode([]byte("not a workbook"), XLS)
	assert.Error(t, err)
}

func TestEncodeXLS_ReadOnly(t *testing.T) {
	_, err := Encode(sample(), XLS)
	assert.ErrorIs(t, err, ErrReadOnlyFormat)
}

func TestUnknownFormat(t *testing.T) {
	_, err := Decode(nil, Format("ods"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Encode(sample(), Format("ods"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// registryWorkbook has a date-formatted and a numeric column the case schema does not know about.
func registryWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Expedientes"))
	require.NoError(t, f.SetSheetRow("Expedientes", "A1", &[]interface{}{
		"Número de Expediente", "Dependencia", "Fecha de Expediente", "Fecha Registro", "Monto",
	}))
	require.NoError(t, f.SetSheetRow("Expedientes", "A2", &[]interface{}{
		"EXP-001", "LIMA", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC), 980,
	}))
	require.NoError(t, f.SetSheetRow("Expedientes", "A3", &[]interface{}{
		"EXP-002", "LIMA", time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC), 1500.5,
	}))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Expedientes", "D2", "D3", style))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

type cellState struct {
	Type  excelize.CellType
	Style int
	Raw   string
}

func readCell(t *testing.T, data []byte, cell string) cellState {
	t.Helper()
	f, err := excelize.OpenReader(bytesReader(data))
	require.NoError(t, err)
	defer f.Close()

	typ, err := f.GetCellType("Expedientes", cell)
	require.NoError(t, err)
	style, err := f.GetCellStyle("Expedientes", cell)
	require.NoError(t, err)
	raw, err := f.GetCellValue("Expedientes", cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return cellState{Type: typ, Style: style, Raw: raw}
}

func TestPatchXLSX_KeepsUntouchedCells(t *testing.T) {
	original := registryWorkbook(t)
	untouched := []string{"D2", "E2", "D3", "E3"}
	before := make(map[string]cellState, len(untouched))
	for _, cell := range untouched {
		before[cell] = readCell(t, original, cell)
	}

	s, err := Decode(original, XLSX)
	require.NoError(t, err)
	records, err := schema.Normalize(s, schema.Options{Mode: schema.DayFirst, Today: time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	s.Stamp(records)
	s.SetDate(0, schema.FieldForwardedDate, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC))
	days := 9
	s.SetDays(0, &days)

	patched, err := Patch(original, s, XLSX)
	require.NoError(t, err)

	for _, cell := range untouched {
		assert.Equal(t, before[cell], readCell(t, patched, cell), cell)
	}

	assert.Equal(t, "Fecha Envío a DRCM", readCell(t, patched, "F1").Raw)
	assert.Equal(t, "Días restantes", readCell(t, patched, "G1").Raw)

	fwd := readCell(t, patched, "F2")
	assert.NotEqual(t, excelize.CellTypeSharedString, fwd.Type)
	got, ok := schema.ParseDate(fwd.Raw, schema.DayFirst)
	require.True(t, ok, "forwarded cell %q", fwd.Raw)
	assert.Equal(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), got)

	dayCell := readCell(t, patched, "G2")
	assert.NotEqual(t, excelize.CellTypeSharedString, dayCell.Type)
	assert.Equal(t, "9", dayCell.Raw)

	assert.Empty(t, readCell(t, patched, "F3").Raw, "rows that were not updated get no forwarded date")
}

func TestPatch_FallsBackToEncode(t *testing.T) {
	data, err := Patch(nil, sample(), XLSX)
	require.NoError(t, err)
	got, err := Decode(data, XLSX)
	require.NoError(t, err)
	assert.Equal(t, sample().Rows, got.Rows)

	csvData, err := Patch([]byte("ignored"), sample(), CSV)
	require.NoError(t, err)
	got, err = Decode(csvData, CSV)
	require.NoError(t, err)
	assert.Equal(t, sample().Rows, got.Rows)
}

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
