package workbook

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"

	"expedientes/internal/schema"
)

const maxXLSRows = 100000

// decodeXLS reads legacy BIFF workbooks. They cannot be written back.
func decodeXLS(data []byte) (sheet *schema.Sheet, err error) {
	// the BIFF reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			sheet, err = nil, fmt.Errorf("open xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}
	name := ""
	if ws := wb.GetSheet(0); ws != nil {
		name = ws.Name
	}
	return fromRows(name, wb.ReadAllCells(maxXLSRows)), nil
}
