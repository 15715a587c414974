package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"eettscrape/internal/eett"
)

// WriteXLSX writes records to an XLSX workbook at path, one sheet with the
// same layout as the CSV output.
//
// With zero records the file is not created and nil is returned.
func WriteXLSX(path string, records []eett.AntennaRecord) error {
	if len(records) == 0 {
		return nil
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &eett.RecordFields); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		values := rec.Values()
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
