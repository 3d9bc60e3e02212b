package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Load reads every sheet of an Excel workbook into the in-memory model.
// Cells come back as the formatted strings excelize produces and are
// classified into the tagged variant on the way in.
func Load(path string) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file %s: %w", path, err)
	}
	defer file.Close()

	sheetNames := file.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("excel file has no sheets: %s", path)
	}

	book := &Workbook{Path: path, Sheets: make([]Sheet, 0, len(sheetNames))}
	for _, sheetName := range sheetNames {
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
		}

		sheet := Sheet{Name: sheetName, Rows: make([][]Cell, 0, len(rows))}
		for _, row := range rows {
			cells := make([]Cell, len(row))
			for col, raw := range row {
				cells[col] = ClassifyCell(raw)
			}
			sheet.Rows = append(sheet.Rows, cells)
		}
		book.Sheets = append(book.Sheets, sheet)
	}

	return book, nil
}
