package workbook

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeTestWorkbook(t *testing.T, dir string, sheets map[string][][]any) string {
	t.Helper()
	path := filepath.Join(dir, "book.xlsx")

	file := excelize.NewFile()
	defer file.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if err := file.SetSheetName(file.GetSheetName(0), name); err != nil {
				t.Fatal(err)
			}
			first = false
		} else {
			if _, err := file.NewSheet(name); err != nil {
				t.Fatal(err)
			}
		}
		for r, row := range rows {
			for c, value := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatal(err)
				}
				if err := file.SetCellValue(name, cell, value); err != nil {
					t.Fatal(err)
				}
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := writeTestWorkbook(t, dir, map[string][][]any{
		"Sites": {
			{"SITE001", "123 Main St", "Springfield"},
			{"SITE002", "9 Oak Ave", "Shelbyville"},
		},
	})

	book, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(book.Sheets) != 1 {
		t.Fatalf("expected 1 sheet, got %d", len(book.Sheets))
	}
	sheet := book.Sheets[0]
	if sheet.Name != "Sites" {
		t.Errorf("sheet name = %q, want %q", sheet.Name, "Sites")
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sheet.Rows))
	}
	if got := sheet.Cell(0, 1).Normalize(); got != "123 Main St" {
		t.Errorf("cell (0,1) = %q, want %q", got, "123 Main St")
	}
	if got := sheet.Cell(1, 0).Normalize(); got != "SITE002" {
		t.Errorf("cell (1,0) = %q, want %q", got, "SITE002")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	if _, err := Load(filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
