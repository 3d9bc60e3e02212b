package extract

import (
	"strings"

	"siteprov/internal/textutil"
	"siteprov/workbook"
)

// Header-ish rows that designate sections rather than variables.
var templateHeaderKeywords = []string{"branch type", "template", "type:"}

// Formula error markers count as structurally invalid values.
var formulaErrorMarkers = []string{"#REF!", "#N/A", "#VALUE!", "#DIV/0!", "#NAME?", "#NULL!", "#NUM!"}

// ResolveTemplate locates the variable template sheet (name containing the
// keyword, case-insensitive) and reads column A as variable name, column B as
// default value. A missing template sheet yields an empty mapping, not an
// error. Duplicate names: last definition wins.
func ResolveTemplate(book *workbook.Workbook, keyword string) (map[string]string, []TemplateRowWarning) {
	vars := make(map[string]string)
	var warnings []TemplateRowWarning

	sheet, ok := findTemplateSheet(book, keyword)
	if !ok {
		return vars, nil
	}

	for rowIdx, row := range sheet.Rows {
		if len(row) == 0 {
			continue
		}
		name := row[0].Normalize()
		if name == "" || row[0].Kind != workbook.CellText {
			continue
		}
		if isTemplateHeader(name) {
			continue
		}

		value := sheet.Cell(rowIdx, 1).Normalize()
		if value == "" {
			// An empty default is represented as "0" in the source sheets.
			value = "0"
		}
		if strings.EqualFold(value, "undefined") {
			continue
		}
		if isFormulaError(value) {
			warnings = append(warnings, TemplateRowWarning{
				Sheet:  sheet.Name,
				Row:    rowIdx,
				Name:   name,
				Value:  value,
				Reason: "value is a formula error marker",
			})
			continue
		}

		vars[name] = value
	}

	return vars, warnings
}

func findTemplateSheet(book *workbook.Workbook, keyword string) (workbook.Sheet, bool) {
	folded := textutil.FoldKey(keyword)
	if folded == "" {
		return workbook.Sheet{}, false
	}
	for _, sheet := range book.Sheets {
		if strings.Contains(textutil.FoldKey(sheet.Name), folded) {
			return sheet, true
		}
	}
	return workbook.Sheet{}, false
}

func isTemplateHeader(name string) bool {
	folded := textutil.FoldKey(name)
	for _, keyword := range templateHeaderKeywords {
		if strings.Contains(folded, keyword) {
			return true
		}
	}
	return false
}

func isFormulaError(value string) bool {
	upper := strings.ToUpper(strings.TrimSpace(value))
	for _, marker := range formulaErrorMarkers {
		if upper == marker {
			return true
		}
	}
	return false
}
