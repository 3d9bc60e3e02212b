package workbook

import (
	"strconv"
	"strings"
	"time"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is a tagged variant over the value types found in source workbooks.
// Identifier matching and field extraction always go through Normalize so
// numeric and date cells compare the same way regardless of sheet formatting.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

const dateLayout = "2006-01-02"

var dateLayouts = []string{
	"2006-01-02",
	"01-02-06",
	"1/2/2006",
	"01/02/2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
}

// ClassifyCell builds a Cell from the raw string excelize yields for a cell.
func ClassifyCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: CellEmpty}
	}
	if number, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: CellNumber, Number: number, Text: trimmed}
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return Cell{Kind: CellDate, Date: parsed, Text: trimmed}
		}
	}
	return Cell{Kind: CellText, Text: trimmed}
}

// Normalize returns the canonical string form of the cell value. Numbers drop
// a redundant ".0" suffix so "1001" and 1001.0 compare equal; dates collapse
// to a fixed layout.
func (c Cell) Normalize() string {
	switch c.Kind {
	case CellEmpty:
		return ""
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Date.Format(dateLayout)
	default:
		return strings.TrimSpace(c.Text)
	}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}
