package workbook

// Sheet is an ordered table of rows of untyped cells. Rows may be ragged;
// callers index defensively via Cell/At.
type Sheet struct {
	Name string
	Rows [][]Cell
}

// Cell returns the cell at (row, col) or an empty cell when out of range.
func (s Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.Rows) {
		return Cell{Kind: CellEmpty}
	}
	cells := s.Rows[row]
	if col < 0 || col >= len(cells) {
		return Cell{Kind: CellEmpty}
	}
	return cells[col]
}

// Workbook is the ordered set of named sheets read from one source file.
// It is read-only for the whole extraction pipeline.
type Workbook struct {
	Path   string
	Sheets []Sheet
}
