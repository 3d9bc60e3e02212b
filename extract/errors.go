package extract

import (
	"fmt"
	"strings"
)

// Location pinpoints a cell inside the source workbook.
type Location struct {
	Sheet string
	Row   int
	Col   int
}

func (l Location) String() string {
	return fmt.Sprintf("%s!R%dC%d", l.Sheet, l.Row+1, l.Col+1)
}

// NotFoundError is returned when the identifier matched no cell in any
// scanned sheet. Discovered carries the distinct candidate identifiers seen
// during the scan as a diagnostic aid.
type NotFoundError struct {
	Identifier string
	FieldName  string
	Discovered []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found in any scanned sheet", e.fieldName(), e.Identifier)
}

func (e *NotFoundError) fieldName() string {
	if strings.TrimSpace(e.FieldName) == "" {
		return "identifier"
	}
	return e.FieldName
}

// AmbiguousError is returned when the identifier matched more than one cell.
// The match is never auto-resolved; the caller must disambiguate manually.
type AmbiguousError struct {
	Identifier string
	Locations  []Location
}

func (e *AmbiguousError) Error() string {
	places := make([]string, len(e.Locations))
	for i, loc := range e.Locations {
		places[i] = loc.String()
	}
	return fmt.Sprintf("identifier %q is ambiguous: found at %s", e.Identifier, strings.Join(places, ", "))
}

// MissingFieldError is returned when a required field is absent from the
// matched row. Fatal for the identifier, not for a batch.
type MissingFieldError struct {
	Field      string
	Identifier string
	Location   Location
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %q is missing for identifier %q (matched at %s)", e.Field, e.Identifier, e.Location)
}

// TemplateRowWarning records a malformed variable template row. Such rows are
// skipped and reported alongside the result instead of failing the run.
type TemplateRowWarning struct {
	Sheet  string
	Row    int
	Name   string
	Value  string
	Reason string
}

func (w TemplateRowWarning) String() string {
	return fmt.Sprintf("sheet %s row %d: variable %q skipped: %s", w.Sheet, w.Row+1, w.Name, w.Reason)
}
