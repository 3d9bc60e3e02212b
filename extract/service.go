package extract

import (
	"context"
	"errors"
	"fmt"

	"siteprov/geocode"
	"siteprov/site"
	"siteprov/workbook"
)

// Options configure one extraction run. Zero values fall back to the
// defaults the source spreadsheets were tuned for.
type Options struct {
	IDFieldName          string
	MinIdentifierLength  int
	SkipSheetKeywords    []string
	TemplateSheetKeyword string
	SiteGroup            string
	ColumnOffsets        map[string]int
	TemplateIDs          TemplateIDs
	FailOnUnresolvedGeo  bool
}

func (o Options) withDefaults() Options {
	if o.MinIdentifierLength <= 0 {
		o.MinIdentifierLength = 4
	}
	if o.SkipSheetKeywords == nil {
		o.SkipSheetKeywords = []string{"template", "variables", "config"}
	}
	if o.TemplateSheetKeyword == "" {
		o.TemplateSheetKeyword = "variables"
	}
	if o.SiteGroup == "" {
		o.SiteGroup = "Default_Group"
	}
	if len(o.ColumnOffsets) == 0 {
		o.ColumnOffsets = DefaultColumnOffsets()
	}
	return o
}

// Result is the outcome of one successful extraction run.
type Result struct {
	Descriptor site.Descriptor
	Warnings   []TemplateRowWarning

	// GeoUnresolved is set when the geocode chain was exhausted and the run
	// proceeded with blank country/timezone (fail_on_unresolved off).
	GeoUnresolved bool
}

// Run executes the pipeline for one identifier: scan, map, geocode,
// assemble. The workbook is never mutated; each invocation is independent,
// so callers may run identifiers in parallel if they wish.
//
// A nil geocoder skips resolution entirely (CSV-only extraction); explicit
// row values are still carried through.
func Run(ctx context.Context, book *workbook.Workbook, identifier string, opts Options, geocoder geocode.Resolver) (*Result, error) {
	opts = opts.withDefaults()

	scan := Scan(book, identifier, opts.MinIdentifierLength, opts.SkipSheetKeywords)
	switch len(scan.Matches) {
	case 0:
		return nil, &NotFoundError{
			Identifier: identifier,
			FieldName:  opts.IDFieldName,
			Discovered: scan.Discovered,
		}
	case 1:
	default:
		locations := make([]Location, len(scan.Matches))
		for i, match := range scan.Matches {
			locations[i] = match.Location
		}
		return nil, &AmbiguousError{Identifier: identifier, Locations: locations}
	}
	match := scan.Matches[0]

	templateVars, warnings := ResolveTemplate(book, opts.TemplateSheetKeyword)

	sheet, ok := sheetByName(book, match.Sheet)
	if !ok {
		return nil, fmt.Errorf("matched sheet %q disappeared from workbook", match.Sheet)
	}
	fields, err := MapColumns(sheet, match, opts.ColumnOffsets)
	if err != nil {
		return nil, err
	}

	result := &Result{Warnings: warnings}

	geo := geocode.Result{
		CountryCode: fields.CountryCode,
		Timezone:    fields.Timezone,
	}
	if geocoder != nil {
		resolved, geoErr := geocoder.Resolve(ctx, fields.Address, geo)
		if geoErr != nil {
			var failed *geocode.FailedError
			if !errors.As(geoErr, &failed) {
				return nil, fmt.Errorf("geocode %q: %w", fields.Address, geoErr)
			}
			if opts.FailOnUnresolvedGeo {
				return nil, geoErr
			}
			result.GeoUnresolved = true
		}
		geo = resolved
	}

	result.Descriptor = Assemble(AssembleInput{
		Fields:           fields,
		Match:            match,
		TemplateVars:     templateVars,
		Geo:              geo,
		DefaultSiteGroup: opts.SiteGroup,
		TemplateIDs:      opts.TemplateIDs,
	})
	return result, nil
}

func sheetByName(book *workbook.Workbook, name string) (workbook.Sheet, bool) {
	for _, sheet := range book.Sheets {
		if sheet.Name == name {
			return sheet, true
		}
	}
	return workbook.Sheet{}, false
}
