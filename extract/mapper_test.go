package extract

import (
	"errors"
	"testing"
)

func TestMapColumnsDefaultLayout(t *testing.T) {
	t.Parallel()

	sheet := buildSheet("Sites", [][]string{
		{"SITE001", "123 Main St", "Springfield"},
	})
	match := Match{Location{Sheet: "Sites", Row: 0, Col: 0}}

	fields, err := MapColumns(sheet, match, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Identifier != "SITE001" {
		t.Errorf("identifier = %q", fields.Identifier)
	}
	if fields.Address != "123 Main St" {
		t.Errorf("address = %q", fields.Address)
	}
	if fields.Location != "Springfield" {
		t.Errorf("location = %q", fields.Location)
	}
}

func TestMapColumnsAnchorNotInFirstColumn(t *testing.T) {
	t.Parallel()

	sheet := buildSheet("Sites", [][]string{
		{"region", "SITE001", "123 Main St", "Springfield"},
	})
	match := Match{Location{Sheet: "Sites", Row: 0, Col: 1}}

	fields, err := MapColumns(sheet, match, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Address != "123 Main St" || fields.Location != "Springfield" {
		t.Errorf("fields = %+v, want offsets relative to anchor column", fields)
	}
}

func TestMapColumnsCustomOffsetsWithWellKnownFields(t *testing.T) {
	t.Parallel()

	sheet := buildSheet("Sites", [][]string{
		{"SITE001", "ignored", "123 Main St", "Springfield", "Campus;Branch", "US", "America/Chicago"},
	})
	match := Match{Location{Sheet: "Sites", Row: 0, Col: 0}}
	offsets := map[string]int{
		"address":      2,
		"location":     3,
		"sitegroup":    4,
		"country_code": 5,
		"timezone":     6,
	}

	fields, err := MapColumns(sheet, match, offsets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Address != "123 Main St" {
		t.Errorf("address = %q", fields.Address)
	}
	if len(fields.SitegroupNames) != 2 || fields.SitegroupNames[0] != "Campus" || fields.SitegroupNames[1] != "Branch" {
		t.Errorf("sitegroups = %v", fields.SitegroupNames)
	}
	if fields.CountryCode != "US" {
		t.Errorf("country_code = %q", fields.CountryCode)
	}
	if fields.Timezone != "America/Chicago" {
		t.Errorf("timezone = %q", fields.Timezone)
	}
}

func TestMapColumnsUnknownOffsetBecomesVarOverride(t *testing.T) {
	t.Parallel()

	sheet := buildSheet("Sites", [][]string{
		{"SITE001", "123 Main St", "Springfield", "10.0.9.0/24"},
	})
	match := Match{Location{Sheet: "Sites", Row: 0, Col: 0}}
	offsets := map[string]int{"address": 1, "location": 2, "vlan10": 3}

	fields, err := MapColumns(sheet, match, offsets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.VarOverrides["vlan10"] != "10.0.9.0/24" {
		t.Errorf("var overrides = %v", fields.VarOverrides)
	}
}

func TestMapColumnsMissingOptionalFieldIsAbsent(t *testing.T) {
	t.Parallel()

	sheet := buildSheet("Sites", [][]string{
		{"SITE001", "123 Main St"},
	})
	match := Match{Location{Sheet: "Sites", Row: 0, Col: 0}}

	fields, err := MapColumns(sheet, match, nil)
	if err != nil {
		t.Fatalf("location is optional, got error: %v", err)
	}
	if fields.Location != "" {
		t.Errorf("location = %q, want empty", fields.Location)
	}
}

func TestMapColumnsMissingAddressFails(t *testing.T) {
	t.Parallel()

	sheet := buildSheet("Sites", [][]string{
		{"SITE001"},
	})
	match := Match{Location{Sheet: "Sites", Row: 0, Col: 0}}

	_, err := MapColumns(sheet, match, nil)
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingFieldError", err)
	}
	if missing.Field != "address" || missing.Identifier != "SITE001" {
		t.Errorf("missing = %+v", missing)
	}
}
