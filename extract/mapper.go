package extract

import (
	"strings"

	"siteprov/internal/textutil"
	"siteprov/workbook"
)

// RowFields is the field layout derived from the matched row. Every field
// except the address is optional.
type RowFields struct {
	Identifier        string
	Address           string
	Location          string
	SitegroupNames    []string
	NetworkTemplateID string
	GatewayTemplateID string
	RFTemplateID      string
	CountryCode       string
	Timezone          string

	// Offset entries that are not well-known descriptor fields become
	// row-specific variable overrides.
	VarOverrides map[string]string
}

// DefaultColumnOffsets is the layout used when none is configured: the
// identifier anchors the row, address and location sit directly to its right.
func DefaultColumnOffsets() map[string]int {
	return map[string]int{"address": 1, "location": 2}
}

// MapColumns resolves the field layout relative to the anchor column using
// the declared offset table. Missing offsets are absent fields; a missing
// address is a MissingFieldError because the import format requires it.
func MapColumns(sheet workbook.Sheet, match Match, offsets map[string]int) (RowFields, error) {
	if len(offsets) == 0 {
		offsets = DefaultColumnOffsets()
	}

	fields := RowFields{
		Identifier:   sheet.Cell(match.Row, match.Col).Normalize(),
		VarOverrides: make(map[string]string),
	}

	for name, offset := range offsets {
		value := sheet.Cell(match.Row, match.Col+offset).Normalize()
		if value == "" {
			continue
		}
		switch textutil.FoldKey(name) {
		case "address":
			fields.Address = value
		case "location", "city":
			fields.Location = value
		case "sitegroup", "sitegroup_names":
			fields.SitegroupNames = splitGroups(value)
		case "networktemplate_id":
			fields.NetworkTemplateID = value
		case "gatewaytemplate_id":
			fields.GatewayTemplateID = value
		case "rftemplate_id":
			fields.RFTemplateID = value
		case "country_code":
			fields.CountryCode = strings.ToUpper(value)
		case "timezone":
			fields.Timezone = value
		default:
			fields.VarOverrides[name] = value
		}
	}

	if fields.Address == "" {
		return RowFields{}, &MissingFieldError{
			Field:      "address",
			Identifier: fields.Identifier,
			Location:   match.Location,
		}
	}

	return fields, nil
}

func splitGroups(value string) []string {
	parts := strings.Split(value, ";")
	groups := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			groups = append(groups, trimmed)
		}
	}
	return groups
}
