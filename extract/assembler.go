package extract

import (
	"siteprov/geocode"
	"siteprov/internal/textutil"
	"siteprov/site"
)

// TemplateIDs are the optional Mist configuration template references
// attached to every provisioned site.
type TemplateIDs struct {
	Network string
	Gateway string
	RF      string
}

// AssembleInput bundles everything the assembler merges into one descriptor.
type AssembleInput struct {
	Fields           RowFields
	Match            Match
	TemplateVars     map[string]string
	Geo              geocode.Result
	DefaultSiteGroup string
	TemplateIDs      TemplateIDs
}

// Assemble merges row fields, template variables overlaid by row-specific
// overrides, and geocode output into one immutable descriptor. No I/O
// happens here.
//
// The name is derived, not copied: sanitized location and identifier joined
// by an underscore, so reruns over identical input produce identical names.
func Assemble(in AssembleInput) site.Descriptor {
	identifier := textutil.SanitizeName(in.Fields.Identifier)
	location := textutil.SanitizeName(in.Fields.Location)

	name := location + "_" + identifier
	if location == "" {
		name = "Site_" + identifier
	}

	groups := in.Fields.SitegroupNames
	if len(groups) == 0 && in.DefaultSiteGroup != "" {
		groups = []string{in.DefaultSiteGroup}
	}

	vars := make(map[string]string, len(in.TemplateVars)+len(in.Fields.VarOverrides))
	for key, value := range in.TemplateVars {
		vars[textutil.SanitizeVariableName(key)] = value
	}
	for key, value := range in.Fields.VarOverrides {
		vars[textutil.SanitizeVariableName(key)] = value
	}

	return site.Descriptor{
		Name:              name,
		Address:           in.Fields.Address,
		Location:          in.Fields.Location,
		SitegroupNames:    groups,
		Vars:              vars,
		NetworkTemplateID: firstNonEmpty(in.Fields.NetworkTemplateID, in.TemplateIDs.Network),
		GatewayTemplateID: firstNonEmpty(in.Fields.GatewayTemplateID, in.TemplateIDs.Gateway),
		RFTemplateID:      firstNonEmpty(in.Fields.RFTemplateID, in.TemplateIDs.RF),
		CountryCode:       in.Geo.CountryCode,
		Timezone:          in.Geo.Timezone,
		Latitude:          in.Geo.Latitude,
		Longitude:         in.Geo.Longitude,
		Identifier:        in.Fields.Identifier,
		SourceSheet:       in.Match.Sheet,
		SourceRow:         in.Match.Row,
		SourceCol:         in.Match.Col,
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
