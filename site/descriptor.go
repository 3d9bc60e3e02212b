package site

// Descriptor is the canonical, fully resolved representation of one site,
// independent of spreadsheet layout and CSV formatting. It is built once per
// extraction run and never mutated afterwards.
type Descriptor struct {
	Name              string
	Address           string
	Location          string
	SitegroupNames    []string
	Vars              map[string]string
	NetworkTemplateID string
	GatewayTemplateID string
	RFTemplateID      string
	CountryCode       string
	Timezone          string
	Latitude          float64
	Longitude         float64

	// Provenance of the accepted match, kept for diagnostics and the ledger.
	Identifier  string
	SourceSheet string
	SourceRow   int
	SourceCol   int
}

// HasGeo reports whether coordinates were resolved for the site.
func (d Descriptor) HasGeo() bool {
	return d.Latitude != 0 || d.Longitude != 0
}
