package cmd

import (
	"path/filepath"
	"strings"

	"siteprov/config"
	"siteprov/extract"
	"siteprov/geocode"
	"siteprov/mist"
)

func extractOptionsFromConfig(cfg *config.Config) extract.Options {
	return extract.Options{
		IDFieldName:          cfg.Extract.IDFieldName,
		MinIdentifierLength:  cfg.Extract.MinIdentifierLength,
		SkipSheetKeywords:    cfg.Extract.SkipSheetKeywords,
		TemplateSheetKeyword: cfg.Extract.TemplateSheetKeyword,
		SiteGroup:            cfg.Extract.SiteGroup,
		ColumnOffsets:        cfg.Extract.ColumnOffsets,
		TemplateIDs: extract.TemplateIDs{
			Network: cfg.Templates.NetworkTemplateID,
			Gateway: cfg.Templates.GatewayTemplateID,
			RF:      cfg.Templates.RFTemplateID,
		},
		FailOnUnresolvedGeo: cfg.Geocode.FailOnUnresolved,
	}
}

func newGeocoder(cfg *config.Config) geocode.Resolver {
	return geocode.NewChain(cfg.Geocode.GoogleAPIKey, cfg.Geocode.MaxAttempts)
}

func newMistClient(cfg *config.Config) (*mist.HTTPClient, error) {
	return mist.NewClient(mist.ClientConfig{
		BaseURL:  cfg.Mist.BaseURL,
		APIToken: cfg.Mist.APIToken,
	})
}

func detectOutputFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "xlsx", "xlsm":
		return "excel"
	default:
		return "csv"
	}
}
