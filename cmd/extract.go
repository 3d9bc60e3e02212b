package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"siteprov/config"
	"siteprov/extract"
	"siteprov/geocode"
	"siteprov/output"
	"siteprov/site"
	"siteprov/workbook"
)

var (
	extractInput     string
	extractSiteIDs   []string
	extractOutput    string
	extractFormat    string
	extractGroup     string
	extractNoGeocode bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract site descriptors from a survey workbook into import CSV/Excel",
	Long: `Scan the workbook for each site identifier, build a normalized site
descriptor (name, address, sitegroups, variables, templates, geography), and
write the batch to an import-ready output file.

Identifiers must match a cell exactly after whitespace/case normalization;
substring matches never count. When an identifier appears in more than one
data sheet, the run fails and the conflicting cells are reported.

Addresses are resolved through the configured geocoding providers unless
--no-geocode is set.`,
	Example: `
  # Extract one site to import CSV
  siteprov extract -i survey.xlsx -s SITE001 -o sites.csv

  # Extract a batch into one file
  siteprov extract -i survey.xlsx -s SITE001 -s SITE002 -o sites.csv

  # Review the extraction in Excel instead
  siteprov extract -i survey.xlsx -s SITE001 -o review.xlsx --format excel

  # Skip address resolution
  siteprov extract -i survey.xlsx -s SITE001 -o sites.csv --no-geocode
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		book, err := workbook.Load(extractInput)
		if err != nil {
			return err
		}

		var geocoder geocode.Resolver
		if !extractNoGeocode {
			geocoder = newGeocoder(cfg)
		}

		opts := extractOptionsFromConfig(cfg)
		if extractGroup != "" {
			opts.SiteGroup = extractGroup
		}
		descriptors := make([]site.Descriptor, 0, len(extractSiteIDs))
		for _, identifier := range extractSiteIDs {
			result, err := extract.Run(cmd.Context(), book, identifier, opts, geocoder)
			if err != nil {
				printExtractDiagnostics(err)
				return err
			}
			for _, warning := range result.Warnings {
				fmt.Printf("Warning: %s\n", warning)
			}
			if result.GeoUnresolved {
				fmt.Printf("Warning: address for %q could not be geocoded; country/timezone left blank\n", identifier)
			}
			descriptors = append(descriptors, result.Descriptor)
		}

		format := extractFormat
		if format == "" {
			format = detectOutputFormat(extractOutput)
		}
		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}
		if err := writer.Write(extractOutput, descriptors); err != nil {
			return err
		}

		fmt.Printf("Extraction completed. Sites: %d, Format: %s, File: %s\n", len(descriptors), format, extractOutput)
		return nil
	},
}

// printExtractDiagnostics adds context for failures a flag change can fix:
// the identifiers that do exist, or the cells an ambiguous match hit.
func printExtractDiagnostics(err error) {
	var notFound *extract.NotFoundError
	if errors.As(err, &notFound) && len(notFound.Discovered) > 0 {
		fmt.Println("Identifiers found in the workbook:")
		for _, candidate := range notFound.Discovered {
			fmt.Printf("  %s\n", candidate)
		}
	}
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractInput, "input", "i", "", "Survey workbook path (.xlsx, .xlsm)")
	extractCmd.Flags().StringArrayVarP(&extractSiteIDs, "site", "s", nil, "Site identifier to extract (repeatable)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file path")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	extractCmd.Flags().StringVar(&extractGroup, "group", "", "Sitegroup for sites without an explicit one (overrides extract.site_group)")
	extractCmd.Flags().BoolVar(&extractNoGeocode, "no-geocode", false, "Skip address geocoding; only explicit row values are carried through")

	_ = extractCmd.MarkFlagRequired("input")
	_ = extractCmd.MarkFlagRequired("site")
	_ = extractCmd.MarkFlagRequired("output")
}
