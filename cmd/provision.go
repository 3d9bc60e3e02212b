package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"siteprov/config"
	"siteprov/extract"
	"siteprov/output"
	"siteprov/provision"
	"siteprov/site"
	"siteprov/storage"
	"siteprov/workbook"
)

var (
	provisionInput   string
	provisionSiteIDs []string
	provisionOrgID   string
	provisionCSVOnly bool
	provisionKeepCSV string
	provisionDBPath  string
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Extract sites from a survey workbook and create them in the org",
	Long: `Run the extraction pipeline for each identifier and create the resulting
sites in the Mist organization, pushing the resolved site variables into each
site's setting afterwards.

Identifiers are processed independently: one failed or conflicting site never
blocks the rest of the batch. A site whose derived name already exists in the
org is reported as a conflict and left untouched. Every attempt is recorded
in the local SQLite ledger.

When mist.org_id is not configured and --org-id is not given, the first
organization the API token can access is used.`,
	Example: `
  # Provision two sites
  siteprov provision -i survey.xlsx -s SITE001 -s SITE002

  # Target an explicit organization
  siteprov provision -i survey.xlsx -s SITE001 --org-id 9f1c2a..

  # Also keep the import CSV for the created sites
  siteprov provision -i survey.xlsx -s SITE001 --keep-csv sites.csv

  # Dry run: build the import CSV without touching the API
  siteprov provision -i survey.xlsx -s SITE001 --csv-only --keep-csv sites.csv

  # Record runs in a custom ledger
  siteprov provision -i survey.xlsx -s SITE001 --db ./siteprov.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		book, err := workbook.Load(provisionInput)
		if err != nil {
			return err
		}

		ledger, err := storage.OpenLedger(provisionDBPath)
		if err != nil {
			return err
		}
		defer ledger.Close()

		if provisionCSVOnly {
			return runCSVOnly(cmd, cfg, book, ledger)
		}

		client, err := newMistClient(cfg)
		if err != nil {
			return err
		}

		orgID := provisionOrgID
		if orgID == "" {
			orgID = cfg.Mist.OrgID
		}

		deps := provision.Deps{
			Client:   client,
			Ledger:   ledger,
			Geocoder: newGeocoder(cfg),
		}
		result, err := provision.Run(cmd.Context(), deps, book, provisionSiteIDs, provision.Options{
			Extract: extractOptionsFromConfig(cfg),
			OrgID:   orgID,
		})
		if err != nil {
			return err
		}

		for _, siteResult := range result.Sites {
			switch siteResult.Status {
			case storage.StatusCreated:
				fmt.Printf("Created %s (%s) as site %s\n", siteResult.Name, siteResult.Identifier, siteResult.SiteID)
			case storage.StatusConflict:
				fmt.Printf("Conflict for %s (%s): %v\n", siteResult.Name, siteResult.Identifier, siteResult.Err)
			default:
				fmt.Printf("Failed %s: %v\n", siteResult.Identifier, siteResult.Err)
			}
			for _, warning := range siteResult.Warnings {
				fmt.Printf("  Warning: %s\n", warning)
			}
			if siteResult.GeoUnresolved {
				fmt.Printf("  Warning: address could not be geocoded; country/timezone left blank\n")
			}
		}
		fmt.Printf("Provisioning completed. Org: %s, Created: %d, Conflicts: %d, Failed: %d\n",
			result.OrgID, result.Created, result.Conflicts, result.Failed)

		if provisionKeepCSV != "" {
			if err := writeProvisionCSV(provisionKeepCSV, result); err != nil {
				return err
			}
			fmt.Printf("Import CSV written to %s\n", provisionKeepCSV)
		}

		return nil
	},
}

// runCSVOnly runs the extraction half of the pipeline and writes the import
// CSV, never touching the API. Extracted runs still land in the ledger so a
// later provisioning run has the history.
func runCSVOnly(cmd *cobra.Command, cfg *config.Config, book *workbook.Workbook, ledger *storage.Ledger) error {
	csvPath := provisionKeepCSV
	if csvPath == "" {
		csvPath = "./sites.csv"
	}

	opts := extractOptionsFromConfig(cfg)
	geocoder := newGeocoder(cfg)
	descriptors := make([]site.Descriptor, 0, len(provisionSiteIDs))
	for _, identifier := range provisionSiteIDs {
		result, err := extract.Run(cmd.Context(), book, identifier, opts, geocoder)
		if err != nil {
			printExtractDiagnostics(err)
			return err
		}
		for _, warning := range result.Warnings {
			fmt.Printf("Warning: %s\n", warning)
		}
		descriptors = append(descriptors, result.Descriptor)
	}

	// One layout for the whole batch, so ledger lines match the written file.
	extended := output.NeedsExtendedLayout(descriptors)
	for i, descriptor := range descriptors {
		run := storage.Run{
			Identifier:  provisionSiteIDs[i],
			SiteName:    descriptor.Name,
			SourceSheet: descriptor.SourceSheet,
			SourceRow:   descriptor.SourceRow,
			SourceCol:   descriptor.SourceCol,
			CSVLine:     output.ImportLine(descriptor, extended),
			Status:      storage.StatusExtracted,
		}
		if _, err := ledger.InsertRun(run); err != nil {
			return err
		}
	}

	writer := &output.CSVWriter{}
	if err := writer.Write(csvPath, descriptors); err != nil {
		return err
	}
	fmt.Printf("CSV-only run completed. Sites: %d, File: %s\n", len(descriptors), csvPath)
	return nil
}

// writeProvisionCSV exports the descriptors that were successfully extracted,
// whether or not the create succeeded, so a failed batch can be replayed
// through the platform's own CSV import.
func writeProvisionCSV(path string, result *provision.Result) error {
	descriptors := make([]site.Descriptor, 0, len(result.Sites))
	for _, siteResult := range result.Sites {
		if siteResult.Name == "" {
			continue
		}
		descriptors = append(descriptors, siteResult.Descriptor)
	}

	writer := &output.CSVWriter{}
	return writer.Write(path, descriptors)
}

func init() {
	rootCmd.AddCommand(provisionCmd)

	provisionCmd.Flags().StringVarP(&provisionInput, "input", "i", "", "Survey workbook path (.xlsx, .xlsm)")
	provisionCmd.Flags().StringArrayVarP(&provisionSiteIDs, "site", "s", nil, "Site identifier to provision (repeatable)")
	provisionCmd.Flags().StringVar(&provisionOrgID, "org-id", "", "Target organization (overrides mist.org_id)")
	provisionCmd.Flags().BoolVar(&provisionCSVOnly, "csv-only", false, "Extract and write the import CSV without creating sites")
	provisionCmd.Flags().StringVar(&provisionKeepCSV, "keep-csv", "", "Also write the extracted sites as import CSV to this path")
	provisionCmd.Flags().StringVar(&provisionDBPath, "db", "./siteprov.db", "Path to the local SQLite run ledger")

	_ = provisionCmd.MarkFlagRequired("input")
	_ = provisionCmd.MarkFlagRequired("site")
}
