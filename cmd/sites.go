package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"siteprov/config"
	"siteprov/mist"
	"siteprov/provision"
)

var (
	sitesOrgID   string
	sitesFormat  string
	sitesOutfile string
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the org's existing sites as an id-to-name mapping",
	Long: `Fetch all sites of the organization and print the {site_id: site_name}
mapping, paging through the API as needed.

Useful for wiring extracted sites into downstream tooling and for checking
name collisions before a provisioning run.`,
	Example: `
  # Print the mapping as JSON
  siteprov sites

  # CSV output into a file
  siteprov sites --format csv --outfile sites.csv

  # Target an explicit organization
  siteprov sites --org-id 9f1c2a..
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		client, err := newMistClient(cfg)
		if err != nil {
			return err
		}

		orgID := sitesOrgID
		if orgID == "" {
			orgID = cfg.Mist.OrgID
		}
		orgID, err = provision.ResolveOrgID(cmd.Context(), client, orgID)
		if err != nil {
			return err
		}

		mapping, err := mist.SiteNameMap(cmd.Context(), client, orgID)
		if err != nil {
			return err
		}

		rendered, err := renderSiteMapping(mapping, sitesFormat)
		if err != nil {
			return err
		}

		if sitesOutfile == "" {
			fmt.Print(rendered)
			return nil
		}
		if err := os.WriteFile(sitesOutfile, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("write site mapping: %w", err)
		}
		fmt.Printf("Site mapping written. Sites: %d, File: %s\n", len(mapping), sitesOutfile)
		return nil
	},
}

func renderSiteMapping(mapping map[string]string, format string) (string, error) {
	switch strings.TrimSpace(strings.ToLower(format)) {
	case "", "json":
		payload, err := json.MarshalIndent(mapping, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal site mapping: %w", err)
		}
		return string(payload) + "\n", nil
	case "csv":
		ids := make([]string, 0, len(mapping))
		for id := range mapping {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		var b strings.Builder
		b.WriteString("site_id,name\n")
		for _, id := range ids {
			fmt.Fprintf(&b, "%s,%s\n", id, mapping[id])
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("unsupported sites format: %s (supported: json, csv)", format)
	}
}

func init() {
	rootCmd.AddCommand(sitesCmd)

	sitesCmd.Flags().StringVar(&sitesOrgID, "org-id", "", "Target organization (overrides mist.org_id)")
	sitesCmd.Flags().StringVarP(&sitesFormat, "format", "f", "json", "Output format: json|csv")
	sitesCmd.Flags().StringVarP(&sitesOutfile, "outfile", "o", "", "Write output to this file instead of stdout")
}
