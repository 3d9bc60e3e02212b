package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage siteprov configuration file values.",
	Long: `Create, edit, and display the siteprov configuration file.

The configuration stores the API connection and the extraction tuning:
- mist.base_url / mist.api_token / mist.org_id
- extract.id_field_name / min_identifier_length / skip_sheet_keywords / column_offsets
- geocode.google_api_key / fail_on_unresolved / max_attempts
- templates.networktemplate_id / gatewaytemplate_id / rftemplate_id`,
	Example: `
  # Create default config in $HOME/.siteprov.yaml
  siteprov config create

  # Show active config and source file
  siteprov config show

  # Open active config in editor (creates example if missing)
  siteprov config edit
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
