package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"siteprov/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. The API
token is masked.`,
	Example: `
  # Show active configuration
  siteprov config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		}
		fmt.Println("Configuration:")
		fmt.Printf("mist.base_url: %s\n", cfg.Mist.BaseURL)
		fmt.Printf("mist.api_token: %s\n", maskToken(cfg.Mist.APIToken))
		fmt.Printf("mist.org_id: %s\n", cfg.Mist.OrgID)
		fmt.Printf("extract.id_field_name: %s\n", cfg.Extract.IDFieldName)
		fmt.Printf("extract.min_identifier_length: %d\n", cfg.Extract.MinIdentifierLength)
		fmt.Printf("extract.skip_sheet_keywords: %s\n", strings.Join(cfg.Extract.SkipSheetKeywords, ", "))
		fmt.Printf("extract.template_sheet_keyword: %s\n", cfg.Extract.TemplateSheetKeyword)
		fmt.Printf("extract.site_group: %s\n", cfg.Extract.SiteGroup)
		for _, field := range sortedOffsetFields(cfg.Extract.ColumnOffsets) {
			fmt.Printf("extract.column_offsets.%s: %d\n", field, cfg.Extract.ColumnOffsets[field])
		}
		fmt.Printf("geocode.google_api_key: %s\n", maskToken(cfg.Geocode.GoogleAPIKey))
		fmt.Printf("geocode.fail_on_unresolved: %t\n", cfg.Geocode.FailOnUnresolved)
		fmt.Printf("geocode.max_attempts: %d\n", cfg.Geocode.MaxAttempts)
		fmt.Printf("templates.networktemplate_id: %s\n", cfg.Templates.NetworkTemplateID)
		fmt.Printf("templates.gatewaytemplate_id: %s\n", cfg.Templates.GatewayTemplateID)
		fmt.Printf("templates.rftemplate_id: %s\n", cfg.Templates.RFTemplateID)
	},
}

func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

func sortedOffsetFields(offsets map[string]int) []string {
	fields := make([]string, 0, len(offsets))
	for field := range offsets {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
