package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Write the example configuration template to the active config path. The
template carries the Mist API connection settings plus the extraction and
geocoding defaults (skip keywords, column offsets, Default_Group, retry
attempts); fill in mist.api_token before provisioning.

If a configuration file is already in use, no new file is written.`,
	Example: `
  # Create default config at $HOME/.siteprov.yaml
  siteprov config create

  # Create at an explicit path
  siteprov --configFile ./custom-siteprov.yaml config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig()
	},
}

func saveDefaultConfig() error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("New config file created at: %s\n", configPath)
		return nil
	}

	fmt.Printf("Config file already exists at: %s\n", configPath)
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
