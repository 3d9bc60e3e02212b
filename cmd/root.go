/*
Copyright © 2026 siteprov authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"siteprov/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "siteprov",
	Short: "Extract site descriptors from survey spreadsheets and provision them as managed sites.",
	Long: `
**********************************************
*               SITEPROV                     *
**********************************************

This CLI scans survey spreadsheets for site identifiers, builds normalized
site descriptors (name, address, variables, templates, geography), and either
exports them as import-ready CSV/Excel or provisions them directly in a
Mist organization. Every provisioning run is recorded in a local SQLite ledger.

Supported input formats:
- Excel: .xlsx, .xlsm
`,
	Example: `
  # Create configuration file
  siteprov config create

  # Extract one site to import CSV
  siteprov extract -i survey.xlsx -s SITE001 -o sites.csv

  # Provision sites directly in the org
  siteprov provision -i survey.xlsx -s SITE001 -s SITE002

  # List existing org sites
  siteprov sites --format csv

  # Show provisioning history
  siteprov history

  # Cross-check the ledger against the live org
  siteprov reconcile
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.siteprov.yaml, then ./.siteprov.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".siteprov" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".siteprov")
	}

	viper.SetEnvPrefix("SITEPROV")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: siteprov config create")
	}
}
