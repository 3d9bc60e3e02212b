package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"siteprov/config"
	"siteprov/provision"
	"siteprov/storage"
)

var (
	reconcileDBPath string
	reconcileOrgID  string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Cross-check the run ledger against the live organization",
	Long: `Compare sites the ledger records as created against the sites currently
present in the organization. A site that was created here but is gone
remotely was deleted out of band and may need re-provisioning.`,
	Example: `
  # Reconcile the default ledger against the configured org
  siteprov reconcile

  # Custom ledger and explicit org
  siteprov reconcile --db ./siteprov.db --org-id 9f1c2a..
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

		ledger, err := storage.OpenLedger(reconcileDBPath)
		if err != nil {
			return err
		}
		defer ledger.Close()

		orgID := reconcileOrgID
		if orgID == "" {
			orgID = cfg.Mist.OrgID
		}

		result, err := provision.Reconcile(cmd.Context(), provision.Deps{Client: client, Ledger: ledger}, orgID)
		if err != nil {
			return err
		}

		fmt.Printf("Reconcile completed. Ledger sites: %d, Remote sites: %d, Missing remotely: %d\n",
			result.LedgerCreated, result.RemoteSites, len(result.Missing))
		for _, name := range result.Missing {
			fmt.Printf("  missing: %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&reconcileDBPath, "db", "./siteprov.db", "Path to the local SQLite run ledger")
	reconcileCmd.Flags().StringVar(&reconcileOrgID, "org-id", "", "Target organization (overrides mist.org_id)")
}
