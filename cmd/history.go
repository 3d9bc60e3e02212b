package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"siteprov/storage"
)

var (
	historyDBPath     string
	historyIdentifier string
	historyLimit      int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded extraction and provisioning runs",
	Long: `List runs from the local SQLite ledger, newest first.

Each run records the identifier, the derived site name, the source cell the
identifier matched, the serialized import line, and the outcome.`,
	Example: `
  # Show the most recent runs
  siteprov history

  # All runs for one identifier
  siteprov history -s SITE001

  # Read a custom ledger
  siteprov history --db ./siteprov.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := storage.OpenLedger(historyDBPath)
		if err != nil {
			return err
		}
		defer ledger.Close()

		var runs []storage.Run
		if historyIdentifier != "" {
			runs, err = ledger.RunsForIdentifier(historyIdentifier)
		} else {
			runs, err = ledger.ListRuns()
		}
		if err != nil {
			return err
		}

		if historyLimit > 0 && len(runs) > historyLimit {
			runs = runs[:historyLimit]
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		for _, run := range runs {
			fmt.Println(formatRun(run))
		}
		fmt.Printf("Runs shown: %d\n", len(runs))
		return nil
	},
}

func formatRun(run storage.Run) string {
	line := fmt.Sprintf("#%d %s %s %s", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Status, run.Identifier)
	if run.SiteName != "" {
		line += " -> " + run.SiteName
	}
	if run.SourceSheet != "" {
		line += fmt.Sprintf(" (matched %s!R%dC%d)", run.SourceSheet, run.SourceRow+1, run.SourceCol+1)
	}
	if run.Error != "" {
		line += ": " + run.Error
	}
	return line
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyDBPath, "db", "./siteprov.db", "Path to the local SQLite run ledger")
	historyCmd.Flags().StringVarP(&historyIdentifier, "site", "s", "", "Only show runs for this identifier")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to show (0 for all)")
}
