package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var auditAll bool

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Compare quantities on hand with the ledger",
	Long: `Prints every material whose quantity differs from the signed sum of its
ledger entries (stock loaded by imports shows up as opening), plus entries
whose material has been deleted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.svc.Audit(cmd.Context())
		if err != nil {
			return err
		}
		lines := report.Unexplained()
		if auditAll {
			lines = report.Lines
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "GROUP\tNAME\tON HAND\tLEDGER\tENTRIES\tOPENING")
		for _, l := range lines {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
				l.Material.Group.Label(), l.Material.Name, l.Material.Quantity, l.LedgerNet, l.Entries, l.Opening)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d materials, %d with opening stock, %d orphaned entries\n",
			len(report.Lines), len(report.Unexplained()), len(report.Orphans))
		return nil
	},
}

func init() {
	auditCmd.Flags().BoolVar(&auditAll, "all", false, "list every material, not only those with opening stock")
	rootCmd.AddCommand(auditCmd)
}
