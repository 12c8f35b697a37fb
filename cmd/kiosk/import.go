package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Merge a spreadsheet into the material catalog",
	Long: `Reads every sheet whose name contains a category group label
(전기자재, 자동화자재) and upserts its rows by (name, group).
Quantities and prices are normalized; rows without a name are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		sum, err := a.imp.ImportWorkbook(cmd.Context(), f)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "inserted: %d\nupdated:  %d\nskipped:  %d\n", sum.Inserted, sum.Updated, sum.Skipped)
		if len(sum.IgnoredSheets) > 0 {
			fmt.Fprintf(out, "ignored sheets: %s\n", strings.Join(sum.IgnoredSheets, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
