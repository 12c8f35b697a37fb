package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Spok95/material-kiosk/internal/domain/catalog"
	"github.com/Spok95/material-kiosk/internal/domain/ledger"
	"github.com/Spok95/material-kiosk/internal/xlsx"
)

var (
	exportOut   string
	exportMonth string
	exportGroup string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stock or ledger spreadsheets",
}

var exportStockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Write the current stock, one sheet per category group",
	Args:  cobra.NoArgs,
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

		ms, err := a.svc.ListMaterials(cmd.Context(), "")
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := xlsx.WriteStock(&buf, ms); err != nil {
			return err
		}
		total, err := a.svc.TotalValue(cmd.Context())
		if err != nil {
			return err
		}
		path := exportOut
		if path == "" {
			path = xlsx.StockFileName(a.now())
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d materials, total value %d\n", path, len(ms), total)
		return nil
	},
}

var exportLedgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Write one month of ledger entries",
	Args:  cobra.NoArgs,
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

		month := a.now()
		if exportMonth != "" {
			if month, err = time.Parse("2006-01", exportMonth); err != nil {
				return fmt.Errorf("--month must be YYYY-MM: %w", err)
			}
		}
		f := ledger.Filter{Year: month.Year(), Month: int(month.Month())}
		if exportGroup != "" {
			if f.Group, err = catalog.ParseGroup(exportGroup); err != nil {
				return err
			}
		}

		entries, err := a.svc.ListEntries(cmd.Context(), f)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := xlsx.WriteLedger(&buf, entries); err != nil {
			return err
		}
		path := exportOut
		if path == "" {
			path = xlsx.LedgerFileName(f.Year, f.Month)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries\n", path, len(entries))
		return nil
	},
}

func init() {
	exportCmd.PersistentFlags().StringVarP(&exportOut, "out", "o", "", "output path (default: standard file name in the current directory)")
	exportLedgerCmd.Flags().StringVar(&exportMonth, "month", "", "month as YYYY-MM (default: current month)")
	exportLedgerCmd.Flags().StringVar(&exportGroup, "group", "", "category group (ELECTRICAL, AUTOMATION or its label)")

	exportCmd.AddCommand(exportStockCmd, exportLedgerCmd)
	rootCmd.AddCommand(exportCmd)
}
