package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/Spok95/material-kiosk/internal/config"
	"github.com/Spok95/material-kiosk/internal/infra/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Material kiosk inventory ledger",
	Long: `kiosk keeps the quantity on hand of every material consistent with its
movement ledger. It serves the HTTP API and the Telegram bot, and runs
spreadsheet imports and exports from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/example.yaml", "path to the YAML config; empty uses defaults and APP_* env only")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// логгер ещё может быть не собран, если упал сам конфиг
		l := logger.New("prod", "text")
		l.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
