package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/libertyplace/rentapp/internal"
	"github.com/libertyplace/rentapp/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rentapp",
	Short: "Rental application intake toolkit",
	Long: `rentapp composes rental application PDFs, serves the intake API and talks
to the project board and intake webhooks.

Secrets (board token, webhook URLs, encryption key, database DSN) are read
from the config file or the environment, never from flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		internal.InitDefaultLogger(internal.ParseLevel(level), cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(missingDocsCmd)
	rootCmd.AddCommand(sendPDFCmd)
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(keygenCmd)
}

func main() {
	defer func() { _ = internal.GetDefaultLogger().Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
