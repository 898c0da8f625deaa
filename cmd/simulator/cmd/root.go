// Package cmd provides the CLI commands for the credit simulator.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/config"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/logging"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "simulator",
	Short: "Look up credit rates by customer segment",
	Long: `simulator classifies a customer into a segment from their monthly income
and looks up the interest rate of the chosen credit product.

Examples:
  simulator serve
  simulator seed --config ./config/config.yaml
  simulator crawl --include-seed
  simulator simulate --person-type PF --modality Pre-fixado --product Financiamento --income "R$ 1.000,00"`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig(*cobra.Command, []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger = logging.New(cfg.Logging)
	return nil
}
