package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
	commit   = "none"
	date     = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "modelts",
	Short: "Generate TypeScript declarations for Eloquent-style models",
	Long: `modelts reads model metadata from a manifest, inspects the columns of
each model's table and writes TypeScript declarations for the front end.`,
	SilenceUsage: true,
}

func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (%s, %s)", version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.modelts/modelts.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
}

// loadConfig reads and validates the config and builds the logger it asks for.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config invalid: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.Setup(level, cfg.Logging.Directory)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
