package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/lock"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and validate the modelts configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current config (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println("Current configuration:")
		fmt.Println()
		fmt.Printf("  Source:\n")
		fmt.Printf("    Type:           %s\n", cfg.Source.Type)
		switch cfg.Source.Type {
		case "sqlite", "fixture":
			fmt.Printf("    Path:           %s\n", cfg.Source.Path)
		default:
			if cfg.Source.URI != "" {
				fmt.Printf("    URI:            %s\n", maskSecret(cfg.Source.URI))
			}
			fmt.Printf("    Host:           %s\n", cfg.Source.Host)
			fmt.Printf("    Port:           %d\n", cfg.Source.Port)
			fmt.Printf("    Database:       %s\n", cfg.Source.Database)
			fmt.Printf("    Username:       %s\n", cfg.Source.Username)
			fmt.Printf("    Password:       %s\n", maskSecret(cfg.Source.Password))
		}
		fmt.Println()
		fmt.Printf("  Manifest:         %s\n", cfg.Manifest)
		fmt.Printf("  Type mapping:     %s\n", valueOr(cfg.TypeMapping, "(defaults)"))
		fmt.Printf("  Output:           %s\n", cfg.Output.Path)
		fmt.Printf("  Workers:          %d\n", cfg.Output.Workers)
		fmt.Printf("  Log level:        %s\n", cfg.Logging.Level)

		if held, pid, err := lock.IsHeld(lock.PathFor(cfg.Output.Path)); err == nil && held {
			fmt.Printf("\n  Generation in progress (PID %d)\n", pid)
		}

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}

		fmt.Println("Configuration is valid.")
		return nil
	},
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
