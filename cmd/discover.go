package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/discovery"
	"github.com/reloquent/modelts/internal/model"
)

var (
	discoverScript string
	discoverOutput string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Snapshot the columns of model tables",
	Long: `Connect to the source and write the columns of every marked model's table
to a schema YAML file. The snapshot can be used as a fixture source for
offline generation. With --script, write SQL and shell scripts that produce
the same snapshot where the database cannot be reached directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		reg, err := model.LoadManifest(cfg.Manifest)
		if err != nil {
			return err
		}
		tables := reg.Tables()

		if discoverScript != "" {
			return writeDiscoverScripts(cfg, tables)
		}

		d, err := discovery.New(&cfg.Source)
		if err != nil {
			return fmt.Errorf("initializing discoverer: %w", err)
		}
		defer d.Close()

		ctx := context.Background()

		logger.Info("connecting to source", "type", cfg.Source.Type, "host", cfg.Source.Host, "database", cfg.Source.Database)
		if err := d.Connect(ctx); err != nil {
			return fmt.Errorf("connecting to source: %w", err)
		}

		s, err := discovery.Snapshot(ctx, d, tables)
		if err != nil {
			return err
		}

		fmt.Println(s.Summary())

		if err := s.WriteYAML(discoverOutput); err != nil {
			return fmt.Errorf("writing schema: %w", err)
		}
		fmt.Printf("\nSchema written to %s\n", discoverOutput)
		return nil
	},
}

func writeDiscoverScripts(cfg *config.Config, tables []string) error {
	sg := &discovery.ScriptGenerator{
		DBType: cfg.Source.Type,
		Schema: cfg.Source.Schema,
		Tables: tables,
	}

	if err := os.MkdirAll(discoverScript, 0o755); err != nil {
		return fmt.Errorf("creating script directory: %w", err)
	}

	sqlPath := filepath.Join(discoverScript, "discover.sql")
	if err := os.WriteFile(sqlPath, []byte(sg.GenerateScript()), 0o644); err != nil {
		return fmt.Errorf("writing script: %w", err)
	}
	fmt.Printf("Discovery script written to %s\n", sqlPath)

	wrapperPath := filepath.Join(discoverScript, "discover.sh")
	if err := os.WriteFile(wrapperPath, []byte(sg.GenerateShellWrapper()), 0o755); err != nil {
		return fmt.Errorf("writing wrapper: %w", err)
	}
	fmt.Printf("Shell wrapper written to %s\n", wrapperPath)
	return nil
}

func init() {
	discoverCmd.Flags().StringVar(&discoverScript, "script", "", "write offline discovery scripts to this directory instead of connecting")
	discoverCmd.Flags().StringVarP(&discoverOutput, "output", "o", "schema.yaml", "output path for the schema YAML")
	rootCmd.AddCommand(discoverCmd)
}
