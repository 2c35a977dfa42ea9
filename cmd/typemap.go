package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/reloquent/modelts/internal/discovery"
	"github.com/reloquent/modelts/internal/model"
	"github.com/reloquent/modelts/internal/typemap"
	"github.com/reloquent/modelts/internal/wizard"
)

var typemapOutput string

var typemapCmd = &cobra.Command{
	Use:   "typemap",
	Short: "Review storage type to TypeScript mappings",
	Long: `Read the columns of every marked model's table and open an editor listing
each storage type in use with the TypeScript type it maps to. Overrides are
saved to the type_mapping file and applied by generate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		reg, err := model.LoadManifest(cfg.Manifest)
		if err != nil {
			return err
		}

		d, err := discovery.New(&cfg.Source)
		if err != nil {
			return fmt.Errorf("initializing discoverer: %w", err)
		}
		defer d.Close()

		ctx := context.Background()
		if err := d.Connect(ctx); err != nil {
			return fmt.Errorf("connecting to source: %w", err)
		}
		s, err := discovery.Snapshot(ctx, d, reg.Tables())
		if err != nil {
			return err
		}

		path := typemapOutput
		if path == "" {
			path = cfg.TypeMapping
		}
		if path == "" {
			path = "typemap.yaml"
		}

		dbType := snapshotDialect(cfg, s)
		existing, err := typemap.LoadYAML(path, dbType)
		if errors.Is(err, fs.ErrNotExist) {
			existing = nil
		} else if err != nil {
			return err
		}

		tm, err := wizard.RunTypeMapping(s, dbType, existing)
		if err != nil {
			return err
		}
		if err := tm.WriteYAML(path); err != nil {
			return fmt.Errorf("saving type mapping: %w", err)
		}

		logger.Info("type mapping saved", "path", path, "overrides", len(tm.Overrides))
		if cfg.TypeMapping == "" {
			fmt.Printf("Set type_mapping: %s in the config to use it.\n", path)
		}
		return nil
	},
}

func init() {
	typemapCmd.Flags().StringVarP(&typemapOutput, "output", "o", "", "type map file (default: type_mapping from config)")
	rootCmd.AddCommand(typemapCmd)
}
