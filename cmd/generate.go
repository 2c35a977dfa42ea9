package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/discovery"
	"github.com/reloquent/modelts/internal/emit"
	"github.com/reloquent/modelts/internal/lock"
	"github.com/reloquent/modelts/internal/model"
	"github.com/reloquent/modelts/internal/schema"
	"github.com/reloquent/modelts/internal/tsgen"
	"github.com/reloquent/modelts/internal/typemap"
	"github.com/reloquent/modelts/internal/watch"
)

var (
	generateOutput string
	generateWatch  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the TypeScript declaration file",
	Long: `Load the model manifest, read each marked model's table columns from the
configured source and write one declaration file with a namespace per PHP
namespace. With --watch, regenerate whenever the manifest, type map or
fixture changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if generateOutput != "" {
			cfg.Output.Path = generateOutput
		}

		lockPath := lock.PathFor(cfg.Output.Path)
		if err := lock.Acquire(lockPath); err != nil {
			return err
		}
		defer lock.Release(lockPath)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := generate(ctx, cfg, logger); err != nil {
			if !generateWatch {
				return err
			}
			logger.Error("generation failed", "error", err)
		}
		if !generateWatch {
			return nil
		}

		w, err := watch.New([]string{cfg.Manifest, cfg.TypeMapping, sourceFile(cfg)}, watch.DefaultDebounce, logger)
		if err != nil {
			return err
		}
		logger.Info("watching for changes", "manifest", cfg.Manifest)
		return w.Run(ctx, func(ctx context.Context) error {
			return generate(ctx, cfg, logger)
		})
	},
}

// generate runs one full pass: manifest, columns, transform, emit.
func generate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	reg, err := model.LoadManifest(cfg.Manifest)
	if err != nil {
		return err
	}

	d, err := discovery.New(&cfg.Source)
	if err != nil {
		return fmt.Errorf("initializing source: %w", err)
	}
	defer d.Close()

	if err := d.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to source: %w", err)
	}

	tm, err := loadTypeMap(cfg, d)
	if err != nil {
		return err
	}

	runner := &tsgen.Runner{
		Generator: tsgen.New(reg, d, tm, logger),
		Workers:   cfg.Output.Workers,
	}
	types, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("generating types: %w", err)
	}

	content, err := emit.Build(types, reg).Render()
	if err != nil {
		return fmt.Errorf("rendering declarations: %w", err)
	}
	if err := emit.WriteFile(cfg.Output.Path, content); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Output.Path, err)
	}

	logger.Info("declarations written", "path", cfg.Output.Path, "models", len(types))
	return nil
}

// dialect picks the type-map defaults for a source. Fixtures carry the
// type of the store they were taken from.
func dialect(cfg *config.Config, d discovery.Discoverer) string {
	if s, ok := d.(*discovery.Static); ok {
		if t := s.DatabaseType(); t != "" && t != "fixture" {
			return t
		}
	}
	return cfg.Source.Type
}

// snapshotDialect is dialect for an already taken snapshot.
func snapshotDialect(cfg *config.Config, s *schema.Schema) string {
	if s.DatabaseType != "" && s.DatabaseType != "fixture" {
		return s.DatabaseType
	}
	return cfg.Source.Type
}

// loadTypeMap applies the saved overrides, if any, to the dialect defaults.
func loadTypeMap(cfg *config.Config, d discovery.Discoverer) (*typemap.TypeMap, error) {
	dbType := dialect(cfg, d)
	if cfg.TypeMapping == "" {
		return typemap.ForDatabase(dbType), nil
	}
	tm, err := typemap.LoadYAML(cfg.TypeMapping, dbType)
	if errors.Is(err, fs.ErrNotExist) {
		return typemap.ForDatabase(dbType), nil
	}
	return tm, err
}

// sourceFile returns the file backing a file-based source.
func sourceFile(cfg *config.Config) string {
	if cfg.Source.Type == "fixture" || cfg.Source.Type == "sqlite" {
		return cfg.Source.Path
	}
	return ""
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "declaration file path (default: output.path from config)")
	generateCmd.Flags().BoolVar(&generateWatch, "watch", false, "regenerate when inputs change")
	rootCmd.AddCommand(generateCmd)
}
