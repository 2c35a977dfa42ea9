package discovery

import (
	"context"
	"fmt"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/schema"
)

// Static serves columns from an in-memory schema snapshot, typically one
// written by `modelts discover`.
type Static struct {
	path   string
	schema *schema.Schema
}

// NewFixture creates a Static source that loads cfg.Path on Connect.
func NewFixture(cfg *config.SourceConfig) (*Static, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("fixture source needs a path")
	}
	return &Static{path: cfg.Path}, nil
}

// NewStatic creates a Static source over an already loaded schema.
func NewStatic(s *schema.Schema) *Static {
	return &Static{schema: s}
}

func (s *Static) Connect(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	loaded, err := schema.LoadYAML(s.path)
	if err != nil {
		return fmt.Errorf("loading fixture: %w", err)
	}
	s.schema = loaded
	return nil
}

func (s *Static) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	if s.schema == nil {
		return nil, fmt.Errorf("not connected; call Connect first")
	}
	t, ok := s.schema.Table(table)
	if !ok {
		return nil, nil
	}
	return append([]schema.Column(nil), t.Columns...), nil
}

func (s *Static) Close() error { return nil }

// DatabaseType returns the store the snapshot was taken from, so the
// matching type-map dialect can be chosen.
func (s *Static) DatabaseType() string {
	if s.schema == nil {
		return ""
	}
	return s.schema.DatabaseType
}

func (s *Static) describe() schema.Schema {
	d := schema.Schema{DatabaseType: "fixture"}
	if s.schema != nil {
		d = *s.schema
		d.Tables = nil
	}
	return d
}

var _ Discoverer = (*Static)(nil)
