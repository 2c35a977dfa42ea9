// Package discovery reads the physical columns of model tables from the
// configured store.
package discovery

import (
	"context"
	"fmt"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/schema"
)

// Discoverer reads table columns from a source database.
type Discoverer interface {
	// Connect establishes a read-only connection to the source.
	Connect(ctx context.Context) error

	// Columns returns the columns of table in declaration order. A table
	// that does not exist has no columns.
	Columns(ctx context.Context, table string) ([]schema.Column, error)

	// Close closes the connection.
	Close() error
}

// describer is implemented by sources that can label a snapshot.
type describer interface {
	describe() schema.Schema
}

// New creates a Discoverer for the given source configuration.
func New(cfg *config.SourceConfig) (Discoverer, error) {
	switch cfg.Type {
	case "postgresql":
		return NewPostgres(cfg)
	case "mysql":
		return NewMySQL(cfg)
	case "sqlite":
		return NewSQLite(cfg)
	case "oracle":
		return NewOracle(cfg)
	case "mongodb":
		return NewMongo(cfg)
	case "fixture":
		return NewFixture(cfg)
	default:
		return nil, &UnsupportedDBError{DBType: cfg.Type}
	}
}

// UnsupportedDBError is returned when the source DB type is not supported.
type UnsupportedDBError struct {
	DBType string
}

func (e *UnsupportedDBError) Error() string {
	return "unsupported database type: " + e.DBType
}

// Snapshot reads the columns of each table into a schema. Duplicate table
// names are read once; order follows tables.
func Snapshot(ctx context.Context, d Discoverer, tables []string) (*schema.Schema, error) {
	var s schema.Schema
	if desc, ok := d.(describer); ok {
		s = desc.describe()
	}

	seen := make(map[string]bool, len(tables))
	for _, name := range tables {
		if seen[name] {
			continue
		}
		seen[name] = true

		cols, err := d.Columns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("reading columns of %s: %w", name, err)
		}
		s.Tables = append(s.Tables, schema.Table{Name: name, Columns: cols})
	}
	return &s, nil
}
