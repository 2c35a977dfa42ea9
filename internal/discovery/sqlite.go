package discovery

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/schema"
	_ "modernc.org/sqlite"
)

// SQLite implements Discoverer for SQLite database files.
type SQLite struct {
	cfg *config.SourceConfig
	db  *sql.DB
}

// NewSQLite creates a new SQLite discoverer for cfg.Path.
func NewSQLite(cfg *config.SourceConfig) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite source needs a path")
	}
	return &SQLite{cfg: cfg}, nil
}

func (s *SQLite) Connect(ctx context.Context) error {
	db, err := sql.Open("sqlite", "file:"+s.cfg.Path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("opening SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("opening SQLite database %s: %w", s.cfg.Path, err)
	}

	s.db = db
	return nil
}

// Columns reads pragma_table_info. Declared types are normalized to lower
// case without arguments. Primary key columns are never nullable, even when
// the declaration omits NOT NULL.
func (s *SQLite) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	if s.db == nil {
		return nil, fmt.Errorf("not connected; call Connect first")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var (
			name, declared string
			notNull, pk    int
			def            sql.NullString
		)
		if err := rows.Scan(&name, &declared, &notNull, &def, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, schema.Column{
			Name:         name,
			DataType:     normalizeDeclaredType(declared),
			Nullable:     notNull == 0 && pk == 0,
			DefaultValue: nullString(def),
		})
	}
	return cols, rows.Err()
}

func (s *SQLite) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *SQLite) describe() schema.Schema {
	return schema.Schema{DatabaseType: "sqlite", Database: s.cfg.Path}
}

var _ Discoverer = (*SQLite)(nil)
