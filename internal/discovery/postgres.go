package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/schema"
)

// Postgres implements Discoverer for PostgreSQL databases.
type Postgres struct {
	cfg    *config.SourceConfig
	pool   *pgxpool.Pool
	schema string // pg schema to read, defaults to "public"
}

// NewPostgres creates a new PostgreSQL discoverer.
func NewPostgres(cfg *config.SourceConfig) (*Postgres, error) {
	s := cfg.Schema
	if s == "" {
		s = "public"
	}
	return &Postgres{cfg: cfg, schema: s}, nil
}

func (p *Postgres) Connect(ctx context.Context) error {
	connStr := p.ConnString() + " password=" + quoteDSNValue(p.cfg.Password) + " default_query_exec_mode=simple_protocol"

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return fmt.Errorf("parsing connection string: %w", err)
	}
	poolCfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connecting to PostgreSQL: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pinging PostgreSQL: %w", err)
	}

	p.pool = pool
	return nil
}

// Columns reads information_schema.columns. The storage type is udt_name
// (int4, uuid, timestamptz), which is stable across catalog versions.
func (p *Postgres) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	if p.pool == nil {
		return nil, fmt.Errorf("not connected; call Connect first")
	}

	query := `
		SELECT
			column_name,
			udt_name,
			is_nullable,
			column_default,
			character_maximum_length,
			numeric_precision,
			numeric_scale
		FROM information_schema.columns
		WHERE table_schema = $1
		  AND table_name = $2
		ORDER BY ordinal_position`

	rows, err := p.pool.Query(ctx, query, p.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var (
			col      schema.Column
			nullable string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.DefaultValue, &col.MaxLength, &col.Precision, &col.Scale); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	return nil
}

// ConnString returns the keyword/value DSN without the password. Connect
// appends the password and query mode.
func (p *Postgres) ConnString() string {
	ssl := "disable"
	if p.cfg.SSL {
		ssl = "require"
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s sslmode=%s",
		p.cfg.Host, p.cfg.Port, p.cfg.Database, p.cfg.Username, ssl)
}

// quoteDSNValue quotes a keyword/value DSN value so spaces and quotes survive.
func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (p *Postgres) describe() schema.Schema {
	return schema.Schema{
		DatabaseType: "postgresql",
		Host:         p.cfg.Host,
		Database:     p.cfg.Database,
		SchemaName:   p.schema,
	}
}

// compile-time interface check
var _ Discoverer = (*Postgres)(nil)
