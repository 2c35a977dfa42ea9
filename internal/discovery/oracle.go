package discovery

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/schema"
)

// Oracle implements Discoverer for Oracle databases using go-ora (pure Go, no Instant Client).
type Oracle struct {
	cfg   *config.SourceConfig
	db    *sql.DB
	owner string // schema owner, defaults to username uppercased
}

// NewOracle creates a new Oracle discoverer.
func NewOracle(cfg *config.SourceConfig) (*Oracle, error) {
	owner := cfg.Schema
	if owner == "" {
		owner = strings.ToUpper(cfg.Username)
	}
	return &Oracle{cfg: cfg, owner: owner}, nil
}

// ConnString returns the go-ora connection URL for the configured service.
// Credentials are escaped by go-ora.
func (o *Oracle) ConnString() string {
	var opts map[string]string
	if o.cfg.SSL {
		opts = map[string]string{"SSL": "true"}
	}
	return go_ora.BuildUrl(o.cfg.Host, o.cfg.Port, o.cfg.Database, o.cfg.Username, o.cfg.Password, opts)
}

func (o *Oracle) Connect(ctx context.Context) error {
	db, err := sql.Open("oracle", o.ConnString())
	if err != nil {
		return fmt.Errorf("opening Oracle connection: %w", err)
	}
	db.SetMaxOpenConns(4)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("pinging Oracle: %w", err)
	}

	o.db = db
	return nil
}

// Columns reads ALL_TAB_COLUMNS. Unquoted Oracle identifiers are stored
// upper case, so table lookup is case-insensitive and column names are
// returned lower case to match model attributes.
func (o *Oracle) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	if o.db == nil {
		return nil, fmt.Errorf("not connected; call Connect first")
	}

	query := `
		SELECT LOWER(COLUMN_NAME), DATA_TYPE, NULLABLE,
			DATA_DEFAULT, CHAR_LENGTH, DATA_PRECISION, DATA_SCALE
		FROM ALL_TAB_COLUMNS
		WHERE OWNER = :1
		  AND TABLE_NAME = UPPER(:2)
		ORDER BY COLUMN_ID`

	rows, err := o.db.QueryContext(ctx, query, o.owner, table)
	if err != nil {
		return nil, err
	}
	return scanColumns(rows, normalizeDeclaredType)
}

func (o *Oracle) Close() error {
	if o.db != nil {
		err := o.db.Close()
		o.db = nil
		return err
	}
	return nil
}

func (o *Oracle) describe() schema.Schema {
	return schema.Schema{
		DatabaseType: "oracle",
		Host:         o.cfg.Host,
		Database:     o.cfg.Database,
		SchemaName:   o.owner,
	}
}

var _ Discoverer = (*Oracle)(nil)
