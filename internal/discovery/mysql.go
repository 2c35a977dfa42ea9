package discovery

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/schema"
)

// MySQL implements Discoverer for MySQL and MariaDB.
type MySQL struct {
	cfg *config.SourceConfig
	db  *sql.DB
}

// NewMySQL creates a new MySQL discoverer.
func NewMySQL(cfg *config.SourceConfig) (*MySQL, error) {
	return &MySQL{cfg: cfg}, nil
}

// DSN returns the go-sql-driver connection string.
func (m *MySQL) DSN() string {
	c := mysql.NewConfig()
	c.User = m.cfg.Username
	c.Passwd = m.cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	c.DBName = m.cfg.Database
	if m.cfg.SSL {
		c.TLSConfig = "true"
	}
	return c.FormatDSN()
}

func (m *MySQL) Connect(ctx context.Context) error {
	db, err := sql.Open("mysql", m.DSN())
	if err != nil {
		return fmt.Errorf("opening MySQL connection: %w", err)
	}
	db.SetMaxOpenConns(4)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("pinging MySQL: %w", err)
	}

	m.db = db
	return nil
}

// Columns reads information_schema.columns. The storage type is DATA_TYPE,
// which carries no length (varchar, bigint, json).
func (m *MySQL) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	if m.db == nil {
		return nil, fmt.Errorf("not connected; call Connect first")
	}

	query := `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT,
			CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ?
		  AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`

	rows, err := m.db.QueryContext(ctx, query, m.cfg.Database, table)
	if err != nil {
		return nil, err
	}
	return scanColumns(rows, nil)
}

func (m *MySQL) Close() error {
	if m.db != nil {
		err := m.db.Close()
		m.db = nil
		return err
	}
	return nil
}

func (m *MySQL) describe() schema.Schema {
	return schema.Schema{
		DatabaseType: "mysql",
		Host:         m.cfg.Host,
		Database:     m.cfg.Database,
	}
}

var _ Discoverer = (*MySQL)(nil)
