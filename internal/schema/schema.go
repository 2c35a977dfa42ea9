package schema

import "sort"

// Schema is a snapshot of the columns backing a set of model tables.
type Schema struct {
	DatabaseType string  `yaml:"database_type"` // postgresql, mysql, sqlite, oracle, mongodb
	Host         string  `yaml:"host,omitempty"`
	Database     string  `yaml:"database,omitempty"`
	SchemaName   string  `yaml:"schema_name,omitempty"`
	Tables       []Table `yaml:"tables"`
}

// Table represents a database table or collection.
type Table struct {
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
}

// Column represents a physical column. DataType is the store's own type name
// (uuid, int4, numeric, bsonType, ...) and is never normalized here.
type Column struct {
	Name         string  `yaml:"name"`
	DataType     string  `yaml:"data_type"`
	Nullable     bool    `yaml:"nullable"`
	DefaultValue *string `yaml:"default_value,omitempty"`
	MaxLength    *int    `yaml:"max_length,omitempty"`
	Precision    *int    `yaml:"precision,omitempty"`
	Scale        *int    `yaml:"scale,omitempty"`
}

// Table returns the table with the given name.
func (s *Schema) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// StorageTypes returns the distinct column data types in use, sorted.
func (s *Schema) StorageTypes() []string {
	seen := make(map[string]bool)
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			seen[c.DataType] = true
		}
	}
	types := make([]string, 0, len(seen))
	for typ := range seen {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}
