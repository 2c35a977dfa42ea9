package typemap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TSType is a TypeScript type expression.
type TSType = string

const (
	TSString  TSType = "string"
	TSNumber  TSType = "number"
	TSBoolean TSType = "boolean"
	TSAny     TSType = "any"
	TSUnknown TSType = "unknown"
)

// AllTSTypes lists the TypeScript types offered when cycling in the editor.
var AllTSTypes = []TSType{
	TSString,
	TSNumber,
	TSBoolean,
	TSAny,
	TSUnknown,
}

// Unknown returns the diagnostic marker for a type name that has no mapping.
// The original token is kept in a comment so generated output surfaces the gap.
func Unknown(token string) TSType {
	return TSUnknown + " /* " + strings.ReplaceAll(token, "*/", "* /") + " */"
}

// IsUnknown reports whether expr contains an unknown marker.
func IsUnknown(expr string) bool {
	return strings.Contains(expr, TSUnknown+" /* ")
}

// TypeMap holds the mapping from storage types to TypeScript types.
type TypeMap struct {
	DatabaseType string            `yaml:"database_type,omitempty"`
	Overrides    map[string]TSType `yaml:"overrides,omitempty"`
	mappings     map[string]TSType
	defaults     map[string]TSType
}

var baseMappings = map[string]TSType{
	// strings
	"uuid":                        TSString,
	"string":                      TSString,
	"text":                        TSString,
	"varchar":                     TSString,
	"character varying":           TSString,
	"char":                        TSString,
	"character":                   TSString,
	"bpchar":                      TSString,
	"date":                        TSString,
	"datetime":                    TSString,
	"timestamp":                   TSString,
	"timestamp without time zone": TSString,
	"timestamp with time zone":    TSString,
	"timestamptz":                 TSString,
	"time":                        TSString,
	"time without time zone":      TSString,
	"time with time zone":         TSString,
	"timetz":                      TSString,
	"bytea":                       TSString,
	"blob":                        TSString,
	"binary":                      TSString,
	"varbinary":                   TSString,
	// numbers
	"integer":          TSNumber,
	"int":              TSNumber,
	"smallint":         TSNumber,
	"bigint":           TSNumber,
	"int2":             TSNumber,
	"int4":             TSNumber,
	"int8":             TSNumber,
	"float":            TSNumber,
	"float4":           TSNumber,
	"float8":           TSNumber,
	"real":             TSNumber,
	"double":           TSNumber,
	"double precision": TSNumber,
	"decimal":          TSNumber,
	"numeric":          TSNumber,
	"smallserial":      TSNumber,
	"serial":           TSNumber,
	"bigserial":        TSNumber,
	// booleans
	"boolean": TSBoolean,
	"bool":    TSBoolean,
}

var dialectMappings = map[string]map[string]TSType{
	"mysql": {
		"tinyint":    TSNumber,
		"mediumint":  TSNumber,
		"year":       TSNumber,
		"tinytext":   TSString,
		"mediumtext": TSString,
		"longtext":   TSString,
		"tinyblob":   TSString,
		"mediumblob": TSString,
		"longblob":   TSString,
	},
	"sqlite": {
		"clob":    TSString,
		"tinyint": TSNumber,
	},
	"oracle": {
		"number":        TSNumber,
		"binary_float":  TSNumber,
		"binary_double": TSNumber,
		"varchar2":      TSString,
		"nvarchar2":     TSString,
		"nchar":         TSString,
		"clob":          TSString,
		"nclob":         TSString,
		"raw":           TSString,
	},
	"mongodb": {
		"objectid": TSString,
		"bindata":  TSString,
		"regex":    TSString,
		"long":     TSNumber,
		"object":   TSAny,
		"array":    TSAny + "[]",
	},
}

// ForDatabase returns a TypeMap with defaults for the given database type.
func ForDatabase(dbType string) *TypeMap {
	tm := &TypeMap{
		DatabaseType: dbType,
		Overrides:    make(map[string]TSType),
		mappings:     make(map[string]TSType),
		defaults:     make(map[string]TSType),
	}
	for k, v := range baseMappings {
		tm.defaults[k] = v
	}
	for k, v := range dialectMappings[dbType] {
		tm.defaults[k] = v
	}
	for k, v := range tm.defaults {
		tm.mappings[k] = v
	}
	return tm
}

// Lookup returns the TypeScript type for a storage type and whether one is mapped.
// Matching is exact first, then case-insensitive.
func (tm *TypeMap) Lookup(storageType string) (TSType, bool) {
	if ts, ok := tm.mappings[storageType]; ok {
		return ts, true
	}
	ts, ok := tm.mappings[strings.ToLower(storageType)]
	return ts, ok
}

// Resolve returns the TypeScript type for the given storage type, or an
// unknown marker embedding the storage type.
func (tm *TypeMap) Resolve(storageType string) TSType {
	if ts, ok := tm.Lookup(storageType); ok {
		return ts
	}
	return Unknown(storageType)
}

// Override applies a user override for a storage type.
func (tm *TypeMap) Override(storageType string, ts TSType) {
	tm.mappings[storageType] = ts
	if tm.Overrides == nil {
		tm.Overrides = make(map[string]TSType)
	}
	// Track override only if different from default
	if def, ok := tm.defaults[storageType]; ok && def == ts {
		delete(tm.Overrides, storageType)
		return
	}
	tm.Overrides[storageType] = ts
}

// RestoreDefault restores the default mapping for a storage type. Types with
// no default become unmapped again.
func (tm *TypeMap) RestoreDefault(storageType string) {
	if def, ok := tm.defaults[storageType]; ok {
		tm.mappings[storageType] = def
	} else {
		delete(tm.mappings, storageType)
	}
	delete(tm.Overrides, storageType)
}

// IsOverridden returns true if the storage type has been overridden from its default.
func (tm *TypeMap) IsOverridden(storageType string) bool {
	_, ok := tm.Overrides[storageType]
	return ok
}

// SortedTypes returns the mapped storage type names sorted alphabetically.
func (tm *TypeMap) SortedTypes() []string {
	types := make([]string, 0, len(tm.mappings))
	for k := range tm.mappings {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// WriteYAML writes the database type and overrides to a YAML file.
func (tm *TypeMap) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(tm)
	if err != nil {
		return fmt.Errorf("marshaling type map: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// LoadYAML reads a type map file and applies its overrides on top of the
// defaults for its database type. fallbackDB is used when the file does not
// name one.
func LoadYAML(path, fallbackDB string) (*TypeMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading type map file: %w", err)
	}
	var saved TypeMap
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("parsing type map: %w", err)
	}
	dbType := saved.DatabaseType
	if dbType == "" {
		dbType = fallbackDB
	}
	tm := ForDatabase(dbType)
	for k, v := range saved.Overrides {
		tm.Override(k, v)
	}
	return tm, nil
}
