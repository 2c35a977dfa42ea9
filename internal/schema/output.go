package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a schema from a YAML file.
func LoadYAML(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	s := &Schema{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	return s, nil
}

// WriteYAML writes the schema to a YAML file at the given path.
func (s *Schema) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Summary returns a human-readable summary of the schema.
func (s *Schema) Summary() string {
	var totalCols, nullable int
	for _, t := range s.Tables {
		totalCols += len(t.Columns)
		for _, c := range t.Columns {
			if c.Nullable {
				nullable++
			}
		}
	}

	return fmt.Sprintf(
		"Found %d tables, %d columns (%d nullable), %d distinct storage types",
		len(s.Tables), totalCols, nullable, len(s.StorageTypes()),
	)
}
