package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML description of the classes taking part in generation.
type Manifest struct {
	Enums   []Enum          `yaml:"enums,omitempty"`
	Models  []ManifestModel `yaml:"models,omitempty"`
	Shapes  []ManifestShape `yaml:"shapes,omitempty"`
	Classes []ManifestClass `yaml:"classes,omitempty"`
}

// ManifestModel declares a model class and its serialization metadata.
type ManifestModel struct {
	Class      string            `yaml:"class"`
	TypeScript bool              `yaml:"typescript"`
	TableName  string            `yaml:"table,omitempty"`
	HiddenList []string          `yaml:"hidden,omitempty"`
	CastMap    map[string]string `yaml:"casts,omitempty"`
	AppendList []string          `yaml:"appends,omitempty"`
	Doc        string            `yaml:"doc,omitempty"`
}

func (m ManifestModel) Table() string            { return m.TableName }
func (m ManifestModel) Hidden() []string         { return m.HiddenList }
func (m ManifestModel) Casts() map[string]string { return m.CastMap }
func (m ManifestModel) Appends() []string        { return m.AppendList }

// ManifestShape declares a payload shape.
type ManifestShape struct {
	Shape      `yaml:",inline"`
	TypeScript bool `yaml:"typescript"`
}

// ManifestClass declares any other class that annotations may reference.
type ManifestClass struct {
	Class      string `yaml:"class"`
	TypeScript bool   `yaml:"typescript"`
}

// ManifestError reports an invalid manifest entry.
type ManifestError struct {
	Section string
	Index   int
	Reason  string
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s[%d]: %s", e.Section, e.Index, e.Reason)
}

// LoadManifest reads a manifest file and builds a registry from it.
func LoadManifest(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest builds a registry from manifest YAML.
func ParseManifest(data []byte) (*Registry, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return m.Registry()
}

// Registry populates a new registry from the manifest.
func (m *Manifest) Registry() (*Registry, error) {
	r := NewRegistry()

	for i, e := range m.Enums {
		if e.Name == "" {
			return nil, &ManifestError{Section: "enums", Index: i, Reason: "missing name"}
		}
		if err := r.RegisterEnum(e.Name, e.Values...); err != nil {
			return nil, &ManifestError{Section: "enums", Index: i, Reason: err.Error()}
		}
	}

	for i, mm := range m.Models {
		if mm.Class == "" {
			return nil, &ManifestError{Section: "models", Index: i, Reason: "missing class"}
		}
		opts := []Option{WithDoc(mm.Doc)}
		if mm.TypeScript {
			opts = append(opts, WithTypeScript())
		}
		mm := mm
		factory := func() Model { return mm }
		if _, err := r.registerModel(mm.Class, factory, opts...); err != nil {
			return nil, &ManifestError{Section: "models", Index: i, Reason: err.Error()}
		}
	}

	for i, s := range m.Shapes {
		if s.Class == "" {
			return nil, &ManifestError{Section: "shapes", Index: i, Reason: "missing class"}
		}
		for _, f := range s.Fields {
			if f.Name == "" || f.Type == "" {
				return nil, &ManifestError{Section: "shapes", Index: i, Reason: "field needs name and type"}
			}
		}
		if err := r.RegisterShape(s.Shape, s.TypeScript); err != nil {
			return nil, &ManifestError{Section: "shapes", Index: i, Reason: err.Error()}
		}
	}

	for i, c := range m.Classes {
		if c.Class == "" {
			return nil, &ManifestError{Section: "classes", Index: i, Reason: "missing class"}
		}
		if err := r.RegisterClass(c.Class, c.TypeScript); err != nil {
			return nil, &ManifestError{Section: "classes", Index: i, Reason: err.Error()}
		}
	}

	return r, nil
}
