package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.modelts/modelts.yaml"

	DefaultOutputPath = "resources/js/types/generated.d.ts"
	DefaultWorkers    = 4
)

// Config is the top-level configuration.
type Config struct {
	Version     int          `yaml:"version"`
	Source      SourceConfig `yaml:"source"`
	Manifest    string       `yaml:"manifest"`
	TypeMapping string       `yaml:"type_mapping,omitempty"`
	Output      OutputConfig `yaml:"output,omitempty"`
	Logging     LogConfig    `yaml:"logging,omitempty"`
}

// SourceConfig defines where table columns are read from.
type SourceConfig struct {
	Type     string `yaml:"type"` // postgresql, mysql, sqlite, oracle, mongodb or fixture
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database,omitempty"`
	Schema   string `yaml:"schema,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	SSL      bool   `yaml:"ssl,omitempty"`
	Path     string `yaml:"path,omitempty"` // sqlite database or fixture file
	URI      string `yaml:"uri,omitempty"`  // mongodb connection string
}

// OutputConfig controls the generated declaration file.
type OutputConfig struct {
	Path    string `yaml:"path,omitempty"`
	Workers int    `yaml:"workers,omitempty"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty"`     // debug, info, warn, error
	Directory string `yaml:"directory,omitempty"` // default ~/.modelts/logs/
}

var defaultPorts = map[string]int{
	"postgresql": 5432,
	"mysql":      3306,
	"oracle":     1521,
}

// SourceTypes lists the supported source types.
var SourceTypes = []string{"postgresql", "mysql", "sqlite", "oracle", "mongodb", "fixture"}

// DefaultPort returns the conventional port for a source type, or 0.
func DefaultPort(dbType string) int {
	return defaultPorts[dbType]
}

// Load reads and parses the config file from the given path.
// Relative file references are resolved against the config file's directory.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes config YAML, resolves secret references and applies defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Validate reports the first missing setting needed to generate types.
func (c *Config) Validate() error {
	if c.Manifest == "" {
		return fmt.Errorf("manifest is required")
	}
	switch c.Source.Type {
	case "":
		return fmt.Errorf("source.type is required")
	case "sqlite", "fixture":
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for %s", c.Source.Type)
		}
	case "mongodb":
		if c.Source.URI == "" && c.Source.Host == "" {
			return fmt.Errorf("source.uri or source.host is required for mongodb")
		}
		if c.Source.Database == "" {
			return fmt.Errorf("source.database is required for mongodb")
		}
	default:
		if c.Source.Host == "" || c.Source.Database == "" {
			return fmt.Errorf("source.host and source.database are required for %s", c.Source.Type)
		}
	}
	return nil
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

func (c *Config) applyDefaults() {
	if c.Source.Port == 0 {
		c.Source.Port = defaultPorts[c.Source.Type]
	}
	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath
	}
	if c.Output.Workers <= 0 {
		c.Output.Workers = DefaultWorkers
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = "~/.modelts/logs/"
	}
	c.Logging.Directory = ExpandHome(c.Logging.Directory)
}

func (c *Config) resolvePaths(base string) {
	rel := func(p string) string {
		p = ExpandHome(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Manifest = rel(c.Manifest)
	c.TypeMapping = rel(c.TypeMapping)
	c.Source.Path = rel(c.Source.Path)
}

var secretPattern = regexp.MustCompile(`\$\{(ENV|VAULT|AWS_SM):([^}]+)\}`)

func (c *Config) resolveSecrets() error {
	var err error
	c.Source.Password, err = ResolveValue(c.Source.Password)
	if err != nil {
		return fmt.Errorf("source password: %w", err)
	}
	c.Source.URI, err = ResolveValue(c.Source.URI)
	if err != nil {
		return fmt.Errorf("source uri: %w", err)
	}
	return nil
}

// ResolveValue resolves a secret reference such as ${ENV:DB_PASSWORD}.
// Values without a reference are returned unchanged.
func ResolveValue(val string) (string, error) {
	matches := secretPattern.FindStringSubmatch(val)
	if matches == nil {
		return val, nil
	}

	provider := matches[1]
	ref := matches[2]
	ctx := context.Background()

	switch provider {
	case "ENV":
		v := os.Getenv(ref)
		if v == "" {
			return "", fmt.Errorf("environment variable %s not set", ref)
		}
		return v, nil
	case "VAULT":
		return resolveVault(ctx, ref)
	case "AWS_SM":
		return resolveAWSSecretsManager(ctx, ref)
	default:
		return "", fmt.Errorf("unknown secrets provider: %s", provider)
	}
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
