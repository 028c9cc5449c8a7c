// Package config loads the engine's YAML configuration: where the backend
// lives, how uploads are bounded, and which tables get special treatment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/formmaster/go-formmaster/pkg/schema"
	"github.com/formmaster/go-formmaster/pkg/upload"
)

// Duration wraps time.Duration so YAML values can use the usual "2s"/"5m"
// notation.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("config: duration must be a string like \"2s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Config is the full engine configuration. Zero values are filled with
// defaults on load, so a minimal file only needs the backend URL.
type Config struct {
	// Backend is the base URL of the HTTP backend, e.g. "http://localhost:3001".
	Backend string `yaml:"backend"`
	// RequestTimeout bounds individual backend calls.
	RequestTimeout Duration `yaml:"requestTimeout"`
	// PollInterval is the gap between document-status polls.
	PollInterval Duration `yaml:"pollInterval"`
	// PollCap bounds how long a single document is polled before it is
	// marked as timed out.
	PollCap Duration `yaml:"pollCap"`
	// MaxUploadBytes is the local pre-flight size limit for uploads.
	MaxUploadBytes int64 `yaml:"maxUploadBytes"`
	// DocumentsTable names the table whose columns render as file inputs.
	DocumentsTable string `yaml:"documentsTable"`
	// ProtectedTables lists tables the form designer may not bind fields to.
	ProtectedTables []string `yaml:"protectedTables"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Backend:         "http://localhost:3001",
		RequestTimeout:  Duration(30 * time.Second),
		PollInterval:    Duration(2 * time.Second),
		PollCap:         Duration(5 * time.Minute),
		MaxUploadBytes:  upload.MaxFileSize,
		DocumentsTable:  schema.DefaultDocumentsTable,
		ProtectedTables: []string{"users", "sessions", "migrations", "form_templates"},
	}
}

// Load reads a YAML configuration file and fills omitted fields with
// defaults. A missing file is an error; use Default when none is expected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration bytes, applying defaults.
func Parse(data []byte) (Config, error) {
	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.PollCap <= 0 {
		c.PollCap = d.PollCap
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.DocumentsTable == "" {
		c.DocumentsTable = d.DocumentsTable
	}
	if c.ProtectedTables == nil {
		c.ProtectedTables = d.ProtectedTables
	}
}

func (c Config) validate() error {
	if c.PollInterval >= c.PollCap {
		return fmt.Errorf("config: pollInterval %s must be shorter than pollCap %s", c.PollInterval, c.PollCap)
	}
	return nil
}
