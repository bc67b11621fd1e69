package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/podhmo/gocalc/internal/loader"
	"github.com/podhmo/gocalc/internal/metadata"
)

// Diagnostics modes for unresolved import roots.
const (
	DiagnosticsWarn   = "warn"   // Log a warning naming the unresolved root
	DiagnosticsSilent = "silent" // Record it only
)

// Config holds the configuration for the gocalc tool itself,
// typically loaded from a YAML file and then overridden by command-line flags.
type Config struct {
	Dialect     string            `yaml:"dialect"`     // Display dialect (e.g., "fmt")
	Display     DisplayConfig     `yaml:"display"`     // Extra display settings
	Imports     map[string]string `yaml:"imports"`     // Package name -> import path overrides (e.g., rand: crypto/rand)
	CacheSize   int               `yaml:"cache_size"`  // Entries kept in the package probe cache
	Timeout     time.Duration     `yaml:"timeout"`     // Execution timeout; 0 means none
	Diagnostics string            `yaml:"diagnostics"` // "warn" or "silent"
	Log         LogConfig         `yaml:"log"`
}

// DisplayConfig lists call targets that already display their arguments, in addition to the dialect's.
type DisplayConfig struct {
	Also []string `yaml:"also"` // e.g. ["log.Println"]
}

// LogConfig configures the slog handler of the CLI.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dialect: "fmt",
		Imports: map[string]string{
			"rand":     "math/rand",
			"template": "text/template",
		},
		CacheSize:   loader.DefaultCacheSize,
		Diagnostics: DiagnosticsWarn,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads a YAML file on top of Default. Maps are merged key by key; other fields replace the default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidationError aggregates configuration problems.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	return "config validation failed: " + strings.Join(e.Issues, "; ")
}

// Validate reports every problem at once as a *ValidationError.
func (c *Config) Validate() error {
	var issues []string
	if _, err := metadata.LookupDialect(c.Dialect); err != nil {
		issues = append(issues, err.Error())
	}
	if c.CacheSize < 0 {
		issues = append(issues, fmt.Sprintf("cache_size must not be negative, got %d", c.CacheSize))
	}
	if c.Timeout < 0 {
		issues = append(issues, fmt.Sprintf("timeout must not be negative, got %s", c.Timeout))
	}
	switch c.Diagnostics {
	case DiagnosticsWarn, DiagnosticsSilent:
	default:
		issues = append(issues, fmt.Sprintf("diagnostics must be %q or %q, got %q", DiagnosticsWarn, DiagnosticsSilent, c.Diagnostics))
	}
	for name, path := range c.Imports {
		if name == "" {
			issues = append(issues, fmt.Sprintf("imports: empty package name for %q", path))
			continue
		}
		if err := module.CheckImportPath(path); err != nil {
			issues = append(issues, fmt.Sprintf("imports.%s: %v", name, err))
		}
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		issues = append(issues, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// NewDialect builds the configured dialect, including the extra self-displaying targets.
func (c *Config) NewDialect() (*metadata.Dialect, error) {
	d, err := metadata.LookupDialect(c.Dialect)
	if err != nil {
		return nil, err
	}
	d.Also(c.Display.Also...)
	return d, nil
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
