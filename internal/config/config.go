// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/peguesj/yj-dev-sentinel-sub001/internal/repair"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/types"
	"github.com/peguesj/yj-dev-sentinel-sub001/internal/validation"
)

const (
	// DefaultFile is read from the working directory when no --config is given.
	DefaultFile = "sentinel.json"
	// EnvPrefix prefixes environment overrides, e.g. SENTINEL_WORKERS=8.
	// Nested keys use a double underscore: SENTINEL_PATTERNS__TOOL.
	EnvPrefix = "SENTINEL_"
)

// Config represents the engine configuration after all layers are merged.
// An empty SchemaPath selects the embedded default schema.
type Config struct {
	// Paths
	RootDir       string `koanf:"root_dir" validate:"required"`        // Component root directory
	SchemaPath    string `koanf:"schema_path"`                         // Schema file; embedded default when empty
	ReportPath    string `koanf:"report_path" validate:"required"`     // Validation report output
	FixReportPath string `koanf:"fix_report_path" validate:"required"` // Fix report output

	// Output
	Format   string `koanf:"format" validate:"oneof=json yaml"`
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFile  string `koanf:"log_file"` // Rotated log file; stderr only when empty

	// Behavior
	Workers          int `koanf:"workers" validate:"min=1,max=64"`
	MinMultiCommands int `koanf:"min_multi_commands" validate:"min=1"`

	// Per-kind overrides, keyed by kind name (tool, pattern, constraint, governance)
	Patterns          map[string]string `koanf:"patterns"`
	DefaultCategories map[string]string `koanf:"default_categories"`
}

// Defaults returns the lowest-priority configuration layer as flat koanf keys.
func Defaults() map[string]any {
	d := map[string]any{
		"root_dir":           "components",
		"schema_path":        "",
		"report_path":        "validation_report.json",
		"fix_report_path":    "fix_report.json",
		"format":             "json",
		"log_level":          "info",
		"log_file":           "",
		"workers":            repair.DefaultWorkers,
		"min_multi_commands": validation.DefaultMinMultiCommands,
	}
	for _, kind := range types.AllKinds() {
		d["patterns."+kind.String()] = kind.DefaultPattern()
	}
	for kind, category := range repair.DefaultCategories() {
		d["default_categories."+kind.String()] = category
	}
	return d
}

// Load merges configuration layers.
// Priority: overrides > environment variables > config file > defaults.
// An explicit path must exist; without one, DefaultFile is used if present.
// Overrides are flat koanf keys, typically from CLI flags the user actually set.
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to apply default %s: %w", key, err)
		}
	}

	configPath := path
	if configPath == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configPath = DefaultFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", DefaultFile, err)
		}
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), json.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to apply override %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envTransform converts environment variable names to config keys.
// Example: SENTINEL_MIN_MULTI_COMMANDS -> min_multi_commands,
// SENTINEL_DEFAULT_CATEGORIES__TOOL -> default_categories.tool
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Validate checks struct constraints and that every per-kind key names a known kind.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	for name, pattern := range c.Patterns {
		if _, err := types.ParseKind(name); err != nil {
			return fmt.Errorf("config error: patterns: %w", err)
		}
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("config error: patterns.%s is empty", name)
		}
	}
	for name := range c.DefaultCategories {
		if _, err := types.ParseKind(name); err != nil {
			return fmt.Errorf("config error: default_categories: %w", err)
		}
	}
	return nil
}

// KindPatterns returns the configured file glob per kind.
func (c *Config) KindPatterns() map[types.Kind]string {
	return byKind(c.Patterns)
}

// KindDefaultCategories returns the configured fallback category per kind.
func (c *Config) KindDefaultCategories() map[types.Kind]string {
	return byKind(c.DefaultCategories)
}

// byKind re-keys a validated map; unknown names were rejected by Validate.
func byKind(m map[string]string) map[types.Kind]string {
	out := make(map[types.Kind]string, len(m))
	for name, value := range m {
		if kind, err := types.ParseKind(name); err == nil {
			out[kind] = value
		}
	}
	return out
}
