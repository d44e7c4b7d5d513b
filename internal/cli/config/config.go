package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/flamekit/flamekit/internal/compiler/identity"
	"github.com/flamekit/flamekit/internal/compiler/lifecycle"
	"github.com/flamekit/flamekit/internal/compiler/loader"
	"github.com/flamekit/flamekit/internal/compiler/metadata"
	"github.com/flamekit/flamekit/internal/compiler/transform"
)

// FileName is the configuration file name without extension
const FileName = "flamekit"

// EnvPrefix prefixes environment overrides (FLAMEKIT_METADATA_PREFIX, ...)
const EnvPrefix = "FLAMEKIT"

// DefaultOutputDir is where emitted files go unless output.dir is set
const DefaultOutputDir = "build/flamekit"

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config represents the flamekit configuration
type Config struct {
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	Runtime   RuntimeConfig   `mapstructure:"runtime"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Output    OutputConfig    `mapstructure:"output"`
	Log       LogConfig       `mapstructure:"log"`
}

// MetadataConfig configures record keys
type MetadataConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// RuntimeConfig names the component runtime
type RuntimeConfig struct {
	Module     string   `mapstructure:"module"`
	Components []string `mapstructure:"components"`
}

// LifecycleConfig names the members the lifecycle rewrite uses
type LifecycleConfig struct {
	Hook      string `mapstructure:"hook"`
	Interface string `mapstructure:"interface"`
	ArgsField string `mapstructure:"args_field"`
}

// IdentityConfig selects the UID style
type IdentityConfig struct {
	Style string `mapstructure:"style"`
}

// OutputConfig configures emission
type OutputConfig struct {
	Format   string `mapstructure:"format"`
	Dir      string `mapstructure:"dir"`
	Compress bool   `mapstructure:"compress"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("metadata.prefix", metadata.DefaultPrefix)
	v.SetDefault("runtime.module", loader.DefaultRuntimeModule)
	v.SetDefault("runtime.components", []string{"Component"})
	v.SetDefault("lifecycle.hook", "onStart")
	v.SetDefault("lifecycle.interface", "OnStart")
	v.SetDefault("lifecycle.args_field", "__constructorArgs")
	v.SetDefault("identity.style", string(identity.StylePath))
	v.SetDefault("output.format", FormatText)
	v.SetDefault("output.dir", DefaultOutputDir)
	v.SetDefault("output.compress", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// New creates a viper instance reading flamekit.yaml from dir and FLAMEKIT_*
// environment variables
func New(dir string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads the configuration from flamekit.yaml in the current directory
func Load() (*Config, error) {
	return LoadFrom(New("."))
}

// LoadFrom reads and validates the configuration of v. A missing config file
// leaves the defaults in place.
func LoadFrom(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Options converts the configuration into transform options
func (c *Config) Options() transform.Options {
	style, _ := identity.ParseStyle(c.Identity.Style)
	return transform.Options{
		Metadata: metadata.Options{
			Prefix:        c.Metadata.Prefix,
			Hook:          c.Lifecycle.Hook,
			HookInterface: c.Lifecycle.Interface,
			Components:    c.Runtime.Components,
		},
		Lifecycle: lifecycle.Options{
			Hook:      c.Lifecycle.Hook,
			ArgsField: c.Lifecycle.ArgsField,
		},
		IdentityStyle: style,
	}
}

// FindConfig walks up from dir looking for flamekit.yaml or flamekit.yml and
// returns the path of the first one found
func FindConfig(dir string) (string, error) {
	for {
		for _, name := range []string{FileName + ".yaml", FileName + ".yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s.yaml found", FileName)
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Metadata.Prefix == "" {
		return fmt.Errorf("metadata.prefix must not be empty")
	}
	if strings.Contains(cfg.Metadata.Prefix, ":") {
		return fmt.Errorf("metadata.prefix must not contain ':', got: %s", cfg.Metadata.Prefix)
	}

	if _, err := identity.ParseStyle(cfg.Identity.Style); err != nil {
		return fmt.Errorf("identity.style: %w", err)
	}

	switch cfg.Output.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("output.format must be %q or %q, got: %s", FormatText, FormatJSON, cfg.Output.Format)
	}

	for key, name := range map[string]string{
		"lifecycle.hook":       cfg.Lifecycle.Hook,
		"lifecycle.interface":  cfg.Lifecycle.Interface,
		"lifecycle.args_field": cfg.Lifecycle.ArgsField,
	} {
		if !isIdentifier(name) {
			return fmt.Errorf("%s must be an identifier, got: %q", key, name)
		}
	}

	if len(cfg.Runtime.Components) == 0 {
		return fmt.Errorf("runtime.components must name at least one annotation")
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
