// Package config loads sassdef configuration from .sassdef.{yaml,toml,json}
// in the project root, with SASSDEF_* environment overrides.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jward/sassdef/internal/workspace"
)

// Config is the configuration surface consumed by the CLI and the server.
type Config struct {
	// ShowAllReferences selects AllMatches instead of FirstMatch.
	ShowAllReferences bool `mapstructure:"show_all_references"`
	// Peek is owned by the host: when set, every location is returned for an
	// inline peek view instead of prompting for one.
	Peek bool `mapstructure:"peek"`

	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	Include       []string      `mapstructure:"include"`
	Exclude       []string      `mapstructure:"exclude"`
	LegacyRanking bool          `mapstructure:"legacy_ranking"`
	PartialPrefix string        `mapstructure:"partial_prefix"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig selects log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CacheTTL:      5 * time.Second,
		ChunkSize:     20,
		Include:       append([]string{}, workspace.DefaultInclude...),
		Exclude:       append([]string{}, workspace.DefaultExclude...),
		PartialPrefix: "_",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads .sassdef.* from root. A missing file yields the defaults with
// environment overrides applied.
func Load(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigName(".sassdef")
	v.AddConfigPath(root)
	v.SetEnvPrefix("SASSDEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("show_all_references", d.ShowAllReferences)
	v.SetDefault("peek", d.Peek)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("chunk_size", d.ChunkSize)
	v.SetDefault("include", d.Include)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("legacy_ranking", d.LegacyRanking)
	v.SetDefault("partial_prefix", d.PartialPrefix)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return &Error{Field: "chunk_size", Message: "must be positive"}
	}
	if c.CacheTTL < 0 {
		return &Error{Field: "cache_ttl", Message: "must not be negative"}
	}
	if len(c.Include) == 0 {
		return &Error{Field: "include", Message: "at least one pattern is required"}
	}
	return nil
}

// Error is a configuration validation failure.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
