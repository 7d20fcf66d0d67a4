//-------------------------------------------------------------------------
//
// pgEdge Notes ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for notes-etl.
// Configuration is loaded from defaults, a config file, NOTES_ETL_*
// environment variables and CLI flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "NOTES_ETL"

// Load modes.
const (
	LoadModeReplace = "replace"
	LoadModeSwap    = "swap"
)

// Config holds all configuration for notes-etl.
type Config struct {
	// Connection is the PostgreSQL connection string of the warehouse.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Input describes the flat notes export.
	Input InputConfig `mapstructure:"input"`

	// Transform holds settings for the star schema transformation.
	Transform TransformConfig `mapstructure:"transform"`

	// Load holds settings for writing the warehouse tables.
	Load LoadConfig `mapstructure:"load"`
}

// InputConfig holds configuration for the extract stage.
type InputConfig struct {
	// Path is the location of the delimited export file.
	Path string `mapstructure:"path"`

	// Delimiter is the single field separator character.
	Delimiter string `mapstructure:"delimiter"`

	// Encodings lists the text encodings to try, in order.
	Encodings []string `mapstructure:"encodings"`
}

// TransformConfig holds configuration for the transform stage.
type TransformConfig struct {
	// Timezone is the location used to derive calendar attributes.
	Timezone string `mapstructure:"timezone"`
}

// LoadConfig holds configuration for the load stage.
type LoadConfig struct {
	// Mode is "replace" (drop and recreate in place) or "swap"
	// (load into a staging table, then rename it over the live one).
	Mode string `mapstructure:"mode"`

	// BatchSize is the number of rows sent per COPY chunk.
	BatchSize int `mapstructure:"batch_size"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Input: InputConfig{
			Path:      "data/smartnotes.notes.csv",
			Delimiter: ",",
			Encodings: []string{"utf-8", "latin-1", "iso-8859-1"},
		},
		Transform: TransformConfig{
			Timezone: "UTC",
		},
		Load: LoadConfig{
			Mode:      LoadModeReplace,
			BatchSize: 1000,
		},
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./notes-etl.yaml
// 3. ~/.config/notes-etl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("notes-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "notes-etl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Defaults must be registered so that AutomaticEnv can see every key
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("connection", cfg.Connection)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("input.path", cfg.Input.Path)
	v.SetDefault("input.delimiter", cfg.Input.Delimiter)
	v.SetDefault("input.encodings", cfg.Input.Encodings)
	v.SetDefault("transform.timezone", cfg.Transform.Timezone)
	v.SetDefault("load.mode", cfg.Load.Mode)
	v.SetDefault("load.batch_size", cfg.Load.BatchSize)
}

// Validate checks that required configuration is present and well formed.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Connection, validation.Required.Error("connection string is required")),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	); err != nil {
		return err
	}
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := c.Transform.Validate(); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	if err := c.Load.Validate(); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return nil
}

// Validate validates the input configuration.
func (c *InputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Delimiter, validation.Required, validation.RuneLength(1, 1)),
		validation.Field(&c.Encodings, validation.Required, validation.Each(validation.Required)),
	)
}

// Validate validates the transform configuration.
func (c *TransformConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.By(func(value any) error {
			name, _ := value.(string)
			if name == "" {
				return nil
			}
			if _, err := time.LoadLocation(name); err != nil {
				return fmt.Errorf("invalid timezone %q", name)
			}
			return nil
		})),
	)
}

// Validate validates the load configuration.
func (c *LoadConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(LoadModeReplace, LoadModeSwap)),
		validation.Field(&c.BatchSize, validation.Required, validation.Min(1)),
	)
}

// Location resolves the configured timezone, defaulting to UTC.
func (c *TransformConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "UTC" {
		return time.UTC, nil
	}
	if c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	return loc, nil
}
