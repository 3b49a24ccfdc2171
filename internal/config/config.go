// Package config loads cooksync settings from a YAML or TOML file with
// COOKSYNC_* environment overrides.
//
// Precedence, lowest first: built-in defaults, the config file, a .env file
// in the working directory, then the process environment.
//
// Environment keys are the upper-cased field path joined by underscores:
//
//	COOKSYNC_DB=scene.db
//	COOKSYNC_LOG_LEVEL=debug
//	COOKSYNC_SYNC_HIDDEN=false
//	COOKSYNC_USE_INSTANCER_NODE=false
//	COOKSYNC_TEXTURES_BAKE=false
//	COOKSYNC_WATCH_DEBOUNCE=1s
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "COOKSYNC"

// ValidLogLevels defines the accepted log levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Config is the resolved cooksync configuration.
type Config struct {
	DB               string        `yaml:"db" toml:"db" split_words:"true"`
	LogLevel         string        `yaml:"log_level" toml:"log_level" split_words:"true"`
	Sync             SyncConfig    `yaml:"sync" toml:"sync" split_words:"true"`
	UseInstancerNode bool          `yaml:"use_instancer_node" toml:"use_instancer_node" split_words:"true"`
	Textures         TextureConfig `yaml:"textures" toml:"textures" split_words:"true"`
	Watch            WatchConfig   `yaml:"watch" toml:"watch" split_words:"true"`
}

// SyncConfig holds the default sync modes used when no mode flag is given.
type SyncConfig struct {
	Attributes    bool `yaml:"attributes" toml:"attributes" split_words:"true"`
	Outputs       bool `yaml:"outputs" toml:"outputs" split_words:"true"`
	Hidden        bool `yaml:"hidden" toml:"hidden" split_words:"true"`
	TemplatedGeos bool `yaml:"templated_geos" toml:"templated_geos" split_words:"true"`
}

type TextureConfig struct {
	Bake         bool   `yaml:"bake" toml:"bake" split_words:"true"`
	Reuse        bool   `yaml:"reuse" toml:"reuse" split_words:"true"`
	SourceImages string `yaml:"source_images" toml:"source_images" split_words:"true"`
}

type WatchConfig struct {
	Debounce Duration `yaml:"debounce" toml:"debounce" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DB:       "cooksync.db",
		LogLevel: "info",
		Sync: SyncConfig{
			Attributes:    true,
			Outputs:       true,
			Hidden:        true,
			TemplatedGeos: true,
		},
		UseInstancerNode: true,
		Textures: TextureConfig{
			Bake:         true,
			SourceImages: "sourceimages",
		},
		Watch: WatchConfig{Debounce: Duration(250 * time.Millisecond)},
	}
}

// Load reads configuration from path, or defaults if path is empty or the
// file does not exist. The format is chosen by extension: .toml is TOML,
// anything else is YAML. Unknown keys are rejected in both formats.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	// Missing .env is the common case
	_ = godotenv.Load(".env")

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process env vars: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("invalid config: db path is empty")
	}
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid config: log level %q: must be one of %v", c.LogLevel, ValidLogLevels)
	}
	if c.Textures.SourceImages == "" {
		return fmt.Errorf("invalid config: textures.source_images is empty")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("invalid config: watch.debounce %s is negative", c.Watch.Debounce)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	for _, l := range ValidLogLevels {
		if l == level {
			return true
		}
	}
	return false
}
