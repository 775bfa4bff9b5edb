// Package config loads the engine's YAML configuration file and applies
// environment overrides. Business settings such as the restaurant name or
// the numbering mode are not here; they live in the database.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "posengine.yaml"

// Environment overrides, applied after the file.
const (
	EnvDBPath   = "POSENGINE_DB_PATH"
	EnvLogLevel = "POSENGINE_LOG_LEVEL"
	EnvTimezone = "POSENGINE_TIMEZONE"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level"` // trace, debug, info, warn, error
		File  string `yaml:"file"`  // empty means stderr
	} `yaml:"logging"`
	Store struct {
		Timezone string `yaml:"timezone"` // IANA name, empty means local
	} `yaml:"store"`
	Seed struct {
		OnStartup bool `yaml:"onStartup"`
	} `yaml:"seed"`
	Report struct {
		CacheTTLSec int `yaml:"cacheTTLSec"`
		TopItems    int `yaml:"topItems"`
	} `yaml:"report"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	var conf Config
	conf.Database.Path = "posengine.db"
	conf.Logging.Level = "info"
	conf.Report.CacheTTLSec = 30
	conf.Report.TopItems = 10
	return conf
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	conf := Default()
	if path == "" {
		path = DefaultPath
	}

	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return conf, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(file, &conf); err != nil {
			return conf, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	conf.applyEnv()
	if err := conf.Validate(); err != nil {
		return conf, err
	}
	return conf, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Store.Timezone = v
	}
}

// Validate checks every field and reports the first problem.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path must not be empty")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging level %q: use trace, debug, info, warn or error", c.Logging.Level)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Report.CacheTTLSec < 0 {
		return errors.New("report.cacheTTLSec must be >= 0")
	}
	if c.Report.TopItems < 0 {
		return errors.New("report.topItems must be >= 0")
	}
	return nil
}

// Location resolves store.timezone; empty means the host's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Store.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Store.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid store.timezone %q: %w", c.Store.Timezone, err)
	}
	return loc, nil
}

// CacheTTL is the report cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Report.CacheTTLSec) * time.Second
}
