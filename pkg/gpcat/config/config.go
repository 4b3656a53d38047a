package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/gpcat/pkg/gpcat/export"
	"github.com/cognicore/gpcat/pkg/gpcat/fetch"
	"github.com/cognicore/gpcat/pkg/gpcat/internalerr"
)

// Config holds the settings of a taxonomy run
type Config struct {
	SourceURL string        `yaml:"source_url"`
	Timeout   time.Duration `yaml:"timeout"`
	RawPath   string        `yaml:"raw_path"`
	JSONPath  string        `yaml:"json_path"`
	SQLPath   string        `yaml:"sql_path"`
	DBPath    string        `yaml:"db_path"`
	Table     string        `yaml:"table"`
	Dedup     string        `yaml:"dedup"`
}

// Default returns the settings that reproduce the stock output files
func Default() Config {
	return Config{
		SourceURL: fetch.DefaultURL,
		Timeout:   fetch.DefaultTimeout,
		RawPath:   "taxonomy.en-US.txt",
		JSONPath:  "google_products_categories.json",
		SQLPath:   "google_product_categories.sql",
		DBPath:    "google_product_categories.db",
		Table:     export.DefaultTable,
		Dedup:     "name",
	}
}

// LoadFile overlays YAML settings from path onto cfg. Keys missing from the
// file keep their current value.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Environment variables that override file settings
const (
	EnvSourceURL = "GPCAT_SOURCE_URL"
	EnvTimeout   = "GPCAT_TIMEOUT"
	EnvTable     = "GPCAT_TABLE"
	EnvDedup     = "GPCAT_DEDUP"
	EnvDBPath    = "GPCAT_DB_PATH"
)

// ApplyEnv overlays GPCAT_* environment variables onto cfg
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvSourceURL); v != "" {
		cfg.SourceURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvTimeout, v, internalerr.ErrInvalidConfig)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv(EnvTable); v != "" {
		cfg.Table = v
	}
	if v := os.Getenv(EnvDedup); v != "" {
		cfg.Dedup = strings.ToLower(v)
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	return nil
}

// Validate checks the configuration. Failures wrap internalerr.ErrInvalidConfig.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.SourceURL, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Required, validation.By(positiveDuration)),
		validation.Field(&c.Table, validation.Required, validation.By(identifier)),
		validation.Field(&c.Dedup, validation.In("name", "path")),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}

func positiveDuration(value interface{}) error {
	d, _ := value.(time.Duration)
	if d < 0 {
		return errors.New("must be positive")
	}
	return nil
}

func identifier(value interface{}) error {
	s, _ := value.(string)
	if s != "" && !export.ValidIdentifier(s) {
		return errors.New("must be a SQL identifier")
	}
	return nil
}
