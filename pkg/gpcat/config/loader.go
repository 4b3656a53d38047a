package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultPath is the config file read when none is named
const DefaultPath = "configs/gpcat.yaml"

// Loader resolves configuration from defaults, a YAML file, a .env file and
// the environment, in that order of increasing precedence
type Loader struct {
	ConfigPath string // empty reads DefaultPath if it exists
	EnvFile    string // empty reads .env if it exists
}

// Load builds and validates the configuration
func (l *Loader) Load() (Config, error) {
	cfg := Default()

	path, required := l.ConfigPath, true
	if path == "" {
		path, required = DefaultPath, false
	}
	if err := LoadFile(path, &cfg); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	}

	envFile, required := l.EnvFile, true
	if envFile == "" {
		envFile, required = ".env", false
	}
	if err := godotenv.Load(envFile); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
