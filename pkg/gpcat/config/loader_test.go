package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/gpcat/pkg/gpcat/internalerr"
)

// chdir moves into a fresh directory so DefaultPath and .env lookups start empty
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
	return dir
}

func TestLoaderDefaults(t *testing.T) {
	chdir(t)

	loader := Loader{}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Loader without files should succeed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoaderNonExistentConfig(t *testing.T) {
	chdir(t)

	loader := Loader{ConfigPath: "/nonexistent/gpcat.yaml"}
	if _, err := loader.Load(); err == nil {
		t.Error("Should error on a named config file that does not exist")
	}
}

func TestLoaderNonExistentEnvFile(t *testing.T) {
	chdir(t)

	loader := Loader{EnvFile: "/nonexistent/.env"}
	if _, err := loader.Load(); err == nil {
		t.Error("Should error on a named env file that does not exist")
	}
}

func TestLoaderPrecedence(t *testing.T) {
	dir := chdir(t)

	os.MkdirAll(filepath.Join(dir, "configs"), 0755)
	os.WriteFile(filepath.Join(dir, DefaultPath), []byte("table: from_file\ndedup: path\n"), 0644)
	os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvTable+"=from_env\n"), 0644)
	// godotenv does not override variables already set; make sure it starts unset
	t.Setenv(EnvTable, "")
	os.Unsetenv(EnvTable)

	loader := Loader{}
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Table != "from_env" {
		t.Errorf("Table = %q, env should win over file", cfg.Table)
	}
	if cfg.Dedup != "path" {
		t.Errorf("Dedup = %q, file value should apply", cfg.Dedup)
	}
}

func TestLoaderInvalidResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gpcat.yaml")
	os.WriteFile(path, []byte("dedup: random\n"), 0644)
	chdir(t)

	loader := Loader{ConfigPath: path}
	if _, err := loader.Load(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
