package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/gpcat/pkg/gpcat/stats"
)

const cliTaxonomy = `# Google_Product_Taxonomy_Version: 2021-09-21
Home & Garden
Home & Garden > Kitchen & Dining
Home & Garden > Kitchen & Dining > Cookware
Home & Garden > Lawn & Garden
Media
Media > Books
`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := executeErr(args...)
	if err != nil {
		t.Fatalf("gpcat %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func executeErr(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertAndQuery(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "taxonomy.txt")
	os.WriteFile(input, []byte(cliTaxonomy), 0644)

	jsonPath := filepath.Join(dir, "out.json")
	sqlPath := filepath.Join(dir, "out.sql")
	dbPath := filepath.Join(dir, "out.db")

	out := execute(t, "convert", "--input", input,
		"--json", jsonPath, "--sql", sqlPath, "--db", dbPath, "--verify")
	if !strings.Contains(out, "Total categories:") {
		t.Errorf("convert should print statistics, got:\n%s", out)
	}

	for _, p := range []string{jsonPath, sqlPath, dbPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected output %s: %v", p, err)
		}
	}

	out = execute(t, "query", "--db", dbPath, "--descendants", "1", "--ancestors", "0")
	for _, want := range []string{"Kitchen & Dining", "Cookware", "Lawn & Garden"} {
		if !strings.Contains(out, want) {
			t.Errorf("descendants of 1 missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Books") {
		t.Errorf("Books is not under Home & Garden:\n%s", out)
	}

	out = execute(t, "query", "--db", dbPath, "--descendants", "0", "--ancestors", "3")
	if !strings.Contains(out, "Home & Garden") || !strings.Contains(out, "Kitchen & Dining") {
		t.Errorf("ancestors of Cookware incomplete:\n%s", out)
	}
}

func TestStatsJSON(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "taxonomy.txt")
	os.WriteFile(input, []byte(cliTaxonomy), 0644)

	out := execute(t, "stats", "--input", input, "--json")

	var s stats.Stats
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("stats --json output is not JSON: %v\n%s", err, out)
	}
	if s.Total != 6 || s.Roots != 2 || s.MaxDepth != 3 || s.MaxRight != 12 {
		t.Errorf("Unexpected stats: %+v", s)
	}
}

func TestConvertDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "taxonomy.txt")
	os.WriteFile(input, []byte(cliTaxonomy), 0644)

	jsonPath := filepath.Join(dir, "dry.json")
	execute(t, "convert", "--input", input, "--json", jsonPath, "--dry-run")

	if _, err := os.Stat(jsonPath); !os.IsNotExist(err) {
		t.Error("dry run should not write files")
	}
	convertCmd.Flags().Set("dry-run", "false")
}

func TestSetupFetchFailureKeepsDatabase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "categories.db")
	previous := []byte("previous good database")
	os.WriteFile(dbPath, previous, 0644)

	_, err := executeErr("setup", "--url", srv.URL,
		"--raw", filepath.Join(dir, "raw.txt"),
		"--json", filepath.Join(dir, "out.json"),
		"--sql", filepath.Join(dir, "out.sql"),
		"--db", dbPath)
	if err == nil {
		t.Fatal("setup should fail when the download fails")
	}

	data, err := os.ReadFile(dbPath)
	if err != nil {
		t.Fatalf("read database: %v", err)
	}
	if !bytes.Equal(data, previous) {
		t.Errorf("existing database was modified by a failed run: %q", data)
	}
	if _, err := os.Stat(dbPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary database should be removed after a failed run")
	}
	if _, err := os.Stat(filepath.Join(dir, "out.json")); !os.IsNotExist(err) {
		t.Error("no JSON output should be written after a failed download")
	}
}

func TestConvertReplacesDatabase(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "taxonomy.txt")
	os.WriteFile(input, []byte(cliTaxonomy), 0644)
	dbPath := filepath.Join(dir, "out.db")
	os.WriteFile(dbPath, []byte("stale"), 0644)

	execute(t, "convert", "--input", input, "--skip-json", "--skip-sql", "--db", dbPath)

	out := execute(t, "query", "--db", dbPath, "--descendants", "5", "--ancestors", "0")
	if !strings.Contains(out, "Books") {
		t.Errorf("rebuilt database should hold Media > Books:\n%s", out)
	}
	if _, err := os.Stat(dbPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary database should be renamed into place")
	}
	convertCmd.Flags().Set("skip-json", "false")
	convertCmd.Flags().Set("skip-sql", "false")
}

func TestStatsDedupFromEnv(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "taxonomy.txt")
	os.WriteFile(input, []byte("A > Accessories\nB > Accessories\n"), 0644)
	t.Setenv("GPCAT_DEDUP", "path")

	out := execute(t, "stats", "--input", input, "--json")

	var s stats.Stats
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("stats --json output is not JSON: %v\n%s", err, out)
	}
	if s.Total != 4 {
		t.Errorf("GPCAT_DEDUP=path should keep both Accessories, got %d categories", s.Total)
	}
}
