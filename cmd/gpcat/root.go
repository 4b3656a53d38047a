package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/gpcat/internal/version"
	"github.com/cognicore/gpcat/pkg/gpcat/config"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "gpcat",
	Short: "Google product taxonomy to nested set model",
	Long: `gpcat downloads Google's product category taxonomy and converts it into a
tree with nested-set bounds, written as JSON, a SQL script and a SQLite database.

Source: https://www.google.com/basepages/producttype/taxonomy.en-US.txt`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("gpcat %s\n", version.String()))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file (default .env if present)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves file and environment settings, then applies any
// output flags the user set explicitly on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	loader := config.Loader{ConfigPath: configPath, EnvFile: envFile}
	cfg, err := loader.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	override("url", &cfg.SourceURL)
	override("raw", &cfg.RawPath)
	override("json", &cfg.JSONPath)
	override("sql", &cfg.SQLPath)
	override("db", &cfg.DBPath)
	override("table", &cfg.Table)
	override("dedup", &cfg.Dedup)
	if flags.Lookup("timeout") != nil && flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// addOutputFlags registers the flags shared by setup and convert
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("json", "", "JSON output path")
	cmd.Flags().String("sql", "", "SQL script output path")
	cmd.Flags().String("db", "", "SQLite database output path")
	cmd.Flags().String("table", "", "Table name for SQL and database outputs")
	cmd.Flags().String("dedup", "", "Category identity: name or path")
	cmd.Flags().Bool("skip-json", false, "Do not write the JSON file")
	cmd.Flags().Bool("skip-sql", false, "Do not write the SQL script")
	cmd.Flags().Bool("skip-db", false, "Do not write the SQLite database")
	cmd.Flags().Bool("verify", false, "Check nested-set invariants before writing")
}
