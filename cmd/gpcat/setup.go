package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/gpcat/pkg/gpcat"
	"github.com/cognicore/gpcat/pkg/gpcat/config"
	"github.com/cognicore/gpcat/pkg/gpcat/fetch"
	"github.com/cognicore/gpcat/pkg/gpcat/stats"
	"github.com/cognicore/gpcat/pkg/gpcat/store"
	"github.com/cognicore/gpcat/pkg/gpcat/store/memstore"
	"github.com/cognicore/gpcat/pkg/gpcat/store/sqlite"
	"github.com/cognicore/gpcat/pkg/gpcat/taxonomy"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Download the taxonomy and write every output",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		log.Printf("=== Google Product Categories Setup (Nested Set Model) ===")
		log.Printf("Started at: %s", time.Now().Format(time.RFC3339))

		client := &fetch.Client{URL: cfg.SourceURL, Timeout: cfg.Timeout, RawPath: cfg.RawPath}
		res, err := runPipeline(cmd, cfg, func(ctx context.Context, p *gpcat.Pipeline) (gpcat.Result, error) {
			return p.Run(ctx)
		}, client)
		if err != nil {
			log.Printf("Setup failed: %v", err)
			return err
		}

		if err := stats.Render(cmd.OutOrStdout(), res.Stats); err != nil {
			return err
		}
		log.Printf("Setup completed successfully at: %s", time.Now().Format(time.RFC3339))
		return nil
	},
}

func init() {
	setupCmd.Flags().String("url", "", "Taxonomy source URL")
	setupCmd.Flags().String("raw", "", "Where to keep a copy of the downloaded text")
	setupCmd.Flags().Duration("timeout", 0, "Download timeout")
	addOutputFlags(setupCmd)
	rootCmd.AddCommand(setupCmd)
}

// runPipeline wires the configured outputs into a pipeline and runs it
func runPipeline(cmd *cobra.Command, cfg config.Config, run func(context.Context, *gpcat.Pipeline) (gpcat.Result, error), fetcher gpcat.Fetcher) (gpcat.Result, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	flags := cmd.Flags()
	skip := func(name string) bool {
		v, _ := flags.GetBool(name)
		return v
	}

	policy, err := taxonomy.PolicyByName(cfg.Dedup)
	if err != nil {
		return gpcat.Result{}, err
	}

	opts := gpcat.Options{
		Fetcher: fetcher,
		Parser:  taxonomy.NewParser(taxonomy.WithPolicy(policy)),
		Table:   cfg.Table,
		Source:  cfg.SourceURL,
		Verify:  skip("verify"),
	}
	if !skip("skip-json") {
		opts.JSONPath = cfg.JSONPath
	}
	if !skip("skip-sql") {
		opts.SQLPath = cfg.SQLPath
	}

	var (
		st     store.Store
		dbTemp string
	)
	switch {
	case flags.Lookup("dry-run") != nil && skip("dry-run"):
		opts.JSONPath, opts.SQLPath = "", ""
		st = memstore.New()
	case !skip("skip-db"):
		// Written beside the target and renamed over it once the run succeeds
		dbTemp = cfg.DBPath + ".tmp"
		if err := os.Remove(dbTemp); err != nil && !os.IsNotExist(err) {
			return gpcat.Result{}, fmt.Errorf("remove stale database: %w", err)
		}
		st, err = sqlite.Open(ctx, dbTemp, cfg.Table)
		if err != nil {
			return gpcat.Result{}, fmt.Errorf("open database %s: %w", dbTemp, err)
		}
	}
	opts.Store = st

	res, err := run(ctx, gpcat.New(opts))
	if st != nil {
		if cerr := st.Close(); err == nil {
			err = cerr
		}
	}
	if dbTemp == "" {
		return res, err
	}
	if err != nil {
		os.Remove(dbTemp)
		return res, err
	}
	if err := os.Rename(dbTemp, cfg.DBPath); err != nil {
		os.Remove(dbTemp)
		return res, fmt.Errorf("replace database %s: %w", cfg.DBPath, err)
	}
	log.Printf("Saved SQLite database to %s", cfg.DBPath)
	return res, nil
}
