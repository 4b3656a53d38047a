package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/gpcat/pkg/gpcat"
	"github.com/cognicore/gpcat/pkg/gpcat/stats"
)

var convertInput string

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a local taxonomy file without downloading",
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertInput == "" {
			return fmt.Errorf("--input required")
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(convertInput)
		if err != nil {
			return fmt.Errorf("read %s: %w", convertInput, err)
		}
		cfg.SourceURL = convertInput

		res, err := runPipeline(cmd, cfg, func(ctx context.Context, p *gpcat.Pipeline) (gpcat.Result, error) {
			return p.Process(ctx, string(data))
		}, nil)
		if err != nil {
			return err
		}
		return stats.Render(cmd.OutOrStdout(), res.Stats)
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "Taxonomy text file (required)")
	convertCmd.Flags().Bool("dry-run", false, "Build in memory only, write no files")
	addOutputFlags(convertCmd)
	rootCmd.AddCommand(convertCmd)
}
