package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/gpcat/pkg/gpcat/stats"
	"github.com/cognicore/gpcat/pkg/gpcat/taxonomy"
)

var (
	statsInput string
	statsJSON  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics for a local taxonomy file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsInput == "" {
			return fmt.Errorf("--input required")
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		policy, err := taxonomy.PolicyByName(cfg.Dedup)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(statsInput)
		if err != nil {
			return fmt.Errorf("read %s: %w", statsInput, err)
		}

		f := taxonomy.NewParser(taxonomy.WithPolicy(policy)).Parse(string(data))
		s := stats.Compute(f, taxonomy.Build(f))

		if statsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}
		return stats.Render(cmd.OutOrStdout(), s)
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsInput, "input", "i", "", "Taxonomy text file (required)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")
	statsCmd.Flags().String("dedup", "", "Category identity: name or path (default from config)")
	rootCmd.AddCommand(statsCmd)
}
