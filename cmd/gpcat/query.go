package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/gpcat/pkg/gpcat/store"
	"github.com/cognicore/gpcat/pkg/gpcat/store/sqlite"
	"github.com/cognicore/gpcat/pkg/gpcat/taxonomy"
)

var (
	queryDB          string
	queryTable       string
	queryDescendants int64
	queryAncestors   int64
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run nested-set queries against a generated database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if queryDB == "" {
			return fmt.Errorf("--db required")
		}
		if (queryDescendants == 0) == (queryAncestors == 0) {
			return fmt.Errorf("exactly one of --descendants or --ancestors required")
		}

		ctx := cmd.Context()
		st, err := sqlite.Open(ctx, queryDB, queryTable)
		if err != nil {
			return err
		}
		defer st.Close()

		id, lookup := queryDescendants, store.Store.Descendants
		if queryAncestors != 0 {
			id, lookup = queryAncestors, store.Store.Ancestors
		}

		target, err := st.Get(ctx, id)
		if err != nil {
			return err
		}
		nodes, err := lookup(st, ctx, id)
		if err != nil {
			return err
		}
		printNodes(cmd.OutOrStdout(), target, nodes)
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryDB, "db", "google_product_categories.db", "SQLite database")
	queryCmd.Flags().StringVar(&queryTable, "table", "", "Categories table (default google_product_categories)")
	queryCmd.Flags().Int64Var(&queryDescendants, "descendants", 0, "List the subtree below this category id")
	queryCmd.Flags().Int64Var(&queryAncestors, "ancestors", 0, "List the chain above this category id")
	rootCmd.AddCommand(queryCmd)
}

func printNodes(w io.Writer, target taxonomy.Node, nodes []taxonomy.Node) {
	fmt.Fprintf(w, "%d %s [%d,%d]\n", target.ID, target.Title, target.Left, target.Right)
	for _, n := range nodes {
		indent := strings.Repeat("  ", n.Depth)
		fmt.Fprintf(w, "%s%d %s [%d,%d]\n", indent, n.ID, n.Title, n.Left, n.Right)
	}
}
