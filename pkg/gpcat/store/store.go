package store

import (
	"context"
	"time"

	"github.com/cognicore/gpcat/pkg/gpcat/taxonomy"
)

// Store persists an annotated forest and answers nested-set queries
type Store interface {
	Close() error

	// ReplaceForest discards any stored tree and writes f in its place.
	ReplaceForest(ctx context.Context, f *taxonomy.Forest, meta RunMeta) error

	Get(ctx context.Context, id int64) (taxonomy.Node, error)
	Roots(ctx context.Context) ([]taxonomy.Node, error)
	Count(ctx context.Context) (int, error)

	// Descendants returns every node strictly inside id's interval, ordered by left.
	Descendants(ctx context.Context, id int64) ([]taxonomy.Node, error)
	// Ancestors returns every node whose interval strictly contains id's, root first.
	Ancestors(ctx context.Context, id int64) ([]taxonomy.Node, error)

	LatestRun(ctx context.Context) (RunMeta, bool, error)
}

// RunMeta describes the run that produced a stored tree
type RunMeta struct {
	RunID       string
	GeneratedAt time.Time
	Source      string
	NodeCount   int
}
