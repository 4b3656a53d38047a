package gpcat

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cognicore/gpcat/pkg/gpcat/export"
	"github.com/cognicore/gpcat/pkg/gpcat/runid"
	"github.com/cognicore/gpcat/pkg/gpcat/stats"
	"github.com/cognicore/gpcat/pkg/gpcat/store"
	"github.com/cognicore/gpcat/pkg/gpcat/taxonomy"
)

// Fetcher supplies raw taxonomy text
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Options configures a Pipeline. Empty output paths and a nil Store skip
// the corresponding output.
type Options struct {
	Fetcher  Fetcher
	Parser   *taxonomy.Parser
	Store    store.Store
	JSONPath string
	SQLPath  string
	Table    string
	Source   string
	Verify   bool
	Logger   *log.Logger
	RunIDs   *runid.Generator
	Now      func() time.Time
}

// Pipeline runs fetch → parse → build → write
type Pipeline struct {
	opts Options
	log  *log.Logger
}

// Result is what a pipeline run produced
type Result struct {
	RunID  string
	Forest *taxonomy.Forest
	Report taxonomy.Report
	Parse  taxonomy.ParseStats
	Stats  stats.Stats
}

// New creates a pipeline with the given dependencies
func New(opts Options) *Pipeline {
	if opts.Parser == nil {
		opts.Parser = taxonomy.NewParser()
	}
	if opts.RunIDs == nil {
		opts.RunIDs = runid.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{opts: opts, log: logger}
}

// Run fetches the taxonomy and processes it. A fetch failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if p.opts.Fetcher == nil {
		return Result{}, fmt.Errorf("no fetcher configured")
	}
	p.log.Printf("Downloading taxonomy from: %s", p.opts.Source)
	text, err := p.opts.Fetcher.Fetch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("download taxonomy: %w", err)
	}
	p.log.Printf("Downloaded %d characters", len(text))
	return p.Process(ctx, text)
}

// Process parses text, builds the nested set and writes every configured
// output. Nodes the builder could not place are logged as warnings; the
// writers then refuse the incomplete tree.
func (p *Pipeline) Process(ctx context.Context, text string) (Result, error) {
	now := p.opts.Now()
	res := Result{RunID: p.opts.RunIDs.Next(now)}

	p.log.Printf("Parsing taxonomy (dedup by %s)...", p.opts.Parser.Policy().Name())
	res.Forest = p.opts.Parser.Parse(text)
	res.Parse = p.opts.Parser.Stats()
	p.log.Printf("Parsed %d categories from %d lines", res.Forest.Len(), res.Parse.Lines)
	if res.Parse.Orphaned > 0 {
		p.log.Printf("WARNING: %d categories had an unresolved parent and became roots", res.Parse.Orphaned)
	}

	p.log.Printf("Building nested set model...")
	res.Report = taxonomy.Build(res.Forest)
	for _, a := range res.Report.Anomalies {
		p.log.Printf("WARNING: Category %d (%s) missing nested set values: %s (parent %d)", a.ID, a.Title, a.Kind, a.ParentID)
	}
	p.log.Printf("Built nested set model with positions 1 to %d", res.Report.MaxBound)

	res.Stats = stats.Compute(res.Forest, res.Report)

	if p.opts.Verify {
		if err := taxonomy.Verify(res.Forest); err != nil {
			return res, fmt.Errorf("verify nested set: %w", err)
		}
		p.log.Printf("Nested set verified")
	}

	if p.opts.JSONPath != "" {
		if err := export.SaveJSON(p.opts.JSONPath, res.Forest); err != nil {
			return res, err
		}
		p.log.Printf("Saved %d categories to %s", res.Forest.Len(), p.opts.JSONPath)
	}

	if p.opts.SQLPath != "" {
		h := export.Header{
			Table:       p.opts.Table,
			GeneratedAt: now,
			Source:      p.opts.Source,
			RunID:       res.RunID,
		}
		if err := export.SaveSQL(p.opts.SQLPath, res.Forest, h); err != nil {
			return res, err
		}
		p.log.Printf("Saved SQL schema and data to %s", p.opts.SQLPath)
	}

	if p.opts.Store != nil {
		meta := store.RunMeta{
			RunID:       res.RunID,
			GeneratedAt: now,
			Source:      p.opts.Source,
		}
		if err := p.opts.Store.ReplaceForest(ctx, res.Forest, meta); err != nil {
			return res, fmt.Errorf("write database: %w", err)
		}
		p.log.Printf("Stored %d categories in database", res.Forest.Len())
	}

	return res, nil
}
