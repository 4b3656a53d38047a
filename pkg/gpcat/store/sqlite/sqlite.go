package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/gpcat/pkg/gpcat/export"
	"github.com/cognicore/gpcat/pkg/gpcat/internalerr"
	"github.com/cognicore/gpcat/pkg/gpcat/store"
	"github.com/cognicore/gpcat/pkg/gpcat/taxonomy"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db    *sql.DB
	table string
	q     queries
}

// queries are rendered once per table name
type queries struct {
	get         string
	roots       string
	count       string
	descendants string
	ancestors   string
	latestRun   string
}

const nodeColumns = `id, parent_id, title, "left", "right", depth`

func buildQueries(table string) queries {
	return queries{
		get:   fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, nodeColumns, table),
		roots: fmt.Sprintf(`SELECT %s FROM %s WHERE parent_id IS NULL ORDER BY "left"`, nodeColumns, table),
		count: fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table),
		descendants: fmt.Sprintf(`
SELECT c.id, c.parent_id, c.title, c."left", c."right", c.depth
FROM %s c
JOIN %s n ON n.id = ?
WHERE c."left" > n."left" AND c."right" < n."right"
ORDER BY c."left"`, table, table),
		ancestors: fmt.Sprintf(`
SELECT a.id, a.parent_id, a.title, a."left", a."right", a.depth
FROM %s a
JOIN %s n ON n.id = ?
WHERE a."left" < n."left" AND n."right" < a."right"
ORDER BY a."left"`, table, table),
		latestRun: fmt.Sprintf(`
SELECT run_id, generated_at, source, node_count
FROM %s_meta
ORDER BY rowid DESC
LIMIT 1`, table),
	}
}

// Open opens a SQLite database holding the categories table. An empty
// table name selects export.DefaultTable.
func Open(ctx context.Context, path, table string) (store.Store, error) {
	if table == "" {
		table = export.DefaultTable
	}
	if !export.ValidIdentifier(table) {
		return nil, fmt.Errorf("table name %q: %w", table, internalerr.ErrInvalidInput)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// PRAGMAs are per connection; a single connection keeps them in effect.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db, table); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, table: table, q: buildQueries(table)}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB, table string) error {
	schema := export.CreateTableSQL(table, true) + "\n" + metaTableSQL(table)
	for _, stmt := range export.IndexSQL(table) {
		schema += "\n" + stmt
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

func metaTableSQL(table string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s_meta (
	run_id TEXT PRIMARY KEY,
	generated_at TEXT NOT NULL,
	source TEXT,
	node_count INTEGER NOT NULL
);`, table)
}

// ReplaceForest drops and recreates the categories table, then inserts every
// node in forest order inside one transaction. Parents always precede their
// children in forest order, so the foreign key holds on every insert.
func (s *sqliteStore) ReplaceForest(ctx context.Context, f *taxonomy.Forest, meta store.RunMeta) error {
	if err := export.CheckBounds(f); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", s.table)); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, export.CreateTableSQL(s.table, false)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?)`, s.table, nodeColumns))
	if err != nil {
		return err
	}
	defer stmt.Close()

	nodes := f.Nodes()
	for _, n := range nodes {
		var parent sql.NullInt64
		if !n.IsRoot() {
			parent = sql.NullInt64{Int64: n.ParentID, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, n.ID, parent, n.Title, n.Left, n.Right, n.Depth); err != nil {
			return fmt.Errorf("insert category %d: %w", n.ID, err)
		}
	}

	for _, idx := range export.IndexSQL(s.table) {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT OR REPLACE INTO %s_meta (run_id, generated_at, source, node_count) VALUES (?, ?, ?, ?)`, s.table),
		meta.RunID,
		meta.GeneratedAt.UTC().Format(time.RFC3339),
		meta.Source,
		len(nodes),
	); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return tx.Commit()
}

// Get returns a category by id
func (s *sqliteStore) Get(ctx context.Context, id int64) (taxonomy.Node, error) {
	n, err := scanNode(s.db.QueryRowContext(ctx, s.q.get, id))
	if errors.Is(err, sql.ErrNoRows) {
		return taxonomy.Node{}, fmt.Errorf("category %d: %w", id, internalerr.ErrNotFound)
	}
	return n, err
}

// Roots returns top-level categories ordered by left bound
func (s *sqliteStore) Roots(ctx context.Context) ([]taxonomy.Node, error) {
	return s.queryNodes(ctx, s.q.roots)
}

// Count returns the number of stored categories
func (s *sqliteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q.count).Scan(&n)
	return n, err
}

// Descendants returns the subtree below id
func (s *sqliteStore) Descendants(ctx context.Context, id int64) ([]taxonomy.Node, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.queryNodes(ctx, s.q.descendants, id)
}

// Ancestors returns the chain from the root down to id's parent
func (s *sqliteStore) Ancestors(ctx context.Context, id int64) ([]taxonomy.Node, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.queryNodes(ctx, s.q.ancestors, id)
}

// LatestRun returns metadata of the most recent ReplaceForest
func (s *sqliteStore) LatestRun(ctx context.Context) (store.RunMeta, bool, error) {
	var (
		meta      store.RunMeta
		generated string
		source    sql.NullString
	)
	err := s.db.QueryRowContext(ctx, s.q.latestRun).Scan(&meta.RunID, &generated, &source, &meta.NodeCount)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RunMeta{}, false, nil
	}
	if err != nil {
		return store.RunMeta{}, false, err
	}
	meta.Source = source.String
	meta.GeneratedAt, err = time.Parse(time.RFC3339, generated)
	if err != nil {
		return store.RunMeta{}, false, fmt.Errorf("parse generated_at %q: %w", generated, err)
	}
	return meta, true, nil
}

func (s *sqliteStore) queryNodes(ctx context.Context, query string, args ...any) ([]taxonomy.Node, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []taxonomy.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (taxonomy.Node, error) {
	var (
		n      taxonomy.Node
		parent sql.NullInt64
	)
	if err := row.Scan(&n.ID, &parent, &n.Title, &n.Left, &n.Right, &n.Depth); err != nil {
		return taxonomy.Node{}, err
	}
	n.ParentID = parent.Int64
	return n, nil
}
