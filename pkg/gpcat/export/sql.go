package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/cognicore/gpcat/pkg/gpcat/internalerr"
	"github.com/cognicore/gpcat/pkg/gpcat/taxonomy"
)

// DefaultTable is the table name used by the SQL and database outputs.
const DefaultTable = "google_product_categories"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name can be used unquoted as a table name.
func ValidIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

// Header is written as comments at the top of a SQL dump.
type Header struct {
	Table       string
	GeneratedAt time.Time
	Source      string
	RunID       string
}

// CreateTableSQL returns the DDL for the categories table. left and right
// are quoted because they are SQL keywords.
func CreateTableSQL(table string, ifNotExists bool) string {
	clause := ""
	if ifNotExists {
		clause = "IF NOT EXISTS "
	}
	return fmt.Sprintf(`CREATE TABLE %s%s (
    id INTEGER PRIMARY KEY,
    parent_id INTEGER,
    title TEXT NOT NULL,
    "left" INTEGER NOT NULL,
    "right" INTEGER NOT NULL,
    depth INTEGER NOT NULL,
    FOREIGN KEY (parent_id) REFERENCES %s(id)
);`, clause, table, table)
}

// IndexSQL returns the index statements backing nested-set range queries.
func IndexSQL(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_left ON %s("left");`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_right ON %s("right");`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_parent_id ON %s(parent_id);`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_depth ON %s(depth);`, table, table),
	}
}

// CheckBounds returns an integrity error for the first node without bounds.
func CheckBounds(f *taxonomy.Forest) error {
	for _, n := range f.Nodes() {
		if !n.HasBounds() {
			return fmt.Errorf("node %d (%q) has no nested-set bounds: %w", n.ID, n.Title, internalerr.ErrIntegrity)
		}
	}
	return nil
}

// WriteSQL writes schema, inserts and indexes as a SQL script. Nodes without
// bounds cannot satisfy the NOT NULL columns, so the dump is refused before
// anything is written.
func WriteSQL(w io.Writer, f *taxonomy.Forest, h Header) error {
	if h.Table == "" {
		h.Table = DefaultTable
	}
	if !ValidIdentifier(h.Table) {
		return fmt.Errorf("table name %q: %w", h.Table, internalerr.ErrInvalidInput)
	}
	if err := CheckBounds(f); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "-- Google Product Categories (Nested Set Model)")
	if !h.GeneratedAt.IsZero() {
		fmt.Fprintf(bw, "-- Generated on: %s\n", h.GeneratedAt.Format(time.RFC3339))
	}
	if h.Source != "" {
		fmt.Fprintf(bw, "-- Source: %s\n", h.Source)
	}
	if h.RunID != "" {
		fmt.Fprintf(bw, "-- Run: %s\n", h.RunID)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, CreateTableSQL(h.Table, true))
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "-- Insert categories")
	for _, n := range f.Nodes() {
		parent := "NULL"
		if !n.IsRoot() {
			parent = fmt.Sprintf("%d", n.ParentID)
		}
		fmt.Fprintf(bw, "INSERT INTO %s (id, parent_id, title, \"left\", \"right\", depth) VALUES (%d, %s, '%s', %d, %d, %d);\n",
			h.Table, n.ID, parent, quote(n.Title), n.Left, n.Right, n.Depth)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "-- Indexes for nested set queries")
	for _, stmt := range IndexSQL(h.Table) {
		fmt.Fprintln(bw, stmt)
	}

	return bw.Flush()
}

// SaveSQL writes the SQL script to path.
func SaveSQL(path string, f *taxonomy.Forest, h Header) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSQL(file, f, h); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
