package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cognicore/gpcat/pkg/gpcat/taxonomy"
)

// Record is the serialized shape of one category.
type Record struct {
	ID       int64  `json:"id"`
	ParentID *int64 `json:"parent_id"`
	Title    string `json:"title"`
	Left     *int64 `json:"left"`
	Right    *int64 `json:"right"`
	Depth    int    `json:"depth"`
}

// Records converts forest nodes to records. Unset parent and bounds become nil.
func Records(f *taxonomy.Forest) []Record {
	nodes := f.Nodes()
	out := make([]Record, len(nodes))
	for i, n := range nodes {
		rec := Record{ID: n.ID, Title: n.Title, Depth: n.Depth}
		if !n.IsRoot() {
			parent := n.ParentID
			rec.ParentID = &parent
		}
		if n.HasBounds() {
			left, right := n.Left, n.Right
			rec.Left = &left
			rec.Right = &right
		}
		out[i] = rec
	}
	return out
}

// WriteJSON writes the forest as an indented JSON array in forest order.
func WriteJSON(w io.Writer, f *taxonomy.Forest) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(Records(f))
}

// SaveJSON writes the forest to path.
func SaveJSON(path string, f *taxonomy.Forest) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(file, f); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
