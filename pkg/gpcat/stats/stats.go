package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cognicore/gpcat/pkg/gpcat/taxonomy"
)

// Stats holds aggregate counts over a built forest
type Stats struct {
	Total          int          `json:"total_categories"`
	Roots          int          `json:"root_categories"`
	Leaves         int          `json:"leaf_categories"`
	MaxDepth       int          `json:"max_depth"`
	ByDepth        []DepthCount `json:"by_depth"`
	MinLeft        int64        `json:"min_left"`
	MaxRight       int64        `json:"max_right"`
	PositionsUsed  int64        `json:"positions_used"`
	Anomalies      int          `json:"anomalies"`
	DepthMismatch  int          `json:"depth_mismatches"`
	LargestRoot    string       `json:"largest_root,omitempty"`
	LargestRootLen int          `json:"largest_root_size,omitempty"`
}

// DepthCount is the number of categories at one depth
type DepthCount struct {
	Depth int `json:"depth"`
	Count int `json:"count"`
}

// Compute gathers statistics from a forest and the report of its Build
func Compute(f *taxonomy.Forest, report taxonomy.Report) Stats {
	s := Stats{Total: f.Len(), Anomalies: len(report.Anomalies)}

	levels := make(map[int]int)
	hasChild := make(map[int64]bool)
	for _, n := range f.Nodes() {
		levels[n.Depth]++
		if n.IsRoot() {
			s.Roots++
		} else {
			hasChild[n.ParentID] = true
		}
		if n.Depth > s.MaxDepth {
			s.MaxDepth = n.Depth
		}
		if !n.HasBounds() {
			continue
		}
		if s.MinLeft == 0 || n.Left < s.MinLeft {
			s.MinLeft = n.Left
		}
		if n.Right > s.MaxRight {
			s.MaxRight = n.Right
		}
		// Subtree size falls out of the bounds
		if n.IsRoot() {
			size := int((n.Right-n.Left-1)/2) + 1
			if size > s.LargestRootLen {
				s.LargestRoot = n.Title
				s.LargestRootLen = size
			}
		}
	}
	for _, n := range f.Nodes() {
		if !hasChild[n.ID] {
			s.Leaves++
		}
	}
	s.PositionsUsed = s.MaxRight
	s.DepthMismatch = len(taxonomy.DepthMismatches(f))

	for depth, count := range levels {
		s.ByDepth = append(s.ByDepth, DepthCount{Depth: depth, Count: count})
	}
	sort.Slice(s.ByDepth, func(i, j int) bool { return s.ByDepth[i].Depth < s.ByDepth[j].Depth })
	return s
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

// Render writes a human-readable statistics report
func Render(w io.Writer, s Stats) error {
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render("Taxonomy Statistics"))
	line := func(label string, value any) {
		fmt.Fprintf(&b, "%s %v\n", labelStyle.Render(label), value)
	}
	line("Total categories:", s.Total)
	line("Root categories:", s.Roots)
	line("Leaf categories:", s.Leaves)
	line("Maximum depth:", s.MaxDepth)
	if s.Total > 0 && s.MaxRight > 0 {
		line("Nested set range:", fmt.Sprintf("%d to %d", s.MinLeft, s.MaxRight))
		line("Total positions used:", s.PositionsUsed)
	}
	if s.LargestRoot != "" {
		line("Largest root:", fmt.Sprintf("%s (%d categories)", s.LargestRoot, s.LargestRootLen))
	}
	if s.Anomalies > 0 {
		fmt.Fprintln(&b, warnStyle.Render(fmt.Sprintf("Categories without bounds: %d", s.Anomalies)))
	}
	if s.DepthMismatch > 0 {
		fmt.Fprintln(&b, warnStyle.Render(fmt.Sprintf("Depth mismatches from merged titles: %d", s.DepthMismatch)))
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, titleStyle.Render("Categories by depth"))
	for _, dc := range s.ByDepth {
		fmt.Fprintf(&b, "  %s %d categories\n", labelStyle.Render(fmt.Sprintf("Depth %d:", dc.Depth)), dc.Count)
	}

	_, err := fmt.Fprintln(w, boxStyle.Render(strings.TrimRight(b.String(), "\n")))
	return err
}
