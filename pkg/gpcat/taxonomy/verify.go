package taxonomy

import (
	"fmt"

	"github.com/cognicore/gpcat/pkg/gpcat/internalerr"
)

// Verify checks the nested-set invariants of a built forest: every node has
// bounds with left < right, each child sits strictly inside its parent,
// siblings occupy disjoint intervals in append order, and the bounds cover
// 1..2N exactly once.
func Verify(f *Forest) error {
	seen := make([]bool, 2*len(f.nodes)+1)
	mark := func(n Node, b int64) error {
		if b < 1 || b > int64(len(seen)-1) {
			return fmt.Errorf("node %d (%q): bound %d outside 1..%d: %w", n.ID, n.Title, b, len(seen)-1, internalerr.ErrIntegrity)
		}
		if seen[b] {
			return fmt.Errorf("node %d (%q): bound %d repeated: %w", n.ID, n.Title, b, internalerr.ErrIntegrity)
		}
		seen[b] = true
		return nil
	}

	for _, n := range f.nodes {
		if !n.HasBounds() {
			return fmt.Errorf("node %d (%q): bounds unassigned: %w", n.ID, n.Title, internalerr.ErrIntegrity)
		}
		if n.Left >= n.Right {
			return fmt.Errorf("node %d (%q): left %d >= right %d: %w", n.ID, n.Title, n.Left, n.Right, internalerr.ErrIntegrity)
		}
		if err := mark(n, n.Left); err != nil {
			return err
		}
		if err := mark(n, n.Right); err != nil {
			return err
		}
		if n.IsRoot() {
			continue
		}
		parent, ok := f.Node(n.ParentID)
		if !ok {
			return fmt.Errorf("node %d (%q): parent %d missing: %w", n.ID, n.Title, n.ParentID, internalerr.ErrIntegrity)
		}
		if !parent.Contains(n) {
			return fmt.Errorf("node %d [%d,%d] not inside parent %d [%d,%d]: %w",
				n.ID, n.Left, n.Right, parent.ID, parent.Left, parent.Right, internalerr.ErrIntegrity)
		}
	}

	if err := verifySiblings(f.Roots()); err != nil {
		return err
	}
	for _, n := range f.nodes {
		if err := verifySiblings(f.Children(n.ID)); err != nil {
			return err
		}
	}
	return nil
}

func verifySiblings(siblings []Node) error {
	for i := 1; i < len(siblings); i++ {
		prev, n := siblings[i-1], siblings[i]
		if n.Left <= prev.Right {
			return fmt.Errorf("node %d [%d,%d] overlaps or precedes sibling %d [%d,%d]: %w",
				n.ID, n.Left, n.Right, prev.ID, prev.Left, prev.Right, internalerr.ErrIntegrity)
		}
	}
	return nil
}

// DepthMismatches returns nodes whose depth is not their parent's depth plus
// one. Name-based merging produces these when a title reappears at a
// different level than where it was first seen.
func DepthMismatches(f *Forest) []Node {
	var out []Node
	for _, n := range f.nodes {
		if n.IsRoot() {
			if n.Depth != 1 {
				out = append(out, n)
			}
			continue
		}
		parent, ok := f.Node(n.ParentID)
		if ok && n.Depth != parent.Depth+1 {
			out = append(out, n)
		}
	}
	return out
}
