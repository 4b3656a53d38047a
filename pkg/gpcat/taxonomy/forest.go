package taxonomy

// Node is a single product category.
//
// ParentID is zero for roots. Left and Right are zero until Build assigns
// them; assigned bounds always start at 1.
type Node struct {
	ID       int64
	ParentID int64
	Title    string
	Depth    int
	Left     int64
	Right    int64
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool { return n.ParentID == 0 }

// HasBounds reports whether both nested-set bounds are assigned.
func (n Node) HasBounds() bool { return n.Left > 0 && n.Right > 0 }

// Contains reports whether other lies strictly inside n's interval.
func (n Node) Contains(other Node) bool {
	if !n.HasBounds() || !other.HasBounds() {
		return false
	}
	return n.Left < other.Left && other.Right < n.Right
}

// Forest is an arena of nodes kept in append order. Parent and child
// relationships are id references only.
type Forest struct {
	nodes    []Node
	index    map[int64]int    // id → position in nodes
	keys     map[string]int64 // dedup key → id
	children map[int64][]int  // parent id → positions, built lazily
}

func newForest() *Forest {
	return &Forest{
		index: make(map[int64]int),
		keys:  make(map[string]int64),
	}
}

// NewForest builds a forest from already assembled nodes, preserving their
// order. Nodes are keyed by title. Later nodes with a duplicate id replace
// the index entry of earlier ones.
func NewForest(nodes []Node) *Forest {
	f := newForest()
	for _, n := range nodes {
		f.add(n.Title, n)
	}
	return f
}

func (f *Forest) add(key string, n Node) {
	f.index[n.ID] = len(f.nodes)
	if _, ok := f.keys[key]; !ok {
		f.keys[key] = n.ID
	}
	f.nodes = append(f.nodes, n)
	f.children = nil
}

// Len returns the number of nodes.
func (f *Forest) Len() int { return len(f.nodes) }

// Nodes returns a copy of all nodes in append order.
func (f *Forest) Nodes() []Node {
	out := make([]Node, len(f.nodes))
	copy(out, f.nodes)
	return out
}

// Node returns the node with the given id.
func (f *Forest) Node(id int64) (Node, bool) {
	i, ok := f.index[id]
	if !ok {
		return Node{}, false
	}
	return f.nodes[i], true
}

// Lookup returns the node registered under a dedup key.
func (f *Forest) Lookup(key string) (Node, bool) {
	id, ok := f.keys[key]
	if !ok {
		return Node{}, false
	}
	return f.Node(id)
}

// Roots returns parentless nodes in append order.
func (f *Forest) Roots() []Node {
	var roots []Node
	for _, n := range f.nodes {
		if n.IsRoot() {
			roots = append(roots, n)
		}
	}
	return roots
}

// Children returns the direct children of id in append order.
func (f *Forest) Children(id int64) []Node {
	positions := f.childIndex()[id]
	out := make([]Node, len(positions))
	for i, p := range positions {
		out[i] = f.nodes[p]
	}
	return out
}

func (f *Forest) childIndex() map[int64][]int {
	if f.children != nil {
		return f.children
	}
	f.children = make(map[int64][]int)
	for i, n := range f.nodes {
		if n.IsRoot() {
			continue
		}
		f.children[n.ParentID] = append(f.children[n.ParentID], i)
	}
	return f.children
}
