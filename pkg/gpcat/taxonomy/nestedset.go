package taxonomy

// AnomalyKind classifies a node the builder could not place.
type AnomalyKind string

const (
	// AnomalyDanglingParent: ParentID does not resolve to any node.
	AnomalyDanglingParent AnomalyKind = "dangling_parent"
	// AnomalyUnreachable: the parent exists but no root leads to the node.
	AnomalyUnreachable AnomalyKind = "unreachable"
)

// Anomaly describes a node left without bounds after Build.
type Anomaly struct {
	ID       int64
	ParentID int64
	Title    string
	Kind     AnomalyKind
}

// Report summarizes a Build run.
type Report struct {
	Visited   int
	MaxBound  int64
	Anomalies []Anomaly
}

// OK reports whether every node received bounds.
func (r Report) OK() bool { return len(r.Anomalies) == 0 }

type frame struct {
	pos  int // position in f.nodes
	next int // next child to visit
}

// Build assigns nested-set bounds with a depth-first walk from each root in
// forest order, sharing one counter across roots. Children are visited in
// forest order. Nodes not reachable from a root keep zero bounds and are
// listed in the report. Calling Build again reassigns from scratch.
func Build(f *Forest) Report {
	for i := range f.nodes {
		f.nodes[i].Left = 0
		f.nodes[i].Right = 0
	}

	children := f.childIndex()
	var counter int64 = 1
	var visited int
	stack := make([]frame, 0, 16)

	for rootPos, root := range f.nodes {
		if !root.IsRoot() {
			continue
		}
		f.nodes[rootPos].Left = counter
		counter++
		visited++
		stack = append(stack[:0], frame{pos: rootPos})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			kids := children[f.nodes[top.pos].ID]
			if top.next < len(kids) {
				child := kids[top.next]
				top.next++
				if f.nodes[child].Left != 0 {
					// Already placed; only possible in hand-built forests
					// with repeated ids.
					continue
				}
				f.nodes[child].Left = counter
				counter++
				visited++
				stack = append(stack, frame{pos: child})
				continue
			}
			f.nodes[top.pos].Right = counter
			counter++
			stack = stack[:len(stack)-1]
		}
	}

	report := Report{Visited: visited, MaxBound: counter - 1}
	for _, n := range f.nodes {
		if n.HasBounds() {
			continue
		}
		kind := AnomalyUnreachable
		if _, ok := f.index[n.ParentID]; !ok {
			kind = AnomalyDanglingParent
		}
		report.Anomalies = append(report.Anomalies, Anomaly{
			ID:       n.ID,
			ParentID: n.ParentID,
			Title:    n.Title,
			Kind:     kind,
		})
	}
	return report
}
