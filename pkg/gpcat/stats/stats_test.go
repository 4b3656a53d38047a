package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cognicore/gpcat/pkg/gpcat/taxonomy"
)

func TestCompute(t *testing.T) {
	f := taxonomy.Parse("A > B > C\nA > D\nE")
	report := taxonomy.Build(f)
	s := Compute(f, report)

	if s.Total != 5 || s.Roots != 2 || s.MaxDepth != 3 {
		t.Errorf("Unexpected totals: %+v", s)
	}
	if s.Leaves != 3 {
		t.Errorf("Leaves = %d, want 3", s.Leaves)
	}
	if s.MinLeft != 1 || s.MaxRight != 10 || s.PositionsUsed != 10 {
		t.Errorf("Range = %d..%d (%d used), want 1..10", s.MinLeft, s.MaxRight, s.PositionsUsed)
	}
	if s.LargestRoot != "A" || s.LargestRootLen != 4 {
		t.Errorf("Largest root = %s (%d), want A (4)", s.LargestRoot, s.LargestRootLen)
	}

	want := []DepthCount{{1, 2}, {2, 2}, {3, 1}}
	if len(s.ByDepth) != len(want) {
		t.Fatalf("ByDepth = %v, want %v", s.ByDepth, want)
	}
	for i := range want {
		if s.ByDepth[i] != want[i] {
			t.Errorf("ByDepth[%d] = %v, want %v", i, s.ByDepth[i], want[i])
		}
	}
}

func TestComputeWithAnomalies(t *testing.T) {
	f := taxonomy.NewForest([]taxonomy.Node{
		{ID: 1, Title: "A", Depth: 1},
		{ID: 2, ParentID: 8, Title: "Lost", Depth: 2},
	})
	report := taxonomy.Build(f)
	s := Compute(f, report)

	if s.Anomalies != 1 {
		t.Errorf("Anomalies = %d, want 1", s.Anomalies)
	}
	if s.MaxRight != 2 {
		t.Errorf("MaxRight should ignore unbounded nodes, got %d", s.MaxRight)
	}
}

func TestComputeEmpty(t *testing.T) {
	f := taxonomy.Parse("")
	s := Compute(f, taxonomy.Build(f))
	if s.Total != 0 || s.MaxDepth != 0 || len(s.ByDepth) != 0 {
		t.Errorf("Empty forest should yield zero stats, got %+v", s)
	}
}

func TestRender(t *testing.T) {
	f := taxonomy.Parse("A > B\nX > W > B > Y")
	s := Compute(f, taxonomy.Build(f))

	var buf bytes.Buffer
	if err := Render(&buf, s); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Total categories:", "Nested set range:", "Depth 1:", "Depth mismatches"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render output missing %q:\n%s", want, out)
		}
	}
}
