package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/gpcat/pkg/gpcat/export"
	"github.com/cognicore/gpcat/pkg/gpcat/internalerr"
	"github.com/cognicore/gpcat/pkg/gpcat/store"
	"github.com/cognicore/gpcat/pkg/gpcat/taxonomy"
)

// Store is an in-memory implementation of store.Store for tests and dry runs.
type Store struct {
	mu     sync.RWMutex
	nodes  []taxonomy.Node // ordered by left
	byID   map[int64]int
	runs   []store.RunMeta
	closed bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{byID: make(map[int64]int)}
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ReplaceForest implements store.Store.
func (s *Store) ReplaceForest(ctx context.Context, f *taxonomy.Forest, meta store.RunMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return internalerr.ErrStoreUnavailable
	}
	if err := export.CheckBounds(f); err != nil {
		return err
	}

	nodes := f.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Left < nodes[j].Left })
	s.nodes = nodes
	s.byID = make(map[int64]int, len(nodes))
	for i, n := range nodes {
		s.byID[n.ID] = i
	}

	meta.NodeCount = len(nodes)
	s.runs = append(s.runs, meta)
	return nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id int64) (taxonomy.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id)
}

func (s *Store) get(id int64) (taxonomy.Node, error) {
	i, ok := s.byID[id]
	if !ok {
		return taxonomy.Node{}, fmt.Errorf("category %d: %w", id, internalerr.ErrNotFound)
	}
	return s.nodes[i], nil
}

// Roots implements store.Store.
func (s *Store) Roots(ctx context.Context) ([]taxonomy.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []taxonomy.Node
	for _, n := range s.nodes {
		if n.IsRoot() {
			out = append(out, n)
		}
	}
	return out, nil
}

// Count implements store.Store.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), nil
}

// Descendants implements store.Store.
func (s *Store) Descendants(ctx context.Context, id int64) ([]taxonomy.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target, err := s.get(id)
	if err != nil {
		return nil, err
	}

	// Nodes are sorted by left, so descendants are the contiguous run
	// following the target.
	var out []taxonomy.Node
	for _, n := range s.nodes[s.byID[id]+1:] {
		if n.Left > target.Right {
			break
		}
		out = append(out, n)
	}
	return out, nil
}

// Ancestors implements store.Store.
func (s *Store) Ancestors(ctx context.Context, id int64) ([]taxonomy.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target, err := s.get(id)
	if err != nil {
		return nil, err
	}

	var out []taxonomy.Node
	for _, n := range s.nodes[:s.byID[id]] {
		if n.Contains(target) {
			out = append(out, n)
		}
	}
	return out, nil
}

// LatestRun implements store.Store.
func (s *Store) LatestRun(ctx context.Context) (store.RunMeta, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return store.RunMeta{}, false, nil
	}
	return s.runs[len(s.runs)-1], true, nil
}
