package store

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/agenthands/linkgraph/internal/core/graph"
	"github.com/agenthands/linkgraph/internal/core/model"
)

// DefaultRetain is how many graphs the store keeps.
const DefaultRetain = 5

// Snapshot is a published graph plus its lazily cached metrics. The graph is
// read-only, so a snapshot stays valid for any request holding it even after
// a newer upload replaces it as current.
type Snapshot struct {
	Graph *graph.Graph

	mu      sync.Mutex
	metrics *model.MetricsSnapshot
	flight  singleflight.Group
}

func NewSnapshot(g *graph.Graph) *Snapshot {
	return &Snapshot{Graph: g}
}

// ID returns the graph id.
func (s *Snapshot) ID() string { return s.Graph.ID }

// Metrics returns the cached metrics, computing them with compute on first
// use. Concurrent callers share one computation, and each caller stops
// waiting when its own ctx is done. The computation itself is detached from
// caller cancellation and bounded by compute. Failures are not cached so a
// timed out computation can be retried.
func (s *Snapshot) Metrics(ctx context.Context, compute func(context.Context, *graph.Graph) (*model.MetricsSnapshot, error)) (*model.MetricsSnapshot, error) {
	if m, ok := s.CachedMetrics(); ok {
		return m, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, model.NewError(model.KindTimeout, "compute_metrics", s.ID(), err)
	}

	detached := context.WithoutCancel(ctx)
	ch := s.flight.DoChan("metrics", func() (any, error) {
		if m, ok := s.CachedMetrics(); ok {
			return m, nil
		}
		m, err := compute(detached, s.Graph)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.metrics = m
		s.mu.Unlock()
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, model.NewError(model.KindTimeout, "compute_metrics", s.ID(), ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.MetricsSnapshot), nil
	}
}

// CachedMetrics returns the metrics if already computed.
func (s *Snapshot) CachedMetrics() (*model.MetricsSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics, s.metrics != nil
}

// Store holds published graphs. The current slot is swapped atomically once
// a build is complete.
type Store struct {
	mu      sync.RWMutex
	graphs  map[string]*Snapshot
	order   []string
	retain  int
	current atomic.Pointer[Snapshot]
}

func New(retain int) *Store {
	if retain <= 0 {
		retain = DefaultRetain
	}
	return &Store{graphs: make(map[string]*Snapshot), retain: retain}
}

// Publish stores snap, makes it current and evicts the oldest graphs beyond
// the retention limit.
func (s *Store) Publish(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := snap.ID()
	if _, exists := s.graphs[id]; !exists {
		s.order = append(s.order, id)
	}
	s.graphs[id] = snap
	s.current.Store(snap)

	for len(s.order) > s.retain {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.graphs, oldest)
	}
}

// Current returns the current snapshot or a NotFound error.
func (s *Store) Current() (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return nil, model.NewError(model.KindNotFound, "current_graph", "", nil)
}

func (s *Store) Get(id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.graphs[id]
	if !ok {
		return nil, model.NewError(model.KindNotFound, "get_graph", id, nil)
	}
	return snap, nil
}

// List returns graph ids, oldest first.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Delete drops a graph. Deleting the current graph empties the current slot.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.graphs[id]; !ok {
		return model.NewError(model.KindNotFound, "delete_graph", id, nil)
	}
	delete(s.graphs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if cur := s.current.Load(); cur != nil && cur.ID() == id {
		s.current.Store(nil)
	}
	return nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs = make(map[string]*Snapshot)
	s.order = nil
	s.current.Store(nil)
}
