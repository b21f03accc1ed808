package graph

import (
	"fmt"
	"slices"
	"time"

	"github.com/agenthands/linkgraph/internal/core/model"
)

type neighbor struct {
	id   string
	edge int
}

// Graph is the immutable result of one build. Nodes keep their ingest order,
// which is the total order used for every deterministic iteration.
type Graph struct {
	ID        string
	CreatedAt time.Time
	Settings  model.InferenceSettings

	order []string
	pos   map[string]int
	nodes map[string]model.Contact
	adj   map[string][]neighbor
	edges []model.Edge
}

func newGraph(id string, contacts []model.Contact, settings model.InferenceSettings) *Graph {
	g := &Graph{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Settings:  settings,
		order:     make([]string, len(contacts)),
		pos:       make(map[string]int, len(contacts)),
		nodes:     make(map[string]model.Contact, len(contacts)),
		adj:       make(map[string][]neighbor, len(contacts)),
	}
	for i, c := range contacts {
		g.order[i] = c.ID
		g.pos[c.ID] = i
		g.nodes[c.ID] = c
	}
	return g
}

func (g *Graph) addEdge(e model.Edge) {
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.adj[e.Source] = append(g.adj[e.Source], neighbor{id: e.Target, edge: idx})
	g.adj[e.Target] = append(g.adj[e.Target], neighbor{id: e.Source, edge: idx})
}

// NodeCount returns the number of contacts.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of inferred edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// IDs returns node ids in graph order.
func (g *Graph) IDs() []string { return slices.Clone(g.order) }

// Nodes returns the contacts in graph order.
func (g *Graph) Nodes() []model.Contact {
	out := make([]model.Contact, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

func (g *Graph) Node(id string) (model.Contact, bool) {
	c, ok := g.nodes[id]
	return c, ok
}

func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Position returns the node's index in graph order, -1 if absent.
func (g *Graph) Position(id string) int {
	if p, ok := g.pos[id]; ok {
		return p
	}
	return -1
}

// Edges returns all edges in build order.
func (g *Graph) Edges() []model.Edge { return slices.Clone(g.edges) }

func (g *Graph) Degree(id string) int { return len(g.adj[id]) }

// Neighbors returns adjacent node ids in graph order.
func (g *Graph) Neighbors(id string) []string {
	ns := g.adj[id]
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.id
	}
	return out
}

// IncidentEdges returns the edges touching id.
func (g *Graph) IncidentEdges(id string) []model.Edge {
	ns := g.adj[id]
	out := make([]model.Edge, len(ns))
	for i, n := range ns {
		out[i] = g.edges[n.edge]
	}
	return out
}

// Validate checks that the node map, adjacency and edge list agree.
func (g *Graph) Validate() error {
	fail := func(id string, format string, args ...any) error {
		return model.NewError(model.KindInternalInconsistency, "validate_graph", id, fmt.Errorf(format, args...))
	}
	if len(g.nodes) != len(g.order) {
		return fail("", "node map has %d entries, order has %d", len(g.nodes), len(g.order))
	}
	seen := make(map[[2]string]bool, len(g.edges))
	for i, e := range g.edges {
		if e.Source == e.Target {
			return fail(e.Source, "self edge at %d", i)
		}
		ps, okS := g.pos[e.Source]
		pt, okT := g.pos[e.Target]
		if !okS || !okT {
			return fail(e.Source+"-"+e.Target, "edge %d references unknown node", i)
		}
		if ps > pt {
			return fail(e.Source, "edge %d endpoints out of order", i)
		}
		key := [2]string{e.Source, e.Target}
		if seen[key] {
			return fail(e.Source, "duplicate edge to %s", e.Target)
		}
		seen[key] = true
	}
	incidences := 0
	for id, ns := range g.adj {
		if !g.Has(id) {
			return fail(id, "adjacency for unknown node")
		}
		for _, n := range ns {
			if n.edge < 0 || n.edge >= len(g.edges) {
				return fail(id, "adjacency references edge %d", n.edge)
			}
			if e := g.edges[n.edge]; e.Other(id) != n.id || (e.Source != id && e.Target != id) {
				return fail(id, "adjacency disagrees with edge %d", n.edge)
			}
		}
		incidences += len(ns)
	}
	if incidences != 2*len(g.edges) {
		return fail("", "adjacency holds %d incidences for %d edges", incidences, len(g.edges))
	}
	return nil
}
