package graph

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/agenthands/linkgraph/internal/core/model"
	"github.com/agenthands/linkgraph/internal/core/similarity"
)

// ShortestPath finds a minimum hop path with BFS. Neighbors are expanded in
// graph order, so the returned path is stable. An unreachable target is a
// normal result with Exists false.
func (g *Graph) ShortestPath(ctx context.Context, sourceID, targetID string) (*model.PathResult, error) {
	if !g.Has(sourceID) {
		return nil, model.NewError(model.KindNotFound, "shortest_path", sourceID, nil)
	}
	if !g.Has(targetID) {
		return nil, model.NewError(model.KindNotFound, "shortest_path", targetID, nil)
	}

	result := &model.PathResult{Source: sourceID, Target: targetID, Path: []string{}, Length: -1}
	if sourceID == targetID {
		result.Exists = true
		result.Path = []string{sourceID}
		result.Length = 0
		return result, nil
	}

	parent := map[string]string{sourceID: ""}
	queue := []string{sourceID}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, model.NewError(model.KindTimeout, "shortest_path", sourceID, err)
		}
		current := queue[0]
		queue = queue[1:]

		for _, n := range g.adj[current] {
			if _, seen := parent[n.id]; seen {
				continue
			}
			parent[n.id] = current
			if n.id == targetID {
				path := []string{targetID}
				for p := current; p != ""; p = parent[p] {
					path = append(path, p)
				}
				slices.Reverse(path)
				result.Exists = true
				result.Path = path
				result.Length = len(path) - 1
				return result, nil
			}
			queue = append(queue, n.id)
		}
	}
	return result, nil
}

// Subgraph returns the subgraph induced by every node within depth hops of nodeID.
func (g *Graph) Subgraph(ctx context.Context, nodeID string, depth int) (*model.Subgraph, error) {
	if depth < 0 {
		return nil, model.NewError(model.KindInvalidInput, "subgraph", nodeID, fmt.Errorf("depth must be non-negative, got %d", depth))
	}
	if !g.Has(nodeID) {
		return nil, model.NewError(model.KindNotFound, "subgraph", nodeID, nil)
	}

	keep := map[string]bool{nodeID: true}
	frontier := []string{nodeID}
	for d := 0; d < depth && len(frontier) > 0; d++ {
		if err := ctx.Err(); err != nil {
			return nil, model.NewError(model.KindTimeout, "subgraph", nodeID, err)
		}
		var next []string
		for _, id := range frontier {
			for _, n := range g.adj[id] {
				if !keep[n.id] {
					keep[n.id] = true
					next = append(next, n.id)
				}
			}
		}
		frontier = next
	}
	return g.induced(keep), nil
}

// Filter returns the subgraph induced by the nodes satisfying every supplied
// criterion. List criteria match when any entry matches. Degree refers to the
// full graph.
func (g *Graph) Filter(criteria model.FilterCriteria) (*model.Subgraph, error) {
	from, to, err := criteria.DateRange()
	if err != nil {
		return nil, err
	}
	if to != nil {
		end := endOfDay(*to)
		to = &end
	}
	companies := lowered(criteria.Companies)
	positions := lowered(criteria.Positions)
	location := strings.ToLower(strings.TrimSpace(criteria.Location))

	keep := make(map[string]bool)
	for _, id := range g.order {
		c := g.nodes[id]
		if len(companies) > 0 && !containsAny(strings.ToLower(c.Company), companies) {
			continue
		}
		if len(positions) > 0 {
			title := strings.ToLower(c.Position)
			tokens := strings.Join(similarity.PositionTokens(c.Position), " ")
			if !containsAny(title, positions) && !containsAny(tokens, positions) {
				continue
			}
		}
		if location != "" && !strings.Contains(strings.ToLower(c.Location), location) {
			continue
		}
		if criteria.MinDegree > 0 && g.Degree(id) < criteria.MinDegree {
			continue
		}
		if from != nil || to != nil {
			if c.ConnectedOn == nil {
				continue
			}
			if from != nil && c.ConnectedOn.Before(*from) {
				continue
			}
			if to != nil && c.ConnectedOn.After(*to) {
				continue
			}
		}
		keep[id] = true
	}
	return g.induced(keep), nil
}

// endOfDay widens a date-only bound to the last instant of that day.
func endOfDay(t time.Time) time.Time {
	h, m, sec := t.Clock()
	if h != 0 || m != 0 || sec != 0 || t.Nanosecond() != 0 {
		return t
	}
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Limit keeps the first n nodes in graph order and the edges among them.
func (g *Graph) Limit(n int) *model.Subgraph {
	keep := make(map[string]bool)
	for i, id := range g.order {
		if n > 0 && i >= n {
			break
		}
		keep[id] = true
	}
	return g.induced(keep)
}

// induced never includes an edge whose endpoints are not both kept.
func (g *Graph) induced(keep map[string]bool) *model.Subgraph {
	sub := &model.Subgraph{Nodes: []model.Contact{}, Edges: []model.Edge{}}
	for _, id := range g.order {
		if keep[id] {
			sub.Nodes = append(sub.Nodes, g.nodes[id])
		}
	}
	for _, e := range g.edges {
		if keep[e.Source] && keep[e.Target] {
			sub.Edges = append(sub.Edges, e)
		}
	}
	return sub
}

func lowered(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
