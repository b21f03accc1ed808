package community

import (
	"context"
	"sort"

	"github.com/agenthands/linkgraph/internal/core/model"
)

const (
	DefaultMaxIterations = 100
	DefaultResolution    = 1.0
	maxLevels            = 32
)

// ModularityDetector maximizes modularity greedily in the Louvain manner:
// nodes move to the neighboring community with the best gain until no move
// helps, then communities collapse into super nodes and the process repeats.
// Nodes are visited in graph order and ties keep the current community, so
// the result is deterministic.
type ModularityDetector struct {
	Resolution    float64
	MaxIterations int
}

func NewModularityDetector() *ModularityDetector {
	return &ModularityDetector{
		Resolution:    DefaultResolution,
		MaxIterations: DefaultMaxIterations,
	}
}

type wedge struct {
	to int
	w  float64
}

type levelGraph struct {
	adj  [][]wedge
	self []float64
}

func (lg *levelGraph) strength(i int) float64 {
	k := 2 * lg.self[i]
	for _, e := range lg.adj[i] {
		k += e.w
	}
	return k
}

func (d *ModularityDetector) Detect(ctx context.Context, ids []string, edges []model.Edge) (*Partition, error) {
	n := len(ids)
	if n == 0 {
		return &Partition{Membership: map[string]int{}}, nil
	}
	pos := make(map[string]int, n)
	for i, id := range ids {
		pos[id] = i
	}

	lg := &levelGraph{adj: make([][]wedge, n), self: make([]float64, n)}
	for _, e := range edges {
		s, okS := pos[e.Source]
		t, okT := pos[e.Target]
		if !okS || !okT || s == t {
			continue
		}
		lg.adj[s] = append(lg.adj[s], wedge{to: t, w: e.Weight})
		lg.adj[t] = append(lg.adj[t], wedge{to: s, w: e.Weight})
	}
	for i := range lg.adj {
		sort.SliceStable(lg.adj[i], func(a, b int) bool { return lg.adj[i][a].to < lg.adj[i][b].to })
	}

	membership := make([]int, n)
	for i := range membership {
		membership[i] = i
	}

	for level := 0; level < maxLevels; level++ {
		comm, moved, err := d.moveNodes(ctx, lg)
		if err != nil {
			return nil, err
		}
		if !moved {
			break
		}
		dense, count := renumber(comm)
		for i := range membership {
			membership[i] = dense[comm[membership[i]]]
		}
		if count == len(lg.adj) {
			break
		}
		lg = aggregate(lg, comm, dense, count)
	}

	return newPartition(ids, membership, edges, d.Resolution), nil
}

// moveNodes runs the local moving phase on one level and returns the
// community of each level node.
func (d *ModularityDetector) moveNodes(ctx context.Context, lg *levelGraph) ([]int, bool, error) {
	n := len(lg.adj)
	comm := make([]int, n)
	k := make([]float64, n)
	tot := make([]float64, n)
	var m2 float64
	for i := 0; i < n; i++ {
		comm[i] = i
		k[i] = lg.strength(i)
		tot[i] = k[i]
		m2 += k[i]
	}
	if m2 == 0 {
		return comm, false, nil
	}

	movedAny := false
	weights := make(map[int]float64)
	var order []int
	for iter := 0; iter < d.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, false, model.NewError(model.KindTimeout, "detect_communities", "", err)
		}
		moves := 0
		for i := 0; i < n; i++ {
			current := comm[i]
			clear(weights)
			order = order[:0]
			for _, e := range lg.adj[i] {
				c := comm[e.to]
				if _, ok := weights[c]; !ok {
					order = append(order, c)
				}
				weights[c] += e.w
			}

			tot[current] -= k[i]
			best := current
			bestGain := weights[current] - d.Resolution*tot[current]*k[i]/m2
			for _, c := range order {
				gain := weights[c] - d.Resolution*tot[c]*k[i]/m2
				if gain > bestGain {
					best, bestGain = c, gain
				}
			}
			tot[best] += k[i]
			if best != current {
				comm[i] = best
				moves++
			}
		}
		if moves == 0 {
			break
		}
		movedAny = true
	}
	return comm, movedAny, nil
}

// renumber maps community labels to 0..count-1 in order of first level node.
func renumber(comm []int) (map[int]int, int) {
	dense := make(map[int]int)
	for _, c := range comm {
		if _, ok := dense[c]; !ok {
			dense[c] = len(dense)
		}
	}
	return dense, len(dense)
}

func aggregate(lg *levelGraph, comm []int, dense map[int]int, count int) *levelGraph {
	next := &levelGraph{adj: make([][]wedge, count), self: make([]float64, count)}
	between := make([]map[int]float64, count)
	for i := range lg.adj {
		ci := dense[comm[i]]
		next.self[ci] += lg.self[i]
		for _, e := range lg.adj[i] {
			cj := dense[comm[e.to]]
			if ci == cj {
				// each internal edge is seen from both ends
				next.self[ci] += e.w / 2
				continue
			}
			if between[ci] == nil {
				between[ci] = make(map[int]float64)
			}
			between[ci][cj] += e.w
		}
	}
	for c, nbrs := range between {
		for to, w := range nbrs {
			next.adj[c] = append(next.adj[c], wedge{to: to, w: w})
		}
		sort.Slice(next.adj[c], func(a, b int) bool { return next.adj[c][a].to < next.adj[c][b].to })
	}
	return next
}
