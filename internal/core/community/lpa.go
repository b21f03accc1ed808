package community

import (
	"context"

	"github.com/agenthands/linkgraph/internal/core/model"
)

// LabelPropagationDetector implements community detection using Label Propagation Algorithm (LPA).
type LabelPropagationDetector struct {
	MaxIterations int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
	}
}

func (d *LabelPropagationDetector) Detect(ctx context.Context, ids []string, edges []model.Edge) (*Partition, error) {
	n := len(ids)
	if n == 0 {
		return &Partition{Membership: map[string]int{}}, nil
	}

	pos := make(map[string]int, n)
	for i, id := range ids {
		pos[id] = i
	}
	adj := make([][]wedge, n)
	for _, e := range edges {
		s, okS := pos[e.Source]
		t, okT := pos[e.Target]
		if !okS || !okT || s == t {
			continue
		}
		adj[s] = append(adj[s], wedge{to: t, w: e.Weight})
		adj[t] = append(adj[t], wedge{to: s, w: e.Weight})
	}

	// Each node starts with its own label.
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i
	}

	counts := make(map[int]float64)
	for iter := 0; iter < d.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, model.NewError(model.KindTimeout, "detect_communities", "", err)
		}
		changeCount := 0
		for u := 0; u < n; u++ {
			if len(adj[u]) == 0 {
				continue
			}
			clear(counts)
			maxCount := 0.0
			for _, e := range adj[u] {
				counts[labels[e.to]] += e.w
				if counts[labels[e.to]] > maxCount {
					maxCount = counts[labels[e.to]]
				}
			}

			// Keep the current label when it is among the best, otherwise
			// take the smallest best label.
			if counts[labels[u]] == maxCount {
				continue
			}
			best := -1
			for label, count := range counts {
				if count == maxCount && (best == -1 || label < best) {
					best = label
				}
			}
			labels[u] = best
			changeCount++
		}
		if changeCount == 0 {
			break
		}
	}

	return newPartition(ids, labels, edges, DefaultResolution), nil
}
