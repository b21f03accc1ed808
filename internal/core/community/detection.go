package community

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/linkgraph/internal/core/model"
)

// Detector partitions a graph's nodes into communities.
type Detector interface {
	Detect(ctx context.Context, ids []string, edges []model.Edge) (*Partition, error)
}

// Partition covers every node exactly once. Community ids are dense, ordered
// by the position of each community's first member, and only meaningful
// within one computation.
type Partition struct {
	Communities [][]string
	Membership  map[string]int
	Modularity  float64
}

// NewDetector returns the detector named by algorithm: "modularity" (default)
// or "label_propagation".
func NewDetector(algorithm string, resolution float64, maxIterations int) (Detector, error) {
	switch strings.ToLower(algorithm) {
	case "", "modularity", "louvain":
		d := NewModularityDetector()
		if resolution > 0 {
			d.Resolution = resolution
		}
		if maxIterations > 0 {
			d.MaxIterations = maxIterations
		}
		return d, nil
	case "label_propagation", "lpa":
		d := NewLabelPropagationDetector()
		if maxIterations > 0 {
			d.MaxIterations = maxIterations
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported community algorithm: %s", algorithm)
	}
}

// newPartition relabels raw per-node labels densely in order of first appearance.
func newPartition(ids []string, labels []int, edges []model.Edge, resolution float64) *Partition {
	p := &Partition{Membership: make(map[string]int, len(ids))}
	dense := make(map[int]int)
	for i, id := range ids {
		c, ok := dense[labels[i]]
		if !ok {
			c = len(p.Communities)
			dense[labels[i]] = c
			p.Communities = append(p.Communities, nil)
		}
		p.Communities[c] = append(p.Communities[c], id)
		p.Membership[id] = c
	}
	p.Modularity = Modularity(p.Membership, edges, resolution)
	return p
}

// Modularity computes the weighted modularity Q of a membership assignment:
// Q = sum_c [ L_c/m - resolution * (D_c / 2m)^2 ]
// where m is the total edge weight, L_c the weight inside c and D_c the summed
// strength of c's nodes. A graph without edge weight has Q = 0.
func Modularity(membership map[string]int, edges []model.Edge, resolution float64) float64 {
	var m float64
	internal := make(map[int]float64)
	strength := make(map[int]float64)
	for _, e := range edges {
		cs, okS := membership[e.Source]
		ct, okT := membership[e.Target]
		if !okS || !okT {
			continue
		}
		m += e.Weight
		strength[cs] += e.Weight
		strength[ct] += e.Weight
		if cs == ct {
			internal[cs] += e.Weight
		}
	}
	if m == 0 {
		return 0
	}

	communities := 0
	for _, c := range membership {
		if c+1 > communities {
			communities = c + 1
		}
	}
	var q float64
	for c := 0; c < communities; c++ {
		d := strength[c] / (2 * m)
		q += internal[c]/m - resolution*d*d
	}
	return q
}
