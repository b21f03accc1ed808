package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/linkgraph/internal/core/community"
	"github.com/agenthands/linkgraph/internal/core/graph"
	"github.com/agenthands/linkgraph/internal/core/model"
	"github.com/agenthands/linkgraph/internal/core/similarity"
	"github.com/agenthands/linkgraph/internal/logger"
)

// DefaultTimeout bounds one metrics computation.
const DefaultTimeout = 30 * time.Second

// Engine computes metrics snapshots. It holds no per-graph state and may be
// shared by concurrent requests.
type Engine struct {
	Detector community.Detector
	Timeout  time.Duration
	log      *logger.Logger
}

func NewEngine(detector community.Detector, timeout time.Duration, log *logger.Logger) *Engine {
	if detector == nil {
		detector = community.NewModularityDetector()
	}
	return &Engine{Detector: detector, Timeout: timeout, log: logger.OrNop(log)}
}

// Compute builds a fresh snapshot of g. Betweenness and community detection
// run concurrently; exceeding the timeout fails with a Timeout error.
func (e *Engine) Compute(ctx context.Context, g *graph.Graph) (*model.MetricsSnapshot, error) {
	start := time.Now()
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	ids := g.IDs()
	nodes := g.Nodes()
	edges := g.Edges()
	n := len(ids)

	adj := make([][]int, n)
	degrees := make([]int, n)
	degreeSum := 0
	for i, id := range ids {
		for _, nb := range g.Neighbors(id) {
			adj[i] = append(adj[i], g.Position(nb))
		}
		degrees[i] = len(adj[i])
		degreeSum += degrees[i]
	}
	if degreeSum != 2*len(edges) {
		return nil, model.NewError(model.KindInternalInconsistency, "compute_metrics", g.ID,
			fmt.Errorf("degree sum %d does not match %d edges", degreeSum, len(edges)))
	}

	var (
		betweenness []float64
		partition   *community.Partition
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		betweenness, err = Betweenness(egCtx, adj)
		return err
	})
	eg.Go(func() error {
		var err error
		partition, err = e.Detector.Detect(egCtx, ids, edges)
		return err
	})
	if err := eg.Wait(); err != nil {
		if model.KindOf(err) == "" && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
			err = model.NewError(model.KindTimeout, "compute_metrics", g.ID, err)
		}
		return nil, err
	}

	snap := &model.MetricsSnapshot{
		GraphID:        g.ID,
		ComputedAt:     time.Now().UTC(),
		TotalNodes:     n,
		TotalEdges:     len(edges),
		Density:        Density(n, len(edges)),
		CommunityCount: len(partition.Communities),
		Modularity:     partition.Modularity,
		Nodes:          make(map[string]model.NodeMetrics, n),
	}
	if n > 0 {
		snap.AvgDegree = float64(degreeSum) / float64(n)
	}
	for i, id := range ids {
		nm := model.NodeMetrics{
			ID:          id,
			Degree:      degrees[i],
			Betweenness: betweenness[i],
			Community:   partition.Membership[id],
		}
		if n > 1 {
			nm.DegreeCentrality = float64(degrees[i]) / float64(n-1)
		}
		snap.Nodes[id] = nm
	}

	snap.Communities = describeCommunities(g, partition)
	snap.TopCompanies = topCompanies(nodes)
	snap.TopPositions = topPositions(nodes)
	snap.TopConnectors = rankNodes(nodes, func(i int) float64 { return float64(degrees[i]) })
	snap.CentralityLeaders = rankNodes(nodes, func(i int) float64 { return betweenness[i] })

	e.log.Info("metrics computed",
		"graph_id", g.ID,
		"nodes", n,
		"edges", len(edges),
		"communities", snap.CommunityCount,
		"duration", time.Since(start),
	)
	return snap, nil
}

// Density is 2E / (N(N-1)) for N >= 2 and 0 otherwise.
func Density(nodes, edges int) float64 {
	if nodes < 2 {
		return 0
	}
	return 2 * float64(edges) / (float64(nodes) * float64(nodes-1))
}

func describeCommunities(g *graph.Graph, p *community.Partition) []model.Community {
	out := make([]model.Community, len(p.Communities))
	for c, members := range p.Communities {
		companies, schools, locations := newCounter(), newCounter(), newCounter()
		for _, id := range members {
			contact, _ := g.Node(id)
			companies.add(similarity.NormalizeCompany(contact.Company), contact.Company)
			schools.add(similarity.Normalize(contact.School), contact.School)
			locations.add(similarity.Normalize(contact.Location), contact.Location)
		}
		out[c] = model.Community{
			ID:               c,
			Size:             len(members),
			Members:          members,
			DominantCompany:  companies.top(),
			DominantSchool:   schools.top(),
			DominantLocation: locations.top(),
		}
	}
	for _, edge := range g.Edges() {
		cs, ct := p.Membership[edge.Source], p.Membership[edge.Target]
		if cs == ct {
			out[cs].InternalEdges++
		}
	}
	return out
}
