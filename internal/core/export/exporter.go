package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agenthands/linkgraph/internal/core/graph"
	"github.com/agenthands/linkgraph/internal/core/model"
	"github.com/agenthands/linkgraph/internal/core/summary"
	"github.com/agenthands/linkgraph/internal/driver"
	"github.com/agenthands/linkgraph/internal/logger"
)

// DefaultBatchSize is the number of rows sent per UNWIND statement.
const DefaultBatchSize = 500

// Stats summarizes one export.
type Stats struct {
	GraphID     string        `json:"graph_id"`
	Contacts    int           `json:"contacts"`
	Connections int           `json:"connections"`
	Communities int           `json:"communities"`
	Batches     int           `json:"batches"`
	Duration    time.Duration `json:"duration"`
}

// Exporter mirrors graphs into Memgraph as :Contact nodes joined by
// :CONNECTED relationships. Re-exporting a graph replaces its previous copy.
type Exporter struct {
	Driver    driver.GraphDriver
	BatchSize int
	log       *logger.Logger

	indexMu sync.Mutex
	indexed bool
}

func NewExporter(d driver.GraphDriver, batchSize int, log *logger.Logger) *Exporter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Exporter{Driver: d, BatchSize: batchSize, log: logger.OrNop(log)}
}

// Export writes g and, when snap is non-nil, its per-node metrics and
// communities.
func (e *Exporter) Export(ctx context.Context, g *graph.Graph, snap *model.MetricsSnapshot) (*Stats, error) {
	start := time.Now()
	e.ensureIndices(ctx)

	stats := &Stats{GraphID: g.ID}
	if err := e.Remove(ctx, g.ID); err != nil {
		return nil, err
	}

	rows := contactRows(g, snap)
	for _, batch := range chunk(rows, e.BatchSize) {
		if err := e.run(ctx, driver.SaveContactsQuery, g.ID, "contacts", batch); err != nil {
			return nil, err
		}
		stats.Batches++
	}
	stats.Contacts = len(rows)

	edges := edgeRows(g)
	for _, batch := range chunk(edges, e.BatchSize) {
		if err := e.run(ctx, driver.SaveConnectionsQuery, g.ID, "edges", batch); err != nil {
			return nil, err
		}
		stats.Batches++
	}
	stats.Connections = len(edges)

	if snap != nil {
		communities := communityRows(snap)
		for _, batch := range chunk(communities, e.BatchSize) {
			if err := e.run(ctx, driver.SaveCommunitiesQuery, g.ID, "communities", batch); err != nil {
				return nil, err
			}
			stats.Batches++
		}
		stats.Communities = len(communities)
	}

	stats.Duration = time.Since(start)
	e.log.Info("graph exported",
		"graph_id", g.ID,
		"contacts", stats.Contacts,
		"connections", stats.Connections,
		"batches", stats.Batches,
		"duration", stats.Duration,
	)
	return stats, nil
}

// ensureIndices builds the indices until one attempt succeeds.
func (e *Exporter) ensureIndices(ctx context.Context) {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()
	if e.indexed {
		return
	}
	if err := e.Driver.BuildIndices(ctx); err != nil {
		e.log.Warn("failed to build indices, retrying on next export", "error", err)
		return
	}
	e.indexed = true
}

// Remove deletes every exported node of graphID.
func (e *Exporter) Remove(ctx context.Context, graphID string) error {
	if _, err := e.Driver.ExecuteQuery(ctx, driver.DeleteGraphQuery, map[string]any{"graph_id": graphID}); err != nil {
		return fmt.Errorf("failed to clear exported graph %s: %w", graphID, err)
	}
	return nil
}

func (e *Exporter) run(ctx context.Context, query, graphID, key string, batch []map[string]any) error {
	params := map[string]any{
		"graph_id": graphID,
		key:        batch,
	}
	if _, err := e.Driver.ExecuteQuery(ctx, query, params); err != nil {
		return fmt.Errorf("failed to export %s: %w", key, err)
	}
	return nil
}

func contactRows(g *graph.Graph, snap *model.MetricsSnapshot) []map[string]any {
	nodes := g.Nodes()
	rows := make([]map[string]any, 0, len(nodes))
	for _, c := range nodes {
		row := map[string]any{
			"id":          c.ID,
			"label":       c.Label,
			"company":     c.Company,
			"position":    c.Position,
			"location":    c.Location,
			"school":      c.School,
			"degree":      g.Degree(c.ID),
			"betweenness": 0.0,
			"community":   -1,
		}
		if snap != nil {
			if nm, ok := snap.Nodes[c.ID]; ok {
				row["betweenness"] = nm.Betweenness
				row["community"] = nm.Community
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func edgeRows(g *graph.Graph) []map[string]any {
	edges := g.Edges()
	rows := make([]map[string]any, 0, len(edges))
	for _, edge := range edges {
		rows = append(rows, map[string]any{
			"source":     edge.Source,
			"target":     edge.Target,
			"weight":     edge.Weight,
			"attributes": edge.Attributes,
		})
	}
	return rows
}

func communityRows(snap *model.MetricsSnapshot) []map[string]any {
	rows := make([]map[string]any, 0, len(snap.Communities))
	for _, c := range snap.Communities {
		name := c.Name
		if name == "" {
			name = summary.FallbackName(c)
		}
		rows = append(rows, map[string]any{
			"id":      c.ID,
			"name":    name,
			"size":    c.Size,
			"members": c.Members,
		})
	}
	return rows
}

func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for size < len(items) {
		items, out = items[size:], append(out, items[:size:size])
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
