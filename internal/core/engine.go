package core

import (
	"context"
	"errors"
	"time"

	"github.com/agenthands/linkgraph/internal/core/export"
	"github.com/agenthands/linkgraph/internal/core/extraction"
	"github.com/agenthands/linkgraph/internal/core/graph"
	"github.com/agenthands/linkgraph/internal/core/metrics"
	"github.com/agenthands/linkgraph/internal/core/model"
	"github.com/agenthands/linkgraph/internal/core/similarity"
	"github.com/agenthands/linkgraph/internal/core/store"
	"github.com/agenthands/linkgraph/internal/core/summary"
	"github.com/agenthands/linkgraph/internal/logger"
	"github.com/agenthands/linkgraph/internal/telemetry"
)

// Engine ties together building, storing, analysing and exporting graphs.
// Every read operation takes a graph id; an empty id means the current graph.
type Engine struct {
	Builder    *graph.Builder
	Analyzer   *metrics.Engine
	Store      *store.Store
	Exporter   *export.Exporter
	Summarizer *summary.Summarizer
	Translator extraction.Translator
	Settings   model.InferenceSettings
	log        *logger.Logger
}

// IngestResult reports a published graph.
type IngestResult struct {
	GraphID  string                  `json:"graph_id"`
	Nodes    int                     `json:"nodes"`
	Edges    int                     `json:"edges"`
	Settings model.InferenceSettings `json:"settings"`
	Export   *export.Stats           `json:"export,omitempty"`
}

// QueryResult is the answer to a natural-language query.
type QueryResult struct {
	Filter      model.FilterCriteria `json:"filter"`
	Explanation string               `json:"explanation"`
	Subgraph    *model.Subgraph      `json:"subgraph"`
}

// NodeDetail is one contact with its metrics and incident edges.
type NodeDetail struct {
	Node  model.NodeView `json:"node"`
	Edges []model.Edge   `json:"connections"`
}

func NewEngine(builder *graph.Builder, analyzer *metrics.Engine, st *store.Store, log *logger.Logger) *Engine {
	log = logger.OrNop(log)
	return &Engine{
		Builder:    builder,
		Analyzer:   analyzer,
		Store:      st,
		Summarizer: summary.NewSummarizer(nil, "", log),
		Translator: extraction.NewRuleTranslator(),
		Settings:   model.DefaultInferenceSettings(),
		log:        log,
	}
}

// Ingest builds a graph from contacts and makes it current. Metrics are
// computed eagerly and the graph is exported when an exporter is set; neither
// failure fails the ingest.
func (e *Engine) Ingest(ctx context.Context, contacts []model.Contact, settings model.InferenceSettings) (*IngestResult, error) {
	start := time.Now()
	g, err := e.Builder.Build(ctx, contacts, settings)
	if err != nil {
		telemetry.ObserveBuild(time.Since(start), 0, 0, err)
		return nil, err
	}
	telemetry.ObserveBuild(time.Since(start), g.NodeCount(), g.EdgeCount(), nil)

	snap := store.NewSnapshot(g)
	e.Store.Publish(snap)
	result := &IngestResult{GraphID: g.ID, Nodes: g.NodeCount(), Edges: g.EdgeCount(), Settings: settings}

	m, err := snap.Metrics(ctx, e.Analyzer.Compute)
	if err != nil {
		e.log.Warn("eager metrics failed", "graph_id", g.ID, "error", err)
	}

	if e.Exporter != nil {
		stats, err := e.Exporter.Export(ctx, g, m)
		if err != nil {
			e.log.Error("export failed", "graph_id", g.ID, "error", err)
		} else {
			result.Export = stats
		}
	}
	return result, nil
}

func (e *Engine) snapshot(graphID string) (*store.Snapshot, error) {
	if graphID == "" {
		return e.Store.Current()
	}
	return e.Store.Get(graphID)
}

// Graph returns up to limit nodes in ingest order with the edges among them.
func (e *Engine) Graph(graphID string, limit int) (*model.Subgraph, error) {
	snap, err := e.snapshot(graphID)
	if err != nil {
		return nil, err
	}
	return snap.Graph.Limit(limit), nil
}

func (e *Engine) Metrics(ctx context.Context, graphID string) (m *model.MetricsSnapshot, err error) {
	defer func(start time.Time) { telemetry.ObserveOperation("metrics", start, err) }(time.Now())
	snap, err := e.snapshot(graphID)
	if err != nil {
		return nil, err
	}
	return snap.Metrics(ctx, e.Analyzer.Compute)
}

func (e *Engine) ShortestPath(ctx context.Context, graphID, sourceID, targetID string) (p *model.PathResult, err error) {
	defer func(start time.Time) { telemetry.ObserveOperation("shortest_path", start, err) }(time.Now())
	snap, err := e.snapshot(graphID)
	if err != nil {
		return nil, err
	}
	return snap.Graph.ShortestPath(ctx, sourceID, targetID)
}

func (e *Engine) Subgraph(ctx context.Context, graphID, nodeID string, depth int) (s *model.Subgraph, err error) {
	defer func(start time.Time) { telemetry.ObserveOperation("subgraph", start, err) }(time.Now())
	snap, err := e.snapshot(graphID)
	if err != nil {
		return nil, err
	}
	return snap.Graph.Subgraph(ctx, nodeID, depth)
}

func (e *Engine) Filter(ctx context.Context, graphID string, criteria model.FilterCriteria) (s *model.Subgraph, err error) {
	defer func(start time.Time) { telemetry.ObserveOperation("filter", start, err) }(time.Now())
	snap, err := e.snapshot(graphID)
	if err != nil {
		return nil, err
	}
	return snap.Graph.Filter(criteria)
}

// Query translates text into a filter and applies it.
func (e *Engine) Query(ctx context.Context, graphID, text string) (q *QueryResult, err error) {
	defer func(start time.Time) { telemetry.ObserveOperation("query", start, err) }(time.Now())
	snap, err := e.snapshot(graphID)
	if err != nil {
		return nil, err
	}
	criteria, explanation, err := e.Translator.Translate(ctx, text, vocabulary(snap.Graph))
	if err != nil {
		return nil, err
	}
	sub, err := snap.Graph.Filter(criteria)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Filter: criteria, Explanation: explanation, Subgraph: sub}, nil
}

// Node returns a contact with its incident edges. Metrics are attached when
// they can be computed.
func (e *Engine) Node(ctx context.Context, graphID, nodeID string) (*NodeDetail, error) {
	snap, err := e.snapshot(graphID)
	if err != nil {
		return nil, err
	}
	contact, ok := snap.Graph.Node(nodeID)
	if !ok {
		return nil, model.NewError(model.KindNotFound, "get_node", nodeID, nil)
	}

	view := model.NodeView{Contact: contact, Degree: snap.Graph.Degree(nodeID), Community: -1}
	m, err := snap.Metrics(ctx, e.Analyzer.Compute)
	switch {
	case err == nil:
		nm := m.Nodes[nodeID]
		view.Betweenness = nm.Betweenness
		view.Community = nm.Community
	case errors.Is(err, model.ErrTimeout):
		e.log.Warn("node metrics unavailable", "node", nodeID, "error", err)
	default:
		return nil, err
	}
	return &NodeDetail{Node: view, Edges: snap.Graph.IncidentEdges(nodeID)}, nil
}

// Communities lists the detected communities. With describe set they are
// named by the summarizer's LLM, otherwise from their dominant attributes.
func (e *Engine) Communities(ctx context.Context, graphID string, describe bool) (out []model.Community, err error) {
	defer func(start time.Time) { telemetry.ObserveOperation("communities", start, err) }(time.Now())
	snap, err := e.snapshot(graphID)
	if err != nil {
		return nil, err
	}
	m, err := snap.Metrics(ctx, e.Analyzer.Compute)
	if err != nil {
		return nil, err
	}
	if describe {
		return e.Summarizer.NameAll(ctx, m.Communities, snap.Graph.Node), nil
	}
	out = make([]model.Community, len(m.Communities))
	for i, c := range m.Communities {
		c.Name = summary.FallbackName(c)
		out[i] = c
	}
	return out, nil
}

// List returns stored graph ids, oldest first.
func (e *Engine) List() []string {
	return e.Store.List()
}

// Delete drops a stored graph and its exported copy.
func (e *Engine) Delete(ctx context.Context, graphID string) error {
	if err := e.Store.Delete(graphID); err != nil {
		return err
	}
	if e.Exporter != nil {
		if err := e.Exporter.Remove(ctx, graphID); err != nil {
			e.log.Warn("failed to remove exported graph", "graph_id", graphID, "error", err)
		}
	}
	return nil
}

// vocabulary collects distinct companies and position tokens in graph order.
func vocabulary(g *graph.Graph) extraction.Vocabulary {
	var v extraction.Vocabulary
	companies := map[string]bool{}
	positions := map[string]bool{}
	for _, c := range g.Nodes() {
		if key := similarity.NormalizeCompany(c.Company); key != "" && !companies[key] {
			companies[key] = true
			v.Companies = append(v.Companies, c.Company)
		}
		for _, tok := range similarity.PositionTokens(c.Position) {
			if !positions[tok] {
				positions[tok] = true
				v.Positions = append(v.Positions, tok)
			}
		}
	}
	return v
}
