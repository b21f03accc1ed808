package app

import (
	"context"
	"fmt"

	"github.com/agenthands/linkgraph/internal/config"
	"github.com/agenthands/linkgraph/internal/core"
	"github.com/agenthands/linkgraph/internal/core/community"
	"github.com/agenthands/linkgraph/internal/core/export"
	"github.com/agenthands/linkgraph/internal/core/extraction"
	"github.com/agenthands/linkgraph/internal/core/graph"
	"github.com/agenthands/linkgraph/internal/core/index"
	"github.com/agenthands/linkgraph/internal/core/metrics"
	"github.com/agenthands/linkgraph/internal/core/store"
	"github.com/agenthands/linkgraph/internal/core/summary"
	"github.com/agenthands/linkgraph/internal/driver"
	"github.com/agenthands/linkgraph/internal/llm"
	"github.com/agenthands/linkgraph/internal/logger"
)

// App owns the engine and the external connections behind it.
type App struct {
	Engine *core.Engine
	Config *config.Config
	driver driver.GraphDriver
	log    *logger.Logger
}

// New wires an engine from cfg. Memgraph is only dialed when enabled and an
// LLM client is only built for a provider other than "none".
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	log = logger.OrNop(log)

	detector, err := community.NewDetector(cfg.Metrics.CommunityAlgorithm, cfg.Metrics.Resolution, cfg.Metrics.MaxIterations)
	if err != nil {
		return nil, err
	}

	builder := graph.NewBuilder(index.Options{ExhaustiveFuzzyLimit: cfg.Inference.ExhaustiveFuzzyLimit}, log)
	analyzer := metrics.NewEngine(detector, cfg.Metrics.Timeout(), log)
	engine := core.NewEngine(builder, analyzer, store.New(cfg.Server.RetainGraphs), log)
	engine.Settings = cfg.Inference.InferenceSettings

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	if llmClient != nil {
		engine.Translator = extraction.NewExtractor(llmClient, cfg.Prompts.Filter, extraction.NewRuleTranslator(), log)
		engine.Summarizer = summary.NewSummarizer(llmClient, cfg.Prompts.CommunityName, log)
		log.Info("llm enabled", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	}

	a := &App{Engine: engine, Config: cfg, log: log}
	if cfg.Memgraph.Enabled {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, log)
		if err != nil {
			return nil, err
		}
		a.driver = d
		engine.Exporter = export.NewExporter(d, cfg.Memgraph.BatchSize, log)
	}
	return a, nil
}

// Close releases the Memgraph connection if one was opened.
func (a *App) Close(ctx context.Context) {
	if a.driver == nil {
		return
	}
	if err := a.driver.Close(ctx); err != nil {
		a.log.Warn("failed to close memgraph driver", "error", err)
	}
}
