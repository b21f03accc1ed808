package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/linkgraph/internal/core/index"
	"github.com/agenthands/linkgraph/internal/core/model"
	"github.com/agenthands/linkgraph/internal/core/similarity"
	"github.com/agenthands/linkgraph/internal/logger"
)

// Builder turns contacts into a Graph using the attribute index for
// candidate generation and the scorer for edge weights.
type Builder struct {
	Index index.Options
	log   *logger.Logger
}

func NewBuilder(opts index.Options, log *logger.Logger) *Builder {
	return &Builder{Index: opts, log: logger.OrNop(log)}
}

// Build validates the input and constructs the graph. Any error aborts the
// whole build; no partial graph is returned.
func (b *Builder) Build(ctx context.Context, contacts []model.Contact, settings model.InferenceSettings) (*Graph, error) {
	start := time.Now()
	if err := validateContacts(contacts); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	g := newGraph(uuid.New().String(), contacts, settings)

	profiles := make([]similarity.Profile, len(contacts))
	for i, c := range contacts {
		profiles[i] = similarity.NewProfile(c)
	}

	ix := index.New(profiles, settings, b.Index)
	candidates := ix.Candidates()
	scorer := similarity.NewScorer(settings)

	for i, p := range candidates {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("build cancelled: %w", err)
			}
		}
		res := scorer.Score(&profiles[p.A], &profiles[p.B])
		if len(res.Matches) == 0 || res.Score < settings.Threshold {
			continue
		}
		g.addEdge(model.Edge{
			Source:     contacts[p.A].ID,
			Target:     contacts[p.B].ID,
			Weight:     res.Score,
			Attributes: res.Attributes(),
			Matches:    res.Matches,
		})
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	b.log.Info("graph built",
		"graph_id", g.ID,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"candidates", len(candidates),
		"exhaustive_fuzzy", ix.Exhaustive(),
		"duration", time.Since(start),
	)
	return g, nil
}

func validateContacts(contacts []model.Contact) error {
	if len(contacts) == 0 {
		return model.NewError(model.KindInvalidInput, "build_graph", "", fmt.Errorf("no contacts"))
	}
	seen := make(map[string]bool, len(contacts))
	usable := false
	for i, c := range contacts {
		if c.ID == "" {
			return model.NewError(model.KindInvalidInput, "build_graph", "", fmt.Errorf("contact %d has no id", i))
		}
		if seen[c.ID] {
			return model.NewError(model.KindInvalidInput, "build_graph", c.ID, fmt.Errorf("duplicate contact id"))
		}
		seen[c.ID] = true
		usable = usable || c.HasAttributes()
	}
	if !usable {
		return model.NewError(model.KindInvalidInput, "build_graph", "",
			fmt.Errorf("no contact has company, position, location or school"))
	}
	return nil
}
