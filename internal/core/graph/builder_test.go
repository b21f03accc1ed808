package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/linkgraph/internal/core/index"
	"github.com/agenthands/linkgraph/internal/core/model"
)

func companyOnly(fuzzy bool) model.InferenceSettings {
	return model.InferenceSettings{
		CompanyWeight:       3,
		Threshold:           2,
		FuzzyMatching:       fuzzy,
		SimilarityThreshold: 85,
	}
}

func build(t *testing.T, contacts []model.Contact, settings model.InferenceSettings) *Graph {
	t.Helper()
	g, err := NewBuilder(index.DefaultOptions(), nil).Build(context.Background(), contacts, settings)
	require.NoError(t, err)
	return g
}

func TestBuildCompanyScenario(t *testing.T) {
	contacts := []model.Contact{
		{ID: "1", Company: "Acme"},
		{ID: "2", Company: "Acme"},
		{ID: "3", Company: "Beta"},
	}

	g := build(t, contacts, companyOnly(false))

	require.Equal(t, 1, g.EdgeCount())
	e := g.Edges()[0]
	assert.Equal(t, "1", e.Source)
	assert.Equal(t, "2", e.Target)
	assert.Equal(t, 3.0, e.Weight)
	assert.Equal(t, []string{model.AttrCompany}, e.Attributes)
	assert.Equal(t, 0, g.Degree("3"))
	assert.NotEmpty(t, g.ID)
	assert.NoError(t, g.Validate())
}

func TestBuildFuzzyCompanies(t *testing.T) {
	contacts := []model.Contact{
		{ID: "1", Company: "Acme Inc"},
		{ID: "2", Company: "Acme Incorporated"},
		{ID: "3", Company: "Zeta"},
	}

	g := build(t, contacts, companyOnly(true))

	require.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, []string{"2"}, g.Neighbors("1"))
	assert.Empty(t, g.Neighbors("3"))
}

func TestBuildExhaustiveBoundBothSides(t *testing.T) {
	contacts := []model.Contact{
		{ID: "1", Company: "Microsoft"},
		{ID: "2", Company: "Nicrosoft"},
	}
	settings := companyOnly(true)

	within, err := NewBuilder(index.Options{ExhaustiveFuzzyLimit: 2}, nil).Build(context.Background(), contacts, settings)
	require.NoError(t, err)
	assert.Equal(t, 1, within.EdgeCount())
	assert.Equal(t, model.MatchFuzzy, within.Edges()[0].Matches[0].Method)

	beyond, err := NewBuilder(index.Options{ExhaustiveFuzzyLimit: 1}, nil).Build(context.Background(), contacts, settings)
	require.NoError(t, err)
	assert.Equal(t, 0, beyond.EdgeCount())
}

func TestBuildThresholdSumsWeights(t *testing.T) {
	settings := model.InferenceSettings{LocationWeight: 1, PositionWeight: 1, Threshold: 2, SimilarityThreshold: 85}
	contacts := []model.Contact{
		{ID: "a", Location: "Berlin", Position: "Engineer"},
		{ID: "b", Location: "Berlin", Position: "Engineer"},
		{ID: "c", Location: "Berlin", Position: "Designer"},
	}

	g := build(t, contacts, settings)

	require.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 2.0, g.Edges()[0].Weight)
	assert.Equal(t, []string{model.AttrLocation, model.AttrPosition}, g.Edges()[0].Attributes)
}

func TestBuildAllAttributesEqual(t *testing.T) {
	contacts := []model.Contact{
		{ID: "a", Company: "Acme", School: "MIT", Location: "Berlin", Position: "Engineer"},
		{ID: "b", Company: "Acme", School: "MIT", Location: "Berlin", Position: "Engineer"},
	}

	tests := []struct {
		name      string
		threshold float64
		fuzzy     bool
		wantEdge  bool
	}{
		{"at sum of weights", 7, true, true},
		{"at sum of weights exact only", 7, false, true},
		{"above sum of weights", 7.5, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := model.DefaultInferenceSettings()
			settings.Threshold = tt.threshold
			settings.FuzzyMatching = tt.fuzzy

			g := build(t, contacts, settings)
			if !tt.wantEdge {
				assert.Equal(t, 0, g.EdgeCount())
				return
			}
			require.Equal(t, 1, g.EdgeCount())
			edge := g.Edges()[0]
			assert.Equal(t, 7.0, edge.Weight)
			assert.Equal(t, []string{model.AttrCompany, model.AttrSchool, model.AttrLocation, model.AttrPosition}, edge.Attributes)
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	var contacts []model.Contact
	companies := []string{"Acme", "Globex", "Initech", "Acme Corp", "Globex Inc"}
	for i := 0; i < 40; i++ {
		contacts = append(contacts, model.Contact{
			ID:       fmt.Sprintf("c%02d", i),
			Company:  companies[i%len(companies)],
			Location: []string{"Berlin", "Paris"}[i%2],
			Position: []string{"Engineer", "Senior Engineer", "Recruiter"}[i%3],
		})
	}
	settings := model.DefaultInferenceSettings()

	first := build(t, contacts, settings)
	for i := 0; i < 3; i++ {
		again := build(t, contacts, settings)
		assert.Equal(t, first.Edges(), again.Edges())
	}

	for _, e := range first.Edges() {
		assert.NotEqual(t, e.Source, e.Target)
		assert.Less(t, first.Position(e.Source), first.Position(e.Target))
	}
	degreeSum := 0
	for _, id := range first.IDs() {
		degreeSum += first.Degree(id)
	}
	assert.Equal(t, 2*first.EdgeCount(), degreeSum)
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		contacts []model.Contact
		settings model.InferenceSettings
	}{
		{name: "no contacts", settings: model.DefaultInferenceSettings()},
		{name: "missing id", contacts: []model.Contact{{Company: "Acme"}}, settings: model.DefaultInferenceSettings()},
		{name: "duplicate id", contacts: []model.Contact{{ID: "1", Company: "A"}, {ID: "1", Company: "B"}}, settings: model.DefaultInferenceSettings()},
		{name: "no attributes", contacts: []model.Contact{{ID: "1", Name: "Ann"}}, settings: model.DefaultInferenceSettings()},
		{name: "zero weights", contacts: []model.Contact{{ID: "1", Company: "A"}}, settings: model.InferenceSettings{Threshold: 1}},
		{name: "bad threshold", contacts: []model.Contact{{ID: "1", Company: "A"}}, settings: model.InferenceSettings{CompanyWeight: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewBuilder(index.DefaultOptions(), nil).Build(context.Background(), tt.contacts, tt.settings)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuilder(index.DefaultOptions(), nil).Build(ctx, []model.Contact{{ID: "1", Company: "A"}, {ID: "2", Company: "A"}}, companyOnly(false))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateDetectsCorruption(t *testing.T) {
	g := build(t, []model.Contact{{ID: "1", Company: "A"}, {ID: "2", Company: "A"}}, companyOnly(false))

	g.edges = append(g.edges, model.Edge{Source: "2", Target: "1", Weight: 3})
	err := g.Validate()
	assert.ErrorIs(t, err, model.ErrInternalInconsistency)
}
