package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/linkgraph/internal/core/model"
)

type MockLLMClient struct {
	Response string
	Err      error
	Prompt   string
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

var vocab = Vocabulary{
	Companies: []string{"Acme Corp", "Globex"},
	Positions: []string{"engineer", "recruiter"},
}

func TestRuleTranslator(t *testing.T) {
	r := NewRuleTranslator()
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  model.FilterCriteria
	}{
		{
			name:  "known company and location",
			query: "Who works at Globex in Berlin?",
			want:  model.FilterCriteria{Companies: []string{"Globex"}, Location: "Berlin"},
		},
		{
			name:  "position phrase",
			query: "show me senior engineers",
			want:  model.FilterCriteria{Positions: []string{"senior engineer"}},
		},
		{
			name:  "explicit connection count",
			query: "people with at least 4 connections",
			want:  model.FilterCriteria{MinDegree: 4},
		},
		{
			name:  "ranking word",
			query: "top recruiters",
			want:  model.FilterCriteria{Positions: []string{"recruiter"}, MinDegree: 3},
		},
		{
			name:  "highly connected",
			query: "highly connected people",
			want:  model.FilterCriteria{MinDegree: 5},
		},
		{
			name:  "since year",
			query: "contacts since 2021",
			want:  model.FilterCriteria{DateFrom: "2021-01-01"},
		},
		{
			name:  "single year",
			query: "contacts added in 2020",
			want:  model.FilterCriteria{DateFrom: "2020-01-01", DateTo: "2020-12-31"},
		},
		{
			name:  "ranking word before company",
			query: "Top Google engineers",
			want:  model.FilterCriteria{Companies: []string{"Google"}, Positions: []string{"engineer"}, MinDegree: 3},
		},
		{
			name:  "verb before company",
			query: "Show Initech folks",
			want:  model.FilterCriteria{Companies: []string{"Initech"}},
		},
		{
			name:  "nothing recognized",
			query: "hello there",
			want:  model.FilterCriteria{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, explain, err := r.Translate(ctx, tt.query, vocab)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, explain)
		})
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		text, word string
		want       bool
	}{
		{"top recruiters here", "recruiter", true},
		{"all the boxes", "box", true},
		{"engineering leads", "engineer", false},
		{"re-engineer", "engineer", true},
		{"at&t staff", "at&t", true},
		{"metadata", "meta", false},
		{"meta meta", "meta", true},
		{"anything", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsWord(tt.text, tt.word), "%q in %q", tt.word, tt.text)
	}
}

func TestRuleTranslatorExplain(t *testing.T) {
	_, explain, err := NewRuleTranslator().Translate(context.Background(), "hello", vocab)
	require.NoError(t, err)
	assert.Equal(t, "No specific filters detected. Showing full network.", explain)

	_, explain, err = NewRuleTranslator().Translate(context.Background(), "engineers at Acme Corp", vocab)
	require.NoError(t, err)
	assert.Contains(t, explain, "companies: Acme Corp")
}

func TestTranslateRejectsEmptyQuery(t *testing.T) {
	_, _, err := NewRuleTranslator().Translate(context.Background(), "  ", vocab)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, _, err = NewExtractor(&MockLLMClient{}, "%s %s %s", NewRuleTranslator(), nil).Translate(context.Background(), "", vocab)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestExtractorUsesLLM(t *testing.T) {
	mockLLM := &MockLLMClient{Response: `Sure! {"filter": {"companies": ["Acme Corp"], "min_degree": 2}, "explain": "Acme people"}`}
	e := NewExtractor(mockLLM, "companies=%s positions=%s question=%s", NewRuleTranslator(), nil)

	got, explain, err := e.Translate(context.Background(), "acme folks", vocab)

	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Corp"}, got.Companies)
	assert.Equal(t, 2, got.MinDegree)
	assert.Equal(t, "Acme people", explain)
	assert.Equal(t, "companies=Acme Corp, Globex positions=engineer, recruiter question=acme folks", mockLLM.Prompt)
}

func TestExtractorDropsBadDates(t *testing.T) {
	mockLLM := &MockLLMClient{Response: `{"filter": {"location": "Paris", "date_from": "yesterday"}}`}
	e := NewExtractor(mockLLM, "%s %s %s", nil, nil)

	got, explain, err := e.Translate(context.Background(), "people in paris", vocab)

	require.NoError(t, err)
	assert.Equal(t, "Paris", got.Location)
	assert.Empty(t, got.DateFrom)
	assert.Equal(t, "Applied filters: filtering by location: Paris", explain)
}

func TestExtractorFallsBackToRules(t *testing.T) {
	ctx := context.Background()
	want, _, err := NewRuleTranslator().Translate(ctx, "engineers at Globex", vocab)
	require.NoError(t, err)

	for _, mockLLM := range []*MockLLMClient{
		{Err: errors.New("rate limited")},
		{Response: "I cannot help with that."},
	} {
		e := NewExtractor(mockLLM, "%s %s %s", NewRuleTranslator(), nil)
		got, _, err := e.Translate(ctx, "engineers at Globex", vocab)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, _, err = NewExtractor(&MockLLMClient{Err: errors.New("down")}, "%s %s %s", nil, nil).Translate(ctx, "anything", vocab)
	assert.Error(t, err)
}
