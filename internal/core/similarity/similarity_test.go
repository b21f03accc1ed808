package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/linkgraph/internal/core/model"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello world", Normalize("  Hello,  World! "))
	assert.Equal(t, "são paulo", Normalize("São   Paulo"))
	assert.Equal(t, "", Normalize(" ... "))
}

func TestNormalizeCompany(t *testing.T) {
	tests := map[string]string{
		"Acme Inc.":          "acme",
		"Acme Incorporated":  "acme",
		"ACME":               "acme",
		"Acme Co., Ltd.":     "acme",
		"Globex Corporation": "globex",
		"Inc":                "inc",
		"The Company Co":     "the",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCompany(in), in)
	}
}

func TestPositionTokens(t *testing.T) {
	assert.Equal(t, []string{"engineer", "google", "senior"}, PositionTokens("Sr. SWE at Google"))
	assert.Equal(t, []string{"developer", "manager"}, PositionTokens("Dev Mgr / dev"))
	assert.Empty(t, PositionTokens("VP of IT"))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("acme", "acme"))
	assert.Equal(t, 0.0, Ratio("", ""))
	assert.Equal(t, 0.0, Ratio("acme", ""))
	assert.InDelta(t, 100*(1-1.0/9.0), Ratio("microsoft", "nicrosoft"), 1e-9)
	assert.Less(t, Ratio("acme", "zeta"), 85.0)
	// distance is counted in runes, not bytes
	assert.InDelta(t, 75.0, Ratio("café", "cafe"), 1e-9)
}

func TestTokenSetRatio(t *testing.T) {
	assert.Equal(t, 100.0, TokenSetRatio([]string{"engineer"}, []string{"engineer", "senior"}))
	assert.Equal(t, 100.0, TokenSetRatio([]string{"engineer", "software"}, []string{"engineer", "software"}))
	assert.Equal(t, 0.0, TokenSetRatio(nil, []string{"engineer"}))
	assert.Less(t, TokenSetRatio([]string{"chef"}, []string{"pilot"}), 50.0)

	partial := TokenSetRatio([]string{"data", "engineer"}, []string{"engineer", "software"})
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 100.0)
}

func settings(fuzzy bool) model.InferenceSettings {
	s := model.DefaultInferenceSettings()
	s.FuzzyMatching = fuzzy
	return s
}

func TestScoreExactAfterNormalization(t *testing.T) {
	s := NewScorer(settings(false))

	res := s.ScoreContacts(
		model.Contact{ID: "1", Company: "Acme Inc", Location: "Berlin"},
		model.Contact{ID: "2", Company: "Acme Incorporated", Location: "berlin"},
	)

	assert.Equal(t, 4.0, res.Score)
	assert.Equal(t, []string{model.AttrCompany, model.AttrLocation}, res.Attributes())
	assert.Equal(t, model.MatchExact, res.Matches[0].Method)
}

func TestScoreFuzzy(t *testing.T) {
	a := model.Contact{ID: "1", Company: "Microsoft"}
	b := model.Contact{ID: "2", Company: "Nicrosoft"}

	res := NewScorer(settings(true)).ScoreContacts(a, b)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, model.MatchFuzzy, res.Matches[0].Method)
	assert.InDelta(t, 88.89, res.Matches[0].Similarity, 0.01)
	// a fuzzy match contributes the full weight
	assert.Equal(t, 3.0, res.Score)

	assert.Empty(t, NewScorer(settings(false)).ScoreContacts(a, b).Matches)

	strict := settings(true)
	strict.SimilarityThreshold = 90
	assert.Empty(t, NewScorer(strict).ScoreContacts(a, b).Matches)

	assert.Empty(t, NewScorer(settings(true)).ScoreContacts(
		model.Contact{Company: "Acme"}, model.Contact{Company: "Zeta"}).Matches)
}

func TestScorePositionTokenSet(t *testing.T) {
	res := NewScorer(settings(true)).ScoreContacts(
		model.Contact{ID: "1", Position: "Senior Software Engineer"},
		model.Contact{ID: "2", Position: "Software Engineer"},
	)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 100.0, res.Matches[0].Similarity)
	assert.Equal(t, 1.0, res.Score)

	// token overlap is a fuzzy rule; exact mode needs equal normalized titles
	exact := NewScorer(settings(false))
	assert.Empty(t, exact.ScoreContacts(
		model.Contact{ID: "1", Position: "Senior Software Engineer"},
		model.Contact{ID: "2", Position: "Software Engineer"},
	).Matches)
	assert.Len(t, exact.ScoreContacts(
		model.Contact{ID: "1", Position: "Sr. SWE"},
		model.Contact{ID: "2", Position: "sr swe"},
	).Matches, 1)
}

func TestScoreIgnoresEmptyAndZeroWeight(t *testing.T) {
	s := settings(false)
	s.SchoolWeight = 0
	res := NewScorer(s).ScoreContacts(
		model.Contact{School: "MIT", Company: ""},
		model.Contact{School: "MIT", Company: ""},
	)
	assert.Zero(t, res.Score)
	assert.Empty(t, res.Matches)
}
