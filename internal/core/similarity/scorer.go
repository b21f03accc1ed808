package similarity

import (
	"github.com/agenthands/linkgraph/internal/core/model"
)

// Result is the outcome of scoring one contact pair.
type Result struct {
	Score   float64
	Matches []model.AttributeMatch
}

// Attributes returns the names of the matched attributes in scoring order.
func (r Result) Attributes() []string {
	attrs := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		attrs = append(attrs, m.Attribute)
	}
	return attrs
}

// Scorer computes weighted match scores under fixed settings.
type Scorer struct {
	settings model.InferenceSettings
	attrs    []string
}

func NewScorer(settings model.InferenceSettings) *Scorer {
	return &Scorer{
		settings: settings,
		attrs:    settings.ActiveAttributes(),
	}
}

// Score sums the weights of every matching attribute. Contributions are
// binary: a fuzzy match adds the full weight, never a fraction.
func (s *Scorer) Score(a, b *Profile) Result {
	var res Result
	for _, attr := range s.attrs {
		m, ok := s.Match(attr, a, b)
		if !ok {
			continue
		}
		res.Score += m.Weight
		res.Matches = append(res.Matches, m)
	}
	return res
}

// ScoreContacts is Score for raw contacts.
func (s *Scorer) ScoreContacts(a, b model.Contact) Result {
	pa, pb := NewProfile(a), NewProfile(b)
	return s.Score(&pa, &pb)
}

// Match decides whether one attribute matches. Empty values never match.
func (s *Scorer) Match(attr string, a, b *Profile) (model.AttributeMatch, bool) {
	va, vb := a.Value(attr), b.Value(attr)
	if va == "" || vb == "" {
		return model.AttributeMatch{}, false
	}
	m := model.AttributeMatch{Attribute: attr, Weight: s.settings.Weight(attr)}
	if va == vb {
		m.Method = model.MatchExact
		m.Similarity = 100
		return m, true
	}
	if !s.settings.FuzzyMatching {
		return model.AttributeMatch{}, false
	}

	sim := Ratio(va, vb)
	if attr == model.AttrPosition {
		if ts := TokenSetRatio(a.PositionTokens, b.PositionTokens); ts > sim {
			sim = ts
		}
	}
	if sim < s.settings.SimilarityThreshold {
		return model.AttributeMatch{}, false
	}
	m.Method = model.MatchFuzzy
	m.Similarity = sim
	return m, true
}
