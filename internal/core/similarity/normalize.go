package similarity

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agenthands/linkgraph/internal/core/model"
)

var companySuffixes = map[string]bool{
	"inc": true, "incorporated": true, "llc": true, "ltd": true, "limited": true,
	"corp": true, "corporation": true, "co": true, "company": true, "pvt": true,
	"gmbh": true, "plc": true,
}

var positionSynonyms = map[string]string{
	"swe": "engineer",
	"eng": "engineer",
	"dev": "developer",
	"mgr": "manager",
	"sr":  "senior",
	"jr":  "junior",
}

var stopWords = map[string]bool{
	"and": true, "the": true, "of": true, "at": true, "in": true, "for": true,
	"with": true, "by": true, "to": true, "a": true, "an": true,
}

// Normalize lowercases s, removes punctuation and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeCompany normalizes s and drops trailing legal-form suffixes such as
// "inc" or "corporation". The first token is always kept.
func NormalizeCompany(s string) string {
	fields := strings.Fields(Normalize(s))
	for len(fields) > 1 && companySuffixes[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// PositionTokens returns the sorted, deduplicated meaningful tokens of a job title.
func PositionTokens(position string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range strings.Fields(Normalize(position)) {
		if syn, ok := positionSynonyms[tok]; ok {
			tok = syn
		}
		if len(tok) <= 2 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// Profile holds the normalized attribute values of one contact.
type Profile struct {
	ID             string
	Company        string
	School         string
	Location       string
	Position       string
	PositionTokens []string
}

// NewProfile normalizes every inference attribute of c.
func NewProfile(c model.Contact) Profile {
	return Profile{
		ID:             c.ID,
		Company:        NormalizeCompany(c.Company),
		School:         Normalize(c.School),
		Location:       Normalize(c.Location),
		Position:       Normalize(c.Position),
		PositionTokens: PositionTokens(c.Position),
	}
}

// Value returns the normalized value of a named attribute.
func (p *Profile) Value(attr string) string {
	switch attr {
	case model.AttrCompany:
		return p.Company
	case model.AttrSchool:
		return p.School
	case model.AttrLocation:
		return p.Location
	case model.AttrPosition:
		return p.Position
	}
	return ""
}
