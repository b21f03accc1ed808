package extraction

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agenthands/linkgraph/internal/core/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	title = cases.Title(language.English)

	knownCompanies = []string{"google", "microsoft", "apple", "amazon", "meta", "facebook", "netflix", "tesla", "uber", "airbnb"}
	knownPositions = []string{"engineer", "manager", "director", "analyst", "consultant", "developer", "designer", "product", "data", "software", "recruiter", "founder"}
	knownLocations = []string{"san francisco", "new york", "seattle", "london", "bangalore", "toronto", "berlin", "sydney"}

	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:at|for)\s+([A-Z][\w&]+(?:\s+[A-Z][\w&]+)*)`),
		regexp.MustCompile(`\b([A-Z][\w&]+(?:\s+[A-Z][\w&]+)*)\s+(?:employees?|engineers?|people|folks)\b`),
	}

	leadingWords = map[string]bool{
		"top": true, "most": true, "best": true, "leading": true, "influential": true, "all": true,
		"show": true, "find": true, "list": true, "who": true, "which": true, "the": true, "my": true,
		"senior": true, "junior": true, "former": true, "current": true,
	}

	locationPattern = regexp.MustCompile(`\b(?:in|based in|from|near)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)

	positionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(software|data|product|marketing|sales|finance)\s+(engineer|manager|analyst|scientist)s?\b`),
		regexp.MustCompile(`\b(senior|junior|lead|principal)\s+(engineer|manager|developer)s?\b`),
		regexp.MustCompile(`\b(cto|ceo|cfo|vp|director)\b`),
	}

	minDegreePattern = regexp.MustCompile(`\b(?:at least|min(?:imum)?|more than|over)\s+(\d+)\s+connections?\b`)
	manyConnections  = regexp.MustCompile(`\b(?:many|lots of|highly connected|well connected|most connected)\b`)
	rankingWords     = regexp.MustCompile(`\b(?:top|most|best|leading|influential)\b`)
	sincePattern     = regexp.MustCompile(`\b(?:since|after)\s+(\d{4})\b`)
	beforePattern    = regexp.MustCompile(`\bbefore\s+(\d{4})\b`)
	yearPattern      = regexp.MustCompile(`\bin\s+(\d{4})\b`)
)

// RuleTranslator recognizes companies, titles, places, connection counts and
// years with keyword lists and regular expressions. It needs no network.
type RuleTranslator struct{}

func NewRuleTranslator() *RuleTranslator {
	return &RuleTranslator{}
}

func (r *RuleTranslator) Translate(ctx context.Context, query string, vocab Vocabulary) (model.FilterCriteria, string, error) {
	if strings.TrimSpace(query) == "" {
		return model.FilterCriteria{}, "", model.NewError(model.KindInvalidInput, "translate_query", "", fmt.Errorf("empty query"))
	}
	lower := strings.ToLower(query)
	var f model.FilterCriteria

	companies := newSet()
	for _, c := range vocab.Companies {
		if len(c) >= 3 && containsWord(lower, strings.ToLower(c)) {
			companies.add(c)
		}
	}
	for _, c := range knownCompanies {
		if containsWord(lower, c) {
			companies.add(title.String(c))
		}
	}
	for _, re := range companyPatterns {
		for _, m := range re.FindAllStringSubmatch(query, -1) {
			companies.add(companyName(m[1]))
		}
	}

	location := ""
	for _, l := range knownLocations {
		if strings.Contains(lower, l) {
			location = title.String(l)
			break
		}
	}
	if location == "" {
		for _, m := range locationPattern.FindAllStringSubmatch(query, -1) {
			if !companies.has(m[1]) {
				location = m[1]
				break
			}
		}
	}
	companies.remove(location)
	f.Companies = companies.values()
	f.Location = location

	positions := newSet()
	for _, re := range positionPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			positions.add(strings.Join(m[1:], " "))
		}
	}
	for _, p := range knownPositions {
		if containsWord(lower, p) && !positions.containsWord(p) {
			positions.add(p)
		}
	}
	for _, p := range vocab.Positions {
		if len(p) >= 3 && containsWord(lower, p) && !positions.containsWord(p) {
			positions.add(p)
		}
	}
	f.Positions = positions.values()

	if m := minDegreePattern.FindStringSubmatch(lower); m != nil {
		f.MinDegree, _ = strconv.Atoi(m[1])
	} else if manyConnections.MatchString(lower) {
		f.MinDegree = 5
	} else if rankingWords.MatchString(lower) {
		f.MinDegree = 3
	}

	if m := sincePattern.FindStringSubmatch(lower); m != nil {
		f.DateFrom = m[1] + "-01-01"
	}
	if m := beforePattern.FindStringSubmatch(lower); m != nil {
		year, _ := strconv.Atoi(m[1])
		f.DateTo = fmt.Sprintf("%04d-12-31", year-1)
	}
	if m := yearPattern.FindStringSubmatch(lower); m != nil && f.DateFrom == "" && f.DateTo == "" {
		f.DateFrom = m[1] + "-01-01"
		f.DateTo = m[1] + "-12-31"
	}

	return f, describe(f), nil
}

// containsWord matches word, or its plural, on word boundaries.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if start == 0 || !isWordByte(text[start-1]) {
			rest := text[end:]
			for _, suffix := range []string{"", "s", "es"} {
				if strings.HasPrefix(rest, suffix) && wordEnds(text, end+len(suffix)) {
					return true
				}
			}
		}
		from = start + 1
	}
	return false
}

func wordEnds(text string, at int) bool {
	return at == len(text) || !isWordByte(text[at])
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// companyName drops leading question and ranking words that the capitalized
// name patterns pick up at the start of a sentence.
func companyName(match string) string {
	words := strings.Fields(match)
	for len(words) > 0 && leadingWords[strings.ToLower(words[0])] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// set keeps insertion order and compares case-insensitively.
type set struct {
	order []string
	seen  map[string]bool
}

func newSet() *set { return &set{seen: map[string]bool{}} }

func (s *set) add(v string) {
	v = strings.TrimSpace(v)
	k := strings.ToLower(v)
	if v == "" || s.seen[k] {
		return
	}
	s.seen[k] = true
	s.order = append(s.order, v)
}

func (s *set) has(v string) bool { return s.seen[strings.ToLower(v)] }

func (s *set) remove(v string) {
	k := strings.ToLower(v)
	if !s.seen[k] {
		return
	}
	delete(s.seen, k)
	for i, o := range s.order {
		if strings.ToLower(o) == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// containsWord reports whether any collected phrase already includes word.
func (s *set) containsWord(word string) bool {
	for _, o := range s.order {
		if containsWord(strings.ToLower(o), word) {
			return true
		}
	}
	return false
}

func (s *set) values() []string {
	if len(s.order) == 0 {
		return nil
	}
	return s.order
}
