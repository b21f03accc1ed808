package index

import (
	"slices"
	"strings"

	"github.com/agenthands/linkgraph/internal/core/model"
	"github.com/agenthands/linkgraph/internal/core/similarity"
)

// DefaultExhaustiveFuzzyLimit is the largest contact count for which fuzzy
// matching compares every pair instead of relying on blocking keys.
const DefaultExhaustiveFuzzyLimit = 500

// prefixLen is the rune length of the character prefix blocking key.
const prefixLen = 3

type Options struct {
	// ExhaustiveFuzzyLimit bounds full pairwise scoring under fuzzy matching.
	// Zero disables the fallback; negative means DefaultExhaustiveFuzzyLimit.
	ExhaustiveFuzzyLimit int
}

func DefaultOptions() Options {
	return Options{ExhaustiveFuzzyLimit: DefaultExhaustiveFuzzyLimit}
}

// Pair is a candidate pair of profile positions with A < B.
type Pair struct {
	A, B int
}

// AttributeIndex buckets contacts by normalized attribute values so that only
// contacts sharing a bucket are scored.
//
// With exact matching a pair outside every bucket has no attribute in common
// and cannot gain an edge. With fuzzy matching the blocking keys (first token,
// character prefix, position tokens) can miss near matches; below
// ExhaustiveFuzzyLimit contacts every pair is returned instead.
type AttributeIndex struct {
	settings   model.InferenceSettings
	opts       Options
	size       int
	buckets    map[string]map[string][]int
	exhaustive bool
}

// New indexes profiles under settings. Profile positions are the ids used in
// the returned pairs.
func New(profiles []similarity.Profile, settings model.InferenceSettings, opts Options) *AttributeIndex {
	if opts.ExhaustiveFuzzyLimit < 0 {
		opts.ExhaustiveFuzzyLimit = DefaultExhaustiveFuzzyLimit
	}
	ix := &AttributeIndex{
		settings: settings,
		opts:     opts,
		size:     len(profiles),
		buckets:  make(map[string]map[string][]int),
	}
	ix.exhaustive = settings.FuzzyMatching && len(profiles) <= opts.ExhaustiveFuzzyLimit
	if ix.exhaustive {
		return ix
	}

	for _, attr := range settings.ActiveAttributes() {
		b := make(map[string][]int)
		for i := range profiles {
			for _, key := range ix.keys(attr, &profiles[i]) {
				b[key] = append(b[key], i)
			}
		}
		ix.buckets[attr] = b
	}
	return ix
}

// Exhaustive reports whether all pairs are candidates.
func (ix *AttributeIndex) Exhaustive() bool {
	return ix.exhaustive
}

// Bucket returns the positions sharing key for attr, ascending.
func (ix *AttributeIndex) Bucket(attr, key string) []int {
	return ix.buckets[attr][key]
}

// Candidates returns the deduplicated union of pairs across all buckets in
// ascending (A, B) order.
func (ix *AttributeIndex) Candidates() []Pair {
	n := ix.size
	if n < 2 {
		return nil
	}
	if ix.exhaustive {
		pairs := make([]Pair, 0, n*(n-1)/2)
		for a := 0; a < n; a++ {
			for b := a + 1; b < n; b++ {
				pairs = append(pairs, Pair{A: a, B: b})
			}
		}
		return pairs
	}

	seen := make(map[uint64]struct{})
	for _, attr := range ix.settings.ActiveAttributes() {
		for _, members := range ix.buckets[attr] {
			for i := 0; i < len(members); i++ {
				for j := i + 1; j < len(members); j++ {
					seen[uint64(members[i])*uint64(n)+uint64(members[j])] = struct{}{}
				}
			}
		}
	}

	keys := make([]uint64, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]Pair, len(keys))
	for i, k := range keys {
		pairs[i] = Pair{A: int(k / uint64(n)), B: int(k % uint64(n))}
	}
	return pairs
}

// keys lists the distinct bucket keys of one attribute value.
func (ix *AttributeIndex) keys(attr string, p *similarity.Profile) []string {
	v := p.Value(attr)
	if v == "" {
		return nil
	}
	keys := []string{"=" + v}
	if !ix.settings.FuzzyMatching {
		return keys
	}

	if attr == model.AttrPosition {
		for _, tok := range p.PositionTokens {
			keys = append(keys, "t:"+tok)
		}
		return keys
	}

	fields := strings.Fields(v)
	keys = append(keys, "t:"+fields[0])
	compact := []rune(strings.Join(fields, ""))
	if len(compact) > prefixLen {
		compact = compact[:prefixLen]
	}
	return append(keys, "p:"+string(compact))
}
