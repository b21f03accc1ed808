package model

// Inference attribute names, in scoring order.
const (
	AttrCompany  = "company"
	AttrSchool   = "school"
	AttrLocation = "location"
	AttrPosition = "position"
)

// Attributes lists the inference attributes in the fixed order used for
// scoring so that weight sums are reproducible.
var Attributes = []string{AttrCompany, AttrSchool, AttrLocation, AttrPosition}

// MatchMethod tells how an attribute matched.
type MatchMethod string

const (
	MatchExact MatchMethod = "exact"
	MatchFuzzy MatchMethod = "fuzzy"
)

// AttributeMatch records one attribute's contribution to an edge.
type AttributeMatch struct {
	Attribute  string      `json:"attribute"`
	Method     MatchMethod `json:"method"`
	Similarity float64     `json:"similarity"`
	Weight     float64     `json:"weight"`
}

// Edge is an inferred, undirected relationship. Source always precedes Target
// in the graph's node order.
type Edge struct {
	Source     string           `json:"source"`
	Target     string           `json:"target"`
	Weight     float64          `json:"weight"`
	Attributes []string         `json:"attributes"`
	Matches    []AttributeMatch `json:"matches,omitempty"`
}

// Other returns the endpoint opposite to id.
func (e Edge) Other(id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// Subgraph is a node/edge subset of a graph.
type Subgraph struct {
	Nodes []Contact `json:"nodes"`
	Edges []Edge    `json:"edges"`
}

// PathResult is the answer to a shortest path query. Length is the hop count,
// -1 when no path exists.
type PathResult struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Exists bool     `json:"exists"`
	Path   []string `json:"path"`
	Length int      `json:"length"`
}
