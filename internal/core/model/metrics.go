package model

import "time"

// NameCount is one row of a frequency leaderboard.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NodeRank is one row of a node leaderboard.
type NodeRank struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// NodeMetrics holds the per node statistics of a snapshot.
type NodeMetrics struct {
	ID               string  `json:"id"`
	Degree           int     `json:"degree"`
	DegreeCentrality float64 `json:"degree_centrality"`
	Betweenness      float64 `json:"betweenness"`
	Community        int     `json:"community"`
}

// Community describes one cluster of the partition.
type Community struct {
	ID               int      `json:"id"`
	Size             int      `json:"size"`
	Members          []string `json:"members"`
	InternalEdges    int      `json:"internal_edges"`
	DominantCompany  string   `json:"dominant_company,omitempty"`
	DominantSchool   string   `json:"dominant_school,omitempty"`
	DominantLocation string   `json:"dominant_location,omitempty"`
	Name             string   `json:"name,omitempty"`
}

// MetricsSnapshot is a read-only aggregate over one graph. Leaderboards are
// full ranked lists; truncation happens at the presentation boundary.
type MetricsSnapshot struct {
	GraphID           string                 `json:"graph_id"`
	ComputedAt        time.Time              `json:"computed_at"`
	TotalNodes        int                    `json:"total_nodes"`
	TotalEdges        int                    `json:"total_edges"`
	AvgDegree         float64                `json:"avg_degree"`
	Density           float64                `json:"density"`
	CommunityCount    int                    `json:"communities"`
	Modularity        float64                `json:"modularity"`
	Nodes             map[string]NodeMetrics `json:"-"`
	Communities       []Community            `json:"community_details,omitempty"`
	TopCompanies      []NameCount            `json:"top_companies"`
	TopPositions      []NameCount            `json:"top_positions"`
	TopConnectors     []NodeRank             `json:"top_connectors"`
	CentralityLeaders []NodeRank             `json:"centrality_leaders"`
}

// Truncated returns a copy whose leaderboards hold at most n rows each.
// n <= 0 leaves them untouched.
func (m MetricsSnapshot) Truncated(n int) MetricsSnapshot {
	if n <= 0 {
		return m
	}
	m.TopCompanies = headNameCounts(m.TopCompanies, n)
	m.TopPositions = headNameCounts(m.TopPositions, n)
	m.TopConnectors = headNodeRanks(m.TopConnectors, n)
	m.CentralityLeaders = headNodeRanks(m.CentralityLeaders, n)
	return m
}

func headNameCounts(rows []NameCount, n int) []NameCount {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

func headNodeRanks(rows []NodeRank, n int) []NodeRank {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
