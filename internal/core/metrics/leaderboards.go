package metrics

import (
	"sort"

	"github.com/agenthands/linkgraph/internal/core/model"
	"github.com/agenthands/linkgraph/internal/core/similarity"
)

// counter counts keys and remembers first-encountered order and display names.
type counter struct {
	order   []string
	display map[string]string
	counts  map[string]int
}

func newCounter() *counter {
	return &counter{display: map[string]string{}, counts: map[string]int{}}
}

func (c *counter) add(key, display string) {
	if key == "" {
		return
	}
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
		c.display[key] = display
	}
	c.counts[key]++
}

// ranked sorts descending by count; ties keep first-encountered order.
func (c *counter) ranked() []model.NameCount {
	rows := make([]model.NameCount, len(c.order))
	for i, k := range c.order {
		rows[i] = model.NameCount{Name: c.display[k], Count: c.counts[k]}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

// top returns the most frequent display value, "" when nothing was counted.
func (c *counter) top() string {
	rows := c.ranked()
	if len(rows) == 0 {
		return ""
	}
	return rows[0].Name
}

// topCompanies groups companies by normalized name and shows the first spelling seen.
func topCompanies(nodes []model.Contact) []model.NameCount {
	c := newCounter()
	for _, n := range nodes {
		c.add(similarity.NormalizeCompany(n.Company), n.Company)
	}
	return c.ranked()
}

// topPositions counts normalized title tokens.
func topPositions(nodes []model.Contact) []model.NameCount {
	c := newCounter()
	for _, n := range nodes {
		for _, tok := range similarity.PositionTokens(n.Position) {
			c.add(tok, tok)
		}
	}
	return c.ranked()
}

// rankNodes sorts nodes descending by value; ties keep graph order.
func rankNodes(nodes []model.Contact, value func(i int) float64) []model.NodeRank {
	rows := make([]model.NodeRank, len(nodes))
	for i, n := range nodes {
		rows[i] = model.NodeRank{ID: n.ID, Name: n.Label, Value: value(i)}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	return rows
}
