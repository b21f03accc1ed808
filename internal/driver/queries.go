package driver

// IndexQueries are run once before the first export.
var IndexQueries = []string{
	"CREATE INDEX ON :Contact(id);",
	"CREATE INDEX ON :Contact(graph_id);",
	"CREATE INDEX ON :Community(graph_id);",
}

const (
	// DeleteGraphQuery removes every node of one exported graph.
	DeleteGraphQuery = `
		MATCH (n {graph_id: $graph_id})
		DETACH DELETE n
	`

	SaveContactsQuery = `
		UNWIND $contacts AS c
		MERGE (n:Contact {graph_id: $graph_id, id: c.id})
		SET n.label = c.label,
			n.company = c.company,
			n.position = c.position,
			n.location = c.location,
			n.school = c.school,
			n.degree = c.degree,
			n.betweenness = c.betweenness,
			n.community = c.community
		RETURN count(n) AS saved
	`

	SaveConnectionsQuery = `
		UNWIND $edges AS e
		MATCH (a:Contact {graph_id: $graph_id, id: e.source})
		MATCH (b:Contact {graph_id: $graph_id, id: e.target})
		MERGE (a)-[r:CONNECTED]->(b)
		SET r.weight = e.weight,
			r.attributes = e.attributes
		RETURN count(r) AS saved
	`

	SaveCommunitiesQuery = `
		UNWIND $communities AS c
		MERGE (k:Community {graph_id: $graph_id, id: c.id})
		SET k.name = c.name,
			k.size = c.size
		WITH k, c
		UNWIND c.members AS member
		MATCH (n:Contact {graph_id: $graph_id, id: member})
		MERGE (n)-[:MEMBER_OF]->(k)
		RETURN count(DISTINCT k) AS saved
	`

	CountContactsQuery = `
		MATCH (n:Contact {graph_id: $graph_id})
		RETURN count(n) AS total
	`
)
