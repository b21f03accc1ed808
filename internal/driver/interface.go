package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphDriver is the Bolt surface the exporter writes contact graphs through.
// Every node it writes carries a graph_id so graphs can share one database.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	// CountContacts returns the number of :Contact nodes stored for graphID.
	CountContacts(ctx context.Context, graphID string) (int64, error)
	Close(ctx context.Context) error
}
