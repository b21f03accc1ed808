package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/linkgraph/internal/logger"
)

type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
	log    *logger.Logger
}

func NewMemgraphDriver(ctx context.Context, uri, username, password string, log *logger.Logger) (*MemgraphDriver, error) {
	log = logger.OrNop(log)
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach memgraph at %s: %w", uri, err)
	}

	log.Info("connected to memgraph", "uri", uri)
	return &MemgraphDriver{Driver: driver, log: log}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates every index. A single failure is only logged since
// Memgraph errors when the index already exists; it fails when the context is
// done or no index statement succeeded.
func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	var lastErr error
	failed := 0
	for _, q := range IndexQueries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("failed to create indices: %w", ctx.Err())
			}
			d.log.Warn("failed to create index", "query", q, "error", err)
			lastErr = err
			failed++
		}
	}
	if failed == len(IndexQueries) && lastErr != nil {
		return fmt.Errorf("failed to create indices: %w", lastErr)
	}
	return nil
}

func (d *MemgraphDriver) CountContacts(ctx context.Context, graphID string) (int64, error) {
	result, err := d.ExecuteQuery(ctx, CountContactsQuery, map[string]any{"graph_id": graphID})
	if err != nil {
		return 0, err
	}
	if len(result.Records) == 0 {
		return 0, nil
	}
	total, _, err := neo4j.GetRecordValue[int64](result.Records[0], "total")
	if err != nil {
		return 0, fmt.Errorf("failed to read contact count: %w", err)
	}
	return total, nil
}
