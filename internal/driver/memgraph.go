package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/AlbeMasera/ATAI/internal/logging"
)

const (
	maxPoolSize    = 16
	acquireTimeout = 5 * time.Second
)

// MemgraphDriver runs Cypher over bolt. It works against Neo4j as well.
type MemgraphDriver struct {
	driver neo4j.DriverWithContext
	uri    string
}

// NewMemgraphDriver connects and verifies the connection before returning.
func NewMemgraphDriver(ctx context.Context, uri, username, password string) (*MemgraphDriver, error) {
	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}
	d, err := neo4j.NewDriverWithContext(uri, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = maxPoolSize
		c.ConnectionAcquisitionTimeout = acquireTimeout
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bolt driver for %s: %w", uri, err)
	}
	if err := d.VerifyConnectivity(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, fmt.Errorf("graph at %s unreachable: %w", uri, err)
	}

	logging.Info().Str("uri", uri).Msg("connected to graph database")
	return &MemgraphDriver{driver: d, uri: uri}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	res, err := neo4j.ExecuteQuery(ctx, d.driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("cypher on %s: %w", d.uri, err)
	}
	return *res, nil
}

// BuildIndices creates the lookup indices of the triple layout. Existing
// indices are reported and skipped.
func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	for _, q := range IndexQueries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Ctx(ctx).Warn().Err(err).Str("query", q).Msg("index not created")
		}
	}
	return nil
}
