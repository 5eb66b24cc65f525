package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	BuildFilter  = buildFilter
	BuildSort    = buildSort
	SetFields    = setFields
	WithTimeout  = withTimeout
	AppliedSort  = appliedSort
	ClientOption = (*Connector).clientOptions
)

// SetDialer replaces the function used to establish the client.
func SetDialer(c *Connector, dial func(ctx context.Context) (*mongo.Client, error)) {
	c.dial = dial
}

// CachedClient returns the client currently held by the connector.
func CachedClient(c *Connector) *mongo.Client {
	return c.client.Load()
}

// SetQueryTimeout overrides the read budget of the repository.
func SetQueryTimeout(r *ProductRepository, d time.Duration) {
	r.queryTimeout = d
}
