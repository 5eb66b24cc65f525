package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iyhunko/product-inventory-api/internal/config"
	"github.com/iyhunko/product-inventory-api/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	serverSelectionTimeout = 5 * time.Second
	socketTimeout          = 45 * time.Second
	maxPoolSize            = 10
	minPoolSize            = 5
)

// Connector owns the process-wide MongoDB client. The client is created by the
// first successful Client call and shared by every later caller.
// A failed attempt is not cached, the next call dials again.
type Connector struct {
	conf   config.DB
	dial   func(ctx context.Context) (*mongo.Client, error)
	mu     sync.Mutex
	client atomic.Pointer[mongo.Client]
}

// NewConnector creates a Connector. No connection is made until Client is called.
func NewConnector(conf config.DB) *Connector {
	c := &Connector{conf: conf}
	c.dial = c.connect
	return c
}

// Client returns the cached client, connecting on first use.
func (c *Connector) Client(ctx context.Context) (*mongo.Client, error) {
	if client := c.client.Load(); client != nil {
		slog.Debug("using cached database connection")
		return client, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if client := c.client.Load(); client != nil {
		return client, nil
	}

	client, err := c.dial(ctx)
	if err != nil {
		slog.Error("MongoDB connection error", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", repository.ErrConnection, err)
	}
	c.client.Store(client)
	return client, nil
}

// Collection returns the products collection of the cached client.
func (c *Connector) Collection(ctx context.Context) (*mongo.Collection, error) {
	client, err := c.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(c.conf.Name).Collection(c.conf.Collection), nil
}

// Ping checks that the primary is reachable through the cached client.
func (c *Connector) Ping(ctx context.Context) error {
	client, err := c.Client(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, serverSelectionTimeout)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrConnection, err)
	}
	return nil
}

// Disconnect closes the cached client, if any.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	client := c.client.Swap(nil)
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	slog.Info("MongoDB disconnected")
	return nil
}

func (c *Connector) clientOptions() *options.ClientOptions {
	return options.Client().
		ApplyURI(c.conf.URI).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetConnectTimeout(serverSelectionTimeout).
		SetSocketTimeout(socketTimeout).
		SetMaxPoolSize(maxPoolSize).
		SetMinPoolSize(minPoolSize).
		SetRetryWrites(true).
		SetRetryReads(true)
}

func (c *Connector) connect(ctx context.Context) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, serverSelectionTimeout)
	defer cancel()

	opts := c.clientOptions()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	slog.Info("MongoDB connected", slog.String("hosts", strings.Join(opts.Hosts, ",")), slog.String("database", c.conf.Name))
	return client, nil
}
