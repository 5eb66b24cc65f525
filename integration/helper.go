package integration

import (
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/iyhunko/product-inventory-api/internal/config"
	"github.com/iyhunko/product-inventory-api/internal/repository/mongodb"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.mongodb.org/mongo-driver/bson"
)

// TestDB holds the connector to a throwaway MongoDB container.
type TestDB struct {
	Connector *mongodb.Connector
	Config    config.DB
	Pool      *dockertest.Pool
	Resource  *dockertest.Resource
}

// SetupTestDB starts a MongoDB container using dockertest. The test is skipped when
// Docker is not available.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	// Create dockertest pool
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Could not connect to docker: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Docker is not available: %s", err)
	}

	// Set max wait time for Docker operations
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	conf := config.DB{
		URI:        fmt.Sprintf("mongodb://%s/?directConnection=true", resource.GetHostPort("27017/tcp")),
		Name:       "inventory_test",
		Collection: "products",
	}
	log.Println("Connecting to database on url: ", conf.URI)

	connector := mongodb.NewConnector(conf)
	if err = pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := connector.Client(ctx)
		return err
	}); err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("Could not connect to docker: %s", err)
	}

	return &TestDB{
		Connector: connector,
		Config:    conf,
		Pool:      pool,
		Resource:  resource,
	}
}

// Cleanup disconnects and purges the Docker container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	if tdb.Connector != nil {
		if err := tdb.Connector.Disconnect(context.Background()); err != nil {
			t.Errorf("Could not disconnect: %s", err)
		}
	}

	if tdb.Pool != nil && tdb.Resource != nil {
		if err := tdb.Pool.Purge(tdb.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// ClearProducts removes every document from the products collection.
func (tdb *TestDB) ClearProducts(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	coll, err := tdb.Connector.Collection(ctx)
	if err != nil {
		t.Fatalf("Could not get collection: %s", err)
	}
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		t.Fatalf("Could not clear products: %s", err)
	}
}
