package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-inventory-api/internal/config"
	httpAPI "github.com/iyhunko/product-inventory-api/internal/http"
	"github.com/iyhunko/product-inventory-api/internal/http/controller"
	"github.com/iyhunko/product-inventory-api/internal/model"
	"github.com/iyhunko/product-inventory-api/internal/repository/mongodb"
	"github.com/iyhunko/product-inventory-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(testDB *TestDB, env string, connector *mongodb.Connector, publisher service.EventPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	productService := service.NewProductService(mongodb.NewProductRepository(connector), publisher)
	cfg := &config.Config{
		Env:      env,
		Database: testDB.Config,
		CORS:     config.CORS{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	return httpAPI.InitRouter(cfg, connector, gin.New(), controller.New(connector), controller.NewProductController(productService))
}

func send(t *testing.T, router *gin.Engine, method, target string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return w.Code, response
}

func seed(t *testing.T, router *gin.Engine, products ...map[string]interface{}) []string {
	t.Helper()
	ids := make([]string, 0, len(products))
	for _, p := range products {
		code, response := send(t, router, http.MethodPost, "/products", p)
		require.Equal(t, http.StatusCreated, code, response)
		ids = append(ids, response["id"].(string))
	}
	return ids
}

func names(response map[string]interface{}) []string {
	var result []string
	for _, p := range response["products"].([]interface{}) {
		result = append(result, p.(map[string]interface{})["name"].(string))
	}
	return result
}

func TestProductAPI_CRUD_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	router := setupRouter(testDB, config.EnvDevelopment, testDB.Connector, nil)

	t.Run("create, read, update and delete", func(t *testing.T) {
		testDB.ClearProducts(t)

		// create
		code, created := send(t, router, http.MethodPost, "/products", map[string]interface{}{
			"name":        "Test Laptop",
			"description": "High-performance laptop",
			"price":       1299.99,
			"category":    "electronics",
		})
		require.Equal(t, http.StatusCreated, code)
		id := created["id"].(string)
		assert.Len(t, id, 24)
		assert.Equal(t, 1299.99, created["price"])
		assert.NotContains(t, created, "stock")
		assert.NotEmpty(t, created["createdAt"])

		// read
		code, found := send(t, router, http.MethodGet, "/products/"+id, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Test Laptop", found["name"])

		// zero values are written
		code, updated := send(t, router, http.MethodPut, "/products/"+id, map[string]interface{}{"price": 0, "stock": 0})
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 0.0, updated["price"])
		assert.Equal(t, 0.0, updated["stock"])
		assert.Equal(t, "Test Laptop", updated["name"])
		assert.Equal(t, "electronics", updated["category"])

		// delete
		code, deleted := send(t, router, http.MethodDelete, "/products/"+id, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Product deleted successfully", deleted["message"])

		code, missing := send(t, router, http.MethodGet, "/products/"+id, nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, map[string]interface{}{"message": "Product not found"}, missing)
	})

	t.Run("create product with invalid data", func(t *testing.T) {
		code, response := send(t, router, http.MethodPost, "/products", map[string]interface{}{"price": 10})

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Error creating product", response["message"])
		assert.NotEmpty(t, response["error"])
	})

	t.Run("unknown and malformed ids", func(t *testing.T) {
		code, _ := send(t, router, http.MethodDelete, "/products/0123456789abcdef01234567", nil)
		assert.Equal(t, http.StatusNotFound, code)

		code, _ = send(t, router, http.MethodPut, "/products/0123456789abcdef01234567", map[string]interface{}{"name": "x"})
		assert.Equal(t, http.StatusNotFound, code)

		code, response := send(t, router, http.MethodGet, "/products/not-an-id", nil)
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Error fetching product", response["message"])
	})
}

func TestProductAPI_ListProducts_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	router := setupRouter(testDB, config.EnvDevelopment, testDB.Connector, nil)

	testDB.ClearProducts(t)
	seed(t, router,
		map[string]interface{}{"name": "Claw Hammer", "price": 25, "category": "tools", "stock": 10},
		map[string]interface{}{"name": "Sledge hammer", "price": 60, "category": "tools", "stock": 2},
		map[string]interface{}{"name": "Screwdriver", "price": 8, "category": "tools"},
		map[string]interface{}{"name": "Desk Lamp", "price": 40, "category": "home", "stock": 5},
		map[string]interface{}{"name": "Hammock", "price": 90, "category": "garden", "stock": 1},
	)

	t.Run("defaults", func(t *testing.T) {
		code, response := send(t, router, http.MethodGet, "/products", nil)

		require.Equal(t, http.StatusOK, code)
		assert.Len(t, response["products"], 5)
		assert.Equal(t, map[string]interface{}{"total": 5.0, "page": 1.0, "pages": 1.0, "limit": 10.0}, response["pagination"])
		assert.Equal(t, map[string]interface{}{"applied": nil}, response["filters"])
		assert.Equal(t, map[string]interface{}{"applied": nil}, response["sorting"])
	})

	t.Run("pagination", func(t *testing.T) {
		code, response := send(t, router, http.MethodGet, "/products?page=3&limit=2&sort=price", nil)

		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, []string{"Hammock"}, names(response))
		assert.Equal(t, map[string]interface{}{"total": 5.0, "page": 3.0, "pages": 3.0, "limit": 2.0}, response["pagination"])
	})

	t.Run("page past the end", func(t *testing.T) {
		code, response := send(t, router, http.MethodGet, "/products?page=9&limit=2", nil)

		require.Equal(t, http.StatusOK, code)
		assert.Empty(t, response["products"])
		assert.Equal(t, 5.0, response["pagination"].(map[string]interface{})["total"])
	})

	t.Run("combined filters", func(t *testing.T) {
		code, response := send(t, router, http.MethodGet, "/products?category=tools&minPrice=10&maxPrice=100&name=HAMMER&stock=2&sort=-price", nil)

		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, []string{"Sledge hammer", "Claw Hammer"}, names(response))
		assert.Equal(t, 2.0, response["pagination"].(map[string]interface{})["total"])
		assert.NotNil(t, response["filters"].(map[string]interface{})["applied"])
		assert.Equal(t, map[string]interface{}{"applied": map[string]interface{}{"price": -1.0}}, response["sorting"])
	})

	t.Run("name is matched literally", func(t *testing.T) {
		code, response := send(t, router, http.MethodGet, "/products?name=.*", nil)

		require.Equal(t, http.StatusOK, code)
		assert.Empty(t, response["products"])
	})

	t.Run("unparsable filters are ignored", func(t *testing.T) {
		code, response := send(t, router, http.MethodGet, "/products?minPrice=abc&stock=lots&page=x&limit=0", nil)

		require.Equal(t, http.StatusOK, code)
		assert.Len(t, response["products"], 5)
	})

	t.Run("multi field sort", func(t *testing.T) {
		code, response := send(t, router, http.MethodGet, "/products?sort=category,-price", nil)

		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, []string{"Hammock", "Desk Lamp", "Sledge hammer", "Claw Hammer", "Screwdriver"}, names(response))
	})
}

func TestProductAPI_LazyConnection_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("first requests share one connection", func(t *testing.T) {
		connector := mongodb.NewConnector(testDB.Config)
		defer connector.Disconnect(context.Background())
		router := setupRouter(testDB, config.EnvProduction, connector, nil)

		var wg sync.WaitGroup
		codes := make([]int, 8)
		for i := range codes {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))
				codes[i] = w.Code
			}(i)
		}
		wg.Wait()

		for _, code := range codes {
			assert.Equal(t, http.StatusOK, code)
		}
		client, err := connector.Client(context.Background())
		require.NoError(t, err)
		again, err := connector.Client(context.Background())
		require.NoError(t, err)
		assert.Same(t, client, again)
	})

	t.Run("unreachable database", func(t *testing.T) {
		connector := mongodb.NewConnector(config.DB{
			URI:        "mongodb://127.0.0.1:1",
			Name:       "inventory_test",
			Collection: "products",
		})
		router := setupRouter(testDB, config.EnvProduction, connector, nil)

		code, response := send(t, router, http.MethodGet, "/products", nil)

		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Database connection error", response["message"])
		assert.NotEmpty(t, response["error"])
	})
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ProductEvent
}

func (p *recordingPublisher) PublishProductEvent(_ context.Context, event model.ProductEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func TestProductAPI_Events_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	testDB.ClearProducts(t)

	publisher := &recordingPublisher{}
	router := setupRouter(testDB, config.EnvDevelopment, testDB.Connector, publisher)

	id := seed(t, router, map[string]interface{}{"name": "Widget", "price": 5})[0]
	code, _ := send(t, router, http.MethodPut, "/products/"+id, map[string]interface{}{"price": 6})
	require.Equal(t, http.StatusOK, code)
	code, _ = send(t, router, http.MethodDelete, "/products/"+id, nil)
	require.Equal(t, http.StatusOK, code)

	require.Len(t, publisher.events, 3)
	var actions []string
	for _, e := range publisher.events {
		assert.Equal(t, id, e.ProductID)
		actions = append(actions, fmt.Sprint(e.Action))
	}
	assert.Equal(t, []string{"created", "updated", "deleted"}, actions)
	assert.Equal(t, 6.0, *publisher.events[2].Price)
}
