package repository

import (
	"context"
	"errors"

	"github.com/iyhunko/product-inventory-api/internal/model"
)

var (
	// ErrConnection is returned when the document store is unreachable.
	ErrConnection = errors.New("database connection error")
	// ErrQueryTimeout is returned when a read exceeds its time budget.
	ErrQueryTimeout = errors.New("query timeout")
	// ErrNotFound is returned when an identifier does not resolve to a product.
	ErrNotFound = errors.New("product not found")
	// ErrInvalidInput is returned when the store rejects a write.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidID is returned for identifiers that are not valid object ids.
	ErrInvalidID = errors.New("invalid product id")
)

// ProductRepository defines storage operations for products.
type ProductRepository interface {
	// List returns one page of products matching the query together with the total match count.
	List(ctx context.Context, query ProductQuery) (*ListResult, error)
	// FindByID returns ErrNotFound if no product has the given id.
	FindByID(ctx context.Context, id string) (*model.Product, error)
	// Create stores the product and returns it with its generated id.
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	// Update writes the supplied fields and returns the updated product.
	Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error)
	// DeleteByID removes the product and returns what was removed.
	DeleteByID(ctx context.Context, id string) (*model.Product, error)
}

// ListResult is a page of products plus the criteria the store applied.
type ListResult struct {
	Products []*model.Product
	Total    int64
	// Filter is the filter document sent to the store, nil when unconstrained.
	Filter map[string]interface{}
	// Sort is the sort sent to the store in precedence order, nil when unsorted.
	Sort AppliedSort
}
