package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iyhunko/product-inventory-api/internal/metrics"
	"github.com/iyhunko/product-inventory-api/internal/model"
	"github.com/iyhunko/product-inventory-api/internal/repository"
)

// EventPublisher announces product changes to other services.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event model.ProductEvent) error
}

// ProductList is one page of products with the criteria that produced it.
type ProductList struct {
	Products   []*model.Product
	Pagination repository.Pagination
	Filter     map[string]interface{}
	Sort       repository.AppliedSort
}

type ProductService struct {
	repo      repository.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a ProductService. A nil publisher disables change events.
func NewProductService(repo repository.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

func (ps *ProductService) ListProducts(ctx context.Context, query repository.ProductQuery) (*ProductList, error) {
	result, err := ps.repo.List(ctx, query)
	if err != nil {
		countTimeout(err, "list")
		return nil, err
	}

	products := result.Products
	if products == nil {
		products = []*model.Product{}
	}
	return &ProductList{
		Products:   products,
		Pagination: repository.NewPagination(result.Total, query.Page, query.Limit),
		Filter:     result.Filter,
		Sort:       result.Sort,
	}, nil
}

func (ps *ProductService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	product, err := ps.repo.FindByID(ctx, id)
	if err != nil {
		countTimeout(err, "get")
		return nil, err
	}
	return product, nil
}

func (ps *ProductService) CreateProduct(ctx context.Context, fields model.ProductPatch) (*model.Product, error) {
	created, err := ps.repo.Create(ctx, fields.NewProduct())
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	ps.publish(ctx, model.ProductCreated, created)
	return created, nil
}

func (ps *ProductService) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	updated, err := ps.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return updated, nil
	}

	metrics.ProductsUpdated.Inc()
	ps.publish(ctx, model.ProductUpdated, updated)
	return updated, nil
}

func (ps *ProductService) DeleteProduct(ctx context.Context, id string) error {
	deleted, err := ps.repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}

	metrics.ProductsDeleted.Inc()
	ps.publish(ctx, model.ProductDeleted, deleted)
	return nil
}

// publish is best effort: a failed event never fails the write that caused it.
func (ps *ProductService) publish(ctx context.Context, action model.ProductAction, product *model.Product) {
	if ps.publisher == nil {
		return
	}
	event := model.NewProductEvent(action, product)
	if err := ps.publisher.PublishProductEvent(ctx, event); err != nil {
		slog.Error("Failed to publish product event",
			slog.Any("err", err),
			slog.String("action", string(action)),
			slog.String("product_id", event.ProductID))
	}
}

func countTimeout(err error, operation string) {
	if errors.Is(err, repository.ErrQueryTimeout) {
		metrics.QueryTimeouts.WithLabelValues(operation).Inc()
	}
}
