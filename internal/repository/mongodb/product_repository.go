package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iyhunko/product-inventory-api/internal/model"
	"github.com/iyhunko/product-inventory-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// DefaultQueryTimeout bounds every read issued by the repository.
const DefaultQueryTimeout = 10 * time.Second

// MongoDB DocumentValidationFailure error code.
const documentValidationFailure = 121

// CollectionProvider hands out the products collection, connecting if needed.
type CollectionProvider interface {
	Collection(ctx context.Context) (*mongo.Collection, error)
}

// ProductRepository implements repository.ProductRepository on a MongoDB collection.
type ProductRepository struct {
	collections  CollectionProvider
	queryTimeout time.Duration
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(collections CollectionProvider) *ProductRepository {
	return &ProductRepository{
		collections:  collections,
		queryTimeout: DefaultQueryTimeout,
	}
}

// List runs the count and the page fetch concurrently, each under its own time budget.
// The two reads are not a consistent snapshot: concurrent writes may make Total
// disagree with the returned page.
func (r *ProductRepository) List(ctx context.Context, query repository.ProductQuery) (*repository.ListResult, error) {
	coll, err := r.collections.Collection(ctx)
	if err != nil {
		return nil, err
	}

	filter := buildFilter(query)
	sort := buildSort(query)
	findOpts := options.Find().
		SetSkip(query.Skip()).
		SetLimit(int64(query.Limit))
	if len(sort) > 0 {
		findOpts.SetSort(sort)
	}

	products := []*model.Product{}
	var total int64

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return withTimeout(gCtx, r.queryTimeout, "find products", func(ctx context.Context) error {
			cursor, err := coll.Find(ctx, filter, findOpts)
			if err != nil {
				return err
			}
			return cursor.All(ctx, &products)
		})
	})
	g.Go(func() error {
		return withTimeout(gCtx, r.queryTimeout, "count products", func(ctx context.Context) error {
			n, err := coll.CountDocuments(ctx, filter)
			total = n
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &repository.ListResult{
		Products: products,
		Total:    total,
		Filter:   appliedFilter(filter),
		Sort:     appliedSort(sort),
	}, nil
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	coll, err := r.collections.Collection(ctx)
	if err != nil {
		return nil, err
	}

	var product model.Product
	err = withTimeout(ctx, r.queryTimeout, "find product", func(ctx context.Context) error {
		return coll.FindOne(ctx, bson.M{idKey: oid}).Decode(&product)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find product %s: %w", id, mapError(err))
	}
	return &product, nil
}

// Create inserts a new product into the collection.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := validateNew(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	coll, err := r.collections.Collection(ctx)
	if err != nil {
		return nil, err
	}

	// Only initialize metadata if not already set
	if product.ID.IsZero() {
		product.InitMeta()
	}

	if _, err := coll.InsertOne(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", mapError(err))
	}
	return product, nil
}

// Update sets the supplied fields and returns the product as stored afterwards.
// An empty patch leaves the product untouched.
func (r *ProductRepository) Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}
	coll, err := r.collections.Collection(ctx)
	if err != nil {
		return nil, err
	}

	set := setFields(patch)
	set["updatedAt"] = model.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product model.Product
	err = coll.FindOneAndUpdate(ctx, bson.M{idKey: oid}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, mapError(err))
	}
	return &product, nil
}

// DeleteByID deletes a product by ID and returns the removed document.
func (r *ProductRepository) DeleteByID(ctx context.Context, id string) (*model.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	coll, err := r.collections.Collection(ctx)
	if err != nil {
		return nil, err
	}

	var product model.Product
	if err := coll.FindOneAndDelete(ctx, bson.M{idKey: oid}).Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to delete product %s: %w", id, mapError(err))
	}
	return &product, nil
}

// withTimeout runs fn under its own deadline and reports an overrun as ErrQueryTimeout.
func withTimeout(ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s exceeded %s: %w", op, timeout, repository.ErrQueryTimeout)
	}
	return err
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	return oid, nil
}

func mapError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		return fmt.Errorf("%w: %w", repository.ErrInvalidInput, err)
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorCode(documentValidationFailure) {
		return fmt.Errorf("%w: %w", repository.ErrInvalidInput, err)
	}
	return err
}

func validateNew(product *model.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: name is required", repository.ErrInvalidInput)
	}
	return validateAmounts(product.Price, product.Stock)
}

func validatePatch(patch model.ProductPatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", repository.ErrInvalidInput)
	}
	return validateAmounts(patch.Price, patch.Stock)
}

func validateAmounts(price *float64, stock *int) error {
	if price != nil && *price < 0 {
		return fmt.Errorf("%w: price must be non-negative", repository.ErrInvalidInput)
	}
	if stock != nil && *stock < 0 {
		return fmt.Errorf("%w: stock must be non-negative", repository.ErrInvalidInput)
	}
	return nil
}
