package controller

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/iyhunko/product-inventory-api/internal/model"
	"github.com/iyhunko/product-inventory-api/internal/repository"
	"github.com/iyhunko/product-inventory-api/internal/service"
)

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService *service.ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ProductRequest represents the request body for creating or updating a product.
// Absent fields stay nil; present ones are written even when zero.
type ProductRequest struct {
	Name        *string  `json:"name"`
	Price       *Float   `json:"price" binding:"omitempty,gte=0"`
	Category    *string  `json:"category"`
	Stock       *Integer `json:"stock" binding:"omitempty,gte=0"`
	Description *string  `json:"description"`
}

func (r ProductRequest) patch() model.ProductPatch {
	patch := model.ProductPatch{
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
	}
	if r.Price != nil {
		price := float64(*r.Price)
		patch.Price = &price
	}
	if r.Stock != nil {
		stock := int(*r.Stock)
		patch.Stock = &stock
	}
	return patch
}

// ListProductsRequest represents the query parameters for listing products.
// Values stay raw strings so malformed ones fall back to defaults instead of failing the request.
type ListProductsRequest struct {
	Page     string `form:"page"`
	Limit    string `form:"limit"`
	Category string `form:"category"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
	Name     string `form:"name"`
	Stock    string `form:"stock"`
	Sort     string `form:"sort"`
}

func (r ListProductsRequest) query() *repository.ProductQuery {
	return repository.NewQuery().
		ApplyPagination(r.Page, r.Limit).
		WithCategory(r.Category).
		WithPriceRange(r.MinPrice, r.MaxPrice).
		WithName(r.Name).
		WithMinStock(r.Stock).
		ApplySort(r.Sort)
}

// AppliedCriteria echoes what the store was asked to do, null when nothing was applied.
type AppliedCriteria struct {
	Applied interface{} `json:"applied"`
}

// ListProductsResponse represents the response body for listing products.
type ListProductsResponse struct {
	Products   []*model.Product      `json:"products"`
	Pagination repository.Pagination `json:"pagination"`
	Filters    AppliedCriteria       `json:"filters"`
	Sorting    AppliedCriteria       `json:"sorting"`
}

// ListProducts handles the HTTP GET request for listing products with pagination.
func (pc *ProductController) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, "Error fetching products", fmt.Errorf("%w: %w", repository.ErrInvalidInput, err))
		return
	}

	list, err := pc.productService.ListProducts(c.Request.Context(), *req.query())
	if err != nil {
		respondError(c, "Error fetching products", err)
		return
	}

	response := ListProductsResponse{
		Products:   list.Products,
		Pagination: list.Pagination,
	}
	if list.Filter != nil {
		response.Filters.Applied = list.Filter
	}
	if list.Sort != nil {
		response.Sorting.Applied = list.Sort
	}
	c.JSON(http.StatusOK, response)
}

// GetProduct handles the HTTP GET request for a single product.
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Error fetching product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := bindProduct(c, &req); err != nil {
		respondError(c, "Error creating product", err)
		return
	}

	created, err := pc.productService.CreateProduct(c.Request.Context(), req.patch())
	if err != nil {
		respondError(c, "Error creating product", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateProduct handles the HTTP PUT request for a partial update of a product.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := bindProduct(c, &req); err != nil {
		respondError(c, "Error updating product", err)
		return
	}

	updated, err := pc.productService.UpdateProduct(c.Request.Context(), c.Param("id"), req.patch())
	if errors.Is(err, repository.ErrInvalidID) {
		// an update names its target in the request, so a malformed id is bad input
		err = fmt.Errorf("%w: %w", repository.ErrInvalidInput, err)
	}
	if err != nil {
		respondError(c, "Error updating product", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	if err := pc.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "Error deleting product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// respondError maps service errors to status codes. Not found carries no error detail.
func respondError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
	case errors.Is(err, repository.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": message, "error": err.Error()})
	default:
		slog.Error(message, slog.Any("err", err), slog.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"message": message, "error": err.Error()})
	}
}

// bindProduct decodes the request body. An empty body supplies no fields.
func bindProduct(c *gin.Context, req *ProductRequest) error {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return bindingError(err)
	}
	return nil
}

// bindingError turns a malformed body into an invalid input error naming the offending fields.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s must be %s %s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		}
		return fmt.Errorf("%w: %s", repository.ErrInvalidInput, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %w", repository.ErrInvalidInput, err)
}
