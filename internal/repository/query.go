package repository

import (
	"math"
	"strconv"
	"strings"
)

const (
	IDField       QueryField = "id"
	NameField     QueryField = "name"
	PriceField    QueryField = "price"
	CategoryField QueryField = "category"
	StockField    QueryField = "stock"
)

// QueryField names a product attribute a query can constrain or sort on.
type QueryField string

// SortField is one entry of a multi-field sort; later entries break ties of earlier ones.
type SortField struct {
	Field      QueryField
	Descending bool
}

// ProductQuery is the store-agnostic form of a product listing request.
// Nil or empty criteria leave the corresponding field unconstrained.
type ProductQuery struct {
	Page  int
	Limit int

	Category string
	MinPrice *float64
	MaxPrice *float64
	// Name is matched as a case-insensitive substring.
	Name     string
	MinStock *int

	Sort []SortField
}

// NewQuery returns a query for the first page with the default limit.
func NewQuery() *ProductQuery {
	return &ProductQuery{
		Page:  DefaultPage,
		Limit: DefaultPaginationLimit,
	}
}

// Skip is the number of matching products preceding the requested page.
func (q *ProductQuery) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}

// ApplyPagination sets page and limit from raw parameters. Missing, malformed or
// non-positive values fall back to the defaults, as does a page whose offset
// cannot be represented.
func (q *ProductQuery) ApplyPagination(page, limit string) *ProductQuery {
	q.Page = parsePositive(page, DefaultPage)
	q.Limit = parsePositive(limit, DefaultPaginationLimit)
	if int64(q.Page-1) > math.MaxInt64/int64(q.Limit) {
		q.Page = DefaultPage
	}
	return q
}

// WithCategory constrains the category to an exact match.
func (q *ProductQuery) WithCategory(category string) *ProductQuery {
	q.Category = category
	return q
}

// WithName constrains the name to contain s, ignoring case.
func (q *ProductQuery) WithName(s string) *ProductQuery {
	q.Name = s
	return q
}

// WithPriceRange sets the inclusive price bounds; unparsable bounds are ignored.
func (q *ProductQuery) WithPriceRange(minPrice, maxPrice string) *ProductQuery {
	q.MinPrice = parseFloat(minPrice)
	q.MaxPrice = parseFloat(maxPrice)
	return q
}

// WithMinStock sets the inclusive stock threshold; an unparsable value is ignored.
func (q *ProductQuery) WithMinStock(stock string) *ProductQuery {
	if n, err := strconv.Atoi(stock); err == nil {
		q.MinStock = &n
	}
	return q
}

// ApplySort parses a comma separated field list. A leading "-" sorts that field descending.
// A repeated field keeps its first position and takes the last direction.
func (q *ProductQuery) ApplySort(sort string) *ProductQuery {
	q.Sort = nil
	seen := make(map[QueryField]int)
	for _, item := range strings.Split(sort, ",") {
		item = strings.TrimSpace(item)
		desc := strings.HasPrefix(item, "-")
		field := QueryField(strings.TrimSpace(strings.TrimPrefix(item, "-")))
		if field == "" {
			continue
		}
		if i, ok := seen[field]; ok {
			q.Sort[i].Descending = desc
			continue
		}
		seen[field] = len(q.Sort)
		q.Sort = append(q.Sort, SortField{Field: field, Descending: desc})
	}
	return q
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}
