package mongodb

import (
	"regexp"

	"github.com/iyhunko/product-inventory-api/internal/model"
	"github.com/iyhunko/product-inventory-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
)

const idKey = "_id"

// buildFilter turns the query criteria into a conjunctive filter document.
func buildFilter(q repository.ProductQuery) bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter[string(repository.CategoryField)] = q.Category
	}

	price := bson.M{}
	if q.MinPrice != nil {
		price["$gte"] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		price["$lte"] = *q.MaxPrice
	}
	if len(price) > 0 {
		filter[string(repository.PriceField)] = price
	}

	if q.Name != "" {
		// literal substring, user input is never interpreted as a pattern
		filter[string(repository.NameField)] = bson.M{"$regex": regexp.QuoteMeta(q.Name), "$options": "i"}
	}
	if q.MinStock != nil {
		filter[string(repository.StockField)] = bson.M{"$gte": *q.MinStock}
	}
	return filter
}

// buildSort keeps the requested field order so later fields break ties.
func buildSort(q repository.ProductQuery) bson.D {
	var sort bson.D
	for _, f := range q.Sort {
		sort = append(sort, bson.E{Key: sortKey(f.Field), Value: direction(f)})
	}
	return sort
}

func sortKey(field repository.QueryField) string {
	if field == repository.IDField {
		return idKey
	}
	return string(field)
}

func direction(f repository.SortField) int {
	if f.Descending {
		return -1
	}
	return 1
}

func appliedFilter(filter bson.M) map[string]interface{} {
	if len(filter) == 0 {
		return nil
	}
	return filter
}

func appliedSort(sort bson.D) repository.AppliedSort {
	if len(sort) == 0 {
		return nil
	}
	applied := make(repository.AppliedSort, 0, len(sort))
	for _, e := range sort {
		applied = append(applied, repository.SortOrder{Field: e.Key, Order: e.Value.(int)})
	}
	return applied
}

// setFields lists the supplied patch fields as a $set document.
func setFields(patch model.ProductPatch) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set[string(repository.NameField)] = *patch.Name
	}
	if patch.Price != nil {
		set[string(repository.PriceField)] = *patch.Price
	}
	if patch.Category != nil {
		set[string(repository.CategoryField)] = *patch.Category
	}
	if patch.Stock != nil {
		set[string(repository.StockField)] = *patch.Stock
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	return set
}
