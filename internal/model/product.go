package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a product document. Only Name is mandatory, every other
// field may be absent from the stored document.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Price       *float64           `json:"price,omitempty" bson:"price,omitempty"`
	Category    string             `json:"category,omitempty" bson:"category,omitempty"`
	Stock       *int               `json:"stock,omitempty" bson:"stock,omitempty"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// InitMeta initializes the product metadata including ID and timestamps.
func (p *Product) InitMeta() {
	p.ID = primitive.NewObjectID()
	now := Now()
	p.CreatedAt = now
	p.UpdatedAt = now
}

// Now returns the current time at the millisecond precision the document store keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// ProductPatch carries the set of fields a client supplied. A non-nil field is
// written even when it holds a zero value, so {"price": 0} really sets the price to 0.
type ProductPatch struct {
	Name        *string
	Price       *float64
	Category    *string
	Stock       *int
	Description *string
}

// IsEmpty reports whether no field was supplied.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Category == nil && p.Stock == nil && p.Description == nil
}

// NewProduct builds a product out of the supplied fields.
func (p ProductPatch) NewProduct() *Product {
	product := &Product{
		Price: p.Price,
		Stock: p.Stock,
	}
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	return product
}
