package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductAction names the write that produced a ProductEvent.
type ProductAction string

const (
	ProductCreated ProductAction = "created"
	ProductUpdated ProductAction = "updated"
	ProductDeleted ProductAction = "deleted"
)

// ProductEvent describes a product change announced to other services.
type ProductEvent struct {
	ID         uuid.UUID     `json:"event_id"`
	Action     ProductAction `json:"action"`
	ProductID  string        `json:"product_id"`
	Name       string        `json:"name"`
	Price      *float64      `json:"price,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewProductEvent creates an event for the given product.
func NewProductEvent(action ProductAction, product *Product) ProductEvent {
	e := ProductEvent{
		Action:    action,
		ProductID: product.ID.Hex(),
		Name:      product.Name,
		Price:     product.Price,
	}
	e.InitMeta()
	return e
}

// InitMeta initializes the event ID and timestamp.
func (e *ProductEvent) InitMeta() {
	e.ID = uuid.New()
	e.OccurredAt = time.Now().UTC()
}
