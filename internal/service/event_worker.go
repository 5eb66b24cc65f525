package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iyhunko/product-inventory-api/internal/model"
)

const (
	// DefaultEventBufferSize is the number of events a worker holds before rejecting more.
	DefaultEventBufferSize = 100
	defaultPublishTimeout  = 5 * time.Second
)

// ErrEventBufferFull is returned when the worker cannot accept another event.
var ErrEventBufferFull = errors.New("event buffer full")

// EventWorker publishes product events in the background so writes do not wait on the queue.
type EventWorker struct {
	publisher      EventPublisher
	events         chan model.ProductEvent
	publishTimeout time.Duration
}

// NewEventWorker creates a new EventWorker instance.
func NewEventWorker(publisher EventPublisher, bufferSize int) *EventWorker {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}
	return &EventWorker{
		publisher:      publisher,
		events:         make(chan model.ProductEvent, bufferSize),
		publishTimeout: defaultPublishTimeout,
	}
}

// PublishProductEvent queues the event without blocking.
func (ew *EventWorker) PublishProductEvent(_ context.Context, event model.ProductEvent) error {
	select {
	case ew.events <- event:
		return nil
	default:
		return ErrEventBufferFull
	}
}

// Start publishes queued events until ctx is cancelled, then drains what is left.
func (ew *EventWorker) Start(ctx context.Context) {
	slog.Info("Event worker started", slog.Int("buffer", cap(ew.events)))

	for {
		select {
		case <-ctx.Done():
			ew.drain()
			slog.Info("Event worker stopped")
			return
		case event := <-ew.events:
			ew.processEvent(context.WithoutCancel(ctx), event)
		}
	}
}

func (ew *EventWorker) drain() {
	for {
		select {
		case event := <-ew.events:
			ew.processEvent(context.Background(), event)
		default:
			return
		}
	}
}

func (ew *EventWorker) processEvent(ctx context.Context, event model.ProductEvent) {
	ctx, cancel := context.WithTimeout(ctx, ew.publishTimeout)
	defer cancel()

	if err := ew.publisher.PublishProductEvent(ctx, event); err != nil {
		slog.Error("Failed to publish product event",
			slog.String("event_id", event.ID.String()),
			slog.String("action", string(event.Action)),
			slog.Any("err", err))
		return
	}
	slog.Debug("Product event published", slog.String("event_id", event.ID.String()))
}
