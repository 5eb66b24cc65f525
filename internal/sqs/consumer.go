package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/product-inventory-api/internal/model"
)

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// EventHandler reacts to one product event. A returned error keeps the message on the queue.
type EventHandler func(ctx context.Context, event model.ProductEvent) error

// Consumer handles consuming product events from AWS SQS.
type Consumer struct {
	client   ConsumerAPI
	queueURL string
	handle   EventHandler
}

// NewConsumer creates a new SQS Consumer. A nil handler logs each event.
func NewConsumer(client ConsumerAPI, queueURL string, handle EventHandler) *Consumer {
	if handle == nil {
		handle = LogEvent
	}
	return &Consumer{
		client:   client,
		queueURL: queueURL,
		handle:   handle,
	}
}

// LogEvent writes the received event to the default logger.
func LogEvent(_ context.Context, event model.ProductEvent) error {
	attrs := []any{
		slog.String("event_id", event.ID.String()),
		slog.String("action", string(event.Action)),
		slog.String("product_id", event.ProductID),
		slog.String("name", event.Name),
		slog.Time("occurred_at", event.OccurredAt),
	}
	if event.Price != nil {
		attrs = append(attrs, slog.Float64("price", *event.Price))
	}
	slog.Info("Received product notification", attrs...)
	return nil
}

// Start begins consuming messages from the SQS queue until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping SQS consumer")
			return ctx.Err()
		default:
			if err := c.receiveMessages(ctx); err != nil {
				slog.Error("Error receiving messages", slog.Any("err", err))
			}
		}
	}
}

func (c *Consumer) receiveMessages(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   10,
		WaitTimeSeconds:       20, // Long polling
		MessageAttributeNames: []string{actionAttribute},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		if err := c.processMessage(ctx, message); err != nil {
			slog.Error("Error processing message", slog.Any("err", err))
			continue
		}

		// Delete message after successful processing
		if err := c.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

func (c *Consumer) processMessage(ctx context.Context, message types.Message) error {
	if message.Body == nil {
		return fmt.Errorf("message body is nil")
	}

	var event model.ProductEvent
	if err := json.Unmarshal([]byte(*message.Body), &event); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	if err := c.handle(ctx, event); err != nil {
		return fmt.Errorf("failed to handle %s event for product %s: %w", event.Action, event.ProductID, err)
	}
	return nil
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
