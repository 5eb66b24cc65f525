package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iyhunko/product-inventory-api/internal/config"
	"github.com/iyhunko/product-inventory-api/internal/logger"
	sqspkg "github.com/iyhunko/product-inventory-api/internal/sqs"
)

func main() {
	conf, err := config.LoadConsumerFromEnv()
	handleErr("loading config", err)
	logger.InitJSONLogger(conf.DebugMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
	handleErr("loading AWS config", err)
	consumer := sqspkg.NewConsumer(sqsClient, conf.AWS.SQSQueueURL, sqspkg.LogEvent)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Consumer stopped", slog.Any("err", err))
		}
	}()

	slog.Info("Notification service started. Listening for messages...", slog.String("queue", conf.AWS.SQSQueueURL))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutting down gracefully...")
	cancel()
	<-done
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
