package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-inventory-api/internal/config"
	httpAPI "github.com/iyhunko/product-inventory-api/internal/http"
	"github.com/iyhunko/product-inventory-api/internal/http/controller"
	"github.com/iyhunko/product-inventory-api/internal/logger"
	"github.com/iyhunko/product-inventory-api/internal/metrics"
	"github.com/iyhunko/product-inventory-api/internal/repository/mongodb"
	"github.com/iyhunko/product-inventory-api/internal/service"
	sqspkg "github.com/iyhunko/product-inventory-api/internal/sqs"
)

const (
	shutdownTimeout   = 10 * time.Second
	startupTimeout    = 15 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)
	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connector := mongodb.NewConnector(conf.Database)
	if !conf.IsProduction() {
		startCtx, startCancel := context.WithTimeout(ctx, startupTimeout)
		_, err := connector.Client(startCtx)
		startCancel()
		handleErr("connecting to MongoDB", err)
	}
	productRepository := mongodb.NewProductRepository(connector)

	var publisher service.EventPublisher
	workerDone := make(chan struct{})
	if conf.AWS.SQSQueueURL != "" {
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
		handleErr("loading AWS config", err)

		worker := service.NewEventWorker(sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL), service.DefaultEventBufferSize)
		go func() {
			defer close(workerDone)
			worker.Start(ctx)
		}()
		publisher = worker
	} else {
		close(workerDone)
		slog.Info("SQS queue not configured, product events are disabled")
	}
	productService := service.NewProductService(productRepository, publisher)

	ctr := controller.New(connector)
	productCtr := controller.NewProductController(productService)
	router := httpAPI.InitRouter(conf, connector, gin.New(), ctr, productCtr)

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port), slog.String("env", conf.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metricsServer := metrics.StartMetricsServer(conf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", slog.Any("err", err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server shutdown failed", slog.Any("err", err))
		}
	}
	// stops the event worker, which drains queued events
	cancel()
	<-workerDone
	if err := connector.Disconnect(shutdownCtx); err != nil {
		slog.Error("MongoDB disconnect failed", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
