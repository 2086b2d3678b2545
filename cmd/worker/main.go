// Package main provides the worker application entry point.
// The worker consumes order events from Kafka, runs each batch through
// validation, preload, transform, and grouping, and publishes the
// processed orders downstream.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/dedup"
	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/dlq"
	httpserver "github.com/fairyhunter13/kafka-order-processor/internal/adapter/httpserver"
	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/observability"
	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/queue/kafka"
	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/repo/mockstore"
	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/repo/mongodb"
	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/kafka-order-processor/internal/app"
	"github.com/fairyhunter13/kafka-order-processor/internal/cache"
	"github.com/fairyhunter13/kafka-order-processor/internal/config"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
	"github.com/fairyhunter13/kafka-order-processor/internal/usecase"
)

const (
	janitorInterval    = time.Minute
	cacheStatsInterval = 30 * time.Second
	dependencyTimeout  = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register Prometheus metrics once per process; the ops router
	// exposes them on /metrics.
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	slog.Info("starting worker",
		slog.String("env", cfg.AppEnv),
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", cfg.TopicOrderEvents))

	// Root context for everything that should stop on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reference data store (Postgres).
	pool, err := postgres.NewPool(ctx, cfg.DBURL, int32(cfg.DBConcurrency))
	if err != nil {
		slog.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := waitFor(ctx, "postgres", pool.Ping); err != nil {
		slog.Error("database never became ready", slog.Any("error", err))
		os.Exit(1)
	}
	refRepo := postgres.NewReferenceRepo(pool, cfg.DBChunkSize, cfg.DBMaxRetries, cfg.DBRetryDelay())

	// Pending order source: MongoDB, or the deterministic in-memory
	// source when MongoDB is disabled.
	var (
		orders      domain.OrderSource
		ordersRepo  *mongodb.OrdersRepo
		mongoPinger app.MongoPinger
	)
	if cfg.MongoEnabled {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			slog.Error("mongodb connection failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				slog.Error("mongodb disconnect failed", slog.Any("error", err))
			}
		}()
		if err := waitFor(ctx, "mongodb", func(pingCtx context.Context) error {
			return mongoClient.Ping(pingCtx, nil)
		}); err != nil {
			slog.Error("mongodb never became ready", slog.Any("error", err))
			os.Exit(1)
		}
		ordersRepo = mongodb.NewOrdersRepo(mongoClient, cfg.MongoDatabase, cfg.FetchPendingLimit)
		orders = ordersRepo
		mongoPinger = mongoClient
	} else {
		slog.Info("mongodb disabled, using in-memory order source")
		orders = mockstore.New(0)
	}

	// Caches. Every cache joins the stores slice so the ops surface can
	// report and invalidate it and the metrics reporter can export it.
	var stores []cache.Store
	partners := cache.New[domain.TradingPartner]("partners", cfg.CachePartnerMaxSize, cfg.CachePartnerTTL)
	units := cache.New[domain.BusinessUnit]("business_units", cfg.CachePartnerMaxSize, cfg.CachePartnerTTL)
	stores = append(stores, partners, units)

	// Event dedup backend.
	var (
		dedupStore domain.DedupStore
		rdb        *redis.Client
	)
	switch cfg.DedupBackend {
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid redis url", slog.Any("error", err))
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("redis close failed", slog.Any("error", err))
			}
		}()
		if err := waitFor(ctx, "redis", func(pingCtx context.Context) error {
			return rdb.Ping(pingCtx).Err()
		}); err != nil {
			slog.Error("redis never became ready", slog.Any("error", err))
			os.Exit(1)
		}
		redisDedup, err := dedup.NewRedis(rdb, cfg.CacheDedupTTL)
		if err != nil {
			slog.Error("redis dedup init failed", slog.Any("error", err))
			os.Exit(1)
		}
		dedupStore = redisDedup
	default:
		memDedup := dedup.NewMemory(cfg.CacheDedupMaxSize, cfg.CacheDedupTTL)
		dedupStore = memDedup
		stores = append(stores, memDedup.Cache())
	}

	// Downstream publisher: Kafka, or log-only when the downstream
	// queue is disabled.
	var queue domain.QueuePublisher = kafka.LogProducer{}
	if cfg.WMQEnabled {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.TopicProcessedOrders)
		if err != nil {
			slog.Error("kafka producer init failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				slog.Error("failed to close kafka producer", slog.Any("error", err))
			}
		}()
		queue = producer
	} else {
		slog.Info("downstream queue disabled, processed orders will be logged only")
	}

	// Dead-letter sink.
	var deadLetter domain.DeadLetterSink = dlq.LogSink{}
	if cfg.DLQSink == "kafka" {
		kafkaSink, err := dlq.NewKafkaSink(cfg.KafkaBrokers, cfg.TopicOrderEventsDLQ)
		if err != nil {
			slog.Error("kafka dlq sink init failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := kafkaSink.Close(); err != nil {
				slog.Error("failed to close dlq sink", slog.Any("error", err))
			}
		}()
		deadLetter = kafkaSink
	}

	// Pipeline stages.
	validator := usecase.NewValidator(refRepo, partners, units)

	preloader := usecase.NewPreloader(refRepo, cfg.DBChunkSize, cfg.DBConcurrency)
	var loader usecase.ContextLoader = preloader
	if cfg.DataCacheEnabled {
		customers := cache.New[domain.Customer]("customers", cfg.CacheDataMaxSize, cfg.CacheDataTTL)
		inventories := cache.New[domain.Inventory]("inventories", cfg.CacheDataMaxSize, cfg.CacheDataTTL)
		pricings := cache.New[domain.Pricing]("pricings", cfg.CacheDataMaxSize, cfg.CacheDataTTL)
		stores = append(stores, customers, inventories, pricings)
		loader = usecase.NewCachingPreloader(preloader, customers, inventories, pricings)
	}

	transformer := usecase.NewTransformer(cfg.ProcessingConcurrency, processedBy())
	grouper := usecase.NewGrouper(cfg.GroupingStrategy, decimal.NewFromFloat(cfg.GroupingHighValueThreshold), cfg.GroupingMinGroupSize)
	publisher := usecase.NewPublisher(queue, grouper, cfg.PublishConcurrency)
	orchestrator := usecase.NewOrchestrator(loader, transformer, publisher)
	handler := usecase.NewEventHandler(dedupStore, validator, orders, orchestrator, deadLetter)

	// Input consumer.
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.TopicOrderEvents, handler, deadLetter)
	if err != nil {
		slog.Error("kafka consumer init failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := waitFor(ctx, "kafka", consumer.Client().Ping); err != nil {
		slog.Error("kafka never became ready", slog.Any("error", err))
		os.Exit(1)
	}

	// Cache maintenance.
	for _, s := range stores {
		go s.Janitor(ctx, janitorInterval)
	}
	go reportCacheStats(ctx, stores, cacheStatsInterval)

	// Stale-order reclaim, only meaningful with a real order store.
	if cfg.MongoEnabled {
		if sweeper := app.NewStaleOrderSweeper(ordersRepo, cfg.StaleReclaimAfter, cfg.StaleReclaimInterval); sweeper != nil {
			go sweeper.Run(ctx)
		}
	}

	// Ops HTTP surface: health, readiness, metrics, cache admin.
	dbCheck, mongoCheck, kafkaCheck, redisCheck := app.BuildReadinessChecks(pool, mongoPinger, consumer.Client(), rdb)
	srv := httpserver.NewServer(cfg, stores, dbCheck, mongoCheck, kafkaCheck, redisCheck)
	opsHTTP := &http.Server{
		Addr:              cfg.AdminAddr,
		Handler:           app.BuildRouter(cfg, srv),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpErrCh := make(chan error, 1)
	go func() {
		slog.Info("ops http server starting", slog.String("addr", cfg.AdminAddr))
		httpErrCh <- opsHTTP.ListenAndServe()
	}()

	// Consume until a signal arrives or the consumer dies.
	consumerErrCh := make(chan error, 1)
	go func() {
		consumerErrCh <- consumer.Run(ctx)
	}()

	slog.Info("worker started, waiting for shutdown signal")
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-consumerErrCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("consumer error", slog.Any("error", err))
		}
	case err := <-httpErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ops http server error", slog.Any("error", err))
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = opsHTTP.Shutdown(shutdownCtx)
	if err := consumer.Close(); err != nil {
		slog.Error("failed to close consumer", slog.Any("error", err))
	}
	// Wait for in-flight batches so their publishes are not cut off.
	handler.Drain()
	slog.Info("worker stopped")
}

// processedBy identifies this worker instance on processed orders.
func processedBy() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "kafka-order-processor"
	}
	return host
}

// waitFor blocks until ping succeeds, retrying with exponential
// backoff, so the worker tolerates dependencies that come up after it.
func waitFor(ctx context.Context, name string, ping func(context.Context) error) error {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond
	expo.MaxInterval = 5 * time.Second
	expo.MaxElapsedTime = time.Minute

	op := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, dependencyTimeout)
		defer cancel()
		if err := ping(pingCtx); err != nil {
			slog.Warn("dependency not ready",
				slog.String("dependency", name),
				slog.Any("error", err))
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		return fmt.Errorf("op=main.waitFor: %s: %w", name, err)
	}
	slog.Info("dependency ready", slog.String("dependency", name))
	return nil
}

// reportCacheStats exports cache gauges on an interval.
func reportCacheStats(ctx context.Context, stores []cache.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range stores {
				observability.UpdateCacheStats(s.Name(), s.Len(), s.Hits(), s.Misses())
			}
		}
	}
}
