package main

import (
	"context"
	"errors"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mrops-br/sales-ingestion-api/internal/app/service"
	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/config"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/http"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/lock"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/repository/postgres"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/telemetry"
)

const instrumentationName = "sales-ingestion-api"

type repositories struct {
	products  domain.ProductRepository
	customers domain.CustomerRepository
	sales     domain.SaleRepository
	close     func()
}

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize OpenTelemetry
	telem, err := telemetry.NewTelemetry(&cfg.OTLP)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	tracer := telem.TracerProvider.Tracer(instrumentationName)
	meter := telem.MeterProvider.Meter(instrumentationName)
	logger := telem.Logger

	logger.Info("Starting Sales Ingestion API")

	repos, err := newRepositories(ctx, cfg, telem)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err.Error())
		return
	}
	defer repos.close()

	ingestionLock, closeLock := newLock(cfg, telem)
	defer closeLock()

	// Services
	resolver := service.NewEntityResolver(repos.products, repos.customers, tracer, meter, logger)
	materializer := service.NewMaterializer(time.Now, logger)
	runner := service.NewBatchRunner(resolver, materializer, repos.sales, tracer, meter, logger)
	ingestion := service.NewIngestionService(runner, cfg.Ingestion.DatPath, ingestionLock, tracer, logger)
	queries := service.NewSaleQueryService(repos.sales, tracer, logger)

	// Never fatal: a missing or broken file leaves the store as it is
	ingestion.LoadOnStartup(ctx)

	saleHandler := handler.NewSaleHandler(ingestion, queries, logger)
	server := http.NewServer(&cfg.Server, saleHandler, logger, telem)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Error("Server error", "error", err.Error())
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err.Error())
	}

	logger.Info("Server stopped")
}

func newRepositories(ctx context.Context, cfg *config.Config, telem *telemetry.Telemetry) (*repositories, error) {
	logger := telem.Logger

	if cfg.Storage.Driver == config.StoragePostgres {
		pool, err := postgres.NewPool(ctx, postgres.Config{
			URL:      cfg.Storage.DatabaseURL,
			MaxConns: cfg.Storage.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("Using PostgreSQL storage")
		return &repositories{
			products:  postgres.NewProductRepository(pool),
			customers: postgres.NewCustomerRepository(pool),
			sales:     postgres.NewSaleRepository(pool),
			close:     pool.Close,
		}, nil
	}

	tracer := telem.TracerProvider.Tracer(instrumentationName)
	logger.Info("Using in-memory storage")
	return &repositories{
		products:  memory.NewProductRepository(tracer, logger),
		customers: memory.NewCustomerRepository(tracer, logger),
		sales:     memory.NewSaleRepository(tracer, logger),
		close:     func() {},
	}, nil
}

func newLock(cfg *config.Config, telem *telemetry.Telemetry) (service.IngestionLock, func()) {
	if cfg.Lock.Backend == config.LockRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Lock.RedisAddr,
			Password: cfg.Lock.RedisPassword,
		})
		telem.Logger.Info("Using Redis ingestion lock", "addr", cfg.Lock.RedisAddr)
		return lock.NewRedis(client, cfg.Lock.RedisKey, cfg.Lock.TTL, telem.Logger), func() { _ = client.Close() }
	}
	return lock.NewLocal(), func() {}
}
