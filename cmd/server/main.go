package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcAdapter "github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/grpc"
	httpAdapter "github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/http"
	natsAdapter "github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/repository/cache"
	mongoRepo "github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/repository/mongodb"
	postgresRepo "github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/repository/postgres"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/tracer"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	defer appLogger.Sync()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Application starting...", zap.String("service_name", cfg.ServiceName))

	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	repo, closeStore := openStore(startCtx, cfg, appLogger)
	defer closeStore()

	var listingCache domain.ListingCache
	var invalidator natsAdapter.CacheInvalidator
	if cfg.RedisAddress != "" {
		redisClient, err := cache.NewRedisClient(startCtx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.String("address", cfg.RedisAddress), zap.Error(err))
		}
		lc := cache.NewListingCache(redisClient, cfg.CacheTTL, cfg.LocalCacheSize, appLogger, metricsManager)
		defer func() {
			lc.Close()
			if err := redisClient.Close(); err != nil {
				appLogger.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		listingCache, invalidator = lc, lc
		appLogger.Info("Listing cache initialized.", zap.Duration("ttl", cfg.CacheTTL))
	} else {
		appLogger.Warn("REDIS_ADDRESS not set, listing cache disabled.")
	}

	var photos domain.PhotoStorage
	if cfg.MinIOEndpoint != "" {
		ps, err := s3.NewPhotoStorage(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey,
			cfg.MinIOBucket, cfg.MinIORegion, cfg.MinIOUseSSL, cfg.PhotoURLTTL, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize photo storage", zap.Error(err))
		}
		photos = ps
	} else {
		appLogger.Warn("MINIO_ENDPOINT not set, photo URLs disabled.")
	}

	if cfg.NATSURL != "" && invalidator != nil {
		subscriber, err := natsAdapter.NewSubscriber(cfg.NATSURL, appLogger, cfg.ServiceName, invalidator, metricsManager)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS subscriber", zap.Error(err))
		}
		if err := subscriber.Start(); err != nil {
			appLogger.Fatal("Failed to subscribe to change events", zap.Error(err))
		}
		defer subscriber.Close()
	} else {
		appLogger.Info("Cache invalidation subscriber not started.")
	}

	searchUsecase := usecase.NewSearchUsecase(repo, listingCache, photos, appLogger, metricsManager)
	handler := httpAdapter.NewPropertyHandler(searchUsecase, appLogger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpAdapter.NewRouter(handler, appLogger, metricsManager),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	var grpcServer *grpcAdapter.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			appLogger.Fatal("Failed to listen for gRPC", zap.String("port", cfg.GRPCPort), zap.Error(err))
		}
		grpcServer = grpcAdapter.NewServer(appLogger)
		go func() {
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				appLogger.Fatal("gRPC server Serve error", zap.Error(err))
			}
		}()
		grpcServer.SetServing(true)
	}

	metricsServer := metrics.NewMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry)
	if metricsServer != nil {
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Prometheus metrics server failed", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(ctx)
		appLogger.Info("gRPC server stopped.")
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			appLogger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}
	appLogger.Info("Application shutting down...")
}

// openStore connects the configured listing store and returns it with its
// cleanup function.
func openStore(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (domain.ListingRepository, func()) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgresRepo.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxOpenConns, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		if err := postgresRepo.EnsureSchema(ctx, db); err != nil {
			appLogger.Fatal("Failed to apply PostgreSQL schema", zap.Error(err))
		}
		return postgresRepo.NewListingRepository(db, appLogger), func() {
			if err := db.Close(); err != nil {
				appLogger.Error("Error closing PostgreSQL", zap.Error(err))
			}
		}
	default:
		client, err := mongoRepo.Connect(ctx, cfg.MongoURI, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		repo := mongoRepo.NewListingRepository(client.Database(cfg.MongoDatabase), appLogger)
		return repo, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
			}
		}
	}
}
