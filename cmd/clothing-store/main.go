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

	"github.com/aaravmahajanofficial/clothing-store/internal/api/handlers"
	"github.com/aaravmahajanofficial/clothing-store/internal/api/middleware"
	"github.com/aaravmahajanofficial/clothing-store/internal/cache"
	"github.com/aaravmahajanofficial/clothing-store/internal/config"
	"github.com/aaravmahajanofficial/clothing-store/internal/health"
	"github.com/aaravmahajanofficial/clothing-store/internal/metrics"
	repository "github.com/aaravmahajanofficial/clothing-store/internal/repositories"
	service "github.com/aaravmahajanofficial/clothing-store/internal/services"
	"github.com/aaravmahajanofficial/clothing-store/internal/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, &cfg.Otel)
	if err != nil {
		slog.Error("❌ Error initializing tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Storage setup
	cartRepo, closeStore, err := openCartStore(ctx, cfg)
	if err != nil {
		slog.Error("❌ Error accessing the cart store", slog.String("driver", cfg.Storage.Driver), slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Cache setup
	var cartCache cache.CartCache = cache.Noop{}
	var redisClient *redis.Client

	if !cfg.Cache.Disabled {
		redisClient, err = repository.NewRedisClient(ctx, &cfg.RedisConnect)
		if err != nil {
			slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
			os.Exit(1)
		}
		cartCache = cache.NewRedisCartCache(redisClient, &cfg.Cache)
	} else {
		slog.Warn("cart cache disabled, every read goes to the store")
	}

	validate := validator.New()
	cartService := service.NewCartService(cartRepo, cartCache, validate, cfg.Cart.MaxRetries)
	cartHandler := handlers.NewCartHandler(cartService, validate)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("driver", cfg.Storage.Driver), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	cartHandler.RegisterRoutes(routerMux)
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining, metrics innermost so it sees the matched pattern
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, cfg.Otel.ServiceName)

	// Setup http server
	server := http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("❌ Failed to start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
		}
	}

	if err := closeStore(shutdownCtx); err != nil {
		slog.Error("⚠️ Error closing cart store", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Cart store connection closed")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Error flushing traces", slog.String("error", err.Error()))
	}
}

func openCartStore(ctx context.Context, cfg *config.Config) (repository.CartRepository, func(context.Context) error, error) {

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pg, err := repository.NewPostgres(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewCartRepo(pg.DB, cfg.Database.QueryTimeout), func(context.Context) error { return pg.Close() }, nil

	case config.StorageMongo:
		db, err := repository.ConnectMongoDB(ctx, &cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}

		repo := repository.NewMongoCartRepo(db, cfg.Mongo.Collection, cfg.Mongo.Timeout)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, nil, err
		}
		return repo, db.Client().Disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
