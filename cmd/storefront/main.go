package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/identity"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/screens"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := telemetry.SetupTracing(cfg.TracingEnabled, "storefront", os.Stdout)
	if err != nil {
		logger.Fatal("setup tracing", zap.Error(err))
	}

	formatter, err := money.NewFormatter(cfg.Locale, cfg.Currency)
	if err != nil {
		logger.Fatal("build currency formatter", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Remote product API
	base, err := clients.NewClient("product-api", cfg.ProductAPIURL, clients.NewHTTPClient(cfg.UpstreamTimeout))
	if err != nil {
		logger.Fatal("build product api client", zap.Error(err))
	}
	store := clients.NewStoreClient(base, clients.Routes{
		CatalogPath: cfg.CatalogPath,
		CartPath:    cfg.CartPath,
	}, logger)

	// Shared backing stores
	var (
		rdb  *redis.Client
		pool *pgxpool.Pool
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
	}
	if cfg.DatabaseURL != "" {
		if err := db.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			logger.Fatal("run migrations", zap.Error(err))
		}
		if pool, err = db.NewPool(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal("connect database", zap.Error(err))
		}
		defer pool.Close()
	}

	idStore := identityStore(cfg, rdb, pool)
	logger.Info("identity store selected", zap.String("backend", cfg.IdentityBackend))

	publisher, closePublisher := eventPublisher(cfg, rdb, pool, logger)
	defer closePublisher()

	sessions := screens.NewRegistry(screens.Deps{
		API:          store,
		Publisher:    publisher,
		Formatter:    formatter,
		CatalogLimit: cfg.CatalogLimit,
		ShareBaseURL: cfg.ShareBaseURL,
		Logger:       logger,
		SessionIdle:  cfg.SessionIdle,
		MaxSessions:  cfg.MaxSessions,
	})
	defer sessions.Close()

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:           logger,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		Sessions:         sessions,
		Identity:         identity.NewService(idStore, cfg.LoginDelay, logger),
		HealthProbes: []clients.HealthProbe{
			{Name: "product-api", Client: base, Path: cfg.CatalogPath},
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown error", zap.Error(err))
	}
}

func identityStore(cfg config.Config, rdb *redis.Client, pool *pgxpool.Pool) identity.Store {
	switch cfg.IdentityBackend {
	case config.IdentityRedis:
		return identity.NewRedisStore(rdb, "storefront:user:", cfg.IdentityTTL)
	case config.IdentityPostgres:
		return identity.NewPostgresStore(pool)
	default:
		return identity.NewMemoryStore()
	}
}

// eventPublisher connects to the broker when one is configured. Sequence
// numbers survive restarts when Redis or Postgres is available.
func eventPublisher(cfg config.Config, rdb *redis.Client, pool *pgxpool.Pool, logger *zap.Logger) (events.Publisher, func()) {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, cart events are dropped")
		return events.NoopPublisher{Logger: logger}, func() {}
	}

	var seq events.SequenceSource
	switch {
	case rdb != nil:
		seq = events.NewRedisSequence(rdb, "storefront:seq:")
	case pool != nil:
		seq = events.NewPostgresSequence(pool)
	default:
		seq = events.NewMemorySequence()
	}

	conn, err := events.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("connect rabbitmq", zap.Error(err))
	}
	pub, err := events.NewPublisher(conn, seq, events.PublisherOptions{Producer: "storefront"})
	if err != nil {
		_ = conn.Close()
		logger.Fatal("create event publisher", zap.Error(err))
	}

	return pub, func() {
		if err := pub.Close(); err != nil {
			logger.Warn("publisher close error", zap.Error(err))
		}
		_ = conn.Close()
	}
}
