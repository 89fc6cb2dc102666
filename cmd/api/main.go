package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/foodcart/api/routes"
	"github.com/angelmondragon/foodcart/internal/checkout"
	"github.com/angelmondragon/foodcart/internal/cron"
	"github.com/angelmondragon/foodcart/internal/restaurants"
	"github.com/angelmondragon/foodcart/internal/sessions"
	"github.com/angelmondragon/foodcart/pkg/catalog"
	"github.com/angelmondragon/foodcart/pkg/config"
	"github.com/angelmondragon/foodcart/pkg/logger"
	"github.com/angelmondragon/foodcart/pkg/metrics"
	"github.com/angelmondragon/foodcart/pkg/orderintake"
	"github.com/angelmondragon/foodcart/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Redis is optional: without it the catalog is fetched on every request,
	// idempotent replays are off and every instance refreshes the directory.
	var (
		cache            redis.Cache
		pinger           redis.Pinger
		idempotencyStore redis.IdempotencyStore
		directoryLock    cron.Lock
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("directory-refresh"), 0)
		if err != nil {
			logg.Error(context.Background(), "failed to create directory lock", err)
			os.Exit(1)
		}
		cache, pinger, idempotencyStore, directoryLock = redisClient, redisClient, redisClient, lock
	} else {
		logg.Warn(context.Background(), "redis not configured; catalog cache disabled")
	}

	catalogClient, err := catalog.NewClient(cfg.Catalog.BaseURL, catalog.WithTimeout(cfg.Catalog.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog client", err)
		os.Exit(1)
	}

	ordersClient, err := orderintake.NewClient(
		cfg.OrderIntake.BaseURL,
		orderintake.WithTimeout(cfg.OrderIntake.Timeout),
		orderintake.WithIdempotencyKeys(cfg.OrderIntake.IdempotencyKeys),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order intake client", err)
		os.Exit(1)
	}

	restaurantService, err := restaurants.NewService(catalogClient, cache, cfg.Catalog.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create restaurant service", err)
		os.Exit(1)
	}

	sessionRegistry := sessions.NewRegistry(cfg.Session.IdleTTL)

	checkoutService, err := checkout.NewService(ordersClient, restaurantService, metrics.NewCheckoutMetrics(reg), logg, checkout.Config{
		MaxConcurrent: cfg.Checkout.MaxConcurrentSubmissions,
		FallbackName:  cfg.Checkout.FallbackRestaurantName,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	jobs, err := newJobs(cfg, logg, reg, sessionRegistry, restaurantService, directoryLock)
	if err != nil {
		logg.Error(context.Background(), "failed to create background jobs", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	go func() {
		if err := jobs.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "background jobs stopped unexpectedly", err)
		}
	}()

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, pinger, idempotencyStore, reg, restaurantService, sessionRegistry, checkoutService, ordersClient),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logg.Error(ctx, "failed to listen", err)
		os.Exit(1)
	}

	logg.Info(ctx, "starting api server")
	if err := serve(ctx, server, listener, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}

// serve runs the server until ctx is cancelled, then waits for in-flight
// requests (a running checkout included) to finish before returning.
func serve(ctx context.Context, server *http.Server, listener net.Listener, logg *logger.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received, draining requests")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newJobs(
	cfg *config.Config,
	logg *logger.Logger,
	reg prometheus.Registerer,
	sessionRegistry *sessions.Registry,
	directory restaurants.Service,
	lock cron.Lock,
) (*cron.Service, error) {
	sweep, err := cron.NewSessionSweepJob(cron.SessionSweepJobParams{
		Logger:   logg,
		Sessions: sessionRegistry,
	})
	if err != nil {
		return nil, err
	}

	refresh, err := cron.NewDirectoryRefreshJob(cron.DirectoryRefreshJobParams{
		Logger:    logg,
		Directory: directory,
		Lock:      lock,
	})
	if err != nil {
		return nil, err
	}

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(sweep, refresh),
		Metrics:  metrics.NewJobMetrics(reg),
		Interval: cfg.Jobs.Interval,
	})
}
