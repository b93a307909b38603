package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/api"
	"github.com/roxannesyombua/Movers-App-Server/internal/auth"
	"github.com/roxannesyombua/Movers-App-Server/internal/config"
	"github.com/roxannesyombua/Movers-App-Server/internal/database"
	"github.com/roxannesyombua/Movers-App-Server/internal/domain"
	"github.com/roxannesyombua/Movers-App-Server/internal/events"
	"github.com/roxannesyombua/Movers-App-Server/internal/export"
	"github.com/roxannesyombua/Movers-App-Server/internal/logging"
	"github.com/roxannesyombua/Movers-App-Server/internal/metrics"
	"github.com/roxannesyombua/Movers-App-Server/internal/models"
	"github.com/roxannesyombua/Movers-App-Server/internal/pricing"
	"github.com/roxannesyombua/Movers-App-Server/internal/repository"
	"github.com/roxannesyombua/Movers-App-Server/internal/service"
	"github.com/roxannesyombua/Movers-App-Server/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	statusCache := initStatusCache(redisClient, &logger)

	engine, err := pricing.NewEngine(cfg.Pricing)
	if err != nil {
		return fmt.Errorf("init pricing engine: %w", err)
	}

	eventBus := events.NewEventBus()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	userService := service.NewUserService(db, tokens, eventBus, &logger)
	inventoryService := service.NewInventoryService(db)
	quoteService := service.NewQuoteService(db, engine, eventBus, &logger)
	bookingService := service.NewBookingService(db, eventBus, statusCache, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifyWorker := worker.NewNotifyWorker(db, initNotifier(cfg, &logger), redisClient, worker.RetryPolicy{}, &logger)
	notifyWorker.Subscribe(eventBus)
	go notifyWorker.Start(ctx)

	backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
	go backupService.Start(ctx)

	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg, api.Deps{
		Users:     userService,
		Inventory: inventoryService,
		Quotes:    quoteService,
		Bookings:  bookingService,
		Repo:      db,
		Cache:     statusCache,
		Exporter:  export.NewExporter(cfg.Exports.Path, &logger),
		AuthMW:    api.NewAuthMiddleware(tokens, statusCache, &logger),
	}, &logger)

	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initStatusCache(redisClient *redis.Client, logger *zerolog.Logger) domain.StatusCache {
	ttl := models.DefaultStatusCacheTTL * time.Second
	memory := repository.NewMemoryStatusCache(ttl)
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverStatusCache(
		repository.NewRedisStatusCache(redisClient, ttl), memory, logger)
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) domain.Notifier {
	if cfg.Notifications.Enabled && cfg.Notifications.SMTPHost != "" {
		return worker.NewSMTPNotifier(cfg.Notifications)
	}
	return worker.NewLogNotifier(logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
