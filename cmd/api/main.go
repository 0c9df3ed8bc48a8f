package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomstay/internal/api"
	"roomstay/internal/calendar"
	"roomstay/internal/config"
	"roomstay/internal/database"
	"roomstay/internal/domain"
	"roomstay/internal/events"
	"roomstay/internal/logging"
	"roomstay/internal/metrics"
	"roomstay/internal/repository"
	"roomstay/internal/service"

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

	loc, err := cfg.Booking.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}
	store := coordinationStore(cfg, redisClient, &logger)

	bus := initEventBus(&logger)

	bookings := service.NewBookingService(db, db, store, bus, calendar.SystemClock, service.BookingOptions{
		Location:       loc,
		MaxAdvanceDays: cfg.Booking.MaxAdvanceDays,
		LockTTL:        cfg.Booking.LockTTL,
		LockWait:       cfg.Booking.LockWait,
	}, logging.Component(&logger, "bookings"))

	httpServer := api.NewHTTPServer(cfg.API, cfg.Booking, api.Dependencies{
		Bookings:     bookings,
		Rooms:        service.NewRoomService(db, logging.Component(&logger, "rooms")),
		Reviews:      service.NewReviewService(db, db, bus, logging.Component(&logger, "reviews")),
		Users:        db,
		WriteLimiter: store,
		Health:       db,
	}, logging.Component(&logger, "http"))

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(&cfg.API, db, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	backup := database.NewBackupService(db, cfg.Backup, logging.Component(&logger, "backup"))
	go backup.Start(ctx)

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
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

func initDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger,
		database.WithBusyTimeout(cfg.Database.BusyTimeout),
		database.WithMaxOpenConns(cfg.Database.MaxOpenConns),
		database.WithConnMaxIdleTime(cfg.Database.ConnMaxIdle),
	)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	if cfg.Seed.Path == "" {
		return db, nil
	}
	seed, err := database.LoadSeed(cfg.Seed.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("seed_path", cfg.Seed.Path).Msg("seed file not found, starting without demo data")
			return db, nil
		}
		db.Close()
		return nil, err
	}
	if err := db.ApplySeed(ctx, seed); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply seed: %w", err)
	}
	logger.Info().
		Int("users", len(seed.Users)).
		Int("rooms", len(seed.Rooms)).
		Int("bookings", len(seed.Bookings)).
		Msg("seed applied")
	return db, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = repository.Close(client)
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// coordinationStore backs room locks and write limits with Redis when it is
// reachable and with process memory otherwise.
func coordinationStore(cfg *config.Config, client *redis.Client, logger *zerolog.Logger) domain.CoordinationStore {
	memory := repository.NewMemoryCoordinationStore()
	if client == nil {
		return memory
	}
	primary := repository.NewRedisCoordinationStore(client, cfg.App.Name+":")
	return repository.NewFailoverCoordinationStore(primary, memory, logging.Component(logger, "coordination"))
}

func initEventBus(logger *zerolog.Logger) *events.EventBus {
	eventLog := logging.Component(logger, "events")
	bus := events.NewEventBus()
	bus.Subscribe(events.AllEvents, func(e *events.Event) error {
		metrics.IncEvent(e.Type)
		eventLog.Info().
			Str("event_id", e.ID).
			Str("type", e.Type).
			RawJSON("payload", e.Payload).
			Msg("domain event")
		return nil
	})
	bus.OnError(func(e *events.Event, err error) {
		eventLog.Error().Err(err).Str("event_id", e.ID).Str("type", e.Type).Msg("event handler failed")
	})
	return bus
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	errCh := make(chan error, 2)

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(ctx); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	event := logger.Info().Int("http_port", cfg.API.HTTP.Port)
	if grpcServer != nil {
		event = event.Str("grpc_addr", grpcServer.Addr())
	}
	event.Msg("API server started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.HTTP.ShutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return runErr
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	logger.Info().Int("port", port).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
