package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/algoldenberg/AirPlaneTracker/internal/api"
	"github.com/algoldenberg/AirPlaneTracker/internal/classify"
	"github.com/algoldenberg/AirPlaneTracker/internal/config"
	"github.com/algoldenberg/AirPlaneTracker/internal/database"
	"github.com/algoldenberg/AirPlaneTracker/internal/events"
	"github.com/algoldenberg/AirPlaneTracker/internal/notify"
	"github.com/algoldenberg/AirPlaneTracker/internal/poller"
	"github.com/algoldenberg/AirPlaneTracker/internal/provider"
	"github.com/algoldenberg/AirPlaneTracker/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// A .env file is optional; the environment may already be set.
		slog.Debug("No .env file loaded", "error", err)
	}

	// Set up structured logging
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "DEBUG" || os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting tracker",
		"home_lat", cfg.HomeLat,
		"home_lon", cfg.HomeLon,
		"radius_meters", cfg.RadiusMeters,
		"update_interval", cfg.UpdateInterval,
		"alert_interval", cfg.AlertInterval,
		"redis_addr", cfg.RedisAddr,
		"http_port", cfg.HTTPPort,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.Info("Connected to Redis", "addr", cfg.RedisAddr)

	st := store.New(redisClient, cfg.Retention)

	for _, entry := range cfg.Subscribers {
		sub, err := notify.ParseSubscriber(entry)
		if err != nil {
			slog.Error("Skipping invalid subscriber entry", "entry", entry, "error", err)
			continue
		}
		if err := st.AddSubscriber(ctx, sub.String()); err != nil {
			slog.Error("Failed to seed subscriber", "subscriber", sub.String(), "error", err)
		}
	}

	// The Postgres audit log is optional; without it deliveries are
	// only logged.
	var audit notify.AuditRecorder
	if cfg.PostgresDSN != "" {
		db, err := database.NewDB(cfg.PostgresDSN)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			slog.Error("Failed to ensure database schema", "error", err)
			os.Exit(1)
		}
		audit = db
	}

	landingPublisher, alertPublisher, err := buildPublishers(cfg)
	if err != nil {
		slog.Error("Failed to create Kafka producers", "error", err)
		os.Exit(1)
	}
	defer landingPublisher.Close()
	defer alertPublisher.Close()

	registry := notify.NewRegistry()
	if cfg.TelegramToken != "" {
		registry.Register(notify.NewTelegramSender(cfg.TelegramToken))
	} else {
		slog.Warn("TELEGRAM_TOKEN is not set, telegram subscribers will fail delivery")
	}
	registry.Register(notify.NewWebhookSender())

	fanout := notify.NewFanout(registry, st, audit, cfg.DeliveryTimeout)

	criteria := classify.Criteria{
		MinAltitudeFt: cfg.MinAltitudeFt,
		MaxAltitudeFt: cfg.MaxAltitudeFt,
		MinHeadingDeg: cfg.MinHeadingDeg,
		MaxHeadingDeg: cfg.MaxHeadingDeg,
		HomeAirport:   cfg.HomeAirport,
	}
	if err := criteria.Validate(); err != nil {
		slog.Error("Invalid landing criteria", "error", err)
		os.Exit(1)
	}

	telemetry := provider.NewTelemetryClient(cfg.TelemetryURL, cfg.HomeLat, cfg.HomeLon, int(cfg.RadiusMeters))
	hazard := provider.NewHazardClient(cfg.HazardURL)

	flightPoller := poller.NewFlightPoller(telemetry, criteria, st, fanout, landingPublisher, cfg.UpdateInterval)
	alertPoller := poller.NewAlertPoller(hazard, cfg.TargetAreas, fanout, alertPublisher, cfg.AlertInterval)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		flightPoller.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		alertPoller.Run(ctx)
	}()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: api.NewRouter(api.NewHandlers(st, cfg.Retention)),
	}
	go func() {
		slog.Info("HTTP API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
	wg.Wait()

	slog.Info("Tracker stopped")
}

// buildPublishers returns the landing and alert event publishers.
// Without brokers configured, events are collected in-process only.
func buildPublishers(cfg *config.Config) (events.Publisher, events.Publisher, error) {
	if cfg.KafkaBrokers == "" {
		slog.Info("KAFKA_BROKERS is not set, event publishing disabled")
		return events.NewMock(cfg.LandingTopic), events.NewMock(cfg.AlertTopic), nil
	}

	landing, err := events.NewProducer(cfg.KafkaBrokers, cfg.LandingTopic)
	if err != nil {
		return nil, nil, err
	}
	alert, err := events.NewProducer(cfg.KafkaBrokers, cfg.AlertTopic)
	if err != nil {
		landing.Close()
		return nil, nil, err
	}
	slog.Info("Connected Kafka producers", "brokers", cfg.KafkaBrokers,
		"landing_topic", cfg.LandingTopic, "alert_topic", cfg.AlertTopic)
	return landing, alert, nil
}
