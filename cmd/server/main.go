package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"soldage-iot-backend/internal/api"
	"soldage-iot-backend/internal/bus"
	"soldage-iot-backend/internal/config"
	"soldage-iot-backend/internal/metrics"
	"soldage-iot-backend/internal/source"
	"soldage-iot-backend/internal/storage"
	"soldage-iot-backend/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg, err := config.Load(getenv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	ctx := context.Background()
	displayLoc, err := cfg.DisplayLocation()
	if err != nil {
		logger.Error("invalid display timezone", slog.String("error", err.Error()))
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)

	runner := &worker.Runner{
		Limits:           cfg.SecurityLimits(),
		Logger:           logger,
		Observer:         recorder,
		GeneratedSubject: cfg.NATS.GeneratedSubject,
		Location:         displayLoc,
	}
	handler := &api.Handler{
		Runner:         runner,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Timeout:        cfg.Limits.QueryTimeout + 5*time.Second,
		RequestSubject: cfg.NATS.RequestSubject,
		Logger:         logger,
	}

	if cfg.Database.URL != "" {
		store, err := storage.NewStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to db", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer store.Close()
		repo := storage.NewRepository(store)
		runner.Runs = repo
		handler.Runs = repo
	} else {
		logger.Warn("DATABASE_URL not set, report runs will not be recorded")
	}

	var conn *nats.Conn
	if cfg.NATS.URL != "" {
		publisher, err := bus.NewPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Error("failed to connect to nats", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer publisher.Close()
		conn = publisher.Conn
		runner.Bus = publisher
		handler.Bus = publisher
	}

	sources, err := source.BuildRegistry(cfg, conn)
	if err != nil {
		logger.Error("failed to configure reading sources", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sources.Close()
	runner.Sources = sources

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Limits.QueryTimeout + 10*time.Second))

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Limits.QueryTimeout + 15*time.Second,
		IdleTimeout:  30 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logger.Info("report server listening", slog.String("port", cfg.Server.Port), slog.Any("sources", sources.Names()))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("error", err.Error()))
	}
}

func getenv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
