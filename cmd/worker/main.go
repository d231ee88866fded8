package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"soldage-iot-backend/internal/bus"
	"soldage-iot-backend/internal/config"
	"soldage-iot-backend/internal/metrics"
	"soldage-iot-backend/internal/source"
	"soldage-iot-backend/internal/storage"
	"soldage-iot-backend/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()
	cfg, err := config.Load(getenv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.NATS.URL == "" {
		logger.Error("NATS_URL is required")
		os.Exit(1)
	}
	displayLoc, err := cfg.DisplayLocation()
	if err != nil {
		logger.Error("invalid display timezone", slog.String("error", err.Error()))
		os.Exit(1)
	}
	adminPort := getenv("ADMIN_PORT", "8091")
	queueSize := getenvInt("QUEUE_SIZE", 128)
	jobTimeout := time.Duration(getenvInt("JOB_TIMEOUT_SECONDS", 60)) * time.Second
	serveSource := getenv("SERVE_SOURCE", "")
	serveSubject := getenv("SERVE_SUBJECT", "readings.query")

	subscriber, err := bus.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		logger.Error("failed to connect to nats", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer subscriber.Close()
	publisher := &bus.Publisher{Conn: subscriber.Conn}

	sources, err := source.BuildRegistry(cfg, subscriber.Conn)
	if err != nil {
		logger.Error("failed to configure reading sources", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sources.Close()

	reg := prometheus.NewRegistry()
	runner := &worker.Runner{
		Sources:          sources,
		Bus:              publisher,
		Limits:           cfg.SecurityLimits(),
		Logger:           logger,
		Observer:         metrics.NewRecorder(reg),
		GeneratedSubject: cfg.NATS.GeneratedSubject,
		Location:         displayLoc,
	}
	if cfg.Database.URL != "" {
		store, err := storage.NewStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to db", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer store.Close()
		runner.Runs = storage.NewRepository(store)
	}

	pool := worker.NewPool(runner, cfg.Limits.Workers, queueSize, jobTimeout)
	defer pool.Stop()

	_, err = subscriber.SubscribeReports(cfg.NATS.RequestSubject, "report-workers", func(evt bus.ReportRequested) {
		if !pool.Enqueue(worker.JobFromEvent(evt)) {
			logger.Warn("report queue full, request dropped", slog.String("report_id", evt.ReportID))
		}
	}, func(err error) {
		logger.Error("invalid report request", slog.String("error", err.Error()))
	})
	if err != nil {
		logger.Error("failed to subscribe", slog.String("subject", cfg.NATS.RequestSubject), slog.String("error", err.Error()))
		os.Exit(1)
	}

	// answer reading queries for other deployments from a locally reachable source
	if serveSource != "" {
		src, name, err := sources.SourceFor(serveSource)
		if err != nil {
			logger.Error("failed to resolve served source", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if _, err := source.Serve(subscriber.Conn, serveSubject, src, cfg.Limits.QueryTimeout, logger); err != nil {
			logger.Error("failed to serve readings", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("serving readings", slog.String("source", name), slog.String("subject", serveSubject))
	}

	go startAdminServer(adminPort, pool, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
}

func startAdminServer(port string, pool *worker.Pool, metricsHandler http.Handler, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pool.Stats())
	})
	mux.Handle("/metrics", metricsHandler)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	logger.Info("worker admin server listening", slog.String("port", port))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("admin server error", slog.String("error", err.Error()))
	}
}

func getenv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if parsed, err := strconv.Atoi(val); err == nil {
		return parsed
	}
	return fallback
}
