package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	dbconnector "soldage-iot-backend"
	"soldage-iot-backend/internal/config"
	"soldage-iot-backend/internal/report"
	"soldage-iot-backend/internal/source"
)

var (
	cfgFile    string
	dbPath     string
	sourceName string
	beginFlag  string
	finalFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "weldctl",
	Short: "Query welding machine telemetry",
	Long: `weldctl builds time series and arc-on reports for welding machines.
Readings come from any configured source, or from a local SQLite file filled with "weldctl import".`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "local SQLite readings file, used instead of configured sources")
	rootCmd.PersistentFlags().StringVar(&sourceName, "source", "", "configured source name (default source when empty)")
	rootCmd.PersistentFlags().StringVar(&beginFlag, "begin", "", "window start, RFC3339 or YYYY-MM-DD[THH:MM]")
	rootCmd.PersistentFlags().StringVar(&finalFlag, "final", "", "window end (exclusive)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openService resolves the reading source and returns a ready service plus a
// cleanup func.
func openService() (*report.Service, func(), error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	loc, err := cfg.DisplayLocation()
	if err != nil {
		return nil, nil, err
	}

	if dbPath != "" {
		local, err := dbconnector.OpenSQLite(dbPath, "readings")
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		svc := report.NewService(report.ServiceConfig{
			Source:     &source.SQLSource{Connector: local},
			SourceName: "sqlite",
			Limits:     cfg.SecurityLimits(),
			Logger:     logger,
			Location:   loc,
		})
		return svc, func() { _ = local.Close() }, nil
	}

	var conn *nats.Conn
	if cfg.NATS.URL != "" {
		conn, err = nats.Connect(cfg.NATS.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to nats: %w", err)
		}
	}
	registry, err := source.BuildRegistry(cfg, conn)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, nil, err
	}
	src, name, err := registry.SourceFor(sourceName)
	if err != nil {
		_ = registry.Close()
		if conn != nil {
			conn.Close()
		}
		return nil, nil, err
	}
	svc := report.NewService(report.ServiceConfig{
		Source:     src,
		SourceName: name,
		Limits:     cfg.SecurityLimits(),
		Logger:     logger,
		Location:   loc,
	})
	cleanup := func() {
		_ = registry.Close()
		if conn != nil {
			conn.Close()
		}
	}
	return svc, cleanup, nil
}

var windowLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

func parseWindow() (time.Time, time.Time, error) {
	begin, err := parseFlagTime("--begin", beginFlag)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	final, err := parseFlagTime("--final", finalFlag)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return begin, final, nil
}

func parseFlagTime(flag, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", flag)
	}
	for _, layout := range windowLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: cannot parse %q", flag, raw)
}
