package source

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nats-io/nats.go"

	"soldage-iot-backend/internal/config"
	"soldage-iot-backend/internal/telemetry"
)

// ReadingSource matches report.ReadingSource.
type ReadingSource interface {
	FetchReadings(ctx context.Context, q telemetry.ReadingQuery) ([]telemetry.ReadingRecord, error)
}

type Registry struct {
	sources  map[string]ReadingSource
	fallback string
}

func NewRegistry(sources map[string]ReadingSource, fallback string) *Registry {
	normalized := map[string]ReadingSource{}
	for key, src := range sources {
		normalized[strings.ToLower(key)] = src
	}
	return &Registry{sources: normalized, fallback: strings.ToLower(fallback)}
}

// SourceFor returns the named source, or the default when name is empty.
func (r *Registry) SourceFor(name string) (ReadingSource, string, error) {
	if r == nil {
		return nil, "", fmt.Errorf("source registry not configured")
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = r.fallback
	}
	if key == "" {
		return nil, "", fmt.Errorf("no default source configured")
	}
	src, ok := r.sources[key]
	if !ok {
		return nil, "", fmt.Errorf("no source configured for %s", key)
	}
	return src, key, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases sources that hold connections.
func (r *Registry) Close() error {
	var firstErr error
	for _, src := range r.sources {
		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// BuildRegistry creates every configured source. conn may be nil when no
// NATS source is configured.
func BuildRegistry(cfg *config.Config, conn *nats.Conn) (*Registry, error) {
	sources := map[string]ReadingSource{}
	for name, sc := range cfg.Sources {
		src, err := buildSource(sc, conn)
		if err != nil {
			for _, built := range sources {
				if c, ok := built.(io.Closer); ok {
					_ = c.Close()
				}
			}
			return nil, fmt.Errorf("source %s: %w", name, err)
		}
		sources[name] = src
	}
	return NewRegistry(sources, cfg.DefaultSource), nil
}

func buildSource(sc config.SourceConfig, conn *nats.Conn) (ReadingSource, error) {
	switch strings.ToLower(sc.Type) {
	case "rest":
		if sc.Endpoint == "" {
			return nil, fmt.Errorf("rest endpoint required")
		}
		return NewRESTSource(sc.Endpoint, sc.Token, sc.Timeout), nil
	case "nats":
		if conn == nil {
			return nil, fmt.Errorf("nats source requires a nats connection")
		}
		return NewNATSSource(conn, sc.Subject, sc.Timeout), nil
	case "sql":
		return NewSQLSource(sc.Connection)
	default:
		return nil, fmt.Errorf("unsupported source type %q", sc.Type)
	}
}
