package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	dbconnector "soldage-iot-backend"
	"soldage-iot-backend/internal/security"
)

type Config struct {
	Server        ServerConfig            `yaml:"server"`
	Database      DatabaseConfig          `yaml:"database"`
	NATS          NATSConfig              `yaml:"nats"`
	Limits        LimitsConfig            `yaml:"limits"`
	Display       DisplayConfig           `yaml:"display"`
	Sources       map[string]SourceConfig `yaml:"sources"`
	DefaultSource string                  `yaml:"default_source"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type NATSConfig struct {
	URL              string `yaml:"url"`
	RequestSubject   string `yaml:"request_subject"`
	GeneratedSubject string `yaml:"generated_subject"`
}

// DisplayConfig controls how timestamps are rendered in chart labels and
// table moments. Stored and transported timestamps are always UTC.
type DisplayConfig struct {
	Timezone string `yaml:"timezone"`
}

type LimitsConfig struct {
	QueryTimeout time.Duration `yaml:"query_timeout"`
	MaxWindow    time.Duration `yaml:"max_window"`
	MaxRows      int           `yaml:"max_rows"`
	Workers      int           `yaml:"workers"`
	MaxVariables int           `yaml:"max_variables"`
}

// SourceConfig describes one reading-query collaborator.
type SourceConfig struct {
	Type       string                       `yaml:"type"` // rest | nats | sql
	Endpoint   string                       `yaml:"endpoint"`
	Token      string                       `yaml:"token"`
	Subject    string                       `yaml:"subject"`
	Timeout    time.Duration                `yaml:"timeout"`
	Connection dbconnector.ConnectionConfig `yaml:"connection"`
}

// Load reads path, applies defaults and environment overrides, then validates.
// A missing file yields defaults plus environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := security.DefaultLimits()
	if c.Server.Port == "" {
		c.Server.Port = "8090"
	}
	if c.NATS.RequestSubject == "" {
		c.NATS.RequestSubject = "report.requested"
	}
	if c.NATS.GeneratedSubject == "" {
		c.NATS.GeneratedSubject = "report.generated"
	}
	if c.Limits.QueryTimeout == 0 {
		c.Limits.QueryTimeout = def.MaxQueryDuration
	}
	if c.Limits.MaxWindow == 0 {
		c.Limits.MaxWindow = def.MaxWindow
	}
	if c.Limits.MaxRows == 0 {
		c.Limits.MaxRows = def.MaxRows
	}
	if c.Limits.Workers == 0 {
		c.Limits.Workers = def.ReportWorkers
	}
	if c.Limits.MaxVariables == 0 {
		c.Limits.MaxVariables = def.MaxVariables
	}
	if c.DefaultSource == "" && len(c.Sources) == 1 {
		for name := range c.Sources {
			c.DefaultSource = name
		}
	}
}

// applyEnv overrides file values with the deployment environment. A REST
// source named "api" is synthesized from READINGS_API_URL.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := getenv("DISPLAY_TIMEZONE"); v != "" {
		c.Display.Timezone = v
	}
	if v := getenvInt(getenv, "QUERY_TIMEOUT_SECONDS"); v > 0 {
		c.Limits.QueryTimeout = time.Duration(v) * time.Second
	}
	if v := getenvInt(getenv, "REPORT_WORKERS"); v > 0 {
		c.Limits.Workers = v
	}
	if v := getenv("READINGS_API_URL"); v != "" {
		if c.Sources == nil {
			c.Sources = map[string]SourceConfig{}
		}
		src := c.Sources["api"]
		src.Type = "rest"
		src.Endpoint = v
		if token := getenv("READINGS_API_TOKEN"); token != "" {
			src.Token = token
		}
		c.Sources["api"] = src
		if c.DefaultSource == "" {
			c.DefaultSource = "api"
		}
	}
}

func getenvInt(getenv func(string) string, key string) int {
	val := getenv(key)
	if val == "" {
		return 0
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return parsed
}

func (c *Config) validate() error {
	if c.Limits.QueryTimeout < 0 || c.Limits.MaxWindow < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if c.Limits.Workers < 1 {
		return fmt.Errorf("limits.workers must be at least 1")
	}
	if _, err := c.DisplayLocation(); err != nil {
		return err
	}
	for name, src := range c.Sources {
		if err := src.validate(); err != nil {
			return fmt.Errorf("sources.%s: %w", name, err)
		}
	}
	if c.DefaultSource != "" {
		if _, ok := c.Sources[c.DefaultSource]; !ok {
			return fmt.Errorf("default_source %q is not configured", c.DefaultSource)
		}
	}
	return nil
}

func (s SourceConfig) validate() error {
	switch strings.ToLower(s.Type) {
	case "rest":
		if s.Endpoint == "" {
			return fmt.Errorf("rest endpoint required")
		}
	case "nats":
		if s.Subject == "" {
			return fmt.Errorf("nats subject required")
		}
	case "sql":
		if s.Connection.Type == "" {
			return fmt.Errorf("sql connection type required")
		}
	default:
		return fmt.Errorf("unsupported source type %q", s.Type)
	}
	return nil
}

// SecurityLimits converts the limits section for the report service.
func (c *Config) SecurityLimits() security.Limits {
	return security.Limits{
		MaxQueryDuration: c.Limits.QueryTimeout,
		MaxWindow:        c.Limits.MaxWindow,
		MaxRows:          c.Limits.MaxRows,
		ReportWorkers:    c.Limits.Workers,
		MaxVariables:     c.Limits.MaxVariables,
	}
}

// DisplayLocation resolves display.timezone. Empty means UTC.
func (c *Config) DisplayLocation() (*time.Location, error) {
	if c.Display.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("display.timezone: %w", err)
	}
	return loc, nil
}
