package source

import (
	"testing"

	dbconnector "soldage-iot-backend"
	"soldage-iot-backend/internal/config"
)

func TestBuildRegistry(t *testing.T) {
	cfg := &config.Config{
		Sources: map[string]config.SourceConfig{
			"api":   {Type: "rest", Endpoint: "http://readings.local", Token: "t"},
			"Local": {Type: "sql", Connection: dbconnector.ConnectionConfig{Type: "sqlite", Database: ":memory:"}},
		},
		DefaultSource: "api",
	}
	reg, err := BuildRegistry(cfg, nil)
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}
	defer reg.Close()

	src, name, err := reg.SourceFor("")
	if err != nil || name != "api" {
		t.Fatalf("expected default api source, got %s %v", name, err)
	}
	if _, ok := src.(*RESTSource); !ok {
		t.Fatalf("expected RESTSource, got %T", src)
	}
	src, _, err = reg.SourceFor("local")
	if err != nil {
		t.Fatalf("SourceFor local: %v", err)
	}
	if _, ok := src.(*SQLSource); !ok {
		t.Fatalf("expected SQLSource, got %T", src)
	}
	if _, _, err := reg.SourceFor("missing"); err == nil {
		t.Fatalf("expected error for unknown source")
	}
	if names := reg.Names(); len(names) != 2 || names[0] != "api" || names[1] != "local" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestBuildRegistryNATSNeedsConnection(t *testing.T) {
	cfg := &config.Config{Sources: map[string]config.SourceConfig{"bus": {Type: "nats", Subject: "readings.query"}}}
	if _, err := BuildRegistry(cfg, nil); err == nil {
		t.Fatalf("expected error without nats connection")
	}
}
