package dbconnector

import "testing"

func TestParseMSSQLTable(t *testing.T) {
	schema, name, err := parseMSSQLTable("telemetry.readings")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema != "telemetry" || name != "readings" {
		t.Fatalf("unexpected result: %s %s", schema, name)
	}
}

func TestParseMSSQLTableDefaultSchema(t *testing.T) {
	schema, name, err := parseMSSQLTable("readings")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema != "dbo" || name != "readings" {
		t.Fatalf("unexpected result: %s %s", schema, name)
	}
}

func TestParseMSSQLTableInvalid(t *testing.T) {
	if _, _, err := parseMSSQLTable("a.b.c"); err == nil {
		t.Fatalf("expected error for three segments")
	}
}
