package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseChannelAliases(t *testing.T) {
	tests := []struct {
		name string
		want Channel
	}{
		{name: "arcStatus", want: ArcStatus},
		{name: "arc_status", want: ArcStatus},
		{name: "ARCSTATUS", want: ArcStatus},
		{name: "welding_current", want: WeldingCurrent},
		{name: " gasFlow ", want: GasFlow},
		{name: "voltageL3", want: VoltageL3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChannel(tt.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s got %s", tt.want, got)
			}
		})
	}
}

func TestParseChannelUnknown(t *testing.T) {
	_, err := ParseChannel("temperature")
	if !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("expected unknown variable error, got %v", err)
	}
}

func TestReadingValueBoolean(t *testing.T) {
	on := ReadingRecord{ArcStatus: true}
	if v, _ := on.Value(ArcStatus); v != 1 {
		t.Fatalf("expected 1 got %v", v)
	}
	off := ReadingRecord{}
	if v, _ := off.Value(ArcStatus); v != 0 {
		t.Fatalf("expected 0 got %v", v)
	}
	if _, err := off.Value(Channel("bogus")); !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("expected unknown variable, got %v", err)
	}
}

func TestMachineLabelFallback(t *testing.T) {
	r := ReadingRecord{MachineID: "m-1"}
	if r.MachineLabel() != "m-1" {
		t.Fatalf("expected id fallback, got %s", r.MachineLabel())
	}
	r.MachineCode = "MIG-01"
	if r.MachineLabel() != "MIG-01" {
		t.Fatalf("expected code fallback, got %s", r.MachineLabel())
	}
	r.MachineDescription = "Robot cell 1"
	if r.MachineLabel() != "Robot cell 1" {
		t.Fatalf("expected description, got %s", r.MachineLabel())
	}
}

func TestValidateRange(t *testing.T) {
	begin := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	err := ValidateRange(begin, end)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
	if err := ValidateRange(end, begin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateRange(begin, begin); err != nil {
		t.Fatalf("equal bounds should be accepted: %v", err)
	}
}

func TestQueryContainsHalfOpen(t *testing.T) {
	begin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := ReadingQuery{BeginAt: begin, EndAt: begin.Add(time.Hour)}
	if !q.Contains(begin) {
		t.Fatalf("begin should be included")
	}
	if q.Contains(begin.Add(time.Hour)) {
		t.Fatalf("end should be excluded")
	}
	if q.Contains(begin.Add(-time.Nanosecond)) {
		t.Fatalf("before begin should be excluded")
	}
}

func TestUnavailableWrapsCause(t *testing.T) {
	err := Unavailable("rest", context.DeadlineExceeded)
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected data unavailable")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected cause to be preserved")
	}
	wrapped := fmt.Errorf("fetch: %w", err)
	if again := Unavailable("other", wrapped); again != wrapped {
		t.Fatalf("expected existing unavailable error to pass through")
	}
	if Unavailable("rest", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestSelectorDefaults(t *testing.T) {
	v := VariableSelector{Name: "gas_flow"}.WithDefaults()
	if v.Label != "Fluxo de Gás" || v.Unit != "m³" || v.Color != "#E56B14" {
		t.Fatalf("unexpected defaults: %+v", v)
	}
	custom := VariableSelector{Name: "gasFlow", Label: "Gas"}.WithDefaults()
	if custom.Label != "Gas" {
		t.Fatalf("expected caller label to win, got %s", custom.Label)
	}
	unknown := VariableSelector{Name: "nope"}.WithDefaults()
	if unknown.Label != "" {
		t.Fatalf("unknown selector should be untouched")
	}
	if !(VariableSelector{Name: "arc_status"}).IsArcStatus() {
		t.Fatalf("expected arc status selector")
	}
	if len(Catalog()) != len(Channels) {
		t.Fatalf("catalog should cover every channel")
	}
}
