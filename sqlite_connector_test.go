package dbconnector

import (
	"context"
	"testing"
	"time"

	"soldage-iot-backend/internal/telemetry"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(":memory:", "")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer conn.Close()
	if err := conn.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	begin := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	readings := []telemetry.ReadingRecord{
		{ID: "r1", MachineID: "M1", MachineCode: "S-01", Timestamp: begin, ArcStatus: true, WeldingCurrent: 150.25},
		{ID: "r2", MachineID: "M1", Timestamp: begin.Add(time.Second), ArcStatus: true},
		{ID: "r3", MachineID: "M1", Timestamp: begin.Add(2 * time.Second), ArcStatus: false},
		{ID: "r4", MachineID: "M2", Timestamp: begin.Add(2 * time.Second), ArcStatus: true},
		{ID: "r5", MachineID: "M1", Timestamp: begin.Add(time.Hour), ArcStatus: true},
	}
	n, err := conn.InsertReadings(ctx, readings)
	if err != nil {
		t.Fatalf("InsertReadings: %v", err)
	}
	if n != len(readings) {
		t.Fatalf("expected %d inserted, got %d", len(readings), n)
	}
	if n, err := conn.InsertReadings(ctx, readings[:1]); err != nil || n != 0 {
		t.Fatalf("expected duplicate to be ignored, got %d %v", n, err)
	}

	cols, err := conn.DescribeTable(ctx)
	if err != nil {
		t.Fatalf("DescribeTable: %v", err)
	}
	if err := CheckColumns(cols); err != nil {
		t.Fatalf("CheckColumns: %v", err)
	}

	got, err := conn.FetchReadings(ctx, telemetry.ReadingQuery{MachineID: "M1", BeginAt: begin, EndAt: begin.Add(time.Minute)})
	if err != nil {
		t.Fatalf("FetchReadings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(got))
	}
	if got[0].ID != "r3" || got[2].ID != "r1" {
		t.Fatalf("expected newest first, got %s..%s", got[0].ID, got[2].ID)
	}
	if !got[2].ArcStatus || got[2].WeldingCurrent != 150.25 || got[2].MachineCode != "S-01" || !got[2].Timestamp.Equal(begin) {
		t.Fatalf("unexpected decoded reading: %+v", got[2])
	}
}
