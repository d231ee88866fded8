package report

import (
	"errors"
	"testing"
	"time"

	"soldage-iot-backend/internal/telemetry"
)

func TestFilterReadingsWindowAndMachine(t *testing.T) {
	readings := []telemetry.ReadingRecord{
		arcReading("M1", 3, true),
		arcReading("M2", 1, true),
		arcReading("M1", 0, true),
		arcReading("M1", 10, true),
	}
	got, err := FilterReadings(readings, "M1", at(0), at(10))
	if err != nil {
		t.Fatalf("FilterReadings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(at(3)) || !got[1].Timestamp.Equal(at(0)) {
		t.Fatalf("expected upstream order to be kept")
	}
}

func TestFilterReadingsInvalidRange(t *testing.T) {
	begin := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	_, err := FilterReadings(nil, "M1", begin, end)
	if !errors.Is(err, telemetry.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestLatestReading(t *testing.T) {
	readings := []telemetry.ReadingRecord{
		arcReading("M1", 3, true),
		arcReading("M1", 7, false),
		arcReading("M2", 9, true),
	}
	latest, ok := LatestReading(readings, "M1")
	if !ok || !latest.Timestamp.Equal(at(7)) {
		t.Fatalf("expected reading at 7s, got %+v ok=%v", latest, ok)
	}
	if _, ok := LatestReading(readings, "M3"); ok {
		t.Fatalf("expected no reading for M3")
	}
}
