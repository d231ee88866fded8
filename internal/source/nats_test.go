package source

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"soldage-iot-backend/internal/telemetry"
)

type stubSource struct {
	readings []telemetry.ReadingRecord
	err      error
	query    telemetry.ReadingQuery
}

func (s *stubSource) FetchReadings(ctx context.Context, q telemetry.ReadingQuery) ([]telemetry.ReadingRecord, error) {
	s.query = q
	return s.readings, s.err
}

func TestAnswerRoundTrip(t *testing.T) {
	begin := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	stub := &stubSource{readings: []telemetry.ReadingRecord{
		{ID: "r1", MachineID: "M1", MachineCode: "S-01", ClientName: "Acme", Timestamp: begin, ArcStatus: true, CurrentL2: 9.5},
	}}
	data, _ := json.Marshal(queryMessage{MachineID: "M1", BeginDate: begin, FinalDate: begin.Add(time.Hour)})

	reply := answer(data, stub, time.Second)
	if reply.Error != "" {
		t.Fatalf("unexpected error %s", reply.Error)
	}
	if stub.query.MachineID != "M1" || !stub.query.EndAt.Equal(begin.Add(time.Hour)) {
		t.Fatalf("unexpected query %+v", stub.query)
	}
	got := records(reply.Readings)
	if len(got) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(got))
	}
	r := got[0]
	if r.ID != "r1" || r.MachineID != "M1" || r.MachineCode != "S-01" || r.ClientName != "Acme" || !r.ArcStatus || r.CurrentL2 != 9.5 || !r.Timestamp.Equal(begin) {
		t.Fatalf("unexpected round trip %+v", r)
	}
}

func TestAnswerReportsErrors(t *testing.T) {
	if reply := answer([]byte("{"), &stubSource{}, 0); reply.Error == "" {
		t.Fatalf("expected decode error")
	}
	data, _ := json.Marshal(queryMessage{MachineID: "M1"})
	if reply := answer(data, &stubSource{err: errors.New("db down")}, 0); reply.Error != "db down" {
		t.Fatalf("expected source error, got %q", reply.Error)
	}
}

func TestNATSSourceWithoutConnection(t *testing.T) {
	begin := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	_, err := (&NATSSource{Subject: "readings.query"}).FetchReadings(context.Background(), telemetry.ReadingQuery{BeginAt: begin, EndAt: begin})
	if err == nil {
		t.Fatalf("expected error without connection")
	}
}
