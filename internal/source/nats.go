package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"soldage-iot-backend/internal/telemetry"
)

type queryMessage struct {
	MachineID string    `json:"machine_id,omitempty"`
	BeginDate time.Time `json:"begin_date"`
	FinalDate time.Time `json:"final_date"`
	Limit     int       `json:"limit,omitempty"`
}

type replyMessage struct {
	Readings []readingPayload `json:"readings"`
	Error    string           `json:"error,omitempty"`
}

// NATSSource asks a reading service over NATS request/reply.
type NATSSource struct {
	Conn    *nats.Conn
	Subject string
	Timeout time.Duration
}

func NewNATSSource(conn *nats.Conn, subject string, timeout time.Duration) *NATSSource {
	return &NATSSource{Conn: conn, Subject: subject, Timeout: timeout}
}

func (s *NATSSource) FetchReadings(ctx context.Context, q telemetry.ReadingQuery) ([]telemetry.ReadingRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if s.Conn == nil {
		return nil, errors.New("nats connection not configured")
	}
	data, err := json.Marshal(queryMessage{MachineID: q.MachineID, BeginDate: q.BeginAt.UTC(), FinalDate: q.EndAt.UTC(), Limit: q.Limit})
	if err != nil {
		return nil, err
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	msg, err := s.Conn.RequestWithContext(ctx, s.Subject, data)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", s.Subject, err)
	}
	var reply replyMessage
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("decode %s reply: %w", s.Subject, err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("%s: %s", s.Subject, reply.Error)
	}
	return records(reply.Readings), nil
}

// Serve answers reading queries on subject from src, so a node holding the
// readings can act as the NATS source for others.
func Serve(conn *nats.Conn, subject string, src ReadingSource, timeout time.Duration, logger *slog.Logger) (*nats.Subscription, error) {
	return conn.Subscribe(subject, func(msg *nats.Msg) {
		reply := answer(msg.Data, src, timeout)
		if reply.Error != "" {
			logger.Warn("reading query failed", slog.String("subject", subject), slog.String("error", reply.Error))
		}
		data, err := json.Marshal(reply)
		if err != nil {
			logger.Error("encode reading reply", slog.String("error", err.Error()))
			return
		}
		if err := msg.Respond(data); err != nil {
			logger.Error("respond reading query", slog.String("error", err.Error()))
		}
	})
}

func answer(data []byte, src ReadingSource, timeout time.Duration) replyMessage {
	var q queryMessage
	if err := json.Unmarshal(data, &q); err != nil {
		return replyMessage{Error: "invalid query: " + err.Error()}
	}
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	readings, err := src.FetchReadings(ctx, telemetry.ReadingQuery{MachineID: q.MachineID, BeginAt: q.BeginDate, EndAt: q.FinalDate, Limit: q.Limit})
	if err != nil {
		return replyMessage{Error: err.Error()}
	}
	payloads := make([]readingPayload, len(readings))
	for i, r := range readings {
		payloads[i] = payloadFromRecord(r)
	}
	return replyMessage{Readings: payloads}
}
