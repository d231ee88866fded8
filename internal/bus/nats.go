package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"soldage-iot-backend/internal/telemetry"
)

const (
	SubjectReportRequested = "report.requested"
	SubjectReportGenerated = "report.generated"
)

// ReportRequested asks a worker to build a report asynchronously. Selectors
// travel whole so caller supplied labels, units and colors survive.
type ReportRequested struct {
	ReportID  string                       `json:"report_id"`
	MachineID string                       `json:"machine_id"`
	Source    string                       `json:"source,omitempty"`
	Variables []telemetry.VariableSelector `json:"variables"`
	BeginAt   time.Time                    `json:"begin_at"`
	EndAt     time.Time                    `json:"end_at"`
}

// ReportGenerated announces a finished report run.
type ReportGenerated struct {
	ReportID      string `json:"report_id"`
	MachineID     string `json:"machine_id"`
	Status        string `json:"status"`
	Entries       int    `json:"entries"`
	FailedEntries int    `json:"failed_entries"`
	ArcDuration   string `json:"arc_duration,omitempty"`
	Error         string `json:"error,omitempty"`
}

type Publisher struct {
	Conn *nats.Conn
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{Conn: conn}, nil
}

func (p *Publisher) Close() {
	if p.Conn != nil {
		p.Conn.Drain()
		p.Conn.Close()
	}
}

func (p *Publisher) Publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Conn.Publish(subject, data)
}

type Subscriber struct {
	Conn *nats.Conn
}

func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{Conn: conn}, nil
}

func (s *Subscriber) Close() {
	if s.Conn != nil {
		s.Conn.Drain()
		s.Conn.Close()
	}
}

// SubscribeReports delivers decoded report requests. Malformed messages are
// passed to onError and dropped.
func (s *Subscriber) SubscribeReports(subject, queue string, handler func(ReportRequested), onError func(error)) (*nats.Subscription, error) {
	cb := func(msg *nats.Msg) {
		evt, err := DecodeReportRequested(msg.Data)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		handler(evt)
	}
	if queue != "" {
		return s.Conn.QueueSubscribe(subject, queue, cb)
	}
	return s.Conn.Subscribe(subject, cb)
}

func DecodeReportRequested(data []byte) (ReportRequested, error) {
	var evt ReportRequested
	if err := json.Unmarshal(data, &evt); err != nil {
		return ReportRequested{}, fmt.Errorf("decode report request: %w", err)
	}
	if evt.ReportID == "" || evt.MachineID == "" {
		return ReportRequested{}, fmt.Errorf("report request requires report_id and machine_id")
	}
	return evt, nil
}
