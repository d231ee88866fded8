package storage

import (
	"encoding/json"
	"time"
)

const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ReportRun records one generated report with its rendered entries. Raw
// readings are never stored.
type ReportRun struct {
	ID            string    `json:"id"`
	MachineID     string    `json:"machineId"`
	Source        string    `json:"source"`
	BeginAt       time.Time `json:"beginAt"`
	EndAt         time.Time `json:"endAt"`
	Variables     []string  `json:"variables"`
	Entries       int       `json:"entries"`
	FailedEntries int       `json:"failedEntries"`
	ArcSeconds    int64     `json:"arcSeconds"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	// Results holds the rendered per-variable entries of a completed run.
	Results json.RawMessage `json:"results,omitempty"`
}
