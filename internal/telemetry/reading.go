package telemetry

import (
	"strings"
	"time"
)

// ReadingRecord is one telemetry sample emitted by a welding machine.
type ReadingRecord struct {
	ID                 string    `json:"id"`
	MachineID          string    `json:"machineId"`
	MachineCode        string    `json:"machineCode,omitempty"`
	MachineDescription string    `json:"machineDescription,omitempty"`
	ClientID           string    `json:"clientId,omitempty"`
	ClientName         string    `json:"clientName,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	WeldingCurrent     float64   `json:"weldingCurrent"`
	WeldingVoltage     float64   `json:"weldingVoltage"`
	ArcStatus          bool      `json:"arcStatus"`
	WireSpeed          float64   `json:"wireSpeed"`
	VoltageL1          float64   `json:"voltageL1"`
	VoltageL2          float64   `json:"voltageL2"`
	VoltageL3          float64   `json:"voltageL3"`
	CurrentL1          float64   `json:"currentL1"`
	CurrentL2          float64   `json:"currentL2"`
	CurrentL3          float64   `json:"currentL3"`
	InputPower         float64   `json:"inputPower"`
	GasFlow            float64   `json:"gasFlow"`
}

// MachineLabel is the human label used in tabular output.
func (r ReadingRecord) MachineLabel() string {
	if strings.TrimSpace(r.MachineDescription) != "" {
		return r.MachineDescription
	}
	if strings.TrimSpace(r.MachineCode) != "" {
		return r.MachineCode
	}
	return r.MachineID
}

// Value reads the named channel. Boolean channels map true to 1 and false to 0.
func (r ReadingRecord) Value(ch Channel) (float64, error) {
	switch ch {
	case WeldingCurrent:
		return r.WeldingCurrent, nil
	case WeldingVoltage:
		return r.WeldingVoltage, nil
	case ArcStatus:
		if r.ArcStatus {
			return 1, nil
		}
		return 0, nil
	case WireSpeed:
		return r.WireSpeed, nil
	case VoltageL1:
		return r.VoltageL1, nil
	case VoltageL2:
		return r.VoltageL2, nil
	case VoltageL3:
		return r.VoltageL3, nil
	case CurrentL1:
		return r.CurrentL1, nil
	case CurrentL2:
		return r.CurrentL2, nil
	case CurrentL3:
		return r.CurrentL3, nil
	case InputPower:
		return r.InputPower, nil
	case GasFlow:
		return r.GasFlow, nil
	default:
		return 0, &UnknownVariableError{Name: string(ch)}
	}
}

// ReadingQuery is the filter handed to the external reading-query collaborator.
// MachineID may be empty to query every machine visible to the caller.
type ReadingQuery struct {
	MachineID string    `json:"machineId,omitempty"`
	BeginAt   time.Time `json:"beginAt"`
	EndAt     time.Time `json:"endAt"`
	Limit     int       `json:"limit,omitempty"`
}

// Validate rejects windows whose begin is after their end.
func (q ReadingQuery) Validate() error {
	return ValidateRange(q.BeginAt, q.EndAt)
}

// Contains reports whether ts falls in the half-open window [BeginAt, EndAt).
func (q ReadingQuery) Contains(ts time.Time) bool {
	return !ts.Before(q.BeginAt) && ts.Before(q.EndAt)
}

func ValidateRange(beginAt, endAt time.Time) error {
	if beginAt.After(endAt) {
		return &InvalidRangeError{BeginAt: beginAt, EndAt: endAt}
	}
	return nil
}
