package source

import (
	"encoding/json"
	"time"

	"soldage-iot-backend/internal/telemetry"
)

// readingPayload is the upstream JSON shape of one reading.
type readingPayload struct {
	ID             string         `json:"id"`
	Machine        machinePayload `json:"machine"`
	MachineID      string         `json:"machine_id,omitempty"`
	WeldingCurrent float64        `json:"welding_current"`
	WeldingVoltage float64        `json:"welding_voltage"`
	ArcStatus      bool           `json:"arc_status"`
	WireSpeed      float64        `json:"wire_speed"`
	VoltageL1      float64        `json:"voltageL1"`
	VoltageL2      float64        `json:"voltageL2"`
	VoltageL3      float64        `json:"voltageL3"`
	CurrentL1      float64        `json:"currentL1"`
	CurrentL2      float64        `json:"currentL2"`
	CurrentL3      float64        `json:"currentL3"`
	InputPower     float64        `json:"input_power"`
	GasFlow        float64        `json:"gas_flow"`
	CreatedAt      time.Time      `json:"created_at"`
}

type machinePayload struct {
	ID          string        `json:"id"`
	Code        string        `json:"code"`
	Description string        `json:"description"`
	Client      clientPayload `json:"client"`
}

type clientPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (p readingPayload) record() telemetry.ReadingRecord {
	machineID := p.Machine.ID
	if machineID == "" {
		machineID = p.MachineID
	}
	return telemetry.ReadingRecord{
		ID:                 p.ID,
		MachineID:          machineID,
		MachineCode:        p.Machine.Code,
		MachineDescription: p.Machine.Description,
		ClientID:           p.Machine.Client.ID,
		ClientName:         p.Machine.Client.Name,
		Timestamp:          p.CreatedAt.UTC(),
		WeldingCurrent:     p.WeldingCurrent,
		WeldingVoltage:     p.WeldingVoltage,
		ArcStatus:          p.ArcStatus,
		WireSpeed:          p.WireSpeed,
		VoltageL1:          p.VoltageL1,
		VoltageL2:          p.VoltageL2,
		VoltageL3:          p.VoltageL3,
		CurrentL1:          p.CurrentL1,
		CurrentL2:          p.CurrentL2,
		CurrentL3:          p.CurrentL3,
		InputPower:         p.InputPower,
		GasFlow:            p.GasFlow,
	}
}

func payloadFromRecord(r telemetry.ReadingRecord) readingPayload {
	return readingPayload{
		ID: r.ID,
		Machine: machinePayload{
			ID:          r.MachineID,
			Code:        r.MachineCode,
			Description: r.MachineDescription,
			Client:      clientPayload{ID: r.ClientID, Name: r.ClientName},
		},
		WeldingCurrent: r.WeldingCurrent,
		WeldingVoltage: r.WeldingVoltage,
		ArcStatus:      r.ArcStatus,
		WireSpeed:      r.WireSpeed,
		VoltageL1:      r.VoltageL1,
		VoltageL2:      r.VoltageL2,
		VoltageL3:      r.VoltageL3,
		CurrentL1:      r.CurrentL1,
		CurrentL2:      r.CurrentL2,
		CurrentL3:      r.CurrentL3,
		InputPower:     r.InputPower,
		GasFlow:        r.GasFlow,
		CreatedAt:      r.Timestamp,
	}
}

func records(payloads []readingPayload) []telemetry.ReadingRecord {
	out := make([]telemetry.ReadingRecord, len(payloads))
	for i, p := range payloads {
		out[i] = p.record()
	}
	return out
}

// DecodeReadings is exposed for tools that import upstream JSON dumps.
func DecodeReadings(data []byte) ([]telemetry.ReadingRecord, error) {
	var payloads []readingPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, err
	}
	return records(payloads), nil
}
