// file: readings.go
package dbconnector

import (
	"fmt"
	"strings"

	"soldage-iot-backend/internal/telemetry"
)

const (
	colID                 = "id"
	colMachineID          = "machine_id"
	colMachineCode        = "machine_code"
	colMachineDescription = "machine_description"
	colClientID           = "client_id"
	colClientName         = "client_name"
	colCreatedAt          = "created_at"
	colWeldingCurrent     = "welding_current"
	colWeldingVoltage     = "welding_voltage"
	colArcStatus          = "arc_status"
	colWireSpeed          = "wire_speed"
	colVoltageL1          = "voltage_l1"
	colVoltageL2          = "voltage_l2"
	colVoltageL3          = "voltage_l3"
	colCurrentL1          = "current_l1"
	colCurrentL2          = "current_l2"
	colCurrentL3          = "current_l3"
	colInputPower         = "input_power"
	colGasFlow            = "gas_flow"
)

var readingColumns = []string{
	colID, colMachineID, colMachineCode, colMachineDescription, colClientID, colClientName, colCreatedAt,
	colWeldingCurrent, colWeldingVoltage, colArcStatus, colWireSpeed,
	colVoltageL1, colVoltageL2, colVoltageL3,
	colCurrentL1, colCurrentL2, colCurrentL3,
	colInputPower, colGasFlow,
}

// requiredColumns must exist in a readings table; machine and client metadata are optional.
var requiredColumns = []string{
	colID, colMachineID, colCreatedAt,
	colWeldingCurrent, colWeldingVoltage, colArcStatus, colWireSpeed,
	colVoltageL1, colVoltageL2, colVoltageL3,
	colCurrentL1, colCurrentL2, colCurrentL3,
	colInputPower, colGasFlow,
}

// CheckColumns reports the required reading columns missing from a table.
func CheckColumns(columns []ColumnInfo) error {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[strings.ToLower(c.Name)] = struct{}{}
	}
	missing := []string{}
	for _, name := range requiredColumns {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("readings table is missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

var floatColumns = map[string]func(*telemetry.ReadingRecord) *float64{
	colWeldingCurrent: func(r *telemetry.ReadingRecord) *float64 { return &r.WeldingCurrent },
	colWeldingVoltage: func(r *telemetry.ReadingRecord) *float64 { return &r.WeldingVoltage },
	colWireSpeed:      func(r *telemetry.ReadingRecord) *float64 { return &r.WireSpeed },
	colVoltageL1:      func(r *telemetry.ReadingRecord) *float64 { return &r.VoltageL1 },
	colVoltageL2:      func(r *telemetry.ReadingRecord) *float64 { return &r.VoltageL2 },
	colVoltageL3:      func(r *telemetry.ReadingRecord) *float64 { return &r.VoltageL3 },
	colCurrentL1:      func(r *telemetry.ReadingRecord) *float64 { return &r.CurrentL1 },
	colCurrentL2:      func(r *telemetry.ReadingRecord) *float64 { return &r.CurrentL2 },
	colCurrentL3:      func(r *telemetry.ReadingRecord) *float64 { return &r.CurrentL3 },
	colInputPower:     func(r *telemetry.ReadingRecord) *float64 { return &r.InputPower },
	colGasFlow:        func(r *telemetry.ReadingRecord) *float64 { return &r.GasFlow },
}

func readingFromRow(row map[string]any) (telemetry.ReadingRecord, error) {
	r := telemetry.ReadingRecord{
		ID:                 textValue(row[colID]),
		MachineID:          textValue(row[colMachineID]),
		MachineCode:        textValue(row[colMachineCode]),
		MachineDescription: textValue(row[colMachineDescription]),
		ClientID:           textValue(row[colClientID]),
		ClientName:         textValue(row[colClientName]),
	}
	ts, ok := toTime(row[colCreatedAt])
	if !ok {
		return r, fmt.Errorf("reading %s: invalid %s %v", r.ID, colCreatedAt, row[colCreatedAt])
	}
	r.Timestamp = ts.UTC()
	if v := row[colArcStatus]; v != nil {
		on, ok := toBool(v)
		if !ok {
			return r, fmt.Errorf("reading %s: invalid %s %v", r.ID, colArcStatus, v)
		}
		r.ArcStatus = on
	}
	for col, field := range floatColumns {
		v := row[col]
		if v == nil {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			return r, fmt.Errorf("reading %s: invalid %s %v", r.ID, col, v)
		}
		*field(&r) = f
	}
	return r, nil
}

func textValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
