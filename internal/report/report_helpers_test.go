package report

import (
	"time"

	"soldage-iot-backend/internal/telemetry"
)

var epoch = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return epoch.Add(time.Duration(sec) * time.Second)
}

func arcReading(machineID string, sec int, on bool) telemetry.ReadingRecord {
	return telemetry.ReadingRecord{
		ID:          machineID + "-" + at(sec).Format(time.RFC3339),
		MachineID:   machineID,
		MachineCode: "SOLD-" + machineID,
		Timestamp:   at(sec),
		ArcStatus:   on,
	}
}

func arcPoints(pattern ...any) []TimeSeriesPoint {
	var points []TimeSeriesPoint
	for i := 0; i+1 < len(pattern); i += 2 {
		points = append(points, TimeSeriesPoint{
			Timestamp: at(pattern[i].(int)),
			Value:     roundValue(pattern[i+1].(float64)),
		})
	}
	return points
}
