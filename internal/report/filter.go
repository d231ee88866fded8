package report

import (
	"time"

	"soldage-iot-backend/internal/telemetry"
)

// FilterReadings keeps readings of machineID inside [beginAt, endAt), in the
// order the upstream provided them.
func FilterReadings(readings []telemetry.ReadingRecord, machineID string, beginAt, endAt time.Time) ([]telemetry.ReadingRecord, error) {
	if err := telemetry.ValidateRange(beginAt, endAt); err != nil {
		return nil, err
	}
	query := telemetry.ReadingQuery{MachineID: machineID, BeginAt: beginAt, EndAt: endAt}
	filtered := make([]telemetry.ReadingRecord, 0, len(readings))
	for _, r := range readings {
		if machineID != "" && r.MachineID != machineID {
			continue
		}
		if !query.Contains(r.Timestamp) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// FilterByMachine scopes readings to one machine without touching the window.
// An empty machineID keeps everything.
func FilterByMachine(readings []telemetry.ReadingRecord, machineID string) []telemetry.ReadingRecord {
	if machineID == "" {
		return readings
	}
	scoped := make([]telemetry.ReadingRecord, 0, len(readings))
	for _, r := range readings {
		if r.MachineID == machineID {
			scoped = append(scoped, r)
		}
	}
	return scoped
}

// LatestReading returns the newest reading of machineID.
func LatestReading(readings []telemetry.ReadingRecord, machineID string) (telemetry.ReadingRecord, bool) {
	var (
		latest telemetry.ReadingRecord
		found  bool
	)
	for _, r := range readings {
		if machineID != "" && r.MachineID != machineID {
			continue
		}
		if !found || r.Timestamp.After(latest.Timestamp) {
			latest = r
			found = true
		}
	}
	return latest, found
}
