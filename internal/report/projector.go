package report

import (
	"math"
	"sort"

	"soldage-iot-backend/internal/telemetry"
)

type projected struct {
	point   TimeSeriesPoint
	reading telemetry.ReadingRecord
}

// Project extracts the chronological series of one channel. Readings may
// arrive newest-first; the input slice is never reordered in place.
func Project(readings []telemetry.ReadingRecord, ch telemetry.Channel) ([]TimeSeriesPoint, error) {
	items, err := project(readings, ch)
	if err != nil {
		return nil, err
	}
	points := make([]TimeSeriesPoint, len(items))
	for i, item := range items {
		points[i] = item.point
	}
	return points, nil
}

func project(readings []telemetry.ReadingRecord, ch telemetry.Channel) ([]projected, error) {
	if !ch.Valid() {
		return nil, &telemetry.UnknownVariableError{Name: string(ch)}
	}
	ordered := make([]telemetry.ReadingRecord, len(readings))
	copy(ordered, readings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	items := make([]projected, 0, len(ordered))
	for _, r := range ordered {
		v, err := r.Value(ch)
		if err != nil {
			return nil, err
		}
		// a non-finite sample is treated like a missing one
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		items = append(items, projected{
			point:   TimeSeriesPoint{Timestamp: r.Timestamp, Value: roundValue(v)},
			reading: r,
		})
	}
	return items, nil
}
