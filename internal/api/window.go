package api

import (
	"fmt"
	"strings"
	"time"

	"soldage-iot-backend/internal/report"
)

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseInstant accepts RFC3339 and the date/datetime-local forms sent by
// browser forms. Values without a zone are read as UTC.
func parseInstant(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", report.ErrInvalidRequest, field)
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s %q is not a valid date", report.ErrInvalidRequest, field, raw)
}

func parseWindow(beginRaw, finalRaw string) (time.Time, time.Time, error) {
	beginAt, err := parseInstant("begin_date", beginRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endAt, err := parseInstant("final_date", finalRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return beginAt, endAt, nil
}
