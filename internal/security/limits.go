package security

import "time"

type Limits struct {
	MaxQueryDuration time.Duration
	MaxWindow        time.Duration
	MaxRows          int
	ReportWorkers    int
	MaxVariables     int
}

func DefaultLimits() Limits {
	return Limits{
		MaxQueryDuration: 10 * time.Second,
		MaxWindow:        31 * 24 * time.Hour,
		MaxRows:          50000,
		ReportWorkers:    4,
		MaxVariables:     12,
	}
}

// AllowsWindow reports whether a query window fits MaxWindow. Zero disables the check.
func (l Limits) AllowsWindow(window time.Duration) bool {
	return l.MaxWindow <= 0 || window <= l.MaxWindow
}
