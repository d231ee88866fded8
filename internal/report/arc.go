package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	arcOn  = decimal.NewFromInt(1)
	arcOff = decimal.Zero
)

// TotalOnDuration sums closed on→off intervals of a chronological arc-status
// series. Repeated "on" samples keep the first opening. An interval still open
// at the end of the series is not counted: time only accrues on an observed
// off transition.
func TotalOnDuration(points []TimeSeriesPoint) time.Duration {
	var (
		openSince time.Time
		open      bool
		total     time.Duration
	)
	for _, p := range points {
		switch {
		case p.Value.Equal(arcOn) && !open:
			openSince = p.Timestamp
			open = true
		case p.Value.Equal(arcOff) && open:
			total += p.Timestamp.Sub(openSince)
			open = false
		}
	}
	return total
}

// FormatDuration renders d as HH:MM:SS truncated to whole seconds. Hours keep
// counting past 24.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
