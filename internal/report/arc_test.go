package report

import (
	"testing"
	"time"
)

func TestTotalOnDuration(t *testing.T) {
	cases := []struct {
		name   string
		points []TimeSeriesPoint
		want   time.Duration
	}{
		{"repeated on does not reopen", arcPoints(0, 1.0, 2, 1.0, 5, 0.0, 9, 1.0, 9, 0.0), 5 * time.Second},
		{"on on off on off", arcPoints(0, 1.0, 2, 1.0, 5, 0.0, 5, 1.0, 9, 0.0), 9 * time.Second},
		{"trailing open interval", arcPoints(0, 1.0), 0},
		{"empty", nil, 0},
		{"leading off ignored", arcPoints(0, 0.0, 1, 0.0, 2, 1.0, 4, 0.0), 2 * time.Second},
		{"unrecognized value ignored", arcPoints(0, 1.0, 1, 0.5, 3, 0.0), 3 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TotalOnDuration(tc.points); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{2 * time.Second, "00:00:02"},
		{time.Hour + 2*time.Minute + 3*time.Second + 900*time.Millisecond, "01:02:03"},
		{26 * time.Hour, "26:00:00"},
		{-time.Second, "00:00:00"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Fatalf("FormatDuration(%s): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}
