package session

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		e := start.Add(d)
		return &e
	}

	tests := []struct {
		name string
		end  *time.Time
		want string
	}{
		{"equal", at(0), "0s"},
		{"seconds", at(42 * time.Second), "42s"},
		{"minutes", at(65 * time.Second), "1m 5s"},
		{"hours", at(2*time.Hour + 3*time.Minute + 4*time.Second), "2h 3m 4s"},
		{"whole hour", at(time.Hour), "1h 0m 0s"},
		{"sub-second truncated", at(1900 * time.Millisecond), "1s"},
		{"missing end", nil, "In progress"},
		{"end before start", at(-time.Minute), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(start, tt.end); got != tt.want {
				t.Errorf("FormatDuration = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDurationStrings(t *testing.T) {
	tests := []struct {
		start, end string
		want       string
	}{
		{"10:00:00", "10:01:05", "1m 5s"},
		{"10:00:00", "10:00:00", "0s"},
		{"2024-03-01T10:00:00Z", "2024-03-01T11:30:15Z", "1h 30m 15s"},
		{"2024-03-01T10:00:00.123456", "2024-03-01T10:00:09.9", "9s"},
		{"2024-03-01 10:00:00", "2024-03-01 10:02:00", "2m 0s"},
		{"10:00:00", "", "In progress"},
		{"", "10:00:00", "In progress"},
		{"not a time", "10:00:00", "Unknown"},
		{"10:00:00", "later", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.start+"_"+tt.end, func(t *testing.T) {
			if got := FormatDurationStrings(tt.start, tt.end); got != tt.want {
				t.Errorf("FormatDurationStrings(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.want)
			}
		})
	}
}
