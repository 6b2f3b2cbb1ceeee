package session

import (
	"fmt"
	"time"
)

// Duration sentinels.
const (
	DurationInProgress = "In progress"
	DurationUnknown    = "Unknown"
)

// FormatDuration renders the span between start and end as "1h 2m 3s",
// "2m 3s" or "3s". A missing end yields "In progress"; an end before the
// start yields "Unknown".
func FormatDuration(start time.Time, end *time.Time) string {
	if start.IsZero() || end == nil || end.IsZero() {
		return DurationInProgress
	}
	d := end.Sub(start)
	if d < 0 {
		return DurationUnknown
	}

	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// timestampLayouts are tried in order when parsing external timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"15:04:05",
}

// FormatDurationStrings formats the duration between two textual timestamps.
// Empty values yield "In progress"; unparsable values yield "Unknown".
func FormatDurationStrings(start, end string) string {
	if start == "" || end == "" {
		return DurationInProgress
	}
	s, err := ParseTimestamp(start)
	if err != nil {
		return DurationUnknown
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return DurationUnknown
	}
	return FormatDuration(s, &e)
}

// ParseTimestamp parses an external timestamp in any of the accepted layouts.
func ParseTimestamp(v string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, lastErr)
}
