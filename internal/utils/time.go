package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/daylap/internal/constants"
)

// FormatDuration renders whole seconds as a compact "1h 23m 45s" string,
// dropping leading zero units. Negative inputs render as "0s".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatClock renders a unix timestamp as local wall-clock time (HH:MM:SS).
func FormatClock(unix int64) string {
	return time.Unix(unix, 0).Format(constants.ClockFormat)
}

// ResolveDate turns "today" or a YYYY-MM-DD string into a canonical day key.
func ResolveDate(arg string) (string, error) {
	if arg == "today" {
		return time.Now().Format(constants.DateFormat), nil
	}
	t, err := time.Parse(constants.DateFormat, arg)
	if err != nil {
		return "", fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
	}
	return t.Format(constants.DateFormat), nil
}
