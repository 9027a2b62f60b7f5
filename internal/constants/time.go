package constants

import "time"

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// ClockFormat is the wall-clock format used when rendering lap boundaries (HH:MM:SS)
	ClockFormat = "15:04:05"

	// MinLapSeconds is the minimum length of a lap worth keeping. Laps
	// closed before reaching it are dropped entirely so that screen
	// flicker (lock immediately followed by unlock) leaves no trace.
	MinLapSeconds = 3

	// DefaultLockPollInterval is how often the lock probe scans the
	// process table when no interval is given on the command line.
	DefaultLockPollInterval = 2 * time.Second

	// StatusTickInterval drives the live status refresh in the TUI.
	StatusTickInterval = time.Second
)
