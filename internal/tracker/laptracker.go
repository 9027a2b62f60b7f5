package tracker

import (
	"github.com/julianstephens/daylap/internal/constants"
	"github.com/julianstephens/daylap/internal/models"
)

// closedLap is a finished interval. Plain values only, so snapshots can be
// materialized without aliasing tracker state.
type closedLap struct {
	start    int64
	end      int64
	duration int64
}

// LapTracker owns the ordered lap sequence for one tracked day. Closed laps
// and the single optional open lap are held apart, which makes the
// structural invariants unrepresentable rather than checked: two open laps
// cannot exist, and the open lap is always the newest.
type LapTracker struct {
	dayKey    string
	closed    []closedLap
	openStart int64
	open      bool
	total     int64 // sum of closed durations, seconds
}

// NewLapTracker returns an empty tracker for the given day key.
func NewLapTracker(dayKey string) *LapTracker {
	return &LapTracker{dayKey: dayKey}
}

// DayKey returns the day this tracker accumulates into.
func (t *LapTracker) DayKey() string { return t.dayKey }

// HasOpenLap reports whether a lap is currently running.
func (t *LapTracker) HasOpenLap() bool { return t.open }

// TotalDuration returns the summed duration of closed laps in seconds.
func (t *LapTracker) TotalDuration() int64 { return t.total }

// OpenLap begins a new lap at now (epoch seconds).
func (t *LapTracker) OpenLap(now int64) error {
	if t.open {
		return ErrLapAlreadyOpen
	}
	t.openStart = now
	t.open = true
	return nil
}

// CloseLap ends the open lap at now. Laps shorter than
// constants.MinLapSeconds are dropped entirely so a lock/unlock flicker
// leaves no trace. A clock that ran backwards yields a zero duration and
// is dropped the same way. The returned bool reports whether the lap was
// kept.
func (t *LapTracker) CloseLap(now int64) (bool, error) {
	if !t.open {
		return false, ErrNoOpenLap
	}
	start := t.openStart
	t.open = false

	duration := now - start
	if duration < 0 {
		duration = 0
	}
	if duration < constants.MinLapSeconds {
		return false, nil
	}

	t.closed = append(t.closed, closedLap{start: start, end: now, duration: duration})
	t.total += duration
	return true, nil
}

// Status returns a point-in-time snapshot. While a lap is open its elapsed
// time counts toward both CurrentLapDuration and TotalSessionDuration.
func (t *LapTracker) Status(now int64) models.CurrentStatus {
	status := models.CurrentStatus{
		DayKey:               t.dayKey,
		TotalSessionDuration: t.total,
		IsActive:             t.open,
	}
	if t.open {
		elapsed := now - t.openStart
		if elapsed < 0 {
			elapsed = 0
		}
		status.CurrentLapDuration = elapsed
		status.TotalSessionDuration += elapsed
	}
	return status
}

// Laps returns the lap sequence as a fresh snapshot, open lap last. The
// returned values share nothing with tracker state.
func (t *LapTracker) Laps() []models.Lap {
	laps := make([]models.Lap, 0, len(t.closed)+1)
	for _, c := range t.closed {
		end, duration := c.end, c.duration
		laps = append(laps, models.Lap{StartTime: c.start, EndTime: &end, Duration: &duration})
	}
	if t.open {
		laps = append(laps, models.Lap{StartTime: t.openStart})
	}
	return laps
}

// Record renders the whole day as a record value.
func (t *LapTracker) Record(isActive bool) models.DayRecord {
	return models.DayRecord{
		Date:          t.dayKey,
		TotalDuration: t.total,
		Laps:          t.Laps(),
		IsActive:      isActive,
	}
}
