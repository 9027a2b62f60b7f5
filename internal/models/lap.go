package models

// SessionState is where the live tracking session currently sits.
type SessionState int

const (
	StateNotStarted SessionState = iota
	StateActive
	StatePaused
)

func (s SessionState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	default:
		return "not started"
	}
}

// Lap is one contiguous interval of active screen time. EndTime and
// Duration are nil while the lap is still open; a closed lap always
// carries both.
type Lap struct {
	StartTime int64  `json:"start_time"`         // epoch seconds
	EndTime   *int64 `json:"end_time,omitempty"` // epoch seconds
	Duration  *int64 `json:"duration,omitempty"` // seconds
}

// Open reports whether the lap has not been closed yet.
func (l Lap) Open() bool {
	return l.EndTime == nil
}

// DayRecord is the lap history for a single tracked day. Laps are ordered
// by start time and do not overlap; at most one is open and it is always
// last. TotalDuration sums CLOSED laps only.
type DayRecord struct {
	Date          string `json:"date"` // YYYY-MM-DD, fixed when the day starts
	TotalDuration int64  `json:"total_duration"`
	Laps          []Lap  `json:"laps"`
	IsActive      bool   `json:"is_active"`
}

// LapCount returns the number of laps, open lap included.
func (r DayRecord) LapCount() int {
	return len(r.Laps)
}

// CurrentStatus is a point-in-time snapshot of the live session.
// TotalSessionDuration includes the open lap's elapsed time while active.
type CurrentStatus struct {
	DayKey               string `json:"day_key"`
	CurrentLapDuration   int64  `json:"current_lap_duration"` // seconds, 0 when paused
	TotalSessionDuration int64  `json:"total_session_duration"`
	IsActive             bool   `json:"is_active"`
}
