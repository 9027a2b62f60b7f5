package tracker

import (
	"sync"
	"time"

	"github.com/julianstephens/daylap/internal/constants"
	"github.com/julianstephens/daylap/internal/models"
)

// nowFunc supplies the wall clock; swapped in tests.
var nowFunc = time.Now

// SessionManager drives the day lifecycle around a single LapTracker. All
// writes take the exclusive lock and status reads share it, so a reader
// can never observe a partially updated lap. OS lock/unlock signals funnel
// in through HandleScreenLock/HandleScreenUnlock; duplicates are no-ops,
// not errors, because monitors deliver at-least-once.
type SessionManager struct {
	mu      sync.RWMutex
	tracker *LapTracker // nil while no day is being tracked
}

func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// State reports where the session currently sits. State is derived, never
// stored: no tracker means not started, an open lap means active, a
// tracker with no open lap means paused.
func (m *SessionManager) State() models.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

func (m *SessionManager) stateLocked() models.SessionState {
	switch {
	case m.tracker == nil:
		return models.StateNotStarted
	case m.tracker.HasOpenLap():
		return models.StateActive
	default:
		return models.StatePaused
	}
}

// StartDay begins tracking a new day and opens its first lap, returning
// the day key. The key is fixed here and keeps accumulating laps even past
// midnight, until EndDay.
func (m *SessionManager) StartDay() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracker != nil {
		return "", ErrAlreadyActive
	}

	now := nowFunc()
	t := NewLapTracker(now.Format(constants.DateFormat))
	if err := t.OpenLap(now.Unix()); err != nil {
		return "", err
	}
	m.tracker = t
	return t.DayKey(), nil
}

// EndDay closes any open lap, finalizes the day and resets to NotStarted.
// The returned record is a detached value; handing it to storage is the
// caller's job.
func (m *SessionManager) EndDay() (models.DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracker == nil {
		return models.DayRecord{}, ErrNoActiveDay
	}

	if m.tracker.HasOpenLap() {
		if _, err := m.tracker.CloseLap(nowFunc().Unix()); err != nil {
			return models.DayRecord{}, err
		}
	}

	record := m.tracker.Record(false)
	m.tracker = nil
	return record, nil
}

// AddLap rotates laps. While active the current lap is closed and a new
// one opened at the same instant; while paused it simply resumes.
func (m *SessionManager) AddLap() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracker == nil {
		return "", ErrNoActiveDay
	}

	now := nowFunc().Unix()
	if !m.tracker.HasOpenLap() {
		if err := m.tracker.OpenLap(now); err != nil {
			return "", err
		}
		return "Resumed with a new lap", nil
	}

	kept, err := m.tracker.CloseLap(now)
	if err != nil {
		return "", err
	}
	if err := m.tracker.OpenLap(now); err != nil {
		return "", err
	}
	if !kept {
		return "New lap started - previous lap too short to keep", nil
	}
	return "New lap started", nil
}

// StopLap manually pauses tracking by closing the open lap.
func (m *SessionManager) StopLap() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracker == nil {
		return "", ErrNoActiveDay
	}
	kept, err := m.tracker.CloseLap(nowFunc().Unix())
	if err != nil {
		return "", err
	}
	if !kept {
		return "Lap stopped - too short to keep, dropped", nil
	}
	return "Lap stopped", nil
}

// HandleScreenLock is the monitor entry point for lock, sleep and logout.
func (m *SessionManager) HandleScreenLock() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracker == nil {
		return "No active session"
	}
	if !m.tracker.HasOpenLap() {
		return "Already paused"
	}
	kept, err := m.tracker.CloseLap(nowFunc().Unix())
	if err != nil {
		return "Already paused"
	}
	if !kept {
		return "Screen locked - lap too short to keep, dropped"
	}
	return "Screen locked - timer paused"
}

// HandleScreenUnlock is the monitor entry point for unlock, wake and login.
func (m *SessionManager) HandleScreenUnlock() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracker == nil {
		return "No active session"
	}
	if m.tracker.HasOpenLap() {
		return "Already tracking"
	}
	if err := m.tracker.OpenLap(nowFunc().Unix()); err != nil {
		return "Already tracking"
	}
	return "Screen unlocked - new lap started"
}

// CurrentStatus returns a snapshot of the live session, or nil when no day
// has been started. Absence is not an error.
func (m *SessionManager) CurrentStatus() *models.CurrentStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.tracker == nil {
		return nil
	}
	status := m.tracker.Status(nowFunc().Unix())
	return &status
}

// DayLaps returns today's laps in order, open lap last. Empty when no day
// has been started.
func (m *SessionManager) DayLaps() []models.Lap {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.tracker == nil {
		return nil
	}
	return m.tracker.Laps()
}
