package tracker

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/daylap/internal/models"
)

// fakeClock stands in for nowFunc so transitions happen at exact instants.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t *testing.T, start time.Time) *fakeClock {
	t.Helper()
	c := &fakeClock{now: start}
	orig := nowFunc
	nowFunc = c.Now
	t.Cleanup(func() { nowFunc = orig })
	return c
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testDayStart = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestStartDay_OpensFirstLap(t *testing.T) {
	newFakeClock(t, testDayStart)
	m := NewSessionManager()

	dayKey, err := m.StartDay()
	if err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	if dayKey != "2025-03-10" {
		t.Errorf("expected day key 2025-03-10, got %q", dayKey)
	}
	if m.State() != models.StateActive {
		t.Errorf("expected active state, got %v", m.State())
	}

	status := m.CurrentStatus()
	if status == nil {
		t.Fatal("expected a status snapshot")
	}
	if !status.IsActive || status.CurrentLapDuration != 0 || status.TotalSessionDuration != 0 {
		t.Errorf("unexpected initial status: %+v", status)
	}

	laps := m.DayLaps()
	if len(laps) != 1 || !laps[0].Open() {
		t.Fatalf("expected exactly one open lap, got %+v", laps)
	}
	if laps[0].StartTime != testDayStart.Unix() {
		t.Errorf("expected lap start %d, got %d", testDayStart.Unix(), laps[0].StartTime)
	}
}

func TestStartDay_WhileLiveFails(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	if _, err := m.StartDay(); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("expected ErrAlreadyActive while active, got %v", err)
	}

	clock.Advance(10 * time.Second)
	m.HandleScreenLock()
	if _, err := m.StartDay(); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("expected ErrAlreadyActive while paused, got %v", err)
	}

	// The failed restarts must not have touched the live day.
	status := m.CurrentStatus()
	if status == nil || status.DayKey != "2025-03-10" || status.TotalSessionDuration != 10 {
		t.Errorf("live day disturbed by failed StartDay: %+v", status)
	}
}

func TestScreenLockRightAfterStart_LeavesNoLap(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	clock.Advance(1 * time.Second)
	m.HandleScreenLock()

	if m.State() != models.StatePaused {
		t.Errorf("expected paused state, got %v", m.State())
	}
	if laps := m.DayLaps(); len(laps) != 0 {
		t.Errorf("expected no laps after a 1s flicker, got %+v", laps)
	}
	status := m.CurrentStatus()
	if status == nil || status.TotalSessionDuration != 0 || status.CurrentLapDuration != 0 {
		t.Errorf("expected zeroed status, got %+v", status)
	}
}

func TestLockUnlockEndDay_BuildsTwoLaps(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	clock.Advance(10 * time.Second)
	m.HandleScreenLock()
	clock.Advance(10 * time.Second)
	m.HandleScreenUnlock()
	clock.Advance(10 * time.Second)

	record, err := m.EndDay()
	if err != nil {
		t.Fatalf("EndDay failed: %v", err)
	}

	base := testDayStart.Unix()
	if record.Date != "2025-03-10" {
		t.Errorf("unexpected date %q", record.Date)
	}
	if len(record.Laps) != 2 {
		t.Fatalf("expected 2 laps, got %d", len(record.Laps))
	}
	first, second := record.Laps[0], record.Laps[1]
	if first.StartTime != base || *first.EndTime != base+10 || *first.Duration != 10 {
		t.Errorf("unexpected first lap: %+v", first)
	}
	if second.StartTime != base+20 || *second.EndTime != base+30 || *second.Duration != 10 {
		t.Errorf("unexpected second lap: %+v", second)
	}
	if record.TotalDuration != 20 {
		t.Errorf("expected total 20, got %d", record.TotalDuration)
	}
	if record.IsActive {
		t.Error("finalized record must not be active")
	}

	if m.State() != models.StateNotStarted {
		t.Errorf("expected not-started after EndDay, got %v", m.State())
	}
	if m.CurrentStatus() != nil {
		t.Error("expected nil status after EndDay")
	}
}

func TestAddLap_RotatesWhileActive(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	clock.Advance(10 * time.Second)
	if _, err := m.AddLap(); err != nil {
		t.Fatalf("AddLap failed: %v", err)
	}
	if m.State() != models.StateActive {
		t.Errorf("rotation must stay active, got %v", m.State())
	}

	laps := m.DayLaps()
	if len(laps) != 2 || laps[0].Open() || !laps[1].Open() {
		t.Fatalf("expected one closed and one open lap, got %+v", laps)
	}

	clock.Advance(5 * time.Second)
	record, err := m.EndDay()
	if err != nil {
		t.Fatalf("EndDay failed: %v", err)
	}
	if len(record.Laps) != 2 || record.TotalDuration != 15 {
		t.Errorf("expected 2 laps totalling 15s, got %d laps, total %d", len(record.Laps), record.TotalDuration)
	}
}

func TestAddLap_RotationDropsShortLap(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	clock.Advance(1 * time.Second)
	if _, err := m.AddLap(); err != nil {
		t.Fatalf("AddLap failed: %v", err)
	}

	laps := m.DayLaps()
	if len(laps) != 1 || !laps[0].Open() {
		t.Fatalf("expected only the fresh open lap, got %+v", laps)
	}
	if status := m.CurrentStatus(); status.TotalSessionDuration != 0 {
		t.Errorf("dropped lap must not count, got total %d", status.TotalSessionDuration)
	}
}

func TestAddLap_ResumesWhilePaused(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	clock.Advance(10 * time.Second)
	if _, err := m.StopLap(); err != nil {
		t.Fatalf("StopLap failed: %v", err)
	}
	clock.Advance(10 * time.Second)
	if _, err := m.AddLap(); err != nil {
		t.Fatalf("AddLap failed: %v", err)
	}

	if m.State() != models.StateActive {
		t.Errorf("expected active after resume, got %v", m.State())
	}
	laps := m.DayLaps()
	if len(laps) != 2 || !laps[1].Open() {
		t.Fatalf("expected closed+open laps, got %+v", laps)
	}
	if laps[1].StartTime != testDayStart.Unix()+20 {
		t.Errorf("resumed lap should start at pause end, got %d", laps[1].StartTime)
	}
}

func TestAddLap_WithoutDayFails(t *testing.T) {
	newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.AddLap(); !errors.Is(err, ErrNoActiveDay) {
		t.Errorf("expected ErrNoActiveDay, got %v", err)
	}
}

func TestDuplicateLockSignalsAreNoOps(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	clock.Advance(10 * time.Second)
	m.HandleScreenLock()

	clock.Advance(5 * time.Second)
	if msg := m.HandleScreenLock(); msg != "Already paused" {
		t.Errorf("expected no-op message, got %q", msg)
	}
	if m.State() != models.StatePaused {
		t.Errorf("expected paused, got %v", m.State())
	}
	if laps := m.DayLaps(); len(laps) != 1 {
		t.Errorf("duplicate lock must not change laps, got %+v", laps)
	}
	if status := m.CurrentStatus(); status.TotalSessionDuration != 10 {
		t.Errorf("expected total 10, got %d", status.TotalSessionDuration)
	}
}

func TestDuplicateUnlockSignalsAreNoOps(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	clock.Advance(10 * time.Second)
	if msg := m.HandleScreenUnlock(); msg != "Already tracking" {
		t.Errorf("expected no-op message, got %q", msg)
	}

	laps := m.DayLaps()
	if len(laps) != 1 || laps[0].StartTime != testDayStart.Unix() {
		t.Errorf("duplicate unlock must not restart the lap, got %+v", laps)
	}
}

func TestMonitorSignalsWithoutDayAreNoOps(t *testing.T) {
	newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if msg := m.HandleScreenLock(); msg != "No active session" {
		t.Errorf("unexpected lock message %q", msg)
	}
	if msg := m.HandleScreenUnlock(); msg != "No active session" {
		t.Errorf("unexpected unlock message %q", msg)
	}
	if m.State() != models.StateNotStarted {
		t.Errorf("expected not-started, got %v", m.State())
	}
	if m.CurrentStatus() != nil {
		t.Error("expected nil status")
	}
}

func TestEndDay_WithoutDayFails(t *testing.T) {
	newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.EndDay(); !errors.Is(err, ErrNoActiveDay) {
		t.Errorf("expected ErrNoActiveDay, got %v", err)
	}
	if m.State() != models.StateNotStarted {
		t.Errorf("failed EndDay must leave state untouched, got %v", m.State())
	}
}

func TestStopLap_WhilePausedFails(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	clock.Advance(10 * time.Second)
	if _, err := m.StopLap(); err != nil {
		t.Fatalf("StopLap failed: %v", err)
	}
	if _, err := m.StopLap(); !errors.Is(err, ErrNoOpenLap) {
		t.Errorf("expected ErrNoOpenLap, got %v", err)
	}
}

func TestStopLap_WithoutDayFails(t *testing.T) {
	newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StopLap(); !errors.Is(err, ErrNoActiveDay) {
		t.Errorf("expected ErrNoActiveDay, got %v", err)
	}
}

func TestCurrentStatus_CountsOpenLapElapsed(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	clock.Advance(60 * time.Second)
	m.HandleScreenLock()
	clock.Advance(10 * time.Second)
	m.HandleScreenUnlock()
	clock.Advance(40 * time.Second)

	status := m.CurrentStatus()
	if status == nil {
		t.Fatal("expected a status snapshot")
	}
	if !status.IsActive {
		t.Error("expected active status")
	}
	if status.CurrentLapDuration != 40 {
		t.Errorf("expected current lap 40, got %d", status.CurrentLapDuration)
	}
	if status.TotalSessionDuration != 100 {
		t.Errorf("expected total 100 (60 closed + 40 live), got %d", status.TotalSessionDuration)
	}
}

func TestEndDay_DropsShortFinalLap(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	clock.Advance(10 * time.Second)
	m.HandleScreenLock()
	clock.Advance(10 * time.Second)
	m.HandleScreenUnlock()
	clock.Advance(1 * time.Second)

	record, err := m.EndDay()
	if err != nil {
		t.Fatalf("EndDay failed: %v", err)
	}
	if len(record.Laps) != 1 || record.TotalDuration != 10 {
		t.Errorf("expected 1 lap totalling 10s, got %d laps, total %d", len(record.Laps), record.TotalDuration)
	}
}

func TestEndDay_RecordSurvivesNewSession(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	clock.Advance(30 * time.Second)
	record, err := m.EndDay()
	if err != nil {
		t.Fatalf("EndDay failed: %v", err)
	}

	before, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	// Reuse the manager for a fresh session and churn it.
	clock.Advance(time.Hour)
	if _, err := m.StartDay(); err != nil {
		t.Fatalf("second StartDay failed: %v", err)
	}
	clock.Advance(20 * time.Second)
	if _, err := m.AddLap(); err != nil {
		t.Fatalf("AddLap failed: %v", err)
	}
	clock.Advance(20 * time.Second)
	if _, err := m.EndDay(); err != nil {
		t.Fatalf("second EndDay failed: %v", err)
	}

	after, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Errorf("finalized record changed under a new session:\nbefore %s\nafter  %s", before, after)
	}
}

func TestDayKeyStaysFixedPastMidnight(t *testing.T) {
	clock := newFakeClock(t, time.Date(2025, 3, 10, 23, 59, 30, 0, time.UTC))
	m := NewSessionManager()

	dayKey, err := m.StartDay()
	if err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}
	if dayKey != "2025-03-10" {
		t.Fatalf("unexpected day key %q", dayKey)
	}

	clock.Advance(2 * time.Minute) // now past midnight
	status := m.CurrentStatus()
	if status.DayKey != "2025-03-10" {
		t.Errorf("day key drifted past midnight: %q", status.DayKey)
	}

	if _, err := m.AddLap(); err != nil {
		t.Fatalf("AddLap failed: %v", err)
	}
	clock.Advance(30 * time.Second)
	record, err := m.EndDay()
	if err != nil {
		t.Fatalf("EndDay failed: %v", err)
	}
	if record.Date != "2025-03-10" {
		t.Errorf("record date drifted past midnight: %q", record.Date)
	}
	if len(record.Laps) != 2 || record.TotalDuration != 150 {
		t.Errorf("expected 2 laps totalling 150s, got %d laps, total %d", len(record.Laps), record.TotalDuration)
	}
}

func TestConcurrentStatusReadsDuringWrites(t *testing.T) {
	clock := newFakeClock(t, testDayStart)
	m := NewSessionManager()

	if _, err := m.StartDay(); err != nil {
		t.Fatalf("StartDay failed: %v", err)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if status := m.CurrentStatus(); status != nil && status.TotalSessionDuration < 0 {
					t.Error("negative total observed")
				}
				laps := m.DayLaps()
				for j := 1; j < len(laps); j++ {
					if laps[j-1].Open() {
						t.Error("open lap observed before the end of the sequence")
					}
					if laps[j].StartTime < laps[j-1].StartTime {
						t.Error("laps observed out of order")
					}
					if laps[j-1].EndTime != nil && laps[j].StartTime < *laps[j-1].EndTime {
						t.Error("overlapping laps observed")
					}
				}
				_ = m.State()
			}
		}()
	}

	for i := 0; i < 50; i++ {
		clock.Advance(5 * time.Second)
		if _, err := m.AddLap(); err != nil {
			t.Errorf("AddLap failed: %v", err)
		}
		clock.Advance(5 * time.Second)
		if _, err := m.StopLap(); err != nil {
			t.Errorf("StopLap failed: %v", err)
		}
		clock.Advance(5 * time.Second)
		m.HandleScreenUnlock()
	}
	close(stop)
	wg.Wait()

	record, err := m.EndDay()
	if err != nil {
		t.Fatalf("EndDay failed: %v", err)
	}
	// Each iteration closes two 5s laps; the final open lap has zero
	// elapsed time at EndDay and is dropped.
	if len(record.Laps) != 100 {
		t.Errorf("expected 100 laps, got %d", len(record.Laps))
	}
	if record.TotalDuration != 500 {
		t.Errorf("expected total 500, got %d", record.TotalDuration)
	}
	for i, lap := range record.Laps {
		if lap.Open() {
			t.Errorf("lap %d still open in finalized record", i)
		}
	}
}
