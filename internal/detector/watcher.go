package detector

import (
	"sync/atomic"
	"time"

	"github.com/julianstephens/daylap/internal/constants"
	"github.com/julianstephens/daylap/internal/logger"
)

// Session narrows the session manager contract needed by the watcher.
type Session interface {
	HandleScreenLock() string
	HandleScreenUnlock() string
}

// Watcher polls the lock probe and forwards locked/unlocked edges to the
// session manager. Repeated deliveries of the same edge are harmless; the
// manager treats them as no-ops.
type Watcher struct {
	session    Session
	probe      *Probe
	interval   time.Duration
	running    atomic.Bool
	done       chan struct{}
	stopped    chan struct{}
	lastLocked bool
}

// NewWatcher constructs a watcher polling at the given interval. A zero or
// negative interval falls back to the default.
func NewWatcher(session Session, probe *Probe, interval time.Duration) *Watcher {
	if probe == nil {
		probe = NewProbe()
	}
	if interval <= 0 {
		interval = constants.DefaultLockPollInterval
	}
	return &Watcher{session: session, probe: probe, interval: interval}
}

// Start begins polling in a background goroutine. The screen is assumed
// unlocked at start, so a locked host produces an immediate pause edge.
func (w *Watcher) Start() {
	if w.running.Load() {
		return
	}
	w.done = make(chan struct{})
	w.stopped = make(chan struct{})
	w.running.Store(true)
	w.lastLocked = false
	go w.loop()
}

// Stop halts polling and waits for the poll goroutine to exit.
// Safe to call when not running.
func (w *Watcher) Stop() {
	if !w.running.Load() {
		return
	}
	close(w.done)
	<-w.stopped
	w.running.Store(false)
}

func (w *Watcher) loop() {
	defer close(w.stopped)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.poll()
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) poll() {
	locked, err := w.probe.Locked()
	if err != nil {
		logger.Warn("lock probe failed", "error", err)
		return
	}
	if locked == w.lastLocked {
		return
	}
	w.lastLocked = locked

	if locked {
		msg := w.session.HandleScreenLock()
		logger.Debug("lock edge", "result", msg)
	} else {
		msg := w.session.HandleScreenUnlock()
		logger.Debug("unlock edge", "result", msg)
	}
}
