package tracker

import "errors"

var (
	// ErrAlreadyActive is returned by StartDay while a day is still live.
	// The caller must end the current day first; there is no implicit
	// end-and-restart.
	ErrAlreadyActive = errors.New("a day is already being tracked")

	// ErrNoActiveDay is returned when an operation needs a live day and
	// none has been started.
	ErrNoActiveDay = errors.New("no active day")

	// ErrNoOpenLap is returned by StopLap while the session is paused.
	ErrNoOpenLap = errors.New("no open lap")

	// ErrLapAlreadyOpen is returned by OpenLap when a lap is running.
	ErrLapAlreadyOpen = errors.New("a lap is already open")
)
