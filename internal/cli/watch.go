package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/daylap/internal/constants"
	"github.com/julianstephens/daylap/internal/detector"
	"github.com/julianstephens/daylap/internal/logger"
	"github.com/julianstephens/daylap/internal/tracker"
	"github.com/julianstephens/daylap/internal/utils"
)

type WatchCmd struct {
	Poll     time.Duration `help:"Lock probe interval." default:"2s"`
	For      time.Duration `help:"End the day automatically after this long (0 runs until interrupted)." default:"0"`
	NoDetect bool          `help:"Disable OS lock detection; pause/resume only via signals."`
}

func (c *WatchCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	// Snapshot the archive before the day's writes
	ctx.PerformAutomaticBackup()

	session := tracker.NewSessionManager()
	if _, err := session.StartDay(); err != nil {
		return err
	}

	status := session.CurrentStatus()
	fmt.Printf("Tracking %s - press Ctrl+C to end the day\n", status.DayKey)
	logger.Info("watch started", "day", status.DayKey)

	var watcher *detector.Watcher
	if !c.NoDetect {
		watcher = detector.NewWatcher(session, detector.NewProbe(), c.Poll)
		watcher.Start()
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	var deadline <-chan time.Time
	if c.For > 0 {
		deadline = time.After(c.For)
	}

	ticker := time.NewTicker(constants.StatusTickInterval)
	defer ticker.Stop()

	lastActive := true
	lastReport := time.Now()

loop:
	for {
		select {
		case <-ticker.C:
			st := session.CurrentStatus()
			if st == nil {
				break loop
			}
			// Heartbeat on pause/resume edges and once a minute while active
			now := time.Now()
			if st.IsActive != lastActive {
				lastActive = st.IsActive
				if st.IsActive {
					fmt.Printf("%s  resumed - total %s\n", now.Format(constants.ClockFormat), utils.FormatDuration(st.TotalSessionDuration))
				} else {
					fmt.Printf("%s  paused - total %s\n", now.Format(constants.ClockFormat), utils.FormatDuration(st.TotalSessionDuration))
				}
				lastReport = now
			} else if st.IsActive && now.Sub(lastReport) >= time.Minute {
				fmt.Printf("%s  tracking - total %s\n", now.Format(constants.ClockFormat), utils.FormatDuration(st.TotalSessionDuration))
				lastReport = now
			}
		case <-interrupt:
			fmt.Println()
			break loop
		case <-deadline:
			fmt.Println("Time window elapsed.")
			break loop
		}
	}

	if watcher != nil {
		watcher.Stop()
	}

	record, err := session.EndDay()
	if err != nil {
		return err
	}
	logger.Info("watch ended", "day", record.Date, "total", record.TotalDuration, "laps", record.LapCount())

	if err := ctx.Store.SaveDay(record); err != nil {
		return fmt.Errorf("failed to save day record: %w", err)
	}

	fmt.Printf("Day %s saved: %s across %d laps\n", record.Date, utils.FormatDuration(record.TotalDuration), record.LapCount())
	return nil
}
