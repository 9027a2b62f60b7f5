package cli

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daylap/internal/detector"
	"github.com/julianstephens/daylap/internal/tracker"
	"github.com/julianstephens/daylap/internal/tui"
)

type TuiCmd struct {
	Poll     time.Duration `help:"Lock probe interval." default:"2s"`
	NoDetect bool          `help:"Disable OS lock detection; pause/resume only via keys."`
}

func (c *TuiCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	session := tracker.NewSessionManager()

	// Lock edges mutate the session from the watcher goroutine; the
	// status pane re-reads it on every tick, so they show up unprompted
	var watcher *detector.Watcher
	if !c.NoDetect {
		watcher = detector.NewWatcher(session, detector.NewProbe(), c.Poll)
		watcher.Start()
		defer watcher.Stop()
	}

	p := tea.NewProgram(tui.NewModel(session, ctx.Store), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	return nil
}
