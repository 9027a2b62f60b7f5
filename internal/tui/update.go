package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daylap/internal/models"
	"github.com/julianstephens/daylap/internal/tui/components/status"
	"github.com/julianstephens/daylap/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The clock tick drives every pane no matter which screen is up;
	// consuming it anywhere else would stall the chain. Lock edges land
	// from the watcher goroutine, so the lap list resyncs here too.
	if tickMsg, ok := msg.(status.TickMsg); ok {
		var cmd tea.Cmd
		m.statusModel, cmd = m.statusModel.Update(tickMsg)
		m.lapsModel.SetLaps(m.session.DayLaps())
		return m, cmd
	}

	// Handle End Day confirmation
	if m.screen == ScreenConfirmEnd {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
			m.screen = m.previousScreen
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		cmds = append(cmds, cmd)

		switch m.form.State {
		case huh.StateCompleted:
			if m.endConfirmed {
				m.endDay()
			}
			m.screen = ScreenStatus
		case huh.StateAborted:
			m.screen = m.previousScreen
		}
		return m, tea.Batch(cmds...)
	}

	// Handle Quit confirmation
	if m.screen == ScreenConfirmQuit {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "y", "Y":
				m.quitting = true
				return m, tea.Quit
			case "n", "N", "esc":
				m.screen = m.previousScreen
			}
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// Adjust height for tabs, message line and help
		contentHeight := msg.Height - 5

		h, v := docStyle.GetFrameSize()
		m.lapsModel.SetSize(msg.Width-h, contentHeight-v)
		m.statusModel.SetSize(msg.Width, contentHeight)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			// A live day is held only in memory, so quitting discards it
			if m.session.State() != models.StateNotStarted {
				m.previousScreen = m.screen
				m.screen = ScreenConfirmQuit
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab, m.keys.Right):
			m.screen = (m.screen + 1) % numTabs
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab, m.keys.Left):
			m.screen = (m.screen - 1 + numTabs) % numTabs
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Start):
			if dayKey, err := m.session.StartDay(); err != nil {
				m.message = err.Error()
			} else {
				m.message = fmt.Sprintf("Tracking %s", dayKey)
				m.lapsModel.SetLaps(m.session.DayLaps())
			}
			return m, nil
		case key.Matches(msg, m.keys.NewLap):
			m.runSessionAction(m.session.AddLap)
			return m, nil
		case key.Matches(msg, m.keys.Pause):
			if m.session.State() == models.StateActive {
				m.runSessionAction(m.session.StopLap)
			} else {
				m.runSessionAction(m.session.AddLap)
			}
			return m, nil
		case key.Matches(msg, m.keys.End):
			if m.session.State() == models.StateNotStarted {
				m.message = "No active day to end"
				return m, nil
			}
			m.endConfirmed = false
			m.form = newEndDayForm(&m.endConfirmed)
			m.previousScreen = m.screen
			m.screen = ScreenConfirmEnd
			return m, m.form.Init()
		}
	}

	if m.screen == ScreenLaps {
		var cmd tea.Cmd
		m.lapsModel, cmd = m.lapsModel.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// runSessionAction invokes a session mutation and surfaces its message or
// error in the status line.
func (m *Model) runSessionAction(action func() (string, error)) {
	result, err := action()
	if err != nil {
		m.message = err.Error()
		return
	}
	m.message = result
	m.lapsModel.SetLaps(m.session.DayLaps())
}

// endDay finalizes the live day and hands the record to storage. Ending
// succeeds even if the save fails; the error stays on the status line.
func (m *Model) endDay() {
	record, err := m.session.EndDay()
	if err != nil {
		m.message = err.Error()
		return
	}
	if err := m.store.SaveDay(record); err != nil {
		m.message = fmt.Sprintf("Failed to save day record: %v", err)
		return
	}
	m.message = fmt.Sprintf("Day %s saved: %s across %d laps", record.Date, utils.FormatDuration(record.TotalDuration), record.LapCount())
	m.lapsModel.SetLaps(m.session.DayLaps())
}

func newEndDayForm(confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("End the day?").
				Description("The day is archived and tracking stops.").
				Affirmative("End day").
				Negative("Keep tracking").
				Value(confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}
