package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daylap/internal/storage"
	"github.com/julianstephens/daylap/internal/tracker"
	"github.com/julianstephens/daylap/internal/tui/components/laps"
	"github.com/julianstephens/daylap/internal/tui/components/status"
)

// Screen identifies which pane the TUI currently shows.
type Screen int

const (
	ScreenStatus Screen = iota
	ScreenLaps
	ScreenConfirmEnd
	ScreenConfirmQuit
)

// numTabs counts the cycle-able panes; confirmation screens sit outside
// the tab rotation.
const numTabs = 2

type Model struct {
	session        *tracker.SessionManager
	store          storage.Provider
	screen         Screen
	previousScreen Screen
	keys           KeyMap
	help           help.Model
	statusModel    status.Model
	lapsModel      laps.Model
	form           *huh.Form
	endConfirmed   bool
	message        string
	quitting       bool
	width          int
	height         int
}

func NewModel(session *tracker.SessionManager, store storage.Provider) Model {
	return Model{
		session:     session,
		store:       store,
		screen:      ScreenStatus,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		statusModel: status.New(session),
		lapsModel:   laps.New(session.DayLaps(), 0, 0),
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.screen {
	case ScreenStatus:
		keys = append(keys, m.keys.Start, m.keys.NewLap, m.keys.Pause, m.keys.End)
	case ScreenLaps:
		keys = append(keys, m.keys.NewLap, m.keys.Pause)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right}
	actions := []key.Binding{m.keys.Start, m.keys.NewLap, m.keys.Pause, m.keys.End}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.statusModel.Init()
}
