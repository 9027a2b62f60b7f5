package status

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/daylap/internal/tracker"
	"github.com/julianstephens/daylap/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(1, 2).
			Align(lipgloss.Center)

	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	totalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(1, 0).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Width(40).
			Align(lipgloss.Center)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Model renders the live tracking pane. It reads straight from the session
// on every frame, so mutations made elsewhere show up on the next tick.
type Model struct {
	session *tracker.SessionManager
	clock   time.Time
	width   int
	height  int
}

func New(session *tracker.SessionManager) Model {
	return Model{
		session: session,
		clock:   time.Now(),
	}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.clock = time.Time(msg)
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	st := m.session.CurrentStatus()

	var content string
	if st == nil {
		content = lipgloss.JoinVertical(lipgloss.Center,
			idleStyle.Render("not started"),
			"",
			"Press 's' to start the day.",
		)
	} else {
		state := pausedStyle.Render("paused")
		lapLine := metaStyle.Render("Press 'p' to resume")
		if st.IsActive {
			state = activeStyle.Render("tracking")
			lapLine = metaStyle.Render(fmt.Sprintf("current lap %s", utils.FormatDuration(st.CurrentLapDuration)))
		}

		laps := m.session.DayLaps()
		content = lipgloss.JoinVertical(lipgloss.Center,
			dayStyle.Render(st.DayKey),
			state,
			totalStyle.Render(utils.FormatDuration(st.TotalSessionDuration)),
			lapLine,
			metaStyle.Render(fmt.Sprintf("%d lap(s) today", len(laps))),
		)
	}

	content = lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(fmt.Sprintf("Now: %02d:%02d:%02d", m.clock.Hour(), m.clock.Minute(), m.clock.Second())),
		content,
	)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}
