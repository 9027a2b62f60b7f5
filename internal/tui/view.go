package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.screen {
	case ScreenStatus:
		content = m.statusModel.View()
	case ScreenLaps:
		content = docStyle.Render(m.lapsModel.View())
	case ScreenConfirmEnd:
		content = m.form.View()
	case ScreenConfirmQuit:
		content = m.viewConfirmQuit()
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewMessage(),
		m.help.View(m),
	)
	return ui
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Status", "Laps"} {
		if m.screen == Screen(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewMessage() string {
	if m.message == "" {
		return ""
	}
	return messageStyle.Render(m.message)
}

func (m Model) viewConfirmQuit() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("A day is still being tracked. Quit without saving it?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
