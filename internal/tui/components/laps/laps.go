package laps

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daylap/internal/models"
	"github.com/julianstephens/daylap/internal/utils"
)

type Item struct {
	Index int
	Lap   models.Lap
}

func (i Item) Title() string {
	if i.Lap.Open() {
		return fmt.Sprintf("Lap %d  %s – now", i.Index+1, utils.FormatClock(i.Lap.StartTime))
	}
	return fmt.Sprintf("Lap %d  %s – %s", i.Index+1, utils.FormatClock(i.Lap.StartTime), utils.FormatClock(*i.Lap.EndTime))
}

func (i Item) Description() string {
	if i.Lap.Open() {
		return "running"
	}
	var d int64
	if i.Lap.Duration != nil {
		d = *i.Lap.Duration
	}
	return utils.FormatDuration(d)
}

func (i Item) FilterValue() string { return i.Title() }

type Model struct {
	list list.Model
}

func New(dayLaps []models.Lap, width, height int) Model {
	l := list.New(toItems(dayLaps), list.NewDefaultDelegate(), width, height)
	l.Title = "Laps"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // We handle help globally in the main model
	l.SetFilteringEnabled(false)

	return Model{list: l}
}

func (m *Model) SetLaps(dayLaps []models.Lap) {
	m.list.SetItems(toItems(dayLaps))
}

func toItems(dayLaps []models.Lap) []list.Item {
	items := make([]list.Item, len(dayLaps))
	for i, lap := range dayLaps {
		items[i] = Item{Index: i, Lap: lap}
	}
	return items
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No laps yet.\n  Press 's' to start the day."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
