package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	TaskIcon  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	TaskTitle = lipgloss.NewStyle().Bold(true)
	TaskTimes = lipgloss.NewStyle().Foreground(Secondary)

	TaskDivider = lipgloss.NewStyle().Foreground(Faded).Padding(0, 1).Render("∙")

	TaskSupply    = lipgloss.NewStyle().Foreground(Blue)
	TaskLowSupply = lipgloss.NewStyle().Foreground(Red).Bold(true)

	EffortDone    = lipgloss.NewStyle().Foreground(Green)
	EffortSkipped = lipgloss.NewStyle().Foreground(Yellow)
	EffortPending = lipgloss.NewStyle().Foreground(Faded)

	ReminderOff = lipgloss.NewStyle().Foreground(Faded).Render("🔕")
)

// Swatch renders the color marker of a task, hex colors only
func Swatch(color string) string {
	c := Faded
	if isHex(color) {
		c = lipgloss.Color(color)
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

// Supply renders the remaining supply, highlighted once it is low
func Supply(supply int, low bool) string {
	s := TaskSupply
	if low {
		s = TaskLowSupply
	}
	return s.Render(fmt.Sprintf("%d left", supply))
}

func isHex(s string) bool {
	if (len(s) != 4 && len(s) != 7 && len(s) != 9) || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
