package ui

import (
	"math/rand"

	"github.com/charmbracelet/lipgloss"
)

// palette of the tui, tuned for dark terminals
const (
	Primary   = lipgloss.Color("#eee")
	Secondary = lipgloss.Color("#8a8a8a")
	Faded     = lipgloss.Color("#4e4e4e")

	Blue   = lipgloss.Color("#4db7ff")
	Green  = lipgloss.Color("#2bb673")
	Red    = lipgloss.Color("#e0452b")
	Yellow = lipgloss.Color("#d9c21a")
)

// TaskColors are handed out to tasks added without a color
var TaskColors = []string{"#4CAF50", "#2196F3", "#FF9800", "#E91E63", "#9C27B0"}

// RandomColor picks one of TaskColors
func RandomColor() string {
	return TaskColors[rand.Intn(len(TaskColors))]
}
