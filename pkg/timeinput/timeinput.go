package timeinput

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	indicator = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	checkmark = indicator.Copy().
			Foreground(lipgloss.AdaptiveColor{Light: "#00ad3b", Dark: "#73F59F"}).
			Render("✓")

	cross = indicator.Copy().
		Foreground(lipgloss.AdaptiveColor{Light: "", Dark: "#FF5047"}).
		Render("✗")

	faded = lipgloss.AdaptiveColor{Light: "#666", Dark: "#999"}
)

// Model is a text input for reminder times that shows whether the input parses
type Model struct {
	i     textinput.Model
	value []string
	err   error
}

func NewModel() Model {
	i := textinput.NewModel()
	i.Focus()
	i.CharLimit = 60
	i.Prompt = ""
	return Model{
		i:   i,
		err: ErrEmpty,
	}
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.i, cmd = m.i.Update(msg)
		m.value, m.err = Parse(m.i.Value())
		return m, cmd
	}
	return m, nil
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (m *Model) View() string {
	indicator := cross
	if m.i.Value() == "" {
		indicator = ""
	} else if m.err == nil {
		indicator = checkmark + " " + strings.Join(m.value, " ")
	}
	return lipgloss.NewStyle().Foreground(faded).Render("times: ") + m.i.View() + indicator
}

// Value returns the parsed times, nil while the input does not parse
func (m *Model) Value() []string {
	if m.err != nil {
		return nil
	}
	return m.value
}

func (m *Model) Valid() bool {
	return m.err == nil
}

// Empty reports whether nothing but whitespace was typed
func (m *Model) Empty() bool {
	return strings.TrimSpace(m.i.Value()) == ""
}

func (m *Model) SetValue(times []string) {
	m.i.SetValue(strings.Join(times, ", "))
	m.value, m.err = Parse(m.i.Value())
}
