package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/td0m/rememo/internal/ui"
	"github.com/td0m/rememo/pkg/task"
)

func (m app) viewTasks() string {
	if len(m.visible) == 0 {
		return lipgloss.NewStyle().Foreground(ui.Faded).Padding(0, 1).Render("no tasks, press o to add one") + "\n"
	}
	done, skipped := m.counts()
	s := ""
	for i, t := range m.visible {
		title := ui.TaskTitle
		if i == m.cursor {
			title = title.Copy().Background(ui.Faded)
		}
		if t.Completed {
			title = title.Copy().Strikethrough(true)
		}

		s += ui.TaskIcon.Render(ui.Swatch(t.Color))
		switch {
		case m.mode == modeName && m.editing && m.cursor == i:
			s += m.nameinput.View()
		default:
			s += title.Render(t.Name)
		}
		if len(t.Times) > 0 {
			s += ui.TaskDivider + ui.TaskTimes.Render(strings.Join(t.Times, " "))
		}
		if m.tabs.Value() == tabToday {
			s += ui.TaskDivider + formatEffort(done[t.ID], skipped[t.ID], len(t.Times))
		}
		if t.CurrentSupply != nil {
			s += ui.TaskDivider + ui.Supply(*t.CurrentSupply, t.LowSupply())
		}
		if !t.ReminderEnabled {
			s += " " + ui.ReminderOff
		}
		s += "\n"
	}
	return s
}

func (m app) viewHistory() string {
	faded := lipgloss.NewStyle().Foreground(ui.Faded).Padding(0, 1)
	if len(m.history) == 0 {
		return faded.Render("nothing recorded yet") + "\n"
	}
	history := m.filter.Apply(m.history)
	s := faded.Render("showing "+m.filter.String()+", press v to change") + "\n"
	if len(history) == 0 {
		return s + faded.Render("no "+m.filter.String()+" efforts") + "\n"
	}
	loc := m.rememo.Now().Location()
	// newest first
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		status := ui.EffortSkipped.Render("skipped")
		if h.Completed {
			status = ui.EffortDone.Render("done   ")
		}
		name, ok := m.names[h.TaskID]
		if !ok {
			name = lipgloss.NewStyle().Foreground(ui.Faded).Render("deleted task")
		}
		s += ui.TaskTimes.Copy().Padding(0, 1).Render(h.Timestamp.In(loc).Format("Mon 02 Jan 15:04"))
		s += status + " " + name + "\n"
	}
	return s
}

// counts tallies today's efforts per task
func (m app) counts() (done, skipped map[task.ID]int) {
	done, skipped = map[task.ID]int{}, map[task.ID]int{}
	for _, h := range m.today {
		if h.Completed {
			done[h.TaskID]++
		} else {
			skipped[h.TaskID]++
		}
	}
	return done, skipped
}

func formatEffort(done, skipped, scheduled int) string {
	style := ui.EffortPending
	switch {
	case scheduled > 0 && done >= scheduled:
		style = ui.EffortDone
	case skipped > 0:
		style = ui.EffortSkipped
	}
	s := fmt.Sprintf("%d/%d", done, scheduled)
	if skipped > 0 {
		s += fmt.Sprintf(" (%d skipped)", skipped)
	}
	return style.Render(s)
}

func formatProgress(p task.Progress) string {
	style := ui.EffortPending
	if p.Scheduled > 0 && p.Completed >= p.Scheduled {
		style = ui.EffortDone
	}
	return style.Render(fmt.Sprintf("%d/%d today", p.Completed, p.Scheduled))
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (m app) View() string {
	statusline := ""
	switch m.mode {
	case modeName:
		if !m.editing {
			statusline += "new task: " + m.nameinput.View()
		}
	case modeTimes:
		statusline += m.timeinput.View()
	case modeRefill:
		statusline += "refill " + m.draft.Name + ": " + m.nameinput.View()
	default:
		switch {
		case m.status != "":
			statusline += lipgloss.NewStyle().Foreground(ui.Red).Render(m.status)
		case m.delivered != nil:
			d := m.delivered
			statusline += lipgloss.NewStyle().Foreground(ui.Blue).Render(d.At.Format("15:04")+" "+d.Content.Title) +
				" " + d.Content.Body
		}
	}
	return m.tabs.View() + m.viewport.View() + "\n" + statusline
}
