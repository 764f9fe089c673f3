package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/td0m/rememo/pkg/task"
)

const shortIDLen = 8

func shortID(id task.ID) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func describeTask(t task.Task) string {
	parts := []string{shortID(t.ID), t.Name}
	if len(t.Times) > 0 {
		parts = append(parts, "at "+strings.Join(t.Times, ", "))
	}
	if t.CurrentSupply != nil {
		supply := fmt.Sprintf("supply %d", *t.CurrentSupply)
		if t.LowSupply() {
			supply += " (low)"
		}
		parts = append(parts, supply)
	}
	if !t.ReminderEnabled {
		parts = append(parts, "reminders off")
	}
	if t.Completed {
		parts = append(parts, "completed")
	}
	return strings.Join(parts, "  ")
}

func describeEffort(h task.EffortHistory, names map[task.ID]string, loc *time.Location) string {
	status := "skipped"
	if h.Completed {
		status = "done"
	}
	name, ok := names[h.TaskID]
	if !ok {
		name = "(deleted task)"
	}
	return fmt.Sprintf("%s  %-7s  %s", h.Timestamp.In(loc).Format("2006-01-02 15:04"), status, name)
}

func progressBar(p task.Progress, width int) string {
	filled := int(p.Ratio() * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
