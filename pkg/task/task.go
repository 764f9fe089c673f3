package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/td0m/rememo/pkg/task/date"
)

type ID = string

func NewID() ID {
	return uuid.NewString()
}

// Task is a reminder item. Field names on the wire are shared with existing data, do not rename
type Task struct {
	ID              ID        `json:"id"`
	Name            string    `json:"name"`
	Times           []string  `json:"times"`
	StartDate       time.Time `json:"startDate"`
	Color           string    `json:"color"`
	ReminderEnabled bool      `json:"reminderEnabled"`
	Completed       bool      `json:"completed"`

	// supply tracking, nil when the task does not track one
	CurrentSupply  *int `json:"currentSupply,omitempty"`
	EnergyAt       *int `json:"EnergyAt,omitempty"`
	EnergyReminder bool `json:"EnergyReminder,omitempty"`
}

// EffortHistory records one time a reminder was acted upon
type EffortHistory struct {
	ID        ID        `json:"id"`
	TaskID    ID        `json:"taskId"`
	Timestamp time.Time `json:"timestamp"`
	Completed bool      `json:"Completed"`
}

// Count returns a pointer to n, for the optional supply fields
func Count(n int) *int {
	return &n
}

// Clocks parses every entry of Times
func (t Task) Clocks() ([]date.Clock, error) {
	out := make([]date.Clock, 0, len(t.Times))
	for _, s := range t.Times {
		c, err := date.ParseClock(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Started reports whether the task is active on the day of at
func (t Task) Started(at time.Time) bool {
	return !date.StartOfDay(t.StartDate.In(at.Location())).After(date.StartOfDay(at))
}

// LowSupply reports whether the tracked supply is at or below its threshold
func (t Task) LowSupply() bool {
	if t.CurrentSupply == nil || t.EnergyAt == nil {
		return false
	}
	return *t.CurrentSupply <= *t.EnergyAt
}

func (t Task) validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if _, err := t.Clocks(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	if t.CurrentSupply != nil && *t.CurrentSupply < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// defaults fills fields that older records may lack
func (t *Task) defaults() {
	if t.Times == nil {
		t.Times = []string{}
	}
}

// clone copies the pointer fields so callers cannot mutate stored values
func (t Task) clone() Task {
	t.Times = append([]string{}, t.Times...)
	if t.CurrentSupply != nil {
		t.CurrentSupply = Count(*t.CurrentSupply)
	}
	if t.EnergyAt != nil {
		t.EnergyAt = Count(*t.EnergyAt)
	}
	return t
}
