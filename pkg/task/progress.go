package task

import (
	"context"
	"time"

	"github.com/td0m/rememo/pkg/task/date"
)

// Progress summarises one day: how many reminder slots there were and how many were completed
type Progress struct {
	Scheduled int
	Completed int
}

func (p Progress) Ratio() float64 {
	if p.Scheduled == 0 {
		return 0
	}
	r := float64(p.Completed) / float64(p.Scheduled)
	if r > 1 {
		return 1
	}
	return r
}

// ProgressOn computes the progress of day from the given tasks and history
func ProgressOn(day time.Time, tasks []Task, history []EffortHistory) Progress {
	var p Progress
	for _, t := range tasks {
		if t.Started(day) {
			p.Scheduled += len(t.Times)
		}
	}
	for _, h := range history {
		if h.Completed && date.SameDay(h.Timestamp, day, day.Location()) {
			p.Completed++
		}
	}
	return p
}

func (s *Store) DailyProgress(ctx context.Context) (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, err := s.tasks(ctx)
	if err != nil {
		return Progress{}, err
	}
	history, err := s.history(ctx)
	if err != nil {
		return Progress{}, err
	}
	return ProgressOn(s.now().In(s.loc), tasks, history), nil
}
