package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/td0m/rememo/pkg/task"
	"github.com/td0m/rememo/pkg/task/date"
)

// Outcome records what a scheduling call did. Failures are logged by the Scheduler
// and kept in Err instead of being returned, reminders are best effort
type Outcome struct {
	IDs []string
	Err error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// UpdateOutcome records each step of UpdateTaskReminders
type UpdateOutcome struct {
	Cancelled Outcome
	Reminders Outcome
	Energy    Outcome
}

func (o UpdateOutcome) Err() error {
	return errors.Join(o.Cancelled.Err, o.Reminders.Err, o.Energy.Err)
}

type Logger interface {
	Printf(format string, v ...interface{})
}

type Scheduler struct {
	p       Platform
	log     Logger
	channel *Channel
}

type Option func(*Scheduler)

func WithLogger(l Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithChannel makes RegisterDeviceToken create c once permission is granted
func WithChannel(c Channel) Option {
	return func(s *Scheduler) { s.channel = &c }
}

// Init installs h as the foreground handler of p, when p supports one, and returns
// the Scheduler for p. Call it once at start up
func Init(p Platform, h Handler, opts ...Option) *Scheduler {
	s := &Scheduler{
		p:   p,
		log: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if hs, ok := p.(handlerSetter); ok {
		hs.SetHandler(h)
	}
	return s
}

// RegisterDeviceToken asks for permission if needed and returns the delivery token.
// ok is false when permission is not granted or no token is available
func (s *Scheduler) RegisterDeviceToken(ctx context.Context) (string, bool) {
	status, err := s.p.PermissionStatus(ctx)
	if err != nil {
		s.log.Printf("get permission status: %v", err)
		return "", false
	}
	if status != Granted {
		status, err = s.p.RequestPermission(ctx)
		if err != nil {
			s.log.Printf("request permission: %v", err)
			return "", false
		}
	}
	if status != Granted {
		return "", false
	}
	token, err := s.p.DeliveryToken(ctx)
	if err != nil {
		s.log.Printf("get delivery token: %v", err)
		return "", false
	}
	if s.channel != nil {
		if err := s.p.CreateChannel(ctx, *s.channel); err != nil {
			s.log.Printf("create channel %s: %v", s.channel.ID, err)
			return "", false
		}
	}
	return token, true
}

// ScheduleTaskReminder registers one daily notification per reminder time of t
func (s *Scheduler) ScheduleTaskReminder(ctx context.Context, t task.Task) Outcome {
	var o Outcome
	if !t.ReminderEnabled {
		return o
	}
	var errs []error
	for _, raw := range t.Times {
		c, err := date.ParseClock(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		id, err := s.p.Schedule(ctx, Content{
			Title: "Task Reminder",
			Body:  "Time for " + t.Name,
			Data:  Payload{TaskID: t.ID},
		}, &Daily{Hour: c.Hour, Minute: c.Minute})
		if err != nil {
			errs = append(errs, fmt.Errorf("schedule %s at %s: %w", t.ID, c, err))
			continue
		}
		o.IDs = append(o.IDs, id)
	}
	o.Err = errors.Join(errs...)
	if o.Err != nil {
		s.log.Printf("schedule task reminder: %v", o.Err)
	}
	return o
}

// ScheduleEnergyReminder immediately notifies when the supply of t is at or below its threshold
func (s *Scheduler) ScheduleEnergyReminder(ctx context.Context, t task.Task) Outcome {
	var o Outcome
	if !t.EnergyReminder || !t.LowSupply() {
		return o
	}
	id, err := s.p.Schedule(ctx, Content{
		Title: "Energy Reminder",
		Body:  fmt.Sprintf("Your %s supply is running low. Current supply: %d", t.Name, *t.CurrentSupply),
		Data:  Payload{TaskID: t.ID, Type: TypeEnergy},
	}, nil)
	if err != nil {
		o.Err = fmt.Errorf("schedule energy reminder for %s: %w", t.ID, err)
		s.log.Printf("%v", o.Err)
		return o
	}
	o.IDs = []string{id}
	return o
}

// CancelTaskReminders cancels every scheduled notification whose payload references taskID
func (s *Scheduler) CancelTaskReminders(ctx context.Context, taskID string) Outcome {
	var o Outcome
	all, err := s.p.ListScheduled(ctx)
	if err != nil {
		o.Err = fmt.Errorf("list scheduled notifications: %w", err)
		s.log.Printf("cancel task reminders: %v", o.Err)
		return o
	}
	var errs []error
	for _, n := range all {
		if n.Content.Data.TaskID != taskID {
			continue
		}
		if err := s.p.Cancel(ctx, n.ID); err != nil {
			errs = append(errs, fmt.Errorf("cancel %s: %w", n.ID, err))
			continue
		}
		o.IDs = append(o.IDs, n.ID)
	}
	o.Err = errors.Join(errs...)
	if o.Err != nil {
		s.log.Printf("cancel task reminders: %v", o.Err)
	}
	return o
}

// UpdateTaskReminders cancels and then reschedules everything for t, one step after the other.
// A failure after the cancel leaves t with fewer reminders than it should have
func (s *Scheduler) UpdateTaskReminders(ctx context.Context, t task.Task) UpdateOutcome {
	var o UpdateOutcome
	o.Cancelled = s.CancelTaskReminders(ctx, t.ID)
	o.Reminders = s.ScheduleTaskReminder(ctx, t)
	o.Energy = s.ScheduleEnergyReminder(ctx, t)
	return o
}

// Describe renders a scheduled notification for listings
func Describe(n Scheduled) string {
	when := "now"
	if n.Trigger != nil {
		when = "daily at " + date.Clock{Hour: n.Trigger.Hour, Minute: n.Trigger.Minute}.String()
	}
	return strings.Join([]string{n.ID, when, n.Content.Title + ": " + n.Content.Body}, "  ")
}
