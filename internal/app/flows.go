package app

import (
	"context"
	"errors"

	"github.com/td0m/rememo/pkg/notify"
	"github.com/td0m/rememo/pkg/task"
)

// AddTask stores t and schedules its reminders. Reminder failures are logged and
// reported in the outcome, the task is kept either way
func (a *App) AddTask(ctx context.Context, t task.Task) (task.Task, notify.Outcome, error) {
	t, err := a.Store.AddTask(ctx, t)
	if err != nil {
		return task.Task{}, notify.Outcome{}, err
	}
	o := a.Scheduler.ScheduleTaskReminder(ctx, t)
	a.Scheduler.ScheduleEnergyReminder(ctx, t)
	a.Log.Info("added task %s (%s) with %d reminders", t.ID, t.Name, len(o.IDs))
	return t, o, nil
}

// UpdateTask replaces the stored task and its reminders
func (a *App) UpdateTask(ctx context.Context, t task.Task) (notify.UpdateOutcome, error) {
	found, err := a.Store.UpdateTask(ctx, t)
	if err != nil {
		return notify.UpdateOutcome{}, err
	}
	if !found {
		return notify.UpdateOutcome{}, task.ErrNotFound
	}
	return a.Scheduler.UpdateTaskReminders(ctx, t), nil
}

// DeleteTask removes the task and cancels its reminders. History entries stay
func (a *App) DeleteTask(ctx context.Context, id task.ID) error {
	found, err := a.Store.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	a.Scheduler.CancelTaskReminders(ctx, id)
	if !found {
		return task.ErrNotFound
	}
	a.Log.Info("deleted task %s", id)
	return nil
}

// RecordEffort records a completion or a skip of the task now, and warns if its supply ran low
func (a *App) RecordEffort(ctx context.Context, id task.ID, completed bool) (task.EffortHistory, error) {
	t, err := a.Store.GetTask(ctx, id)
	if err != nil {
		return task.EffortHistory{}, err
	}
	entry, err := a.Store.RecordEffort(ctx, t.ID, completed, a.now())
	if err != nil {
		return entry, err
	}
	if completed {
		a.checkSupply(ctx, id)
	}
	return entry, nil
}

// ToggleCompleted flips the completed flag of the task
func (a *App) ToggleCompleted(ctx context.Context, id task.ID) (bool, error) {
	t, err := a.Store.GetTask(ctx, id)
	if err != nil {
		return false, err
	}
	found, err := a.Store.SetCompleted(ctx, id, !t.Completed)
	if err != nil {
		return false, err
	}
	if !found {
		return false, task.ErrNotFound
	}
	return !t.Completed, nil
}

// ToggleReminders turns the daily reminders of the task on or off
func (a *App) ToggleReminders(ctx context.Context, id task.ID) (task.Task, error) {
	t, err := a.Store.GetTask(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	t.ReminderEnabled = !t.ReminderEnabled
	if _, err := a.UpdateTask(ctx, t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Refill adds to the supply of the task
func (a *App) Refill(ctx context.Context, id task.ID, amount int) (task.Task, error) {
	t, err := a.Store.Refill(ctx, id, amount)
	if err != nil {
		return task.Task{}, err
	}
	a.Log.Info("refilled %s to %d", t.ID, *t.CurrentSupply)
	return t, nil
}

// ClearAll cancels the reminders of every task, then removes all tasks and history
func (a *App) ClearAll(ctx context.Context) error {
	tasks, err := a.Store.ListTasks(ctx)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		a.Scheduler.CancelTaskReminders(ctx, t.ID)
	}
	return a.Store.ClearAll(ctx)
}

// SyncReminders reschedules the reminders of every task and drops the ones of tasks that
// no longer exist
func (a *App) SyncReminders(ctx context.Context) error {
	tasks, err := a.Store.ListTasks(ctx)
	if err != nil {
		return err
	}
	known := make(map[task.ID]bool, len(tasks))
	var errs []error
	for _, t := range tasks {
		known[t.ID] = true
		errs = append(errs, a.Scheduler.UpdateTaskReminders(ctx, t).Err())
	}

	scheduled, err := a.Platform.ListScheduled(ctx)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	orphans := map[task.ID]bool{}
	for _, n := range scheduled {
		if !known[n.Content.Data.TaskID] {
			orphans[n.Content.Data.TaskID] = true
		}
	}
	for id := range orphans {
		errs = append(errs, a.Scheduler.CancelTaskReminders(ctx, id).Err)
	}
	return errors.Join(errs...)
}

func (a *App) checkSupply(ctx context.Context, id task.ID) {
	t, err := a.Store.GetTask(ctx, id)
	if err != nil {
		a.Log.Warn("check supply of %s: %v", id, err)
		return
	}
	a.Scheduler.ScheduleEnergyReminder(ctx, t)
}
