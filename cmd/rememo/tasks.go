package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/td0m/rememo/internal/app"
	"github.com/td0m/rememo/internal/ui"
	"github.com/td0m/rememo/pkg/task"
	"github.com/td0m/rememo/pkg/task/date"
	"github.com/td0m/rememo/pkg/timeinput"
)

func addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("times", "t", "", "Reminder times, e.g. \"9:00, 21:30\"")
	cmd.Flags().StringP("start", "s", "today", "Start date, e.g. tomorrow, monday, 2026-04-01")
	cmd.Flags().StringP("color", "c", "", "Display color, e.g. #FF8800")
	cmd.Flags().Int("supply", 0, "Current supply, enables supply tracking")
	cmd.Flags().Int("energy-at", 0, "Supply at or below which to warn")
	cmd.Flags().Bool("energy-reminder", false, "Warn when the supply runs low")
}

// applyTaskFlags copies the flags that were set onto t
func applyTaskFlags(cmd *cobra.Command, a *app.App, t *task.Task) error {
	f := cmd.Flags()
	if f.Changed("times") {
		raw, _ := f.GetString("times")
		times, err := timeinput.Parse(raw)
		if err != nil {
			return err
		}
		t.Times = times
	}
	if f.Changed("start") || t.StartDate.IsZero() {
		raw, _ := f.GetString("start")
		start, err := date.ParseDay(raw, a.Now())
		if err != nil {
			return err
		}
		t.StartDate = start
	}
	if f.Changed("color") {
		t.Color, _ = f.GetString("color")
	}
	if f.Changed("supply") {
		n, _ := f.GetInt("supply")
		t.CurrentSupply = task.Count(n)
	}
	if f.Changed("energy-at") {
		n, _ := f.GetInt("energy-at")
		t.EnergyAt = task.Count(n)
	}
	if f.Changed("energy-reminder") {
		t.EnergyReminder, _ = f.GetBool("energy-reminder")
	}
	return nil
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				noReminder, _ := cmd.Flags().GetBool("no-reminder")
				t := task.Task{Name: args[0], ReminderEnabled: !noReminder, Color: ui.RandomColor()}
				if err := applyTaskFlags(cmd, a, &t); err != nil {
					return err
				}
				t, o, err := a.AddTask(ctx, t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", describeTask(t))
				if !o.OK() {
					fmt.Fprintf(cmd.OutOrStdout(), "Some reminders could not be scheduled: %v\n", o.Err)
				}
				return nil
			})
		},
	}
	addTaskFlags(cmd)
	cmd.Flags().Bool("no-reminder", false, "Do not schedule daily reminders")
	return cmd
}

func updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				id, err := resolveID(ctx, a, args[0])
				if err != nil {
					return err
				}
				t, err := a.Store.GetTask(ctx, id)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("name") {
					t.Name, _ = cmd.Flags().GetString("name")
				}
				if cmd.Flags().Changed("reminder") {
					t.ReminderEnabled, _ = cmd.Flags().GetBool("reminder")
				}
				if err := applyTaskFlags(cmd, a, &t); err != nil {
					return err
				}
				o, err := a.UpdateTask(ctx, t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", describeTask(t))
				if err := o.Err(); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Reminders are incomplete: %v\n", err)
				}
				return nil
			})
		},
	}
	addTaskFlags(cmd)
	cmd.Flags().StringP("name", "n", "", "New name")
	cmd.Flags().Bool("reminder", true, "Schedule daily reminders")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				tasks, err := a.Store.ListTasks(ctx)
				if err != nil {
					return err
				}
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
				}
				for _, t := range tasks {
					fmt.Fprintln(cmd.OutOrStdout(), describeTask(t))
				}
				return nil
			})
		},
	}
}

func todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show the tasks of today and what was done",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				tasks, err := a.Store.ListTasks(ctx)
				if err != nil {
					return err
				}
				history, err := a.Store.ListTodaysHistory(ctx)
				if err != nil {
					return err
				}
				done := map[task.ID]int{}
				skipped := map[task.ID]int{}
				for _, h := range history {
					if h.Completed {
						done[h.TaskID]++
					} else {
						skipped[h.TaskID]++
					}
				}
				now := a.Now()
				out := cmd.OutOrStdout()
				for _, t := range tasks {
					if !t.Started(now) {
						continue
					}
					fmt.Fprintf(out, "%s  done %d/%d", describeTask(t), done[t.ID], len(t.Times))
					if n := skipped[t.ID]; n > 0 {
						fmt.Fprintf(out, "  skipped %d", n)
					}
					fmt.Fprintln(out)
				}
				p := task.ProgressOn(now, tasks, history)
				fmt.Fprintf(out, "%s %d/%d\n", progressBar(p, 20), p.Completed, p.Scheduled)
				return nil
			})
		},
	}
}

func effortCmd(use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				id, err := resolveID(ctx, a, args[0])
				if err != nil {
					return err
				}
				if _, err := a.RecordEffort(ctx, id, completed); err != nil {
					return err
				}
				t, err := a.Store.GetTask(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %s\n", use, describeTask(t))
				return nil
			})
		},
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [id]",
		Short: "Flip the completed flag of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				id, err := resolveID(ctx, a, args[0])
				if err != nil {
					return err
				}
				completed, err := a.ToggleCompleted(ctx, id)
				if err != nil {
					return err
				}
				state := "open"
				if completed {
					state = "completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", shortID(id), state)
				return nil
			})
		},
	}
}

func refillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refill [id] [amount]",
		Short: "Add to the supply of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				id, err := resolveID(ctx, a, args[0])
				if err != nil {
					return err
				}
				t, err := a.Refill(ctx, id, amount)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Refilled %s\n", describeTask(t))
				return nil
			})
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete a task and cancel its reminders",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				id, err := resolveID(ctx, a, args[0])
				if err != nil {
					return err
				}
				if err := a.DeleteTask(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortID(id))
				return nil
			})
		},
	}
}
