package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/td0m/rememo/internal/app"
	"github.com/td0m/rememo/pkg/task"
	"github.com/td0m/rememo/pkg/task/date"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded efforts",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			filter, err := task.ParseEffortFilter(status)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					history []task.EffortHistory
					err     error
				)
				if day, _ := cmd.Flags().GetString("day"); day != "" {
					on, perr := date.ParseDay(day, a.Now())
					if perr != nil {
						return perr
					}
					history, err = a.Store.HistoryOn(ctx, on)
				} else {
					history, err = a.Store.ListHistory(ctx)
				}
				if err != nil {
					return err
				}
				history = filter.Apply(history)
				names, err := taskNames(ctx, a)
				if err != nil {
					return err
				}
				if len(history) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No history")
				}
				for _, h := range history {
					fmt.Fprintln(cmd.OutOrStdout(), describeEffort(h, names, a.Now().Location()))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringP("day", "d", "", "Only show one day, e.g. today, yesterday, 2026-03-01")
	cmd.Flags().StringP("status", "s", "all", "Only show efforts that are all, done or skipped")
	return cmd
}

func progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show how much of today is done",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				p, err := a.Store.DailyProgress(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d/%d (%.0f%%)\n", progressBar(p, 20), p.Completed, p.Scheduled, p.Ratio()*100)
				return nil
			})
		},
	}
}

func clearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all tasks, history and reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to clear without --yes")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.ClearAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared all data")
				return nil
			})
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm")
	return cmd
}

func taskNames(ctx context.Context, a *app.App) (map[task.ID]string, error) {
	tasks, err := a.Store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[task.ID]string, len(tasks))
	for _, t := range tasks {
		names[t.ID] = t.Name
	}
	return names, nil
}
