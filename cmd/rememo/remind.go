package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/td0m/rememo/internal/app"
	"github.com/td0m/rememo/pkg/notify"
)

func remindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Manage scheduled notifications",
	}
	cmd.AddCommand(remindRegisterCmd())
	cmd.AddCommand(remindListCmd())
	cmd.AddCommand(remindCancelCmd())
	cmd.AddCommand(remindSyncCmd())
	return cmd
}

func remindRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Ask for notification permission and print the delivery token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if reset, _ := cmd.Flags().GetBool("reset"); reset {
					if err := a.Platform.Reset(ctx); err != nil {
						return err
					}
				}
				token, ok := a.Scheduler.RegisterDeviceToken(ctx)
				if !ok {
					return errors.New("notifications are not permitted")
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	cmd.Flags().Bool("reset", false, "Forget the previous permission answer first")
	return cmd
}

func remindListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scheduled notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				all, err := a.Platform.ListScheduled(ctx)
				if err != nil {
					return err
				}
				if len(all) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing scheduled")
				}
				for _, n := range all {
					fmt.Fprintln(cmd.OutOrStdout(), notify.Describe(n))
				}
				return nil
			})
		},
	}
}

func remindCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [task id]",
		Short: "Cancel the notifications of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				id, err := resolveID(ctx, a, args[0])
				if err != nil {
					return err
				}
				o := a.Scheduler.CancelTaskReminders(ctx, id)
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %d notifications\n", len(o.IDs))
				return o.Err
			})
		},
	}
}

func remindSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reschedule the notifications of every task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.SyncReminders(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Reminders in sync")
				return nil
			})
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Deliver notifications as they come due",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				a.Log.Info("watching for notifications every %s", a.Config.Notifications.PollInterval)
				err := a.Watch(ctx, func(d notify.Delivery) {
					a.Log.Info("delivered %s", d.ID)
					if d.Handler.ShowAlert {
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %s: %s\n", d.At.Format("15:04"), d.Content.Title, d.Content.Body)
					}
					if d.Handler.PlaySound {
						fmt.Fprint(cmd.OutOrStdout(), "\a")
					}
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}
