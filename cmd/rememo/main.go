package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/td0m/rememo/internal/app"
	"github.com/td0m/rememo/internal/config"
	"github.com/td0m/rememo/pkg/task"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rememo",
		Short:         "rememo - daily task reminders with supply tracking",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Config file, merged over the global and project ones")

	root.AddCommand(addCmd())
	root.AddCommand(listCmd())
	root.AddCommand(todayCmd())
	root.AddCommand(effortCmd("done", "Mark a task as done for now", true))
	root.AddCommand(effortCmd("skip", "Skip a task for now", false))
	root.AddCommand(toggleCmd())
	root.AddCommand(updateCmd())
	root.AddCommand(refillCmd())
	root.AddCommand(deleteCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(progressCmd())
	root.AddCommand(clearCmd())
	root.AddCommand(remindCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(configCmd())

	return root
}

// withApp loads the config, opens the app for the duration of fn and closes it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

// resolveID finds the task whose ID is or starts with prefix
func resolveID(ctx context.Context, a *app.App, prefix string) (task.ID, error) {
	tasks, err := a.Store.ListTasks(ctx)
	if err != nil {
		return "", err
	}
	var matches []task.ID
	for _, t := range tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", task.ErrNotFound, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d tasks", prefix, len(matches))
	}
}
