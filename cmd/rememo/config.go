package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/td0m/rememo/internal/config"
	"gopkg.in/yaml.v3"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rememo configuration",
	}
	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			if path == "" {
				path = config.GlobalConfigPath()
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := config.Write(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().String("path", "", "Where to write, the global config by default")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show merged configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "# Merged configuration (global + project + environment)")
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
