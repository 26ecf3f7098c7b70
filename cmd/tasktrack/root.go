// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/tasktrack/tasktrack/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the TaskTrack CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasktrack",
		Short: "TaskTrack - multi-tenant task tracking API",
		Long: `TaskTrack serves a JSON HTTP API where users sign up, hold
bearer-token sessions and manage their own to-do tasks.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewPruneSessionsCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}

// loadConfig resolves the configuration for cmd from the --config file,
// TASKTRACK_* variables and command-line flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Flags(), configFile)
}
