// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd creates the config subcommand.
func NewConfigCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration serve would run with, as YAML, after merging
the config file, TASKTRACK_* variables and flags. Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if check {
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			out, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return oops.Code("CONFIG_MARSHAL_FAILED").Wrap(err)
			}
			cmd.Print(string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "fail when the configuration is invalid")

	return cmd
}
