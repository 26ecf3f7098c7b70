// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tasktrack/tasktrack/internal/api"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the JSON Schemas of API payloads",
		Long: `List, print, write and validate against the JSON Schemas of the
request and response bodies served by the API.`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List schema names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range api.SchemaNames() {
				cmd.Println(name)
			}
		},
	}

	show := &cobra.Command{
		Use:   "show NAME",
		Short: "Print one schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := api.GenerateSchema(args[0])
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		},
	}

	var dir string
	write := &cobra.Command{
		Use:   "write",
		Short: "Write every schema to a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeSchemas(cmd, dir)
		},
	}
	write.Flags().StringVar(&dir, "dir", "schemas", "output directory")

	validate := &cobra.Command{
		Use:   "validate NAME FILE",
		Short: "Validate a JSON document against a schema",
		Long:  `Validate the JSON document in FILE against schema NAME. A FILE of "-" reads stdin.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			if err := api.ValidatePayload(args[0], data); err != nil {
				return err
			}
			cmd.Printf("%s: valid %s\n", args[1], args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, write, validate)
	return cmd
}

func writeSchemas(cmd *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return oops.Code("SCHEMA_WRITE_FAILED").With("dir", dir).Wrap(err)
	}
	for _, name := range api.SchemaNames() {
		data, err := api.GenerateSchema(name)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, name+".schema.json")
		if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
			return oops.Code("SCHEMA_WRITE_FAILED").With("path", path).Wrap(err)
		}
		cmd.Printf("Generated %s\n", path)
	}
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, oops.Code("INPUT_READ_FAILED").With("path", path).Wrap(err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, oops.Code("INPUT_READ_FAILED").With("path", path).Wrap(err)
	}
	return data, nil
}
