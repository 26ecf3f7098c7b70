// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configFile = ""

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	output, err := execute(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "migrate", "config", "schema", "prune-sessions", "status"} {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFlag string
	}{
		{
			name:     "separate value",
			args:     []string{"--config", "/path/to/config.yaml", "--help"},
			wantFlag: "/path/to/config.yaml",
		},
		{
			name:     "with equals",
			args:     []string{"--config=/etc/tasktrack.yaml", "--help"},
			wantFlag: "/etc/tasktrack.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFlag, configFile)
		})
	}
}

func TestRootCommand_PersistentConfigFlags(t *testing.T) {
	output, err := execute(t, "serve", "--help")
	require.NoError(t, err)

	for _, flag := range []string{"--http-addr", "--database-url", "--jwt-secret", "--token-ttl", "--log-level", "--auto-migrate"} {
		assert.Contains(t, output, flag)
	}
}

func TestRootCommand_VersionFlag(t *testing.T) {
	cmd := NewRootCmd()
	cmd.Version = "test-version"
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "test-version")
}

func TestRootCommand_NoArgs(t *testing.T) {
	_, err := execute(t)
	require.NoError(t, err)
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:hunter2@db:5432/tasks")
	t.Setenv("TASKTRACK_JWT_SECRET", testSecret)

	t.Run("prints redacted yaml", func(t *testing.T) {
		output, err := execute(t, "config", "--http-addr", ":9999")
		require.NoError(t, err)
		assert.Contains(t, output, ":9999")
		assert.Contains(t, output, "token_ttl: 1h0m0s")
		assert.Contains(t, output, "[REDACTED]")
		assert.Contains(t, output, "postgres://app:xxxxx@db:5432/tasks")
		assert.NotContains(t, output, "hunter2")
		assert.NotContains(t, output, testSecret)
	})

	t.Run("check rejects invalid settings", func(t *testing.T) {
		_, err := execute(t, "config", "--check", "--log-format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log_format")
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := execute(t, "config", "--config", "/nonexistent/tasktrack.yaml")
		require.Error(t, err)
	})
}
