// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/internal/api"
	"github.com/tasktrack/tasktrack/pkg/errutil"
)

func TestSchemaList(t *testing.T) {
	output, err := execute(t, "schema", "list")
	require.NoError(t, err)
	for _, name := range api.SchemaNames() {
		assert.Contains(t, output, name)
	}
}

func TestSchemaShow(t *testing.T) {
	output, err := execute(t, "schema", "show", "create-task-request")
	require.NoError(t, err)
	assert.Contains(t, output, `"$id": "https://tasktrack.dev/schemas/create-task-request.schema.json"`)

	_, err = execute(t, "schema", "show", "nope")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "SCHEMA_UNKNOWN")
}

func TestSchemaWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	output, err := execute(t, "schema", "write", "--dir", dir)
	require.NoError(t, err)

	for _, name := range api.SchemaNames() {
		path := filepath.Join(dir, name+".schema.json")
		assert.Contains(t, output, "Generated "+path)
		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.True(t, strings.HasSuffix(string(data), "}\n"))
	}
}

func TestSchemaValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"email":"a@b.co","password":"hunter22"}`), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte(`{"email":42}`), 0o600))

	t.Run("valid file", func(t *testing.T) {
		output, err := execute(t, "schema", "validate", "login-request", good)
		require.NoError(t, err)
		assert.Contains(t, output, "valid login-request")
	})

	t.Run("invalid file", func(t *testing.T) {
		_, err := execute(t, "schema", "validate", "login-request", bad)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "PAYLOAD_INVALID")
	})

	t.Run("stdin", func(t *testing.T) {
		configFile = ""
		cmd := NewRootCmd()
		cmd.SetIn(strings.NewReader(`{"text":"buy milk"}`))
		out := &syncBuffer{}
		cmd.SetOut(out)
		cmd.SetArgs([]string{"schema", "validate", "create-task-request", "-"})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "-: valid create-task-request")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "schema", "validate", "login-request", filepath.Join(dir, "missing.json"))
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INPUT_READ_FAILED")
	})
}
