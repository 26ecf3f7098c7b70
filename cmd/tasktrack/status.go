// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskTrack Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

const statusTimeout = 2 * time.Second

// ServerStatus is the health of a running server as seen through its
// observability endpoints.
type ServerStatus struct {
	Addr    string `json:"addr"`
	Running bool   `json:"running"`
	Ready   bool   `json:"ready"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of a running TaskTrack server",
		Long: `Query the liveness and readiness endpoints of a running server at
metrics_addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.MetricsAddr == "" {
				return oops.Code("CONFIG_INVALID").With("key", "metrics_addr").
					Errorf("metrics_addr is required to query status")
			}

			client := &http.Client{Timeout: statusTimeout}
			status := queryServerStatus(cmd.Context(), client, cfg.MetricsAddr)

			if jsonOutput {
				out, err := formatStatusJSON(status)
				if err != nil {
					return err
				}
				cmd.Println(out)
				return nil
			}
			cmd.Print(formatStatusTable(status))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output status as JSON")

	return cmd
}

// queryServerStatus probes the liveness and readiness endpoints at addr.
func queryServerStatus(ctx context.Context, client *http.Client, addr string) ServerStatus {
	status := ServerStatus{Addr: addr}
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	code, _, err := probe(ctx, client, base+"/healthz/liveness")
	if err != nil {
		status.Error = fmt.Sprintf("failed to connect: %v", err)
		return status
	}
	if code != http.StatusOK {
		status.Error = fmt.Sprintf("liveness returned %d", code)
		return status
	}
	status.Running = true

	code, body, err := probe(ctx, client, base+"/healthz/readiness")
	if err != nil {
		status.Error = fmt.Sprintf("readiness check failed: %v", err)
		return status
	}
	status.Ready = code == http.StatusOK
	status.Detail = body
	return status
}

func probe(ctx context.Context, client *http.Client, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, strings.TrimSpace(string(body)), nil
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status ServerStatus) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ADDR\tSTATUS\tREADY\tDETAIL")
	switch {
	case status.Error != "" && !status.Running:
		_, _ = fmt.Fprintf(w, "%s\tstopped\t-\t%s\n", status.Addr, status.Error)
	case status.Error != "":
		_, _ = fmt.Fprintf(w, "%s\trunning\tunknown\t%s\n", status.Addr, status.Error)
	default:
		ready := "no"
		if status.Ready {
			ready = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\trunning\t%s\t%s\n", status.Addr, ready, status.Detail)
	}

	_ = w.Flush()
	return buf.String()
}

// formatStatusJSON formats the status as JSON.
func formatStatusJSON(status ServerStatus) (string, error) {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return "", oops.Code("STATUS_MARSHAL_FAILED").Wrap(err)
	}
	return string(data), nil
}
