package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediasig/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running daemon's readiness and job counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("query daemon: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader("Daemon", colorize))
			fmt.Fprintln(out, renderDaemonTable(status, colorize))
			fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
			fmt.Fprintln(out, renderDependencyTable(status.Dependencies, colorize))
			if len(status.Preflight) > 0 {
				fmt.Fprintln(out, renderSectionHeader("Preflight", colorize))
				fmt.Fprintln(out, renderPreflightTable(status.Preflight, colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderDaemonTable(status api.StatusResponse, colorize bool) string {
	ready := statusOK
	if !status.Ready {
		ready = statusError
	}
	rows := [][]string{
		{"Running", yesNo(status.Running)},
		{"Ready", statusCell(ready, colorize)},
		{"PID", strconv.Itoa(status.PID)},
		{"Lock file", status.LockFilePath},
		{"Job store", status.JobStore},
	}
	for _, name := range []string{"processing", "done", "error"} {
		rows = append(rows, []string{"Jobs " + name, strconv.Itoa(status.JobCounts[name])})
	}
	return renderTable([]column{{header: "Field"}, {header: "Value"}}, rows)
}
