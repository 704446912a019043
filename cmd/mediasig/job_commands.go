package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mediasig/internal/api"
	"mediasig/internal/config"
)

const pollInterval = 500 * time.Millisecond

func newJobCommand(ctx *commandContext) *cobra.Command {
	jobCmd := &cobra.Command{
		Use:   "job",
		Short: "Submit and inspect asynchronous jobs on the daemon",
	}
	jobCmd.AddCommand(newJobSubmitCommand(ctx))
	jobCmd.AddCommand(newJobStatusCommand(ctx))
	jobCmd.AddCommand(newJobListCommand(ctx))
	return jobCmd
}

func newJobSubmitCommand(ctx *commandContext) *cobra.Command {
	var flags analyzeFlags
	var upload bool
	var wait bool

	cmd := &cobra.Command{
		Use:   "submit <path>",
		Short: "Queue an analysis and print its job id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			payload := flags.payload(path)

			var resp api.SubmitResponse
			if upload {
				resp, err = client.Upload(cmd.Context(), path, payload)
			} else {
				resp, err = client.Submit(cmd.Context(), payload)
			}
			if err != nil {
				return err
			}
			if !wait {
				fmt.Fprintln(cmd.OutOrStdout(), resp.JobID)
				return nil
			}
			poll, err := waitForJob(cmd.Context(), client, resp.JobID)
			if err != nil {
				return err
			}
			poll["jobId"] = resp.JobID
			return writeJSON(cmd, poll)
		},
	}

	cmd.Flags().StringVarP(&flags.kind, "kind", "k", "", "Analysis kind: audio, video, transcript or text")
	cmd.Flags().StringVarP(&flags.language, "language", "l", "", "Spoken language hint (BCP-47 or ISO 639)")
	cmd.Flags().StringVar(&flags.referenceDB, "reference-db", "", "audfprint database on the daemon host")
	cmd.Flags().BoolVar(&upload, "upload", false, "Stream the file to the daemon instead of sending its path")
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until the job finishes and print the result")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func waitForJob(ctx context.Context, client *api.Client, id string) (api.PollResponse, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		poll, err := client.Poll(ctx, id)
		if err != nil {
			return nil, err
		}
		if status := poll.Status(); status != "processing" {
			return poll, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func newJobStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Print a job's status and, once finished, its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			id := strings.TrimSpace(args[0])
			if id == "" {
				return errors.New("job id is required")
			}
			poll, err := client.Poll(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeJSON(cmd, poll)
		},
	}
}

func newJobListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs known to the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			list, err := client.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, list)
			}
			out := cmd.OutOrStdout()
			if len(list.Jobs) == 0 {
				fmt.Fprintln(out, "No jobs")
				return nil
			}
			fmt.Fprint(out, renderJobTable(list.Jobs, shouldColorize(out)))
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderJobTable(jobs []api.JobSummary, colorize bool) string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			job.ID,
			job.Kind,
			statusCell(jobStatusKind(job.Status), colorize) + " " + job.Status,
			job.CreatedAt,
			job.Error,
		})
	}
	return renderTable([]column{
		{header: "ID"},
		{header: "Kind"},
		{header: "Status"},
		{header: "Created", align: text.AlignRight},
		{header: "Error", maxWidth: 60},
	}, rows)
}
