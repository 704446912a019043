package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediasig/internal/deps"
	"mediasig/internal/preflight"
)

type depsReport struct {
	Dependencies []deps.Status      `json:"dependencies"`
	Preflight    []preflight.Result `json:"preflight,omitempty"`
}

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var withPreflight bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and, optionally, directories and model endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := depsReport{Dependencies: preflight.CheckSystemDeps(cfg)}
			if withPreflight {
				report.Preflight = preflight.RunAll(cmd.Context(), cfg)
			}

			if asJSON {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
				fmt.Fprintln(out, renderDependencyTable(report.Dependencies, colorize))
				if withPreflight {
					fmt.Fprintln(out, renderSectionHeader("Preflight", colorize))
					fmt.Fprintln(out, renderPreflightTable(report.Preflight, colorize))
				}
			}

			missing := deps.MissingRequired(report.Dependencies)
			failed := preflight.Failed(report.Preflight)
			if len(missing) == 0 && len(failed) == 0 {
				return nil
			}
			var names []string
			for _, m := range missing {
				names = append(names, m.Name)
			}
			for _, f := range failed {
				names = append(names, f.Name)
			}
			return errors.New("not ready: " + strings.Join(names, ", "))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&withPreflight, "preflight", false, "Also check directories, free space and model endpoints")
	return cmd
}

func dependencyKind(status deps.Status) statusKind {
	switch {
	case status.Available:
		return statusOK
	case status.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func renderDependencyTable(statuses []deps.Status, colorize bool) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		detail := s.Path
		if !s.Available {
			detail = s.Detail
		}
		rows = append(rows, []string{
			s.Name,
			statusCell(dependencyKind(s), colorize),
			s.Command,
			yesNo(s.Optional),
			detail,
		})
	}
	return renderTable([]column{
		{header: "Dependency"},
		{header: "Status"},
		{header: "Command", maxWidth: 40},
		{header: "Optional"},
		{header: "Detail", maxWidth: 60},
	}, rows)
}

func renderPreflightTable(results []preflight.Result, colorize bool) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		rows = append(rows, []string{r.Name, statusCell(kind, colorize), r.Detail})
	}
	return renderTable([]column{
		{header: "Check"},
		{header: "Status"},
		{header: "Detail", maxWidth: 60},
	}, rows)
}
