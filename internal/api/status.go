package api

import (
	"context"

	"mediasig/internal/config"
	"mediasig/internal/deps"
	"mediasig/internal/jobs"
	"mediasig/internal/preflight"
)

// BuildStatus assembles dependency, preflight and job counts. Ready is false
// when a required dependency is missing or a preflight check failed.
func BuildStatus(ctx context.Context, cfg *config.Config, tracker *jobs.Tracker) StatusResponse {
	resp := StatusResponse{
		JobStore:     cfg.Jobs.Store,
		JobCounts:    CountByStatus(nil),
		Dependencies: preflight.CheckSystemDeps(cfg),
		Preflight:    preflight.RunAll(ctx, cfg),
	}
	if tracker != nil {
		if list, err := tracker.List(ctx); err == nil {
			resp.JobCounts = CountByStatus(list)
		}
	}
	resp.Ready = len(deps.MissingRequired(resp.Dependencies)) == 0 && len(preflight.Failed(resp.Preflight)) == 0
	return resp
}
