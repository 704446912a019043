package api

import (
	"mediasig/internal/analysis"
	"mediasig/internal/jobs"
)

// FromJob converts a job snapshot to its poll envelope.
func FromJob(job jobs.Job) (PollResponse, error) {
	resp := PollResponse{"status": string(job.Status)}
	switch job.Status {
	case jobs.StatusDone:
		result := job.Result
		if result == nil {
			result = analysis.Empty(job.Kind)
		}
		fields, err := analysis.Fields(result)
		if err != nil {
			return nil, err
		}
		for key, value := range fields {
			resp[key] = value
		}
		resp["status"] = string(job.Status)
	case jobs.StatusError:
		resp["error"] = job.Error
	}
	return resp, nil
}

// SummarizeJob converts a job snapshot to its list entry.
func SummarizeJob(job jobs.Job) JobSummary {
	summary := JobSummary{
		ID:     job.ID,
		Kind:   string(job.Kind),
		Status: string(job.Status),
		Error:  job.Error,
	}
	if !job.CreatedAt.IsZero() {
		summary.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		summary.UpdatedAt = job.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return summary
}

// CountByStatus tallies jobs per status for the status report.
func CountByStatus(list []jobs.Job) map[string]int {
	counts := map[string]int{
		string(jobs.StatusProcessing): 0,
		string(jobs.StatusDone):       0,
		string(jobs.StatusError):      0,
	}
	for _, job := range list {
		counts[string(job.Status)]++
	}
	return counts
}
