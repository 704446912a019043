package api

import (
	"mediasig/internal/deps"
	"mediasig/internal/preflight"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// AnalyzeRequest is the JSON body of /v1/analyze and /v1/jobs.
type AnalyzeRequest struct {
	FilePath          string `json:"filePath"`
	Kind              string `json:"kind"`
	Language          string `json:"language,omitempty"`
	ReferenceDatabase string `json:"referenceDatabase,omitempty"`
}

// SubmitResponse acknowledges an accepted job.
type SubmitResponse struct {
	JobID string `json:"jobId"`
}

// PollResponse is a job status merged with its result envelope or error.
type PollResponse map[string]any

// Status returns the job status field.
func (p PollResponse) Status() string {
	value, _ := p["status"].(string)
	return value
}

// Error returns the error message of a failed job.
func (p PollResponse) Error() string {
	value, _ := p["error"].(string)
	return value
}

// JobSummary describes a job in list views.
type JobSummary struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// JobListResponse wraps the job list.
type JobListResponse struct {
	Jobs []JobSummary `json:"jobs"`
}

// StatusResponse aggregates runtime information.
type StatusResponse struct {
	Running      bool               `json:"running"`
	Ready        bool               `json:"ready"`
	PID          int                `json:"pid,omitempty"`
	LockFilePath string             `json:"lockFilePath,omitempty"`
	JobStore     string             `json:"jobStore"`
	JobCounts    map[string]int     `json:"jobCounts"`
	Dependencies []deps.Status      `json:"dependencies"`
	Preflight    []preflight.Result `json:"preflight"`
}
