package jobs

import (
	"errors"
	"fmt"
	"time"

	"mediasig/internal/analysis"
	"mediasig/internal/services"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

var (
	// ErrNotFound reports an unknown job id. It matches services.ErrNotFound.
	ErrNotFound = fmt.Errorf("job %w", services.ErrNotFound)
	// ErrAlreadyFinished reports a second transition out of processing.
	ErrAlreadyFinished = errors.New("job already finished")
)

// Job is a snapshot of one tracked analysis.
type Job struct {
	ID        string
	Kind      analysis.Kind
	Status    Status
	Result    analysis.Result
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func alreadyFinished(id string, status Status) error {
	return fmt.Errorf("%w: %s is %s", ErrAlreadyFinished, id, status)
}

func duplicate(id string) error {
	return fmt.Errorf("job %s already exists", id)
}
