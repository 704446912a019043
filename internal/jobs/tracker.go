package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediasig/internal/analysis"
	"mediasig/internal/fileutil"
	"mediasig/internal/logging"
	"mediasig/internal/services"
)

// DefaultMaxConcurrent bounds simultaneously running jobs when unset.
const DefaultMaxConcurrent = 2

// Dispatcher runs one analysis request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req analysis.Request) (analysis.Result, error)
}

// Options configure a Tracker.
type Options struct {
	MaxConcurrent int
	Logger        *slog.Logger
}

// SubmitOptions describe ownership of a submitted request.
type SubmitOptions struct {
	// OwnedInput hands the input file to the tracker, which removes it once
	// the job reaches a terminal status.
	OwnedInput bool
}

// Tracker accepts requests, runs them in the background and records their
// outcome in a Store.
type Tracker struct {
	store      Store
	dispatcher Dispatcher
	logger     *slog.Logger
	slots      chan struct{}
	wg         sync.WaitGroup
	now        func() time.Time
	newID      func() string
}

// NewTracker builds a tracker over store and dispatcher.
func NewTracker(store Store, dispatcher Dispatcher, opts Options) *Tracker {
	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = DefaultMaxConcurrent
	}
	return &Tracker{
		store:      store,
		dispatcher: dispatcher,
		logger:     logging.NewComponentLogger(opts.Logger, "jobs"),
		slots:      make(chan struct{}, limit),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Submit validates req, records a processing job and returns its id without
// waiting for the analysis. A rejected request still releases an owned input.
func (t *Tracker) Submit(ctx context.Context, req analysis.Request, opts SubmitOptions) (string, error) {
	if err := analysis.Validate(req); err != nil {
		if opts.OwnedInput {
			_ = fileutil.RemoveQuietly(req.FilePath)
		}
		return "", err
	}

	now := t.now().UTC()
	job := Job{
		ID:        t.newID(),
		Kind:      req.Kind,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.store.Create(ctx, job); err != nil {
		if opts.OwnedInput {
			_ = fileutil.RemoveQuietly(req.FilePath)
		}
		return "", fmt.Errorf("create job: %w", err)
	}

	runCtx := services.WithJobID(context.WithoutCancel(ctx), job.ID)
	logging.WithContext(runCtx, t.logger).Info("job submitted",
		logging.String(logging.FieldEventType, "job_submitted"),
		logging.String(logging.FieldKind, string(req.Kind)),
		logging.Bool("owned_input", opts.OwnedInput),
	)

	t.wg.Add(1)
	go t.run(runCtx, job.ID, req, opts)
	return job.ID, nil
}

func (t *Tracker) run(ctx context.Context, id string, req analysis.Request, opts SubmitOptions) {
	defer t.wg.Done()
	t.slots <- struct{}{}
	defer func() { <-t.slots }()

	logger := logging.WithContext(ctx, t.logger)
	if opts.OwnedInput {
		defer func() {
			if err := fileutil.RemoveQuietly(req.FilePath); err != nil {
				logger.Warn("owned input cleanup failed",
					logging.String(logging.FieldEventType, "input_cleanup_failed"),
					logging.Error(err),
				)
			}
		}()
	}

	start := t.now()
	result, err := t.dispatch(ctx, req)
	if err == nil && result != nil {
		if _, encErr := json.Marshal(result); encErr != nil {
			err = fmt.Errorf("record result: %w", encErr)
		}
	}
	status, errMsg := StatusDone, ""
	if err != nil {
		status, errMsg = StatusError, err.Error()
		result = nil
	}
	// Finish uses a fresh context: the job must leave processing even when
	// the caller's values carry a deadline.
	finishErr := t.store.Finish(context.Background(), id, status, result, errMsg)
	if finishErr != nil && status == StatusDone && !errors.Is(finishErr, ErrAlreadyFinished) {
		err = fmt.Errorf("record result: %w", finishErr)
		status, errMsg, result = StatusError, err.Error(), nil
		finishErr = t.store.Finish(context.Background(), id, status, nil, errMsg)
	}
	if finishErr != nil {
		logger.Error("job transition failed",
			logging.String(logging.FieldEventType, "job_finish_failed"),
			logging.Error(finishErr),
		)
		return
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "job_finished"),
		logging.String("status", string(status)),
		logging.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		logging.StageFailure(logger, "job failed", "job_failed", err, attrs[1:]...)
		return
	}
	logger.Info("job finished", logging.Args(attrs...)...)
}

// dispatch converts a panic into an error so the job still terminates.
func (t *Tracker) dispatch(ctx context.Context, req analysis.Request) (result analysis.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.WithContext(ctx, t.logger).Error("analysis panicked",
				logging.String(logging.FieldEventType, "job_panic"),
				logging.Any("panic", r),
				logging.String("stack", strings.TrimSpace(string(debug.Stack()))),
			)
			result = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return t.dispatcher.Dispatch(ctx, req)
}

// Poll returns the current snapshot of job id, or ErrNotFound.
func (t *Tracker) Poll(ctx context.Context, id string) (Job, error) {
	return t.store.Get(ctx, strings.TrimSpace(id))
}

// List returns every job, oldest first.
func (t *Tracker) List(ctx context.Context) ([]Job, error) {
	return t.store.List(ctx)
}

// Wait blocks until every submitted job has finished or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
