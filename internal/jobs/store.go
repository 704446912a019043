package jobs

import (
	"context"
	"fmt"

	"mediasig/internal/analysis"
	"mediasig/internal/config"
)

// Store persists job snapshots for the process lifetime.
type Store interface {
	Create(ctx context.Context, job Job) error
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (Job, error)
	// Finish moves a processing job to a terminal status. A job that already
	// left processing yields ErrAlreadyFinished and is left untouched.
	Finish(ctx context.Context, id string, status Status, result analysis.Result, errMsg string) error
	// List returns every job, oldest first.
	List(ctx context.Context) ([]Job, error)
	Close() error
}

// OpenStore returns the store selected by cfg.Jobs.Store.
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Jobs.Store {
	case config.JobStoreMemory, "":
		return NewMemoryStore(), nil
	case config.JobStoreSQLite:
		return OpenSQLite(ctx, cfg.Jobs.SQLiteDSN)
	default:
		return nil, fmt.Errorf("unsupported job store %q", cfg.Jobs.Store)
	}
}

func validTerminal(status Status) error {
	if !status.Terminal() {
		return fmt.Errorf("finish: %q is not a terminal status", status)
	}
	return nil
}
