package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"mediasig/internal/api"
	"mediasig/internal/config"
	"mediasig/internal/jobs"
	"mediasig/internal/logging"
)

const drainTimeout = 30 * time.Second

// Daemon coordinates the job tracker and HTTP API and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   jobs.Store
	tracker *jobs.Tracker
	server  *httpServer

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
}

// New constructs a daemon around an open job store and a dispatcher.
func New(cfg *config.Config, logger *slog.Logger, dispatcher jobs.Dispatcher, store jobs.Store) (*Daemon, error) {
	if cfg == nil || dispatcher == nil || store == nil {
		return nil, errors.New("daemon requires config, dispatcher, and job store")
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.tracker = jobs.NewTracker(store, dispatcher, jobs.Options{
		MaxConcurrent: cfg.Jobs.MaxConcurrent,
		Logger:        logger,
	})
	handler := api.NewServer(cfg, dispatcher, d.tracker, d.Status, logger).Handler()
	d.server = newHTTPServer(strings.TrimSpace(cfg.API.Bind), handler, logger)
	return d, nil
}

// Start acquires the daemon lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mediasig daemon instance is already running")
	}

	if err := d.server.start(ctx); err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("start api: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("mediasig daemon started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.addr()),
	)
	return nil
}

// Stop stops accepting requests, waits for in-flight jobs and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	d.server.stop()

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := d.tracker.Wait(drainCtx); err != nil {
		d.logger.Warn("in-flight jobs did not finish before shutdown",
			logging.String(logging.FieldEventType, "daemon_drain_timeout"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "jobs still processing are abandoned; resubmit them after restart"),
		)
	}

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.String(logging.FieldEventType, "daemon_unlock_failed"),
			logging.Error(err),
		)
	}
	d.running.Store(false)
	d.logger.Info("mediasig daemon stopped", logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Tracker exposes the job tracker backing the API.
func (d *Daemon) Tracker() *jobs.Tracker {
	return d.tracker
}

// Addr reports the address the API is listening on, or "" when stopped.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// Status returns runtime information for the status endpoint and CLI.
func (d *Daemon) Status(ctx context.Context) api.StatusResponse {
	status := api.BuildStatus(ctx, d.cfg, d.tracker)
	status.Running = d.running.Load()
	status.PID = os.Getpid()
	status.LockFilePath = d.lockPath
	return status
}
