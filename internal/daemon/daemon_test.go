package daemon_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediasig/internal/analysis"
	"mediasig/internal/api"
	"mediasig/internal/config"
	"mediasig/internal/daemon"
	"mediasig/internal/jobs"
	"mediasig/internal/testsupport"
)

type fixedDispatcher struct{}

func (fixedDispatcher) Dispatch(ctx context.Context, req analysis.Request) (analysis.Result, error) {
	if err := analysis.Validate(req); err != nil {
		return nil, err
	}
	return analysis.VideoResult{FrameHashes: []string{"abcd"}}, nil
}

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	store := jobs.NewMemoryStore()
	d, err := daemon.New(cfg, nil, fixedDispatcher{}, store)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("lock path = %q, want %q", status.LockFilePath, cfg.LockPath())
	}
	if d.Addr() == "" {
		t.Fatal("expected listening address")
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
	if d.Addr() != "" {
		t.Fatalf("expected no address after stop, got %q", d.Addr())
	}
}

func TestSecondInstanceRejectedByLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newDaemon(t, cfg)
	second := newDaemon(t, cfg)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	err := second.Start(ctx)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected lock conflict, got %v", err)
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second Start after release: %v", err)
	}
}

func TestDaemonServesJobsOverHTTP(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	input := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, input, 64)

	client := api.NewClient(d.Addr(), "")
	submitted, err := client.Submit(ctx, api.AnalyzeRequest{FilePath: input, Kind: "video"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.JobID == "" {
		t.Fatal("expected job id")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		poll, err := client.Poll(ctx, submitted.JobID)
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if poll.Status() == string(jobs.StatusDone) {
			hashes, _ := poll["frameHashes"].([]any)
			if len(hashes) != 1 || hashes[0] != "abcd" {
				t.Fatalf("unexpected result %#v", poll)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish, last status %q", poll.Status())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
