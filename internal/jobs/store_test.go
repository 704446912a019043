package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mediasig/internal/analysis"
	"mediasig/internal/config"
	"mediasig/internal/services"
	"mediasig/internal/testsupport"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sqliteStore, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func newJob(id string, kind analysis.Kind, created time.Time) Job {
	return Job{ID: id, Kind: kind, Status: StatusProcessing, CreatedAt: created, UpdatedAt: created}
}

func TestStoreLifecycle(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			if err := store.Create(ctx, newJob("job-1", analysis.KindText, created)); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if err := store.Create(ctx, newJob("job-1", analysis.KindText, created)); err == nil {
				t.Fatal("expected duplicate create to fail")
			}

			job, err := store.Get(ctx, "job-1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if job.Status != StatusProcessing || job.Result != nil || !job.CreatedAt.Equal(created) {
				t.Fatalf("unexpected job %+v", job)
			}

			result := analysis.TextResult{TranscriptResult: analysis.TranscriptResult{Transcript: "", Embedding: []float32{0.25, 0.5}}}
			if err := store.Finish(ctx, "job-1", StatusDone, result, ""); err != nil {
				t.Fatalf("Finish: %v", err)
			}
			if err := store.Finish(ctx, "job-1", StatusError, nil, "late"); !errors.Is(err, ErrAlreadyFinished) {
				t.Fatalf("expected ErrAlreadyFinished, got %v", err)
			}

			job, err = store.Get(ctx, "job-1")
			if err != nil {
				t.Fatalf("Get after finish: %v", err)
			}
			text, ok := job.Result.(analysis.TextResult)
			if job.Status != StatusDone || !ok || len(text.Embedding) != 2 || job.Error != "" {
				t.Fatalf("unexpected finished job %+v", job)
			}
		})
	}
}

func TestStoreErrors(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) || !errors.Is(err, services.ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
			if err := store.Finish(ctx, "missing", StatusDone, nil, ""); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected not found on finish, got %v", err)
			}
			if err := store.Create(ctx, newJob("job-2", analysis.KindAudio, time.Now())); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if err := store.Finish(ctx, "job-2", StatusProcessing, nil, ""); err == nil {
				t.Fatal("expected non-terminal finish to fail")
			}
			if err := store.Finish(ctx, "job-2", StatusError, nil, "boom"); err != nil {
				t.Fatalf("Finish error: %v", err)
			}
			job, _ := store.Get(ctx, "job-2")
			if job.Status != StatusError || job.Error != "boom" || job.Result != nil {
				t.Fatalf("unexpected errored job %+v", job)
			}
		})
	}
}

func TestStoreListOrdersByCreation(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
			for i, id := range []string{"c", "a", "b"} {
				created := base.Add(time.Duration(i) * 100 * time.Millisecond)
				if id == "a" {
					created = base.Add(120 * time.Millisecond)
				}
				if err := store.Create(ctx, newJob(id, analysis.KindVideo, created)); err != nil {
					t.Fatalf("Create %s: %v", id, err)
				}
			}
			jobs, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var ids []string
			for _, job := range jobs {
				ids = append(ids, job.ID)
			}
			if len(ids) != 3 || ids[0] != "c" || ids[1] != "a" || ids[2] != "b" {
				t.Fatalf("unexpected order %v", ids)
			}
		})
	}
}

func TestSQLiteFileIsClearedOnOpen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "jobs.db")

	first, err := OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := first.Create(ctx, newJob("old", analysis.KindAudio, time.Now())); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = first.Close()

	second, err := OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if _, err := second.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected previous process jobs cleared, got %v", err)
	}
}

func TestOpenStoreFromConfig(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t)
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		t.Fatalf("OpenStore memory: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	cfg = testsupport.NewConfig(t, testsupport.WithJobStore(config.JobStoreSQLite))
	store, err = OpenStore(ctx, cfg)
	if err != nil {
		t.Fatalf("OpenStore sqlite: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}

	cfg.Jobs.Store = "redis"
	if _, err := OpenStore(ctx, cfg); err == nil {
		t.Fatal("expected unsupported store error")
	}
}
