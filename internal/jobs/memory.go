package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"mediasig/internal/analysis"
)

// MemoryStore is a mutex-guarded map of jobs.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]Job
	now  func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]Job), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return duplicate(job.ID)
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, notFound(id)
	}
	return job, nil
}

func (s *MemoryStore) Finish(_ context.Context, id string, status Status, result analysis.Result, errMsg string) error {
	if err := validTerminal(status); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return notFound(id)
	}
	if job.Status != StatusProcessing {
		return alreadyFinished(id, job.Status)
	}
	job.Status = status
	job.Result = result
	job.Error = errMsg
	job.UpdatedAt = s.now().UTC()
	s.jobs[id] = job
	return nil
}

func (s *MemoryStore) List(context.Context) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
