// Package progress tracks verification job state consumed by the job API:
// total candidate count, completed count and terminal status.
package progress

import (
	"context"
	"errors"
	"sync"
)

// Job statuses.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
)

// ErrNotFound is returned for unknown job IDs.
var ErrNotFound = errors.New("job not found")

// Job is the externally observable progress of one verification batch.
// Done increases monotonically and never exceeds Total.
type Job struct {
	ID     string `json:"job_id"`
	Done   int    `json:"done"`
	Total  int    `json:"total"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Percent returns completion as 0-100.
func (j Job) Percent() float64 {
	if j.Total <= 0 {
		return 0
	}
	return float64(j.Done) / float64(j.Total) * 100
}

// Store persists job progress. Implementations must be safe for concurrent
// use by the job runner and API handlers.
type Store interface {
	Create(ctx context.Context, id string) error
	SetTotal(ctx context.Context, id string, total int) error
	Increment(ctx context.Context, id string) error
	Finish(ctx context.Context, id string) error
	Fail(ctx context.Context, id string, msg string) error
	Get(ctx context.Context, id string) (Job, error)
}

// MemoryStore keeps job progress in-process.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

func (s *MemoryStore) Create(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = &Job{ID: id, Status: StatusRunning}
	return nil
}

func (s *MemoryStore) SetTotal(_ context.Context, id string, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Total = total
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Done < j.Total {
		j.Done++
	}
	return nil
}

func (s *MemoryStore) Finish(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status = StatusDone
	return nil
}

func (s *MemoryStore) Fail(_ context.Context, id string, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status = StatusError
	j.Error = msg
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *j, nil
}
