package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/extratolab/extrato/internal/jobs"
)

// Store is an in-memory JobStore. Job state is session-scoped like the
// ledgers themselves, so losing it on restart is acceptable.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ExtractStatementJob
}

// NewStore creates an empty job store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*jobs.ExtractStatementJob)}
}

// SaveJob inserts or updates a job.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ExtractStatementJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *job
	s.jobs[job.JobID] = &cp
	return nil
}

// GetJob returns a copy of the job, so callers cannot mutate stored state.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ExtractStatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	cp := *job
	return &cp, nil
}

// ListJobs returns jobs, optionally limited to one status.
func (s *Store) ListJobs(ctx context.Context, status jobs.Status) ([]*jobs.ExtractStatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*jobs.ExtractStatementJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if status != "" && job.Status != status {
			continue
		}
		cp := *job
		out = append(out, &cp)
	}
	return out, nil
}

var _ jobs.JobStore = (*Store)(nil)
