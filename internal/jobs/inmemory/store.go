package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nmthanh/warehouse-vision/internal/jobs"
)

// Store is an in-memory implementation of jobs.JobStore, safe for concurrent
// use. State is lost on restart; callers persist confirmed line items through
// the slip endpoints, not through the job store.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ReconcileInvoiceJob
}

// NewStore creates a new in-memory job store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*jobs.ReconcileInvoiceJob)}
}

// SaveJob saves or updates a job.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ReconcileInvoiceJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *job
	s.jobs[job.JobID] = &copied
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ReconcileInvoiceJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	copied := *job
	return &copied, nil
}

// ListJobs retrieves jobs matching the filter, newest first.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ReconcileInvoiceJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*jobs.ReconcileInvoiceJob
	for _, job := range s.jobs {
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		copied := *job
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

var _ jobs.JobStore = (*Store)(nil)
