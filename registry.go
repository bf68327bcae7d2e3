package site2pdf

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// registryEntry is everything the registry tracks for one job.
type registryEntry struct {
	job       Job
	hasJob    bool
	cancel    context.CancelCauseFunc
	cancelled bool
	tempDir   string
}

// JobRegistry is a concurrency-safe store of job snapshots, cancellation
// handles and temp directories, keyed by job id.
type JobRegistry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

// NewJobRegistry creates an empty registry.
func NewJobRegistry() *JobRegistry {
	return &JobRegistry{entries: make(map[string]*registryEntry)}
}

// entry returns the entry for id, creating it. Callers hold mu.
func (r *JobRegistry) entry(id string) *registryEntry {
	e, ok := r.entries[id]
	if !ok {
		e = &registryEntry{}
		r.entries[id] = e
	}
	return e
}

// SetStatus stores job as the latest snapshot for job.ID. Snapshots that
// would move the state backward, or leave a terminal state, are ignored and
// SetStatus returns false. PagesRendered is clamped to PagesTotal.
func (r *JobRegistry) SetStatus(job Job) bool {
	if job.PagesTotal > 0 && job.PagesRendered > job.PagesTotal {
		job.PagesRendered = job.PagesTotal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entry(job.ID)
	if e.hasJob {
		if !e.job.State.CanTransitionTo(job.State) {
			return false
		}
		if !e.job.CreatedAt.IsZero() {
			job.CreatedAt = e.job.CreatedAt
		}
	}
	e.job = job
	e.hasJob = true
	return true
}

// GetStatus returns the latest snapshot for id.
func (r *JobRegistry) GetStatus(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok || !e.hasJob {
		return Job{}, false
	}
	return e.job, true
}

// ListAll returns every known job ordered by id, descending.
func (r *JobRegistry) ListAll() []Job {
	r.mu.RLock()
	jobs := make([]Job, 0, len(r.entries))
	for _, e := range r.entries {
		if e.hasJob {
			jobs = append(jobs, e.job)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(jobs, func(a, b Job) int {
		return strings.Compare(b.ID, a.ID)
	})
	return jobs
}

// RegisterCancel stores the cancellation handle for id.
func (r *JobRegistry) RegisterCancel(id string, cancel context.CancelCauseFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entry(id)
	e.cancel = cancel
	e.cancelled = false
}

// Cancel triggers the cancellation handle for id with ErrCancelled as the
// cause. It returns false if there is no handle or it was already cancelled.
func (r *JobRegistry) Cancel(id string) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok || e.cancel == nil || e.cancelled {
		r.mu.Unlock()
		return false
	}
	e.cancelled = true
	cancel := e.cancel
	r.mu.Unlock()

	cancel(ErrCancelled)
	return true
}

// IsCancelled reports whether Cancel succeeded for id.
func (r *JobRegistry) IsCancelled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	return ok && e.cancelled
}

// RegisterTempDir records the temp directory owned by id.
func (r *JobRegistry) RegisterTempDir(id, dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entry(id).tempDir = dir
}

// TempDir returns the temp directory registered for id.
func (r *JobRegistry) TempDir(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok || e.tempDir == "" {
		return "", false
	}
	return e.tempDir, true
}

// Remove forgets id: its snapshot and temp dir mapping are cleared and its
// cancellation handle is triggered and discarded. Files on disk are left to
// the caller.
func (r *JobRegistry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if ok && e.cancel != nil {
		e.cancel(ErrCancelled)
	}
}
