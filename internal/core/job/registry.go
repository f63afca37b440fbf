package job

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Registry is the concurrency-safe job table. All mutations on a given id are
// serialized by the registry lock, so pollers never observe a torn update.
// Entries live in memory only; nothing survives a restart.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*Job),
	}
}

// Create inserts a new entry in processing state. The id comes from the
// runner's UUID generator, so a duplicate means a caller bug.
func (r *Registry) Create(id, outputPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; ok {
		return fmt.Errorf("job %q already exists", id)
	}

	now := time.Now()
	r.jobs[id] = &Job{
		ID:         id,
		Status:     StatusProcessing,
		Progress:   0,
		OutputPath: outputPath,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return nil
}

// UpdateProgress records a progress percentage (or the -1 error sentinel).
// It is a no-op for unknown ids (the entry may have been removed concurrently)
// and for jobs already in a terminal state.
func (r *Registry) UpdateProgress(id string, percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok || j.Terminal() {
		return
	}
	j.Progress = percent
	j.UpdatedAt = time.Now()
}

// Complete marks a job successful. No-op if the entry is missing or already
// terminal.
func (r *Registry) Complete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok || j.Terminal() {
		return
	}
	j.Status = StatusCompleted
	j.Progress = 100
	j.UpdatedAt = time.Now()
}

// Fail marks a job failed and records the error detail. No-op if the entry is
// missing or already terminal.
func (r *Registry) Fail(id, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok || j.Terminal() {
		return
	}
	j.Status = StatusFailed
	j.Progress = 0
	j.Error = detail
	j.UpdatedAt = time.Now()
}

// Get returns a snapshot of the job. The copy keeps pollers decoupled from
// concurrent writes by the job's own goroutine.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Remove deletes the entry. Called once, when the artifact is handed back to
// the caller.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// Reap removes terminal entries that have not been touched within maxAge.
// Jobs that fail or are never downloaded would otherwise accumulate forever.
func (r *Registry) Reap(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, j := range r.jobs {
		if j.Terminal() && j.UpdatedAt.Before(cutoff) {
			delete(r.jobs, id)
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("count", removed).Msg("reaped stale job entries")
	}
	return removed
}

// Len returns the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
