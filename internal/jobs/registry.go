// Package jobs tracks asynchronous local transcription work. The registry
// is the single point of truth for job state and is handed to the gateway
// explicitly rather than living in package-level state.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cwhuang-tw/studynotes/internal/types"
)

// ErrNotFound is returned when a job id is unknown to the registry.
var ErrNotFound = errors.New("job not found")

type job struct {
	snapshot types.JobSnapshot
	// finishedAt is set on entering a terminal state; the sweeper keys off it.
	finishedAt time.Time
	cancel     context.CancelFunc
}

// Registry is a mutex-guarded in-process job store.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*job)}
}

// Create registers a new job in processing state with zero progress and
// returns its id.
func (r *Registry) Create() string {
	id := uuid.New().String()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = &job{
		snapshot: types.JobSnapshot{
			ID:        id,
			Status:    types.StatusProcessing,
			Progress:  0,
			CreatedAt: time.Now(),
		},
	}
	return id
}

// SetCancel attaches the cancel function of the job's background task.
func (r *Registry) SetCancel(id string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		j.cancel = cancel
	}
}

// UpdateProgress sets the progress of a still-processing job. Progress
// never decreases; updates to terminal or unknown jobs are no-ops.
func (r *Registry) UpdateProgress(id string, pct int) {
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.snapshot.Status != types.StatusProcessing {
		return
	}
	if pct > j.snapshot.Progress {
		j.snapshot.Progress = pct
	}
}

// Complete marks a processing job done with the final transcript.
func (r *Registry) Complete(id, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.snapshot.Status != types.StatusProcessing {
		return
	}
	j.snapshot.Status = types.StatusDone
	j.snapshot.Progress = 100
	j.snapshot.Result = text
	j.finishedAt = time.Now()
}

// Fail marks a processing job as errored with a diagnostic message.
func (r *Registry) Fail(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.snapshot.Status != types.StatusProcessing {
		return
	}
	j.snapshot.Status = types.StatusError
	j.snapshot.Error = message
	j.finishedAt = time.Now()
}

// Get returns a snapshot of the job, or ErrNotFound.
func (r *Registry) Get(id string) (types.JobSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return types.JobSnapshot{}, ErrNotFound
	}
	return j.snapshot, nil
}

// Cancel stops the job's background task if one is running. The task's
// exit handler records the failure; Cancel itself only signals.
func (r *Registry) Cancel(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.cancel != nil && j.snapshot.Status == types.StatusProcessing {
		j.cancel()
	}
	return nil
}

// Remove deletes the job entry, cancelling any running task first.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.cancel != nil && j.snapshot.Status == types.StatusProcessing {
		j.cancel()
	}
	delete(r.jobs, id)
	return nil
}

// Len reports the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// sweep removes terminal jobs older than maxAge and returns the count.
func (r *Registry) sweep(maxAge time.Duration) int {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int
	for id, j := range r.jobs {
		if j.snapshot.Status == types.StatusProcessing {
			continue
		}
		if now.Sub(j.finishedAt) > maxAge {
			delete(r.jobs, id)
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("swept expired jobs")
	}
	return removed
}
