package site2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// jobRun tracks the goroutine running one job.
type jobRun struct {
	done chan struct{}

	mu      sync.Mutex
	saving  bool
	removed bool
	held    *Job // terminal snapshot withheld while saving
}

// Manager is the entry point for callers: it creates jobs, runs each one in
// its own goroutine and answers status, cancel and save requests.
// Failures never escape as panics; they are reported through job snapshots.
type Manager struct {
	orch     *Orchestrator
	registry *JobRegistry
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time

	ctx  context.Context
	stop context.CancelCauseFunc

	mu     sync.Mutex
	runs   map[string]*jobRun
	closed bool
	wg     sync.WaitGroup
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for job lifecycle events.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithIDGenerator replaces the job id generator.
func WithIDGenerator(fn func() string) ManagerOption {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithRegistry shares an existing registry.
func WithRegistry(r *JobRegistry) ManagerOption {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// newJobID returns a time-ordered UUID so that ListJobs shows the newest
// job first.
func newJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewManager creates a manager running jobs through orch.
func NewManager(orch *Orchestrator, opts ...ManagerOption) *Manager {
	ctx, stop := context.WithCancelCause(context.Background())
	m := &Manager{
		orch:     orch,
		registry: NewJobRegistry(),
		logger:   discardLogger(),
		newID:    newJobID,
		now:      time.Now,
		ctx:      ctx,
		stop:     stop,
		runs:     make(map[string]*jobRun),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateJob registers a Pending job and starts converting rawURL in the
// background. It fails only when the manager is closed; invalid URLs are
// reported through the job's status.
func (m *Manager) CreateJob(rawURL, title string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", ErrManagerClosed
	}

	id := m.newID()
	m.registry.SetStatus(NewJob(id, rawURL, title, m.now()))
	m.registry.RegisterTempDir(id, m.orch.TempDir(id))

	ctx, cancel := context.WithCancelCause(m.ctx)
	m.registry.RegisterCancel(id, cancel)

	run := &jobRun{done: make(chan struct{})}
	m.runs[id] = run
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer close(run.done)
		defer cancel(nil)

		if err := m.orch.Generate(ctx, rawURL, title, id, m.sink(run)); err != nil {
			m.logger.Debug("job ended with error", "job_id", id, "error", err)
		}
	}()

	m.logger.Info("job created", "job_id", id, "url", rawURL)
	return id, nil
}

// sink stores snapshots in the registry. While a save is in progress the
// terminal snapshot is held back so CancelAndSave decides the outcome.
func (m *Manager) sink(run *jobRun) ProgressSink {
	return func(j Job) {
		run.mu.Lock()
		defer run.mu.Unlock()

		switch {
		case run.removed:
		case run.saving && j.State.IsTerminal():
			held := j
			run.held = &held
		default:
			m.registry.SetStatus(j)
		}
	}
}

// GetStatus returns the latest snapshot of id.
func (m *Manager) GetStatus(id string) (Job, error) {
	job, ok := m.registry.GetStatus(id)
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return job, nil
}

// ListJobs returns every known job, newest id first.
func (m *Manager) ListJobs() []Job {
	return m.registry.ListAll()
}

// Cancel stops a job. The job becomes Failed with a cancellation message.
func (m *Manager) Cancel(id string) error {
	job, ok := m.registry.GetStatus(id)
	if !ok {
		return ErrJobNotFound
	}
	if job.State.IsTerminal() {
		return ErrAlreadyFinished
	}
	if !m.registry.Cancel(id) {
		return ErrCannotCancel
	}

	if latest, ok := m.registry.GetStatus(id); ok {
		job = latest
	}
	failed := job.Failed(msgCancelledByUser)
	failed.UpdatedAt = m.now()
	if !m.registry.SetStatus(failed) {
		// The job reached a terminal state before the cancellation landed.
		// Only a failure it recorded for this cancellation counts as success.
		if cur, ok := m.registry.GetStatus(id); !ok || cur.State != StateFailed || cur.Error() != msgCancelledByUser {
			return ErrAlreadyFinished
		}
	}
	m.logger.Info("job cancelled", "job_id", id)
	return nil
}

// CancelAndSave stops a job and completes it with the pages rendered so
// far, merged into partial{id}.pdf. If the job finished on its own before
// the cancellation landed, that result is kept instead.
func (m *Manager) CancelAndSave(id string) (SaveResult, error) {
	job, ok := m.registry.GetStatus(id)
	if !ok {
		return SaveResult{}, ErrJobNotFound
	}
	if job.State.IsTerminal() {
		return SaveResult{}, ErrAlreadyFinished
	}

	m.mu.Lock()
	run := m.runs[id]
	m.mu.Unlock()
	if run == nil {
		return SaveResult{}, ErrCannotCancel
	}

	run.mu.Lock()
	run.saving = true
	run.mu.Unlock()

	m.registry.Cancel(id)
	<-run.done

	run.mu.Lock()
	run.saving = false
	held := run.held
	run.mu.Unlock()

	if held != nil && held.State == StateCompleted {
		m.registry.SetStatus(*held)
		return SaveResult{OutputPath: held.Output(), PagesRendered: held.PagesRendered}, nil
	}

	latest, ok := m.registry.GetStatus(id)
	if !ok {
		return SaveResult{}, ErrJobNotFound
	}

	tempDir, _ := m.registry.TempDir(id)
	path, pages, err := m.orch.SavePartial(context.Background(), id, tempDir)
	if err != nil {
		failed := latest.Failed(msgCancelledByUser)
		failed.UpdatedAt = m.now()
		m.registry.SetStatus(failed)
		return SaveResult{}, err
	}

	total := max(latest.PagesTotal, pages)
	done := latest.WithState(StateCompleted).
		WithProgress(total, pages).
		WithOutput(path).
		WithError(fmt.Sprintf("%s; saved %d of %d pages", msgCancelledByUser, pages, total))
	done.UpdatedAt = m.now()
	m.registry.SetStatus(done)
	m.logger.Info("partial book saved", "job_id", id, "pages", pages)
	return SaveResult{OutputPath: path, PagesRendered: pages}, nil
}

// Wait blocks until the job reaches a terminal state or ctx is done.
func (m *Manager) Wait(ctx context.Context, id string) (Job, error) {
	m.mu.Lock()
	run := m.runs[id]
	m.mu.Unlock()

	if run != nil {
		select {
		case <-run.done:
		case <-ctx.Done():
			return Job{}, ctx.Err()
		}
	}
	return m.GetStatus(id)
}

// RemoveJob cancels the job if needed, forgets it and deletes its temp
// directory.
func (m *Manager) RemoveJob(id string) error {
	if _, ok := m.registry.GetStatus(id); !ok {
		return ErrJobNotFound
	}
	tempDir, _ := m.registry.TempDir(id)

	m.mu.Lock()
	run := m.runs[id]
	delete(m.runs, id)
	m.mu.Unlock()

	if run != nil {
		run.mu.Lock()
		run.removed = true
		run.mu.Unlock()
	}
	m.registry.Remove(id)
	if run != nil {
		<-run.done
	}

	if tempDir != "" {
		if err := os.RemoveAll(tempDir); err != nil {
			return fmt.Errorf("removing temp directory: %w", err)
		}
	}
	m.logger.Info("job removed", "job_id", id)
	return nil
}

// Close cancels every running job and waits for their goroutines.
// Completed output files stay on disk.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.stop(ErrManagerClosed)
	m.wg.Wait()
	return nil
}
