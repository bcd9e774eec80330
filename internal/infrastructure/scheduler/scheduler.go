// Package scheduler runs the ledger's periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus is the outcome of the last run of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a named task run on a fixed interval
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds one run; zero means the interval
	Timeout time.Duration
	// RunOnStart runs the job once immediately instead of waiting a full interval
	RunOnStart bool
	Run        func(ctx context.Context) error
}

// JobState reports what a job has done so far
type JobState struct {
	Name        string
	Status      JobStatus
	Runs        int
	Failures    int
	LastError   string
	LastStarted *time.Time
	LastEnded   *time.Time
}

type jobEntry struct {
	job     Job
	mu      sync.Mutex // serializes runs of the same job
	stateMu sync.Mutex
	state   JobState
}

// Scheduler runs each registered job on its own ticker
type Scheduler struct {
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	jobs      map[string]*jobEntry
	order     []string
	cancel    context.CancelFunc
	runCtx    context.Context
	wg        sync.WaitGroup
	isRunning bool
}

// New creates a Scheduler
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger: logger.Named("scheduler"),
		now:    time.Now,
		jobs:   make(map[string]*jobEntry),
	}
}

// Register adds a job. It must be called before Start.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil || job.Interval <= 0 {
		return fmt.Errorf("%w: job %q needs a name, a run function and a positive interval", ErrInvalidConfig, job.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return fmt.Errorf("%w: cannot register %q while running", ErrInvalidConfig, job.Name)
	}
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("%w: duplicate job %q", ErrInvalidConfig, job.Name)
	}
	s.jobs[job.Name] = &jobEntry{job: job, state: JobState{Name: job.Name, Status: JobStatusPending}}
	s.order = append(s.order, job.Name)
	return nil
}

// Start launches one loop per job. Starting twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true
	s.runCtx, s.cancel = context.WithCancel(ctx)

	for _, name := range s.order {
		entry := s.jobs[name]
		s.wg.Add(1)
		go s.loop(s.runCtx, entry)
	}
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.order)))
	return nil
}

// Stop cancels the loops and waits for in-flight runs until ctx expires
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow runs a job synchronously outside its schedule
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	entry, ok := s.jobs[name]
	running := s.isRunning
	ctx := s.runCtx
	s.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}
	if !running {
		return ErrSchedulerNotRunning
	}
	if !entry.mu.TryLock() {
		return ErrJobBusy
	}
	defer entry.mu.Unlock()
	return s.execute(ctx, entry)
}

// States returns a snapshot of every job in registration order
func (s *Scheduler) States() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobState, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.jobs[name].snapshot())
	}
	return out
}

func (s *Scheduler) loop(ctx context.Context, entry *jobEntry) {
	defer s.wg.Done()

	if entry.job.RunOnStart {
		s.tick(ctx, entry)
	}
	ticker := time.NewTicker(entry.job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, entry)
		}
	}
}

// tick skips the run when the previous one, or a manual trigger, is still going
func (s *Scheduler) tick(ctx context.Context, entry *jobEntry) {
	if !entry.mu.TryLock() {
		s.logger.Debug("Skipping overlapping run", zap.String("job", entry.job.Name))
		return
	}
	defer entry.mu.Unlock()
	_ = s.execute(ctx, entry)
}

// execute runs the job once; the caller holds entry.mu
func (s *Scheduler) execute(ctx context.Context, entry *jobEntry) error {
	timeout := entry.job.Timeout
	if timeout <= 0 {
		timeout = entry.job.Interval
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := s.now()
	entry.setState(func(st *JobState) {
		st.Status = JobStatusRunning
		st.LastStarted = &started
	})

	err := runSafely(runCtx, entry.job.Run)

	ended := s.now()
	entry.setState(func(st *JobState) {
		st.Runs++
		st.LastEnded = &ended
		if err != nil {
			st.Status = JobStatusFailed
			st.Failures++
			st.LastError = err.Error()
			return
		}
		st.Status = JobStatusSuccess
		st.LastError = ""
	})

	if err != nil {
		s.logger.Error("Job failed",
			zap.String("job", entry.job.Name),
			zap.Duration("duration", ended.Sub(started)),
			zap.Error(err),
		)
		return err
	}
	s.logger.Debug("Job completed",
		zap.String("job", entry.job.Name),
		zap.Duration("duration", ended.Sub(started)),
	)
	return nil
}

func runSafely(ctx context.Context, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return run(ctx)
}

func (e *jobEntry) setState(fn func(*JobState)) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	fn(&e.state)
}

func (e *jobEntry) snapshot() JobState {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state
}
