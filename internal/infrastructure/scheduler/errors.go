package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a job on a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobNotFound is returned for an unknown job name
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidConfig is returned when a job cannot be scheduled
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrJobBusy is returned when a manual trigger overlaps a running job
	ErrJobBusy = errors.New("job is already running")
)
