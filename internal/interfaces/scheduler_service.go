package interfaces

// SchedulerService runs periodic maintenance jobs, currently the url item
// refresh sweep
type SchedulerService interface {
	// Start registers the cron entries and starts the scheduler
	Start() error

	// Stop halts the scheduler and waits for a running sweep to finish
	Stop()
}
