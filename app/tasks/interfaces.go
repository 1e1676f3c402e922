package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. Used by the main application to manage the periodic
// pipeline and cleanup runs.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
