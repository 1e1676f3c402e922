package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/sportwire/app/pipeline"
)

// CleanupTask prunes stale articles between full pipeline runs.
type CleanupTask struct {
	Task
	orchestrator *pipeline.Orchestrator
}

func NewCleanupTask(orchestrator *pipeline.Orchestrator) *CleanupTask {
	return &CleanupTask{
		Task:         NewTask(TaskTypeCleanup),
		orchestrator: orchestrator,
	}
}

func (t *CleanupTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.orchestrator.RunCleanup(ctx); err != nil {
		return fmt.Errorf("failed to run cleanup: %w", err)
	}

	slog.Info("Task completed",
		"type", "Cleanup",
		"duration", t.GetDuration())

	return nil
}
