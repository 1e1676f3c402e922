package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/sportwire/app/pipeline"
)

// PipelineRunTask executes one full ingestion pass: fetch, score,
// cleanup, dedup, rank, categorize. A run with failed stages is
// retried by the scheduler; a serialization conflict (another run in
// progress) is not an error worth retrying.
type PipelineRunTask struct {
	Task
	orchestrator *pipeline.Orchestrator
}

func NewPipelineRunTask(orchestrator *pipeline.Orchestrator) *PipelineRunTask {
	return &PipelineRunTask{
		Task:         NewTask(TaskTypePipelineRun),
		orchestrator: orchestrator,
	}
}

func (t *PipelineRunTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	summary, err := t.orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run pipeline: %w", err)
	}

	if failed := summary.Failed(); len(failed) > 0 {
		return fmt.Errorf("pipeline stages failed: %v", failed)
	}

	slog.Info("Task completed",
		"type", "PipelineRun",
		"duration", t.GetDuration(),
		"new", summary.NewArticles,
		"total", summary.TotalArticles)

	return nil
}
