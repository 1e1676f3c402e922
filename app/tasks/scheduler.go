package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/sportwire/app/cfg"
	"github.com/lysyi3m/sportwire/app/pipeline"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler drives the periodic pipeline and cleanup runs through a
// single worker, so runs never overlap. Failed tasks are retried with
// exponential backoff.
type Scheduler struct {
	orchestrator    *pipeline.Orchestrator
	interval        time.Duration
	cleanupInterval time.Duration
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	taskQueue       chan TaskInterface
}

func NewScheduler(orchestrator *pipeline.Orchestrator) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		orchestrator:    orchestrator,
		interval:        time.Duration(cfg.PipelineInterval) * time.Second,
		cleanupInterval: time.Duration(cfg.CleanupInterval) * time.Second,
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 50),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		pipelineTicker := time.NewTicker(s.interval)
		defer pipelineTicker.Stop()

		cleanupTicker := time.NewTicker(s.cleanupInterval)
		defer cleanupTicker.Stop()

		// Full pass on startup, then on the tickers.
		if err := s.EnqueueTask(NewPipelineRunTask(s.orchestrator)); err != nil {
			slog.Warn("Failed to enqueue startup PipelineRunTask", "error", err)
		}

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-pipelineTicker.C:
				if err := s.EnqueueTask(NewPipelineRunTask(s.orchestrator)); err != nil {
					slog.Warn("Failed to enqueue PipelineRunTask", "error", err)
				}
			case <-cleanupTicker.C:
				if err := s.EnqueueTask(NewCleanupTask(s.orchestrator)); err != nil {
					slog.Warn("Failed to enqueue CleanupTask", "error", err)
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 10*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		time.Sleep(retryDelay)
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		default:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}
