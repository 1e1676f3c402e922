package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/sportwire/app/feed"
	"github.com/lysyi3m/sportwire/app/sources"
	"github.com/lysyi3m/sportwire/app/store"
)

// Backuper snapshots the store before destructive passes. Best
// effort: a backup failure never blocks the pass.
type Backuper interface {
	Backup() (string, error)
}

// Orchestrator sequences fetch, scoring, cleanup, deduplication,
// ranking, and categorization over the shared store. A stage failure
// is logged and skips that stage's effects; prior stages stay
// committed. Per-source and per-item failures never escalate to a
// stage failure.
type Orchestrator struct {
	fetcher     *feed.Fetcher
	scorer      *Scorer
	freshness   *Freshness
	dedup       *Deduplicator
	categorizer *Categorizer
	ranker      *Ranker
	articleRepo store.ArticleRepository
	metaRepo    store.MetadataRepository
	backuper    Backuper
	srcs        []sources.Source

	mu          sync.Mutex
	running     bool
	lastSummary *RunSummary
}

func NewOrchestrator(fetcher *feed.Fetcher, scorer *Scorer, freshness *Freshness,
	dedup *Deduplicator, categorizer *Categorizer, ranker *Ranker,
	articleRepo store.ArticleRepository, metaRepo store.MetadataRepository,
	backuper Backuper, srcs []sources.Source) *Orchestrator {
	return &Orchestrator{
		fetcher:     fetcher,
		scorer:      scorer,
		freshness:   freshness,
		dedup:       dedup,
		categorizer: categorizer,
		ranker:      ranker,
		articleRepo: articleRepo,
		metaRepo:    metaRepo,
		backuper:    backuper,
		srcs:        srcs,
	}
}

// Run executes one full pipeline pass and returns its summary. Runs
// are serialized; a second caller gets an error while one is active.
func (o *Orchestrator) Run(ctx context.Context) (*RunSummary, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, fmt.Errorf("pipeline run already in progress")
	}
	o.running = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	now := time.Now()
	summary := &RunSummary{StartedAt: now.UTC()}

	slog.Info("Pipeline run started", "sources", len(o.srcs))

	o.runStage(summary, StageFetch, func() (int, error) {
		return o.fetchStage(ctx, summary)
	})
	o.runStage(summary, StageScore, func() (int, error) {
		return o.scoreStage(now)
	})
	o.runStage(summary, StageCleanup, func() (int, error) {
		return o.cleanupStage(now)
	})
	o.runStage(summary, StageDedup, func() (int, error) {
		return o.dedupStage(now)
	})
	o.runStage(summary, StageRank, func() (int, error) {
		return o.rankStage(now)
	})
	o.runStage(summary, StageCategorize, func() (int, error) {
		return o.categorizeStage(now)
	})

	if total, err := o.articleRepo.GetCount(); err == nil {
		summary.TotalArticles = total
		names, _ := o.articleRepo.SourceNames()
		if err := o.metaRepo.Touch(total, names); err != nil {
			slog.Warn("Failed to update store metadata", "error", err)
		}
	}

	summary.Duration = time.Since(now)

	o.mu.Lock()
	o.lastSummary = summary
	o.mu.Unlock()

	slog.Info("Pipeline run complete",
		"duration", summary.Duration,
		"new", summary.NewArticles,
		"total", summary.TotalArticles,
		"failed_stages", summary.Failed())

	return summary, nil
}

// RunCleanup executes the freshness cleanup alone, used by the
// periodic cleanup task between full runs.
func (o *Orchestrator) RunCleanup(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return fmt.Errorf("pipeline run already in progress")
	}
	o.running = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	_, err := o.cleanupStage(time.Now())
	return err
}

// LastSummary returns the most recent run summary, or nil before the
// first run.
func (o *Orchestrator) LastSummary() *RunSummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSummary
}

// runStage isolates a stage failure: the error is recorded in the
// summary and the run continues with the store as the prior stages
// left it.
func (o *Orchestrator) runStage(summary *RunSummary, name string, fn func() (int, error)) {
	startTime := time.Now()

	count, err := fn()

	result := StageResult{
		Name:     name,
		Duration: time.Since(startTime),
		Count:    count,
	}
	if err != nil {
		result.Error = err.Error()
		slog.Error("Pipeline stage failed, skipping its effects", "stage", name, "error", err)
	} else {
		slog.Debug("Pipeline stage complete", "stage", name, "count", count, "duration", result.Duration)
	}

	summary.Stages = append(summary.Stages, result)
}

func (o *Orchestrator) fetchStage(ctx context.Context, summary *RunSummary) (int, error) {
	sink := &storeSink{
		repo:      o.articleRepo,
		freshness: o.freshness,
	}

	summary.Sources = o.fetcher.Run(ctx, o.srcs, sink)

	for _, result := range summary.Sources {
		summary.NewArticles += result.ItemsNew
	}

	// Every source failing is still a completed fetch: the run
	// proceeds with a zero-new-articles summary.
	return summary.NewArticles, nil
}

func (o *Orchestrator) scoreStage(now time.Time) (int, error) {
	articles, err := o.articleRepo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to load articles for scoring: %w", err)
	}
	if len(articles) == 0 {
		return 0, nil
	}

	stats := o.scorer.Run(articles, now, false)

	if err := o.articleRepo.UpdateScores(articles); err != nil {
		return 0, fmt.Errorf("failed to persist scores: %w", err)
	}

	distribution := make(map[string]int)
	for i := range articles {
		distribution[DistributionBand(articles[i].ImportanceScore)]++
	}
	if err := o.metaRepo.SetScoring(stats.TrendingKeywords, distribution); err != nil {
		slog.Warn("Failed to persist scoring metadata", "error", err)
	}

	return stats.Scored, nil
}

func (o *Orchestrator) cleanupStage(now time.Time) (int, error) {
	articles, err := o.articleRepo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to load articles for cleanup: %w", err)
	}

	kept, result := o.freshness.Cleanup(articles, now)

	if len(result.RemovedIDs) > 0 {
		if err := o.articleRepo.Delete(result.RemovedIDs); err != nil {
			return 0, fmt.Errorf("failed to delete stale articles: %w", err)
		}
	}

	if result.Unparseable > 0 {
		unparseable := make([]string, 0, result.Unparseable)
		for i := range kept {
			if kept[i].DateUnparseable {
				unparseable = append(unparseable, kept[i].ID)
			}
		}
		if err := o.articleRepo.MarkUnparseable(unparseable); err != nil {
			slog.Warn("Failed to flag unparseable articles", "error", err)
		}
	}

	return len(result.RemovedIDs), nil
}

func (o *Orchestrator) dedupStage(now time.Time) (int, error) {
	articles, err := o.articleRepo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to load articles for deduplication: %w", err)
	}
	if len(articles) < 2 {
		return 0, nil
	}

	// Best-effort snapshot before the destructive pass.
	if o.backuper != nil {
		if path, err := o.backuper.Backup(); err != nil {
			slog.Warn("Store backup failed, proceeding without one", "error", err)
		} else {
			slog.Debug("Store backed up", "path", path)
		}
	}

	_, result := o.dedup.Run(articles, now)

	if len(result.RemovedIDs) > 0 {
		if err := o.articleRepo.Delete(result.RemovedIDs); err != nil {
			return 0, fmt.Errorf("failed to delete duplicates: %w", err)
		}
	}

	return result.Removed, nil
}

func (o *Orchestrator) rankStage(now time.Time) (int, error) {
	articles, err := o.articleRepo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to load articles for ranking: %w", err)
	}
	if len(articles) == 0 {
		return 0, nil
	}

	ranked := o.ranker.Run(articles, now)

	if err := o.articleRepo.UpdateRanks(ranked); err != nil {
		return 0, fmt.Errorf("failed to persist ranks: %w", err)
	}
	if err := o.metaRepo.SetLastRanked(now.UTC()); err != nil {
		slog.Warn("Failed to persist ranking metadata", "error", err)
	}

	return len(ranked), nil
}

func (o *Orchestrator) categorizeStage(now time.Time) (int, error) {
	articles, err := o.articleRepo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to load articles for categorization: %w", err)
	}
	if len(articles) == 0 {
		return 0, nil
	}

	stats := o.categorizer.Run(articles, now)

	if err := o.articleRepo.UpdateCategories(articles); err != nil {
		return 0, fmt.Errorf("failed to persist categories: %w", err)
	}
	if err := o.metaRepo.SetLastCategorization(now.UTC()); err != nil {
		slog.Warn("Failed to persist categorization metadata", "error", err)
	}

	return stats.Assigned, nil
}

// storeSink filters incoming articles through the ingestion-time
// freshness check and appends the unseen survivors to the store.
type storeSink struct {
	repo      store.ArticleRepository
	freshness *Freshness
}

func (s *storeSink) AppendArticles(articles []feed.Article) (int, int, error) {
	now := time.Now()

	stored, stale := 0, 0
	for i := range articles {
		if !s.freshness.FreshEnough(articles[i], now) {
			stale++
			continue
		}

		exists, err := s.repo.Exists(articles[i].ID)
		if err != nil {
			return stored, stale, err
		}
		if exists {
			continue
		}

		if err := s.repo.Insert(articles[i]); err != nil {
			return stored, stale, err
		}
		stored++
	}

	return stored, stale, nil
}
