package pipeline

import (
	"log/slog"
	"time"

	"github.com/lysyi3m/sportwire/app/feed"
)

// Freshness rejects stale articles at ingestion time and prunes the
// store during periodic cleanup. An article whose dates cannot be
// resolved is never dropped for that reason alone.
type Freshness struct {
	horizon time.Duration
}

func NewFreshness(horizon time.Duration) *Freshness {
	if horizon <= 0 {
		horizon = 24 * time.Hour
	}
	return &Freshness{horizon: horizon}
}

// FreshEnough is the ingestion-time check. An article exactly at the
// horizon is stale; one a second younger passes. Articles without a
// parseable published date are kept.
func (f *Freshness) FreshEnough(article feed.Article, now time.Time) bool {
	if article.PublishedAt == nil {
		return true
	}
	return now.Sub(*article.PublishedAt) < f.horizon
}

// CleanupResult reports one cleanup pass.
type CleanupResult struct {
	Examined    int
	RemovedIDs  []string
	Unparseable int
}

// Cleanup partitions stored articles into keep and remove sets, using
// the published date and falling back to the collected date. Articles
// with neither date are kept and flagged unparseable.
func (f *Freshness) Cleanup(articles []feed.Article, now time.Time) ([]feed.Article, CleanupResult) {
	result := CleanupResult{Examined: len(articles)}

	kept := make([]feed.Article, 0, len(articles))
	for i := range articles {
		article := articles[i]

		reference := article.PublishedAt
		if reference == nil && !article.CollectedAt.IsZero() {
			reference = &article.CollectedAt
		}

		if reference == nil {
			article.DateUnparseable = true
			result.Unparseable++
			kept = append(kept, article)
			continue
		}

		if now.Sub(*reference) >= f.horizon {
			result.RemovedIDs = append(result.RemovedIDs, article.ID)
			continue
		}

		kept = append(kept, article)
	}

	slog.Debug("Freshness cleanup",
		"examined", result.Examined,
		"removed", len(result.RemovedIDs),
		"unparseable", result.Unparseable)

	return kept, result
}
