package feed

import (
	"time"

	"github.com/lysyi3m/sportwire/app/sources"
)

// Article is the canonical news item flowing through the pipeline.
// The normalizer creates it; scorer, categorizer, and ranker add
// fields but never replace the record.
type Article struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	Summary    string `json:"summary"`
	Author     string `json:"author,omitempty"`
	SourceName string `json:"source_name"`
	SourceURL  string `json:"source_url"`
	GUID       string `json:"guid,omitempty"`

	PublishedRaw    string     `json:"published_date,omitempty"` // as received from the feed
	PublishedAt     *time.Time `json:"published_at,omitempty"`   // UTC-normalized instant
	PublishedLocal  string     `json:"published_local,omitempty"`
	CollectedAt     time.Time  `json:"collected_date"`
	DateUnparseable bool       `json:"date_unparseable,omitempty"`

	FeedCategories []string   `json:"feed_categories,omitempty"`
	Category       string     `json:"category,omitempty"`
	CategorizedAt  *time.Time `json:"categorization_date,omitempty"`

	ImportanceScore float64         `json:"importance_score"`
	ImportanceTier  string          `json:"importance_tier,omitempty"`
	Breakdown       *ScoreBreakdown `json:"scoring_breakdown,omitempty"`
	ScoredAt        *time.Time      `json:"scored_date,omitempty"`

	HybridRank  int    `json:"hybrid_rank,omitempty"`
	TimeBracket string `json:"time_bracket,omitempty"`
}

// ScoreBreakdown records the sub-scores behind an importance score.
type ScoreBreakdown struct {
	Content            float64 `json:"content"`
	Source             float64 `json:"source"`
	Temporal           float64 `json:"temporal"`
	Engagement         float64 `json:"engagement"`
	CategoryMultiplier float64 `json:"category_multiplier"`
	TrendingBoost      float64 `json:"trending_boost"`
}

// Fetch status values for a single source.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusHTTPError Status = "http_error"
	StatusNoFeed    Status = "no_feed_found"
	StatusTimeout   Status = "timeout"
	StatusException Status = "exception"
)

// SourceResult is the per-source outcome of a fetch batch.
type SourceResult struct {
	Source      sources.Source `json:"source"`
	Status      Status         `json:"status"`
	Error       string         `json:"error,omitempty"`
	ItemsParsed int            `json:"items_parsed"`
	ItemsNew    int            `json:"items_new"`
	ItemsStale  int            `json:"items_stale"`
	Duration    time.Duration  `json:"duration"`
}

// Sink receives freshness-passing, newly-seen articles during a fetch
// batch. Implemented by the pipeline on top of the store.
type Sink interface {
	AppendArticles(articles []Article) (stored int, stale int, err error)
}
