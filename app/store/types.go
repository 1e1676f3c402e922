package store

import (
	"time"
)

// Metadata is the run-level state persisted alongside the articles.
type Metadata struct {
	CreatedDate            time.Time      `json:"created_date"`
	LastUpdated            time.Time      `json:"last_updated"`
	TotalArticles          int            `json:"total_articles"`
	Sources                []string       `json:"sources"`
	ScoringApplied         bool           `json:"scoring_applied"`
	TrendingKeywords       []string       `json:"trending_keywords"`
	ImportanceDistribution map[string]int `json:"importance_distribution"`
	LastRanked             *time.Time     `json:"last_ranked,omitempty"`
	LastCategorization     *time.Time     `json:"last_categorization,omitempty"`
}
