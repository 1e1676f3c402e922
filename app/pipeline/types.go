package pipeline

import (
	"time"

	"github.com/lysyi3m/sportwire/app/feed"
)

// Stage names in execution order.
const (
	StageFetch      = "fetch"
	StageScore      = "score"
	StageCleanup    = "cleanup"
	StageDedup      = "dedup"
	StageRank       = "rank"
	StageCategorize = "categorize"
)

// StageResult records one stage of a run.
type StageResult struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	Count    int           `json:"count"`
}

// RunSummary is the structured outcome of one pipeline run.
type RunSummary struct {
	StartedAt     time.Time           `json:"started_at"`
	Duration      time.Duration       `json:"duration"`
	Stages        []StageResult       `json:"stages"`
	Sources       []feed.SourceResult `json:"sources"`
	NewArticles   int                 `json:"new_articles"`
	TotalArticles int                 `json:"total_articles"`
}

// Failed returns the names of the stages that recorded an error.
func (s *RunSummary) Failed() []string {
	failed := make([]string, 0)
	for _, stage := range s.Stages {
		if stage.Error != "" {
			failed = append(failed, stage.Name)
		}
	}
	return failed
}
